// Package core defines the canonical message stream: the normalized
// representation of AI coding-assistant session logs that every parser
// produces and every downstream consumer operates on.
package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType classifies a canonical message. Raw provider logs only
// distinguish user/assistant/meta; the finer types are recovered by
// content classification.
type MessageType string

const (
	TypeUserInput         MessageType = "user_input"
	TypeAssistantResponse MessageType = "assistant_response"
	TypeToolUse           MessageType = "tool_use"
	TypeToolResult        MessageType = "tool_result"
	TypeCommand           MessageType = "command"
	TypeInterruption      MessageType = "interruption"
	TypeCompact           MessageType = "compact"
	TypeMeta              MessageType = "meta"
)

// BlockType enumerates content block kinds.
type BlockType string

const (
	BlockText       BlockType = "text"
	BlockThinking   BlockType = "thinking"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// ContentBlock is one typed unit of message content. The Type field
// determines which other fields are populated.
type ContentBlock struct {
	Type      BlockType `json:"type"`
	Text      string    `json:"text,omitempty"`        // set for "text" and "thinking"
	ToolUseID string    `json:"tool_use_id,omitempty"` // set for "tool_use" and "tool_result"
	Name      string    `json:"name,omitempty"`        // tool name, set for "tool_use"
	Input     any       `json:"input,omitempty"`       // tool input params, set for "tool_use"
	Content   string    `json:"content,omitempty"`     // tool output, set for "tool_result"
	IsError   bool      `json:"is_error,omitempty"`    // set for "tool_result"
}

// StructuredContent is a render-ready projection of the content blocks
// belonging to one message. Singular fields are set when exactly one
// tool event is present; the plural fields carry the full set.
type StructuredContent struct {
	Text        string         `json:"text,omitempty"`
	ToolUse     *ContentBlock  `json:"toolUse,omitempty"`
	ToolUses    []ContentBlock `json:"toolUses,omitempty"`
	ToolResult  *ContentBlock  `json:"toolResult,omitempty"`
	ToolResults []ContentBlock `json:"toolResults,omitempty"`
	Blocks      []ContentBlock `json:"structured,omitempty"`
}

// Content is either plain text or a structured block projection. On the
// wire it marshals to a bare JSON string when unstructured, mirroring the
// string | object union consumers expect.
type Content struct {
	Text       string
	Structured *StructuredContent
}

// TextContent wraps plain text as message content.
func TextContent(text string) Content {
	return Content{Text: text}
}

// StructuredFrom wraps a structured projection as message content.
func StructuredFrom(s *StructuredContent) Content {
	return Content{Structured: s}
}

// IsStructured reports whether the content carries block structure.
func (c Content) IsStructured() bool { return c.Structured != nil }

// String returns the plain text, falling back to the structured text field.
func (c Content) String() string {
	if c.Structured != nil {
		return c.Structured.Text
	}
	return c.Text
}

// MarshalJSON emits a bare string for plain content and a tagged object
// for structured content.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Structured == nil {
		return json.Marshal(c.Text)
	}
	type wire struct {
		Type string `json:"type"`
		*StructuredContent
	}
	return json.Marshal(wire{Type: "structured", StructuredContent: c.Structured})
}

// UnmarshalJSON accepts both the bare-string and the structured forms.
func (c *Content) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		c.Structured = nil
		return json.Unmarshal(data, &c.Text)
	}
	var s StructuredContent
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal structured content: %w", err)
	}
	c.Text = ""
	c.Structured = &s
	return nil
}

// Message is one canonical message. A single raw log record may decompose
// into zero, one, or several messages; split-out siblings share the record
// timestamp and carry synthesized IDs.
type Message struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      MessageType    `json:"type"`
	Content   Content        `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ParentID  string         `json:"parentId,omitempty"`
	LinkedTo  string         `json:"linkedTo,omitempty"` // tool_result → tool_use identifier
}

// Usage holds token counters, carried in message metadata under "usage"
// and aggregated at session level.
type Usage struct {
	InputTokens         int `json:"input_tokens,omitempty"`
	OutputTokens        int `json:"output_tokens,omitempty"`
	CacheReadTokens     int `json:"cache_read_tokens,omitempty"`
	CacheCreationTokens int `json:"cache_creation_tokens,omitempty"`
}

// Add accumulates the counts from other into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheReadTokens += other.CacheReadTokens
	u.CacheCreationTokens += other.CacheCreationTokens
}

// SessionMetadata carries parse-level counters for a session.
type SessionMetadata struct {
	MessageCount int `json:"messageCount"`
	LineCount    int `json:"lineCount"`
}

// Session is the assembled output of one parse pass: all canonical
// messages sorted ascending by timestamp, with start/end/duration derived
// from the message stream.
type Session struct {
	SessionID string          `json:"sessionId"`
	Provider  string          `json:"provider"`
	Messages  []Message       `json:"messages"`
	StartTime time.Time       `json:"startTime"`
	EndTime   time.Time       `json:"endTime"`
	Duration  int64           `json:"duration"` // milliseconds, >= 0
	Metadata  SessionMetadata `json:"metadata"`
}

// UsageOf returns the usage recorded in the message metadata, if any.
func UsageOf(m Message) *Usage {
	if m.Metadata == nil {
		return nil
	}
	u, ok := m.Metadata["usage"].(*Usage)
	if !ok {
		return nil
	}
	return u
}

// AggregateUsage sums usage across all messages in the session.
func (s *Session) AggregateUsage() *Usage {
	var total Usage
	for _, m := range s.Messages {
		if u := UsageOf(m); u != nil {
			total.Add(*u)
		}
	}
	if total == (Usage{}) {
		return nil
	}
	return &total
}
