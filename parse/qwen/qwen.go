// Package qwen parses extended-reasoning chat logs: records carrying the
// assistant reply alongside a thoughts array of reasoning segments. The
// adapter rewrites each record into the canonical block schema so the
// shared decomposition handles thinking fan-out and tool splitting.
package qwen

import (
	"encoding/json"
	"strings"

	"github.com/veedhi/agentwire/core"
	"github.com/veedhi/agentwire/parse"
	"github.com/veedhi/agentwire/parse/canonical"
)

// Name is the registered parser name.
const Name = "qwen"

type rawRecord struct {
	SessionID string          `json:"sessionId"`
	UUID      string          `json:"uuid"`
	Timestamp string          `json:"timestamp"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Thoughts  []rawThought    `json:"thoughts"`
	ToolCall  *rawToolCall    `json:"toolCall"`
	ToolReply *rawToolReply   `json:"toolReply"`
	Usage     json.RawMessage `json:"usage"`
}

type rawThought struct {
	Text string `json:"text"`
}

type rawToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type rawToolReply struct {
	ID      string `json:"id"`
	Output  string `json:"output"`
	IsError bool   `json:"isError"`
}

// block mirrors the canonical content block wire shape.
type block struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Thinking  string `json:"thinking,omitempty"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Input     any    `json:"input,omitempty"`
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// Parser parses extended-reasoning chat logs.
type Parser struct{}

// New creates a Parser.
func New() *Parser { return &Parser{} }

// Name returns the registered parser name.
func (p *Parser) Name() string { return Name }

// CanParse looks for the thoughts array next to a role/content pair.
func (p *Parser) CanParse(content string) bool {
	for _, m := range parse.Probe(content) {
		if !parse.HasField(m, "role", "uuid") {
			continue
		}
		if _, ok := m["thoughts"].([]any); ok {
			return true
		}
		if parse.HasField(m, "toolCall") || parse.HasField(m, "toolReply") {
			return true
		}
	}
	return false
}

// Parse transforms the log line by line, skipping lines that do not
// deserialize. Each record is rewritten into a canonical record and fed
// through the shared decomposition.
func (p *Parser) Parse(content string) (*core.Session, error) {
	lines := parse.Lines(content)
	asm := parse.NewAssembler(Name)
	asm.SetLineCount(len(lines))

	for _, line := range lines {
		var rec rawRecord
		if err := json.Unmarshal([]byte(line.Text), &rec); err != nil {
			continue
		}
		asm.ObserveSessionID(rec.SessionID)
		canon, ok := toCanonical(rec)
		if !ok {
			continue
		}
		asm.Add(canonical.Decompose(canon)...)
	}

	return asm.Session(), nil
}

// toCanonical rewrites a record into the canonical block schema: one
// thinking block per thought, a text block for the reply, and tool blocks
// for calls and replies.
func toCanonical(rec rawRecord) (canonical.Record, bool) {
	if rec.UUID == "" || rec.Timestamp == "" {
		return canonical.Record{}, false
	}

	var blocks []block
	for _, th := range rec.Thoughts {
		if strings.TrimSpace(th.Text) == "" {
			continue
		}
		blocks = append(blocks, block{Type: "thinking", Thinking: th.Text})
	}
	if strings.TrimSpace(rec.Content) != "" {
		blocks = append(blocks, block{Type: "text", Text: rec.Content})
	}
	if rec.ToolCall != nil {
		blocks = append(blocks, block{
			Type:  "tool_use",
			ID:    rec.ToolCall.ID,
			Name:  rec.ToolCall.Name,
			Input: rec.ToolCall.Args,
		})
	}
	if rec.ToolReply != nil {
		blocks = append(blocks, block{
			Type:      "tool_result",
			ToolUseID: rec.ToolReply.ID,
			Content:   rec.ToolReply.Output,
			IsError:   rec.ToolReply.IsError,
		})
	}

	content, err := json.Marshal(blocks)
	if err != nil {
		return canonical.Record{}, false
	}

	role := rec.Role
	recType := "user"
	if role == "assistant" {
		recType = "assistant"
	}
	msg := &canonical.RecordMessage{Role: role, Content: content}
	if len(rec.Usage) > 0 {
		var usage canonical.RecordUsage
		if err := json.Unmarshal(rec.Usage, &usage); err == nil {
			msg.Usage = &usage
		}
	}

	return canonical.Record{
		UUID:      rec.UUID,
		Timestamp: rec.Timestamp,
		Type:      recType,
		SessionID: rec.SessionID,
		Provider:  Name,
		Message:   msg,
	}, true
}
