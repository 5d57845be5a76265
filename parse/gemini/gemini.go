// Package gemini parses code-generation CLI session logs: plain
// sessionId/messageId/type/message records for user turns, and enriched
// records carrying gemini_raw response text, gemini_thoughts reasoning
// segments, and tool call/response arrays.
package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/veedhi/agentwire/core"
	"github.com/veedhi/agentwire/parse"
)

// Name is the registered parser name.
const Name = "gemini"

type rawRecord struct {
	SessionID string          `json:"sessionId"`
	MessageID json.RawMessage `json:"messageId"` // number or string
	Type      string          `json:"type"`      // "user" | "gemini"
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`

	GeminiRaw      string        `json:"gemini_raw"`
	GeminiThoughts []rawThought  `json:"gemini_thoughts"`
	Tokens         *rawTokens    `json:"tokens"`
	ToolCalls      []rawToolCall `json:"toolCalls"`
	ToolResponses  []rawToolResp `json:"toolResponses"`
}

type rawThought struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

type rawTokens struct {
	Input    int `json:"input"`
	Output   int `json:"output"`
	Cached   int `json:"cached"`
	Thoughts int `json:"thoughts"`
}

type rawToolCall struct {
	CallID string         `json:"callId"`
	Name   string         `json:"name"`
	Args   map[string]any `json:"args"`
}

type rawToolResp struct {
	CallID  string `json:"callId"`
	Output  string `json:"output"`
	IsError bool   `json:"error"`
}

// Parser parses code-generation CLI logs.
type Parser struct{}

// New creates a Parser.
func New() *Parser { return &Parser{} }

// Name returns the registered parser name.
func (p *Parser) Name() string { return Name }

// CanParse fingerprints the format by its enrichment fields, falling back
// to the plain sessionId/messageId/type/message shape.
func (p *Parser) CanParse(content string) bool {
	for _, m := range parse.Probe(content) {
		if parse.HasField(m, "gemini_raw") || parse.HasField(m, "gemini_thoughts") {
			return true
		}
		if parse.HasField(m, "sessionId", "messageId", "type", "message") {
			switch parse.StringField(m, "type") {
			case "user", "gemini":
				return true
			}
		}
	}
	return false
}

// Parse transforms the log line by line, splitting enriched records into
// one message per concern: thoughts, response text, each tool call, and
// each tool response. Unparsable lines are skipped.
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
		asm.Add(transform(rec)...)
	}

	return asm.Session(), nil
}

func transform(rec rawRecord) []core.Message {
	ts, ok := parse.Timestamp(rec.Timestamp)
	if !ok {
		return nil
	}
	id := messageID(rec)
	if id == "" {
		return nil
	}

	switch rec.Type {
	case "user":
		if strings.TrimSpace(rec.Message) == "" {
			return nil
		}
		return []core.Message{{
			ID:        id,
			Timestamp: ts,
			Type:      core.ClassifyText(core.RoleUser, rec.Message),
			Content:   core.TextContent(rec.Message),
			Metadata:  map[string]any{"provider": Name},
		}}

	case "gemini":
		return transformAssistant(rec, id)

	default:
		return nil
	}
}

// transformAssistant emits thought messages, the response text, then one
// message per tool call and per tool response, in that order. Usage rides
// on the first emitted message only.
func transformAssistant(rec rawRecord, id string) []core.Message {
	ts, _ := parse.Timestamp(rec.Timestamp)

	var out []core.Message
	usageAttached := false
	emit := func(m core.Message) {
		if !usageAttached && rec.Tokens != nil {
			m.Metadata["usage"] = &core.Usage{
				InputTokens:     rec.Tokens.Input,
				OutputTokens:    rec.Tokens.Output,
				CacheReadTokens: rec.Tokens.Cached,
			}
			usageAttached = true
		}
		out = append(out, m)
	}

	for i, th := range rec.GeminiThoughts {
		text := thoughtText(th)
		if text == "" {
			continue
		}
		m := core.Message{
			ID:        fmt.Sprintf("%s-thinking-%d", id, i),
			Timestamp: ts,
			Type:      core.TypeAssistantResponse,
			Content:   core.TextContent(text),
			Metadata:  map[string]any{"provider": Name, "thinking": true},
		}
		emit(m)
	}

	if text := core.TrimMessageText(rec.GeminiRaw); strings.TrimSpace(text) != "" {
		emit(core.Message{
			ID:        id,
			Timestamp: ts,
			Type:      core.TypeAssistantResponse,
			Content:   core.TextContent(text),
			Metadata:  map[string]any{"provider": Name},
		})
	}

	for _, call := range rec.ToolCalls {
		block := core.ContentBlock{
			Type:      core.BlockToolUse,
			ToolUseID: call.CallID,
			Name:      call.Name,
			Input:     call.Args,
		}
		if block.ToolUseID == "" {
			block.ToolUseID = fmt.Sprintf("tool-%d", ts.UnixMilli())
		}
		emit(core.Message{
			ID:        fmt.Sprintf("%s-tool-%s", id, block.ToolUseID),
			Timestamp: ts,
			Type:      core.TypeToolUse,
			Content: core.StructuredFrom(&core.StructuredContent{
				ToolUse:  &block,
				ToolUses: []core.ContentBlock{block},
				Blocks:   []core.ContentBlock{block},
			}),
			Metadata: map[string]any{"provider": Name, "toolName": call.Name, "toolId": block.ToolUseID},
		})
	}

	for _, resp := range rec.ToolResponses {
		if resp.CallID == "" || resp.Output == "" {
			continue
		}
		block := core.ContentBlock{
			Type:      core.BlockToolResult,
			ToolUseID: resp.CallID,
			Content:   resp.Output,
			IsError:   resp.IsError,
		}
		emit(core.Message{
			ID:        fmt.Sprintf("%s-result-%s", id, resp.CallID),
			Timestamp: ts,
			Type:      core.TypeToolResult,
			LinkedTo:  resp.CallID,
			Content: core.StructuredFrom(&core.StructuredContent{
				ToolResult:  &block,
				ToolResults: []core.ContentBlock{block},
				Blocks:      []core.ContentBlock{block},
			}),
			Metadata: map[string]any{"provider": Name},
		})
	}

	return out
}

func thoughtText(th rawThought) string {
	subject := strings.TrimSpace(th.Subject)
	desc := strings.TrimSpace(th.Description)
	switch {
	case subject != "" && desc != "":
		return subject + "\n" + desc
	case subject != "":
		return subject
	default:
		return desc
	}
}

// messageID renders the messageId field, which providers emit as either a
// number or a string.
func messageID(rec rawRecord) string {
	if len(rec.MessageID) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(rec.MessageID, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(rec.MessageID, &n); err == nil {
		return n.String()
	}
	return ""
}
