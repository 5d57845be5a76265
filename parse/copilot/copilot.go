// Package copilot parses terminal-copilot session logs: per-event JSON
// envelopes with top-level sessionID/messageID fields and a typed payload
// object carrying the event body.
package copilot

import (
	"encoding/json"
	"strconv"

	"github.com/veedhi/agentwire/core"
	"github.com/veedhi/agentwire/parse"
)

// Name is the registered parser name.
const Name = "copilot"

// Payload event types.
const (
	eventSessionStart = "session.start"
	eventUserMessage  = "user.message"
	eventAssistant    = "assistant.message"
	eventReasoning    = "assistant.reasoning"
	eventToolCall     = "tool.invocation"
	eventToolOutput   = "tool.output"
)

type rawEvent struct {
	SessionID string      `json:"sessionID"`
	MessageID string      `json:"messageID"`
	Timestamp string      `json:"timestamp"`
	Payload   *rawPayload `json:"payload"`
}

type rawPayload struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Model     string    `json:"model"`
	Name      string    `json:"name"`
	Arguments string    `json:"arguments"` // JSON-encoded argument object
	CallID    string    `json:"call_id"`
	Output    string    `json:"output"`
	IsError   bool      `json:"is_error"`
	CWD       string    `json:"cwd"`
	Version   string    `json:"version"`
	Usage     *rawUsage `json:"usage"`
}

type rawUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	CachedTokens int `json:"cached_tokens"`
}

// Parser parses terminal-copilot event logs.
type Parser struct{}

// New creates a Parser.
func New() *Parser { return &Parser{} }

// Name returns the registered parser name.
func (p *Parser) Name() string { return Name }

// CanParse fingerprints the envelope: a payload object alongside
// messageID or sessionID.
func (p *Parser) CanParse(content string) bool {
	for _, m := range parse.Probe(content) {
		if _, ok := m["payload"].(map[string]any); !ok {
			continue
		}
		if parse.HasField(m, "messageID") || parse.HasField(m, "sessionID") {
			return true
		}
	}
	return false
}

// Parse transforms each event into zero or one canonical message.
// Unparsable lines and unknown event types are skipped.
func (p *Parser) Parse(content string) (*core.Session, error) {
	lines := parse.Lines(content)
	asm := parse.NewAssembler(Name)
	asm.SetLineCount(len(lines))

	for _, line := range lines {
		var ev rawEvent
		if err := json.Unmarshal([]byte(line.Text), &ev); err != nil {
			continue
		}
		asm.ObserveSessionID(ev.SessionID)
		if msg, ok := transform(ev); ok {
			asm.Add(msg)
		}
	}

	return asm.Session(), nil
}

func transform(ev rawEvent) (core.Message, bool) {
	if ev.Payload == nil || ev.MessageID == "" {
		return core.Message{}, false
	}
	ts, ok := parse.Timestamp(ev.Timestamp)
	if !ok {
		return core.Message{}, false
	}

	pl := ev.Payload
	md := map[string]any{"provider": Name}
	if pl.Model != "" {
		md["model"] = pl.Model
	}
	if pl.Usage != nil {
		md["usage"] = &core.Usage{
			InputTokens:     pl.Usage.InputTokens,
			OutputTokens:    pl.Usage.OutputTokens,
			CacheReadTokens: pl.Usage.CachedTokens,
		}
	}

	msg := core.Message{ID: ev.MessageID, Timestamp: ts, Metadata: md}

	switch pl.Type {
	case eventUserMessage:
		msg.Type = core.ClassifyText(core.RoleUser, pl.Text)
		msg.Content = core.TextContent(pl.Text)

	case eventAssistant:
		msg.Type = core.ClassifyText(core.RoleAssistant, pl.Text)
		msg.Content = core.TextContent(pl.Text)

	case eventReasoning:
		if pl.Text == "" {
			return core.Message{}, false
		}
		msg.Type = core.TypeAssistantResponse
		msg.Content = core.TextContent(pl.Text)
		md["thinking"] = true

	case eventToolCall:
		block := core.ContentBlock{
			Type:      core.BlockToolUse,
			ToolUseID: pl.CallID,
			Name:      pl.Name,
			Input:     decodeArguments(pl.Arguments),
		}
		if block.ToolUseID == "" {
			block.ToolUseID = "tool-" + strconv.FormatInt(ts.UnixMilli(), 10)
		}
		msg.Type = core.TypeToolUse
		msg.Content = core.StructuredFrom(&core.StructuredContent{
			ToolUse:  &block,
			ToolUses: []core.ContentBlock{block},
			Blocks:   []core.ContentBlock{block},
		})
		md["toolName"] = pl.Name
		md["toolId"] = block.ToolUseID

	case eventToolOutput:
		if pl.CallID == "" || pl.Output == "" {
			// Malformed result: never surfaced.
			return core.Message{}, false
		}
		block := core.ContentBlock{
			Type:      core.BlockToolResult,
			ToolUseID: pl.CallID,
			Content:   pl.Output,
			IsError:   pl.IsError,
		}
		msg.Type = core.TypeToolResult
		msg.LinkedTo = pl.CallID
		msg.Content = core.StructuredFrom(&core.StructuredContent{
			ToolResult:  &block,
			ToolResults: []core.ContentBlock{block},
			Blocks:      []core.ContentBlock{block},
		})

	case eventSessionStart:
		// Session bookkeeping: contributes the session id only.
		return core.Message{}, false

	default:
		return core.Message{}, false
	}

	return msg, true
}

// decodeArguments parses the JSON-encoded argument string. A string that
// does not parse defaults to an empty object rather than dropping the
// whole tool call.
func decodeArguments(arguments string) any {
	if arguments == "" {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal([]byte(arguments), &v); err != nil {
		return map[string]any{}
	}
	return v
}
