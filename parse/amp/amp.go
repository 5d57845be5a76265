// Package amp parses thread-based agent logs: records keyed by threadID
// with epoch-millisecond timestamps and content part arrays. A record
// carrying several tool parts is split into one message per part.
package amp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/veedhi/agentwire/core"
	"github.com/veedhi/agentwire/parse"
)

// Name is the registered parser name.
const Name = "amp"

type rawRecord struct {
	ThreadID  string       `json:"threadID"`
	ID        string       `json:"id"`
	Role      string       `json:"role"`
	Timestamp int64        `json:"timestamp"` // epoch millis
	Content   []rawContent `json:"content"`
	Usage     *rawUsage    `json:"usage"`
}

type rawContent struct {
	Type string `json:"type"`
	Text string `json:"text"`

	// tool_use
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`

	// tool_result
	ToolUseID string          `json:"toolUseID"`
	Output    json.RawMessage `json:"output"`
	IsError   bool            `json:"isError"`
}

type rawUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Parser parses thread-based agent logs.
type Parser struct{}

// New creates a Parser.
func New() *Parser { return &Parser{} }

// Name returns the registered parser name.
func (p *Parser) Name() string { return Name }

// CanParse looks for the threadID key alongside a content part array.
func (p *Parser) CanParse(content string) bool {
	for _, m := range parse.Probe(content) {
		if !parse.HasField(m, "threadID") {
			continue
		}
		if _, ok := m["content"].([]any); ok {
			return true
		}
	}
	return false
}

// Parse transforms the log line by line, skipping lines that do not
// deserialize.
func (p *Parser) Parse(content string) (*core.Session, error) {
	lines := parse.Lines(content)
	asm := parse.NewAssembler(Name)
	asm.SetLineCount(len(lines))

	for _, line := range lines {
		var rec rawRecord
		if err := json.Unmarshal([]byte(line.Text), &rec); err != nil {
			continue
		}
		asm.ObserveSessionID(rec.ThreadID)
		asm.Add(transform(rec)...)
	}

	return asm.Session(), nil
}

// transform splits a record into text, tool_use, and tool_result messages,
// one per tool part. Text parts of a record merge into a single message;
// usage attaches to the first emitted message only.
func transform(rec rawRecord) []core.Message {
	if rec.ID == "" || rec.Timestamp <= 0 {
		return nil
	}
	ts, ok := parse.Timestamp(float64(rec.Timestamp))
	if !ok {
		return nil
	}
	role := core.RoleUser
	if rec.Role == "assistant" {
		role = core.RoleAssistant
	}

	var out []core.Message
	usageAttached := false
	emit := func(m core.Message) {
		if !usageAttached && rec.Usage != nil {
			m.Metadata["usage"] = &core.Usage{
				InputTokens:  rec.Usage.InputTokens,
				OutputTokens: rec.Usage.OutputTokens,
			}
			usageAttached = true
		}
		out = append(out, m)
	}

	var texts []string
	hasTool := false
	for _, part := range rec.Content {
		switch part.Type {
		case "text", "thinking":
			if strings.TrimSpace(part.Text) != "" {
				texts = append(texts, part.Text)
			}
		case "tool_use", "tool_result":
			hasTool = true
		}
	}

	// Text precedes the tool messages it narrates.
	if text := core.TrimMessageText(strings.Join(texts, "\n")); strings.TrimSpace(text) != "" {
		textID := rec.ID
		if hasTool {
			textID = rec.ID + "-text"
		}
		emit(core.Message{
			ID:        textID,
			Timestamp: ts,
			Type:      core.ClassifyText(role, text),
			Content:   core.TextContent(text),
			Metadata:  map[string]any{"provider": Name},
		})
	}

	toolIndex := 0
	for _, part := range rec.Content {
		switch part.Type {
		case "tool_use":
			block := core.ContentBlock{
				Type:      core.BlockToolUse,
				ToolUseID: part.ID,
				Name:      part.Name,
				Input:     part.Input,
			}
			if block.ToolUseID == "" {
				block.ToolUseID = fmt.Sprintf("tool-%d", ts.UnixMilli())
			}
			emit(core.Message{
				ID:        fmt.Sprintf("%s-tool-%d", rec.ID, toolIndex),
				Timestamp: ts,
				Type:      core.TypeToolUse,
				Content: core.StructuredFrom(&core.StructuredContent{
					ToolUse:  &block,
					ToolUses: []core.ContentBlock{block},
					Blocks:   []core.ContentBlock{block},
				}),
				Metadata: map[string]any{"provider": Name, "toolName": part.Name, "toolId": block.ToolUseID},
			})
			toolIndex++

		case "tool_result":
			output := flattenOutput(part.Output)
			if part.ToolUseID == "" || output == "" {
				continue
			}
			block := core.ContentBlock{
				Type:      core.BlockToolResult,
				ToolUseID: part.ToolUseID,
				Content:   output,
				IsError:   part.IsError,
			}
			emit(core.Message{
				ID:        fmt.Sprintf("%s-result-%s", rec.ID, part.ToolUseID),
				Timestamp: ts,
				Type:      core.TypeToolResult,
				LinkedTo:  part.ToolUseID,
				Content: core.StructuredFrom(&core.StructuredContent{
					ToolResult:  &block,
					ToolResults: []core.ContentBlock{block},
					Blocks:      []core.ContentBlock{block},
				}),
				Metadata: map[string]any{"provider": Name},
			})
			toolIndex++
		}
	}

	return out
}

// flattenOutput renders a tool output that may be a bare string or a
// text-part array.
func flattenOutput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []rawContent
	if err := json.Unmarshal(raw, &parts); err == nil {
		var texts []string
		for _, p := range parts {
			if p.Type == "text" && p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		return strings.Join(texts, "\n")
	}
	return ""
}
