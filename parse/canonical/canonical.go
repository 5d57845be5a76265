// Package canonical parses logs already in the canonical JSONL schema and
// implements the record decomposition algorithm shared by all providers:
// splitting one raw record into zero or more canonical messages, one
// concern per message, with tool use/result linkage preserved.
package canonical

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/veedhi/agentwire/core"
	"github.com/veedhi/agentwire/parse"
)

// Name is the registered parser name for the canonical format.
const Name = "canonical"

// Record is one canonical log record. Raw JSON deserialization type; it
// mirrors the JSONL structure on the wire.
type Record struct {
	UUID             string          `json:"uuid"`
	Timestamp        string          `json:"timestamp"`
	Type             string          `json:"type"` // "user", "assistant", "meta"
	SessionID        string          `json:"sessionId"`
	Provider         string          `json:"provider"`
	ParentUUID       string          `json:"parentUuid"`
	IsMeta           bool            `json:"isMeta"`
	IsSidechain      bool            `json:"isSidechain"`
	UserType         string          `json:"userType"`
	RequestID        string          `json:"requestId"`
	CWD              string          `json:"cwd"`
	GitBranch        string          `json:"gitBranch"`
	ProviderMetadata map[string]any  `json:"providerMetadata"`
	Message          *RecordMessage  `json:"message"`
}

// RecordMessage is the message envelope inside a canonical record. Content
// is either a flat string or an array of content blocks.
type RecordMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Model   string          `json:"model"`
	Usage   *RecordUsage    `json:"usage"`
}

// RecordUsage is the token accounting attached to a record message.
type RecordUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

type rawContentBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Thinking  string `json:"thinking"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Input     any    `json:"input"`
	ToolUseID string `json:"tool_use_id"`
	Content   any    `json:"content"`
	IsError   bool   `json:"is_error"`
}

// Parser parses canonical-format session logs. This is the strict base
// path: a line that is not valid JSON aborts the whole parse.
type Parser struct{}

// New creates a canonical Parser.
func New() *Parser { return &Parser{} }

// Name returns the registered parser name.
func (p *Parser) Name() string { return Name }

// CanParse fingerprints the canonical schema: a probed line must carry
// uuid, sessionId, message.role, and a recognized type value.
func (p *Parser) CanParse(content string) bool {
	for _, m := range parse.Probe(content) {
		if !parse.HasField(m, "uuid", "sessionId", "message") {
			continue
		}
		msg, ok := m["message"].(map[string]any)
		if !ok || parse.StringField(msg, "role") == "" {
			continue
		}
		if _, flat := msg["content"].(string); flat {
			// Flat string content is the legacy shape; its adapter
			// claims it.
			continue
		}
		switch parse.StringField(m, "type") {
		case "user", "assistant", "meta":
			return true
		}
	}
	return false
}

// Parse decomposes every canonical record in the content. Records whose
// fields do not satisfy the schema are dropped; lines that are not valid
// JSON are fatal and reported with their line number.
func (p *Parser) Parse(content string) (*core.Session, error) {
	lines := parse.Lines(content)
	asm := parse.NewAssembler(Name)
	asm.SetLineCount(len(lines))

	provider := Name
	for _, line := range lines {
		var rec Record
		if err := json.Unmarshal([]byte(line.Text), &rec); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				// Valid JSON with an unexpected shape: record-local, skip.
				continue
			}
			return nil, &parse.SyntaxError{Line: line.Number, Err: err}
		}

		asm.ObserveSessionID(rec.SessionID)
		if rec.Provider != "" && provider == Name {
			provider = rec.Provider
		}

		asm.Add(Decompose(rec)...)
	}

	s := asm.Session()
	s.Provider = provider
	return s, nil
}

// Decompose applies the splitting algorithm to one canonical record,
// yielding zero, one, or several messages. Records missing uuid,
// timestamp, type, or message, or with an unparsable timestamp, yield
// nothing. All messages from one record share the record timestamp.
func Decompose(rec Record) []core.Message {
	if rec.UUID == "" || rec.Type == "" || rec.Message == nil {
		return nil
	}
	ts, ok := parse.Timestamp(rec.Timestamp)
	if !ok {
		return nil
	}

	blocks := decodeBlocks(rec.Message.Content)
	if len(blocks) == 0 {
		return nil
	}

	role := recordRole(rec)

	if msgs := decomposeThinkingFanOut(rec, ts, blocks); msgs != nil {
		return msgs
	}

	// Partition into text/thinking segments plus at most one tool event
	// of each kind. Legacy providers that emit several tool blocks per
	// record are pre-split by their adapters before reaching this point.
	var segments []string
	var toolUse, toolResult *core.ContentBlock
	for i := range blocks {
		b := &blocks[i]
		switch b.Type {
		case core.BlockText, core.BlockThinking:
			segments = append(segments, b.Text)
		case core.BlockToolUse:
			if toolUse == nil {
				toolUse = b
			}
		case core.BlockToolResult:
			if toolResult == nil {
				toolResult = b
			}
		}
	}

	if toolResult != nil && !validToolResult(*toolResult) {
		// A malformed tool_result invalidates the record for that
		// block; no partially populated message is emitted.
		toolResult = nil
	}

	combined := core.TrimMessageText(strings.Join(segments, "\n"))
	hasText := strings.TrimSpace(combined) != ""
	hasTool := toolUse != nil || toolResult != nil

	var out []core.Message
	usageCarrier := false

	appendMsg := func(m core.Message) {
		if !usageCarrier {
			attachUsage(&m, rec)
			usageCarrier = true
		}
		out = append(out, m)
	}

	var textID string
	if hasText {
		textID = rec.UUID
		if hasTool {
			textID = rec.UUID + "-text"
		}
		appendMsg(core.Message{
			ID:        textID,
			Timestamp: ts,
			Type:      classifyTextMessage(role, segments),
			Content:   core.TextContent(combined),
			Metadata:  baseMetadata(rec),
			ParentID:  rec.ParentUUID,
		})
	}

	if toolUse != nil {
		ensureToolID(toolUse, ts)
		m := core.Message{
			ID:        rec.UUID,
			Timestamp: ts,
			Type:      core.TypeToolUse,
			Content: core.StructuredFrom(&core.StructuredContent{
				ToolUse:  toolUse,
				ToolUses: []core.ContentBlock{*toolUse},
				Blocks:   []core.ContentBlock{*toolUse},
			}),
			Metadata: baseMetadata(rec),
			ParentID: rec.ParentUUID,
		}
		m.Metadata["toolName"] = toolUse.Name
		m.Metadata["toolId"] = toolUse.ToolUseID
		if hasText {
			m.ParentID = textID
		}
		appendMsg(m)
	}

	if toolResult != nil {
		id := rec.UUID
		if toolUse != nil {
			id = fmt.Sprintf("%s-tool-%s", rec.UUID, toolResult.ToolUseID)
		}
		m := core.Message{
			ID:        id,
			Timestamp: ts,
			Type:      core.TypeToolResult,
			Content: core.StructuredFrom(&core.StructuredContent{
				ToolResult:  toolResult,
				ToolResults: []core.ContentBlock{*toolResult},
				Blocks:      []core.ContentBlock{*toolResult},
			}),
			Metadata: baseMetadata(rec),
			ParentID: rec.ParentUUID,
			LinkedTo: toolResult.ToolUseID,
		}
		if hasText {
			m.ParentID = textID
		}
		appendMsg(m)
	}

	return out
}

// decomposeThinkingFanOut handles the multi-thought case: a record whose
// blocks are all thinking blocks, more than one of them, fans out into one
// message per thought. Empty thoughts are dropped; only the first
// surviving thought carries usage so tokens are not double-counted.
func decomposeThinkingFanOut(rec Record, ts time.Time, blocks []core.ContentBlock) []core.Message {
	if len(blocks) < 2 {
		return nil
	}
	for _, b := range blocks {
		if b.Type != core.BlockThinking {
			return nil
		}
	}

	var out []core.Message
	for i, b := range blocks {
		if strings.TrimSpace(b.Text) == "" {
			continue
		}
		m := core.Message{
			ID:        fmt.Sprintf("%s-thinking-%d", rec.UUID, i),
			Timestamp: ts,
			Type:      core.TypeAssistantResponse,
			Content:   core.TextContent(b.Text),
			Metadata:  baseMetadata(rec),
			ParentID:  rec.ParentUUID,
		}
		m.Metadata["thinking"] = true
		if len(out) == 0 {
			attachUsage(&m, rec)
		}
		out = append(out, m)
	}
	return out
}

// decodeBlocks turns the string-or-array content payload into blocks.
// Malformed individual blocks are dropped; siblings survive.
func decodeBlocks(content json.RawMessage) []core.ContentBlock {
	if len(content) == 0 {
		return nil
	}

	if content[0] == '"' {
		var text string
		if err := json.Unmarshal(content, &text); err != nil {
			return nil
		}
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []core.ContentBlock{{Type: core.BlockText, Text: text}}
	}

	var rawBlocks []json.RawMessage
	if err := json.Unmarshal(content, &rawBlocks); err != nil {
		return nil
	}

	var blocks []core.ContentBlock
	for _, r := range rawBlocks {
		if b, ok := decodeBlock(r); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func decodeBlock(raw json.RawMessage) (core.ContentBlock, bool) {
	var b rawContentBlock
	if err := json.Unmarshal(raw, &b); err != nil {
		return core.ContentBlock{}, false
	}

	switch b.Type {
	case "text":
		return core.ContentBlock{Type: core.BlockText, Text: b.Text}, true
	case "thinking":
		return core.ContentBlock{Type: core.BlockThinking, Text: b.Thinking}, true
	case "tool_use":
		return core.ContentBlock{
			Type:      core.BlockToolUse,
			ToolUseID: b.ID,
			Name:      b.Name,
			Input:     b.Input,
		}, true
	case "tool_result":
		return core.ContentBlock{
			Type:      core.BlockToolResult,
			ToolUseID: b.ToolUseID,
			Content:   FlattenToolContent(b.Content),
			IsError:   b.IsError,
		}, true
	default:
		return core.ContentBlock{}, false
	}
}

// FlattenToolContent handles tool_result content, which can be a string or
// an array of {"type":"text","text":"..."} objects.
func FlattenToolContent(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, item := range c {
			if m, ok := item.(map[string]any); ok {
				if text, ok := m["text"].(string); ok {
					parts = append(parts, text)
				}
			}
		}
		return strings.Join(parts, "\n")
	default:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
}

// validToolResult enforces the block invariant: a linkage id and defined,
// non-empty content.
func validToolResult(b core.ContentBlock) bool {
	return b.ToolUseID != "" && b.Content != ""
}

// ensureToolID synthesizes a deterministic identifier for tool_use blocks
// the provider left unidentified.
func ensureToolID(b *core.ContentBlock, ts time.Time) {
	if b.ToolUseID == "" {
		b.ToolUseID = fmt.Sprintf("tool-%d", ts.UnixMilli())
	}
}

func recordRole(rec Record) core.Role {
	switch rec.Type {
	case "user":
		return core.RoleUser
	case "assistant":
		return core.RoleAssistant
	default:
		return core.RoleMeta
	}
}

// classifyTextMessage classifies the text sibling of a record. Tool blocks
// do not influence it: they get their own messages.
func classifyTextMessage(role core.Role, segments []string) core.MessageType {
	var nonEmpty []string
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return core.Classify(core.ClassifyInput{Role: role, Segments: nonEmpty})
}

func baseMetadata(rec Record) map[string]any {
	md := map[string]any{}
	if rec.Provider != "" {
		md["provider"] = rec.Provider
	}
	if rec.Message != nil && rec.Message.Model != "" {
		md["model"] = rec.Message.Model
	}
	if rec.CWD != "" {
		md["cwd"] = rec.CWD
	}
	if rec.GitBranch != "" {
		md["gitBranch"] = rec.GitBranch
	}
	if rec.IsSidechain {
		md["isSidechain"] = true
	}
	if rec.IsMeta {
		md["isMeta"] = true
	}
	if rec.RequestID != "" {
		md["requestId"] = rec.RequestID
	}
	if rec.UserType != "" {
		md["userType"] = rec.UserType
	}
	for k, v := range rec.ProviderMetadata {
		md[k] = v
	}
	return md
}

func attachUsage(m *core.Message, rec Record) {
	if rec.Message == nil || rec.Message.Usage == nil {
		return
	}
	u := rec.Message.Usage
	if m.Metadata == nil {
		m.Metadata = map[string]any{}
	}
	m.Metadata["usage"] = &core.Usage{
		InputTokens:         u.InputTokens,
		OutputTokens:        u.OutputTokens,
		CacheReadTokens:     u.CacheReadInputTokens,
		CacheCreationTokens: u.CacheCreationInputTokens,
	}
}
