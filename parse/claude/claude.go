// Package claude parses first-party assistant session logs. The format is
// an ancestor of the canonical schema: the same envelope fields, but with
// flat string content on older records, summary records, and a
// toolUseResult side-channel on tool-result lines.
package claude

import (
	"encoding/json"

	"github.com/veedhi/agentwire/core"
	"github.com/veedhi/agentwire/parse"
	"github.com/veedhi/agentwire/parse/canonical"
)

// Name is the registered parser name.
const Name = "claude"

// rawEntry mirrors the JSONL structure on the wire.
type rawEntry struct {
	Type             string                   `json:"type"`
	UUID             string                   `json:"uuid"`
	ParentUUID       string                   `json:"parentUuid"`
	SessionID        string                   `json:"sessionId"`
	Timestamp        string                   `json:"timestamp"`
	CWD              string                   `json:"cwd"`
	GitBranch        string                   `json:"gitBranch"`
	IsSidechain      bool                     `json:"isSidechain"`
	IsMeta           bool                     `json:"isMeta"`
	IsCompactSummary bool                     `json:"isCompactSummary"`
	UserType         string                   `json:"userType"`
	RequestID        string                   `json:"requestId"`
	Message          *canonical.RecordMessage `json:"message"`

	// Summary records carry no message at all.
	Summary  string `json:"summary"`
	LeafUUID string `json:"leafUuid"`

	// Tool-result lines duplicate the result object outside the message.
	ToolUseResult json.RawMessage `json:"toolUseResult"`
}

// Parser parses first-party assistant logs.
type Parser struct{}

// New creates a Parser.
func New() *Parser { return &Parser{} }

// Name returns the registered parser name.
func (p *Parser) Name() string { return Name }

// CanParse fingerprints the legacy shape: a uuid-bearing record that the
// canonical detector would reject: a summary record, a toolUseResult
// side-channel, or flat string message content.
func (p *Parser) CanParse(content string) bool {
	for _, m := range parse.Probe(content) {
		if parse.StringField(m, "type") == "summary" && parse.HasField(m, "summary") {
			return true
		}
		if !parse.HasField(m, "uuid") {
			continue
		}
		if parse.HasField(m, "toolUseResult") {
			return true
		}
		if msg, ok := m["message"].(map[string]any); ok {
			if _, flat := msg["content"].(string); flat {
				return true
			}
		}
	}
	return false
}

// Parse transforms the log line by line. Lines that fail to unmarshal are
// provider noise and are skipped; this adapter is tolerant, unlike the
// strict canonical path.
func (p *Parser) Parse(content string) (*core.Session, error) {
	lines := parse.Lines(content)
	asm := parse.NewAssembler(Name)
	asm.SetLineCount(len(lines))

	for _, line := range lines {
		var entry rawEntry
		if err := json.Unmarshal([]byte(line.Text), &entry); err != nil {
			continue
		}
		asm.ObserveSessionID(entry.SessionID)
		asm.Add(transform(entry)...)
	}

	return asm.Session(), nil
}

// transform maps one legacy record to canonical messages by rebuilding it
// as a canonical record and running the shared decomposition.
func transform(entry rawEntry) []core.Message {
	if entry.Type == "summary" {
		// Summary records are session-level bookkeeping with no
		// timestamp; they do not enter the message stream.
		return nil
	}

	rec := canonical.Record{
		UUID:        entry.UUID,
		Timestamp:   entry.Timestamp,
		Type:        entry.Type,
		SessionID:   entry.SessionID,
		Provider:    Name,
		ParentUUID:  entry.ParentUUID,
		IsMeta:      entry.IsMeta,
		IsSidechain: entry.IsSidechain,
		UserType:    entry.UserType,
		RequestID:   entry.RequestID,
		CWD:         entry.CWD,
		GitBranch:   entry.GitBranch,
		Message:     entry.Message,
	}

	msgs := canonical.Decompose(rec)

	for i := range msgs {
		if entry.IsCompactSummary && msgs[i].Type != core.TypeToolUse && msgs[i].Type != core.TypeToolResult {
			// The provider labels compaction summaries explicitly;
			// trust the label over the content heuristics.
			msgs[i].Type = core.TypeCompact
		}
		if len(entry.ToolUseResult) > 0 && msgs[i].Type == core.TypeToolResult {
			var detail any
			if err := json.Unmarshal(entry.ToolUseResult, &detail); err == nil {
				msgs[i].Metadata["toolUseResult"] = detail
			}
		}
	}

	return msgs
}
