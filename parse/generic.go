package parse

import (
	"encoding/json"
	"strconv"

	"github.com/veedhi/agentwire/core"
)

// Generic is the best-effort fallback parser used when a caller names a
// provider that has no registered parser. It synthesizes minimal messages
// from whatever id/timestamp/type/role fields each line happens to carry.
type Generic struct {
	provider string
}

// NewGeneric creates a fallback parser reporting the given provider name.
func NewGeneric(provider string) *Generic {
	if provider == "" {
		provider = "generic"
	}
	return &Generic{provider: provider}
}

// Name returns the provider name the parser was created with.
func (g *Generic) Name() string { return g.provider }

// CanParse always declines: the generic parser is never chosen by
// auto-detection, only by explicit fallback.
func (g *Generic) CanParse(string) bool { return false }

// Parse scans every line, keeping records that parse as JSON objects and
// carry a usable timestamp. Everything else degrades silently.
func (g *Generic) Parse(content string) (*core.Session, error) {
	lines := Lines(content)
	asm := NewAssembler(g.provider)
	asm.SetLineCount(len(lines))

	for _, line := range lines {
		var raw map[string]any
		if err := json.Unmarshal([]byte(line.Text), &raw); err != nil {
			continue
		}

		asm.ObserveSessionID(StringField(raw, "sessionId", "sessionID"))

		ts, ok := Timestamp(firstValue(raw, "timestamp", "ts", "time", "created_at"))
		if !ok {
			continue
		}

		role := core.Role(StringField(raw, "role", "type"))
		text := StringField(raw, "text", "message", "content")

		id := StringField(raw, "id", "uuid", "messageId", "messageID")
		if id == "" {
			id = "line-" + strconv.Itoa(line.Number)
		}

		msg := core.Message{
			ID:        id,
			Timestamp: ts,
			Type:      core.ClassifyText(role, text),
			Content:   core.TextContent(text),
			Metadata:  map[string]any{"provider": g.provider},
		}
		asm.Add(msg)
	}

	return asm.Session(), nil
}

func firstValue(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}
