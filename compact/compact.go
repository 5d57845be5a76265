// Package compact provides a Transformer that replaces verbose tool content
// with short summaries for compact session viewing.
package compact

import (
	"fmt"
	"strings"

	"github.com/veedhi/agentwire/core"
)

// Config controls the compact transformer behavior.
type Config struct {
	StripThinking bool
}

// Compactor replaces verbose tool content with line-count summaries.
type Compactor struct {
	stripThinking bool
}

// New creates a Compactor from the given config.
func New(cfg Config) *Compactor {
	return &Compactor{stripThinking: cfg.StripThinking}
}

// Transform implements core.Transformer. Thinking messages are dropped
// entirely when StripThinking is set; tool messages get their payloads
// summarized in place.
func (c *Compactor) Transform(s *core.Session) error {
	if c.stripThinking {
		s.Messages = filterThinking(s.Messages)
		s.Metadata.MessageCount = len(s.Messages)
	}
	for i := range s.Messages {
		c.compactMessage(&s.Messages[i])
	}
	return nil
}

func filterThinking(messages []core.Message) []core.Message {
	out := make([]core.Message, 0, len(messages))
	for _, m := range messages {
		if thinking, ok := m.Metadata["thinking"].(bool); ok && thinking {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (c *Compactor) compactMessage(m *core.Message) {
	if !m.Content.IsStructured() {
		return
	}
	sc := m.Content.Structured
	if sc.ToolUse != nil {
		c.compactToolUse(sc.ToolUse)
	}
	if sc.ToolResult != nil {
		c.compactToolResult(sc.ToolResult)
	}
	for i := range sc.ToolUses {
		c.compactToolUse(&sc.ToolUses[i])
	}
	for i := range sc.ToolResults {
		c.compactToolResult(&sc.ToolResults[i])
	}
	for i := range sc.Blocks {
		switch sc.Blocks[i].Type {
		case core.BlockToolUse:
			c.compactToolUse(&sc.Blocks[i])
		case core.BlockToolResult:
			c.compactToolResult(&sc.Blocks[i])
		}
	}
}

func (c *Compactor) compactToolResult(b *core.ContentBlock) {
	label := "output"
	if b.IsError {
		label = "error"
	}
	b.Content = lineSummary(label, b.Content)
}

// compactToolUse replaces bulky string fields of known tools with
// line-count summaries. The input map is copied, not mutated: block
// projections may share one underlying map.
func (c *Compactor) compactToolUse(b *core.ContentBlock) {
	m, ok := b.Input.(map[string]any)
	if !ok || m == nil {
		return
	}

	var fields []string
	switch strings.ToLower(b.Name) {
	case "write", "write_file":
		fields = []string{"content"}
	case "edit", "edit_file":
		fields = []string{"old_string", "new_string"}
	default:
		return
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, key := range fields {
		summarizeMapField(out, key)
	}
	b.Input = out
}

// lineSummary returns a summary like "[output: 245 lines]" or "[error: 12 lines]".
func lineSummary(label, s string) string {
	n := countLines(s)
	if n == 1 {
		return fmt.Sprintf("[%s: 1 line]", label)
	}
	return fmt.Sprintf("[%s: %d lines]", label, n)
}

// summarizeMapField replaces a string field in a map with a line-count summary.
func summarizeMapField(m map[string]any, key string) {
	v, ok := m[key]
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		return
	}
	m[key] = lineSummary(key, s)
}

// countLines returns the number of lines in s.
// An empty string has 0 lines. A string with no newline has 1 line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n") + 1
	if strings.HasSuffix(s, "\n") {
		n--
	}
	return n
}
