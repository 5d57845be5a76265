package terminal

import (
	"fmt"
	"strings"

	"github.com/veedhi/agentwire/core"
)

// summarizeToolUse produces a compact one-liner like "[bash: git status]".
func summarizeToolUse(block core.ContentBlock) string {
	name := strings.ToLower(block.Name)
	summary := extractToolSummary(name, block.Input)
	if summary == "" {
		return fmt.Sprintf("[%s]", name)
	}
	return fmt.Sprintf("[%s: %s]", name, summary)
}

// extractToolSummary extracts the most relevant field from the tool input.
func extractToolSummary(name string, input any) string {
	m, ok := input.(map[string]any)
	if !ok || m == nil {
		return ""
	}

	switch name {
	case "bash", "shell", "run_shell_command":
		return stringField(m, "command")
	case "read", "read_file":
		return stringField(m, "file_path", "path")
	case "write", "write_file":
		return stringField(m, "file_path", "path")
	case "edit", "edit_file":
		return stringField(m, "file_path", "path")
	case "glob":
		return stringField(m, "pattern")
	case "grep", "search":
		return stringField(m, "pattern", "query")
	default:
		return stringField(m, "command", "file_path", "path", "pattern", "query", "url")
	}
}

// stringField returns the first non-empty string value among the keys.
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
