package parse

import (
	"encoding/json"
	"strings"
	"time"
)

// detectLimit is how many non-empty lines format detection may inspect.
const detectLimit = 5

// Line is one trimmed, non-empty line of the input, with its 1-based
// position in the original content.
type Line struct {
	Number int
	Text   string
}

// Lines splits content into trimmed, non-empty lines. Blank lines and
// trailing whitespace are tolerated; line numbers refer to the original
// content so error messages stay accurate.
func Lines(content string) []Line {
	raw := strings.Split(content, "\n")
	lines := make([]Line, 0, len(raw))
	for i, l := range raw {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			continue
		}
		lines = append(lines, Line{Number: i + 1, Text: trimmed})
	}
	return lines
}

// Probe parses up to the first detectLimit non-empty lines as JSON objects
// for structural fingerprinting. Lines that are not JSON objects are
// skipped, not counted as failures.
func Probe(content string) []map[string]any {
	var out []map[string]any
	for i, line := range Lines(content) {
		if i >= detectLimit {
			break
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line.Text), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

// StringField returns the first non-empty string value among the given
// keys of a raw JSON object.
func StringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// HasField reports whether all given keys are present in the object.
func HasField(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

// Timestamp parses a provider timestamp: RFC 3339 strings (with or
// without sub-second precision) or epoch milliseconds/seconds as a JSON
// number. The zero time and false are returned when the value does not
// parse to a valid instant.
func Timestamp(v any) (time.Time, bool) {
	switch ts := v.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			return t, true
		}
		return time.Time{}, false
	case float64:
		if ts <= 0 {
			return time.Time{}, false
		}
		// Values past the year ~2001 in milliseconds are unambiguous.
		if ts >= 1e12 {
			return time.UnixMilli(int64(ts)).UTC(), true
		}
		return time.Unix(int64(ts), 0).UTC(), true
	case json.Number:
		f, err := ts.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return Timestamp(f)
	default:
		return time.Time{}, false
	}
}
