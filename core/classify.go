package core

import (
	"regexp"
	"strings"
)

// Content markers the classifier keys off. Providers do not label commands,
// interruptions, or compaction events explicitly; these are recovered from
// the text itself.
const (
	// interruptionMarker is emitted when the user cancels a running turn.
	interruptionMarker = "Request interrupted by user"

	// compactMarkerTag wraps machine-generated compaction summaries.
	compactMarkerTag = "<compact-summary>"

	// compactCommand is the context-compaction slash command. The
	// first-party alias is checked alongside it.
	compactCommand      = "/compress"
	compactCommandAlias = "/compact"

	// compactCommandMaxLen bounds how long a bare compaction command can
	// be; longer text mentioning the command is not a compaction event.
	compactCommandMaxLen = 50
)

// commandNameRE extracts the slash command name from <command-name>/foo</command-name>.
var commandNameRE = regexp.MustCompile(`<command-name>(/[^<]+)</command-name>`)

// commandArgsRE extracts arguments from <command-args>...</command-args>.
var commandArgsRE = regexp.MustCompile(`<command-args>([^<]*)</command-args>`)

// openTagRE matches an XML opening tag like <tag-name> or <tag_name attr="val">.
var openTagRE = regexp.MustCompile(`<([a-zA-Z_][a-zA-Z0-9_-]*)[^>]*>`)

// Role is the raw actor field carried by provider records.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleMeta      Role = "meta"
)

// ClassifyInput is everything the ordered rule table inspects: the raw
// role, the non-empty text segments of the record (before concatenation),
// and whether the record carries tool blocks.
type ClassifyInput struct {
	Role          Role
	Segments      []string
	HasToolUse    bool
	HasToolResult bool
}

// classifyRule is one entry in the ordered rule table. Rules are checked
// in order; the first match wins.
type classifyRule struct {
	name  string
	match func(in ClassifyInput) (MessageType, bool)
}

var classifyRules = []classifyRule{
	{"tool_result", matchToolResult},
	{"compact", matchCompact},
	{"interruption", matchInterruption},
	{"command", matchCommand},
	{"default", matchDefault},
}

// Classify runs the ordered content heuristics and returns the message type.
func Classify(in ClassifyInput) MessageType {
	for _, rule := range classifyRules {
		if t, ok := rule.match(in); ok {
			return t
		}
	}
	return TypeMeta
}

// ClassifyText classifies a single-segment record.
func ClassifyText(role Role, text string) MessageType {
	var segments []string
	if strings.TrimSpace(text) != "" {
		segments = []string{text}
	}
	return Classify(ClassifyInput{Role: role, Segments: segments})
}

func matchToolResult(in ClassifyInput) (MessageType, bool) {
	if in.HasToolResult {
		return TypeToolResult, true
	}
	return "", false
}

func matchCompact(in ClassifyInput) (MessageType, bool) {
	for _, seg := range in.Segments {
		if IsCompaction(seg) {
			return TypeCompact, true
		}
	}
	return "", false
}

// matchInterruption applies the all-or-nothing rule: the interruption
// marker must be the only substantive text present. Mixed content with
// other real text is a normal message that happens to mention the marker.
func matchInterruption(in ClassifyInput) (MessageType, bool) {
	if len(in.Segments) == 0 {
		return "", false
	}
	found := false
	for _, seg := range in.Segments {
		trimmed := strings.TrimSpace(seg)
		if trimmed == "" {
			continue
		}
		if !isInterruptionText(trimmed) {
			return "", false
		}
		found = true
	}
	if !found {
		return "", false
	}
	return TypeInterruption, true
}

// matchCommand applies the same all-or-nothing rule as interruption.
func matchCommand(in ClassifyInput) (MessageType, bool) {
	if len(in.Segments) == 0 {
		return "", false
	}
	found := false
	for _, seg := range in.Segments {
		trimmed := strings.TrimSpace(seg)
		if trimmed == "" {
			continue
		}
		if !isCommandText(trimmed) {
			return "", false
		}
		found = true
	}
	if !found {
		return "", false
	}
	return TypeCommand, true
}

func matchDefault(in ClassifyInput) (MessageType, bool) {
	switch in.Role {
	case RoleUser:
		if len(in.Segments) == 0 && !in.HasToolUse {
			// Provider housekeeping record with no message content.
			return TypeMeta, true
		}
		return TypeUserInput, true
	case RoleAssistant:
		if in.HasToolUse {
			return TypeToolUse, true
		}
		return TypeAssistantResponse, true
	default:
		return TypeMeta, true
	}
}

// IsInterruption reports whether text is solely an interruption marker.
func IsInterruption(text string) bool {
	return isInterruptionText(strings.TrimSpace(text))
}

func isInterruptionText(trimmed string) bool {
	if !strings.Contains(trimmed, interruptionMarker) {
		return false
	}
	// The marker (bracketed or not, with an optional tool-use suffix)
	// must account for the whole segment.
	stripped := strings.TrimPrefix(trimmed, "[")
	stripped = strings.TrimSuffix(stripped, "]")
	stripped = strings.TrimPrefix(stripped, interruptionMarker)
	stripped = strings.TrimSpace(stripped)
	return stripped == "" || stripped == "for tool use"
}

// IsCommand reports whether text is solely a command invocation: a leading
// slash or a <command-name> tag.
func IsCommand(text string) bool {
	return isCommandText(strings.TrimSpace(text))
}

func isCommandText(trimmed string) bool {
	if strings.HasPrefix(trimmed, "/") {
		return true
	}
	return commandNameRE.MatchString(trimmed)
}

// IsCompaction reports whether text marks a context-compaction event:
// either a compaction marker tag anywhere in the text, or a short bare
// compaction command.
func IsCompaction(text string) bool {
	if strings.Contains(text, compactMarkerTag) {
		return true
	}
	trimmed := strings.TrimSpace(text)
	if len(trimmed) >= compactCommandMaxLen {
		return false
	}
	return strings.HasPrefix(trimmed, compactCommand) ||
		strings.HasPrefix(trimmed, compactCommandAlias)
}

// CommandName extracts the slash command from text, either from a
// <command-name> tag or a leading slash word. Returns "" when none.
func CommandName(text string) string {
	if m := commandNameRE.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "/") {
		if i := strings.IndexAny(trimmed, " \t\n"); i > 0 {
			return trimmed[:i]
		}
		return trimmed
	}
	return ""
}

// CleanUserText strips system-injected XML from user text for rendering.
//
// Slash commands (containing <command-name>) are shortened to "/name args".
// All other XML block elements are removed entirely (tag + content).
func CleanUserText(s string) string {
	// Slash commands: extract /name and optional args.
	if m := commandNameRE.FindStringSubmatch(s); m != nil {
		name := m[1]
		if a := commandArgsRE.FindStringSubmatch(s); a != nil && strings.TrimSpace(a[1]) != "" {
			return name + " " + strings.TrimSpace(a[1])
		}
		return name
	}

	// Strip all <tag>…</tag> blocks by finding opening tags and their
	// matching closing tags. Go regexp doesn't support backreferences,
	// so we walk matches manually.
	for {
		loc := openTagRE.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		tagName := s[loc[2]:loc[3]]
		closeTag := "</" + tagName + ">"
		closeIdx := strings.Index(s[loc[1]:], closeTag)
		if closeIdx < 0 {
			// No matching close tag, so strip just the open tag.
			s = s[:loc[0]] + s[loc[1]:]
			continue
		}
		// Remove from open tag start through end of close tag.
		end := loc[1] + closeIdx + len(closeTag)
		s = s[:loc[0]] + s[end:]
	}

	return strings.TrimSpace(s)
}

// TrimMessageText normalizes concatenated block text: all leading newlines
// are stripped and runs of three or more trailing newlines collapse to two.
func TrimMessageText(s string) string {
	s = strings.TrimLeft(s, "\n")
	i := len(s)
	for i > 0 && s[i-1] == '\n' {
		i--
	}
	trailing := len(s) - i
	if trailing >= 3 {
		return s[:i] + "\n\n"
	}
	return s
}
