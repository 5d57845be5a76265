package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   ClassifyInput
		want MessageType
	}{
		{
			name: "tool result wins over everything",
			in: ClassifyInput{
				Role:          RoleUser,
				Segments:      []string{"[Request interrupted by user]"},
				HasToolResult: true,
			},
			want: TypeToolResult,
		},
		{
			name: "compact marker tag",
			in: ClassifyInput{
				Role:     RoleUser,
				Segments: []string{"<compact-summary>The session so far covered...</compact-summary>"},
			},
			want: TypeCompact,
		},
		{
			name: "bare compress command",
			in:   ClassifyInput{Role: RoleUser, Segments: []string{"/compress"}},
			want: TypeCompact,
		},
		{
			name: "compact alias",
			in:   ClassifyInput{Role: RoleUser, Segments: []string{"/compact"}},
			want: TypeCompact,
		},
		{
			name: "long text mentioning compress is not compact",
			in: ClassifyInput{
				Role:     RoleUser,
				Segments: []string{"/compress" + strings.Repeat(" with a very long tail", 5)},
			},
			want: TypeCommand,
		},
		{
			name: "bracketed interruption alone",
			in:   ClassifyInput{Role: RoleUser, Segments: []string{"[Request interrupted by user]"}},
			want: TypeInterruption,
		},
		{
			name: "unbracketed interruption alone",
			in:   ClassifyInput{Role: RoleUser, Segments: []string{"Request interrupted by user"}},
			want: TypeInterruption,
		},
		{
			name: "tool use interruption variant",
			in:   ClassifyInput{Role: RoleUser, Segments: []string{"[Request interrupted by user for tool use]"}},
			want: TypeInterruption,
		},
		{
			name: "interruption mixed with real text is not an interruption",
			in: ClassifyInput{
				Role:     RoleUser,
				Segments: []string{"[Request interrupted by user]", "extra real text"},
			},
			want: TypeUserInput,
		},
		{
			name: "slash command alone",
			in:   ClassifyInput{Role: RoleUser, Segments: []string{"/review src/main.go"}},
			want: TypeCommand,
		},
		{
			name: "command-name tag alone",
			in: ClassifyInput{
				Role:     RoleUser,
				Segments: []string{"<command-name>/git:commit</command-name>\n<command-args>all</command-args>"},
			},
			want: TypeCommand,
		},
		{
			name: "command mixed with prose is user input",
			in: ClassifyInput{
				Role:     RoleUser,
				Segments: []string{"/review src/main.go", "and please be thorough"},
			},
			want: TypeUserInput,
		},
		{
			name: "plain user text",
			in:   ClassifyInput{Role: RoleUser, Segments: []string{"fix the login bug"}},
			want: TypeUserInput,
		},
		{
			name: "assistant text",
			in:   ClassifyInput{Role: RoleAssistant, Segments: []string{"Here is the fix."}},
			want: TypeAssistantResponse,
		},
		{
			name: "assistant with tool use",
			in: ClassifyInput{
				Role:       RoleAssistant,
				Segments:   []string{"Let me check."},
				HasToolUse: true,
			},
			want: TypeToolUse,
		},
		{
			name: "user record with no content is meta",
			in:   ClassifyInput{Role: RoleUser},
			want: TypeMeta,
		},
		{
			name: "unknown role is meta",
			in:   ClassifyInput{Role: Role("system"), Segments: []string{"housekeeping"}},
			want: TypeMeta,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestClassifyText(t *testing.T) {
	assert.Equal(t, TypeUserInput, ClassifyText(RoleUser, "hello"))
	assert.Equal(t, TypeInterruption, ClassifyText(RoleUser, "[Request interrupted by user]"))
	assert.Equal(t, TypeMeta, ClassifyText(RoleUser, "   "))
}

func TestIsCompaction(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"marker tag anywhere", "before <compact-summary>sum</compact-summary> after", true},
		{"short compress command with args", "/compress now", true},
		{"unrelated slash command", "/help", false},
		{"compress buried mid-text", "please run /compress for me", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCompaction(tt.in))
		})
	}
}

func TestCommandName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tagged command", "<command-name>/git:commit</command-name>", "/git:commit"},
		{"slash with args", "/review src/main.go", "/review"},
		{"bare slash command", "/help", "/help"},
		{"plain text", "no command here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommandName(tt.in))
		})
	}
}

func TestCleanUserText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "slash command with args",
			in:   "<command-message>git:commit</command-message>\n<command-name>/git:commit</command-name>\n<command-args>everything</command-args>",
			want: "/git:commit everything",
		},
		{
			name: "slash command without args",
			in:   "<command-message>commit</command-message>\n<command-name>/commit</command-name>\n<command-args></command-args>",
			want: "/commit",
		},
		{
			name: "system-reminder stripped",
			in:   "<system-reminder>\nSome system reminder text\n</system-reminder>",
			want: "",
		},
		{
			name: "mixed tag and text",
			in:   "<ide_opened_file>opened file</ide_opened_file>\nActual user prompt here",
			want: "Actual user prompt here",
		},
		{
			name: "plain text unchanged",
			in:   "Fix the bug in the login handler",
			want: "Fix the bug in the login handler",
		},
		{
			name: "empty string",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanUserText(tt.in))
		})
	}
}

func TestTrimMessageText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading newlines stripped", "\n\n\nhello", "hello"},
		{"three trailing newlines collapse to two", "hello\n\n\n", "hello\n\n"},
		{"many trailing newlines collapse to two", "hello\n\n\n\n\n", "hello\n\n"},
		{"two trailing newlines kept", "hello\n\n", "hello\n\n"},
		{"one trailing newline kept", "hello\n", "hello\n"},
		{"interior newlines untouched", "a\n\n\n\nb", "a\n\n\n\nb"},
		{"empty", "", ""},
		{"only newlines", "\n\n\n\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimMessageText(tt.in))
		})
	}
}
