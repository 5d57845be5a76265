package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veedhi/agentwire/core"
)

func TestCanParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{
			name:    "enriched record",
			content: `{"sessionId":"s1","messageId":2,"type":"gemini","message":"done","timestamp":"2024-06-01T10:00:00Z","gemini_raw":"done"}`,
			want:    true,
		},
		{
			name:    "plain user record",
			content: `{"sessionId":"s1","messageId":1,"type":"user","message":"hello","timestamp":"2024-06-01T10:00:00Z"}`,
			want:    true,
		},
		{
			name:    "wrong type value",
			content: `{"sessionId":"s1","messageId":1,"type":"system","message":"boot","timestamp":"2024-06-01T10:00:00Z"}`,
			want:    false,
		},
		{
			name:    "canonical record",
			content: `{"uuid":"u1","sessionId":"s1","type":"user","message":{"role":"user","content":"hi"}}`,
			want:    false,
		},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanParse(tt.content))
		})
	}
}

func TestParseConversation(t *testing.T) {
	content := `{"sessionId":"s1","messageId":1,"type":"user","message":"what is in this repo?","timestamp":"2024-06-01T10:00:00Z"}
{"sessionId":"s1","messageId":2,"type":"gemini","message":"A Go module.","timestamp":"2024-06-01T10:00:10Z","gemini_raw":"A Go module.","gemini_thoughts":[{"subject":"Scanning","description":"Reading the directory tree first."}],"tokens":{"input":500,"output":40,"cached":100}}`

	session, err := New().Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "s1", session.SessionID)
	assert.Equal(t, Name, session.Provider)
	require.Len(t, session.Messages, 3)

	user := session.Messages[0]
	assert.Equal(t, "1", user.ID)
	assert.Equal(t, core.TypeUserInput, user.Type)

	thought := session.Messages[1]
	assert.Equal(t, "2-thinking-0", thought.ID)
	assert.Equal(t, core.TypeAssistantResponse, thought.Type)
	assert.Equal(t, true, thought.Metadata["thinking"])
	assert.Equal(t, "Scanning\nReading the directory tree first.", thought.Content.String())

	// Usage rides on the first emitted message of the record.
	usage := core.UsageOf(thought)
	require.NotNil(t, usage)
	assert.Equal(t, 500, usage.InputTokens)
	assert.Equal(t, 100, usage.CacheReadTokens)
	assert.Nil(t, core.UsageOf(session.Messages[2]))

	text := session.Messages[2]
	assert.Equal(t, "2", text.ID)
	assert.Equal(t, "A Go module.", text.Content.String())
}

func TestParseToolCalls(t *testing.T) {
	content := `{"sessionId":"s1","messageId":3,"type":"gemini","message":"","timestamp":"2024-06-01T10:00:20Z","gemini_raw":"","toolCalls":[{"callId":"c1","name":"read_file","args":{"path":"main.go"}},{"callId":"c2","name":"read_file","args":{"path":"go.mod"}}],"toolResponses":[{"callId":"c1","output":"package main"}]}`

	session, err := New().Parse(content)
	require.NoError(t, err)
	require.Len(t, session.Messages, 3)

	first := session.Messages[0]
	assert.Equal(t, "3-tool-c1", first.ID)
	assert.Equal(t, core.TypeToolUse, first.Type)
	assert.Equal(t, "read_file", first.Metadata["toolName"])

	second := session.Messages[1]
	assert.Equal(t, "3-tool-c2", second.ID)
	assert.Equal(t, core.TypeToolUse, second.Type)

	result := session.Messages[2]
	assert.Equal(t, "3-result-c1", result.ID)
	assert.Equal(t, core.TypeToolResult, result.Type)
	assert.Equal(t, "c1", result.LinkedTo)
	require.True(t, result.Content.IsStructured())
	assert.Equal(t, "package main", result.Content.Structured.ToolResult.Content)
}

func TestParseDropsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "empty user message",
			content: `{"sessionId":"s1","messageId":1,"type":"user","message":"   ","timestamp":"2024-06-01T10:00:00Z"}`,
		},
		{
			name:    "bad timestamp",
			content: `{"sessionId":"s1","messageId":1,"type":"user","message":"hi","timestamp":"noon"}`,
		},
		{
			name:    "missing message id",
			content: `{"sessionId":"s1","type":"user","message":"hi","timestamp":"2024-06-01T10:00:00Z"}`,
		},
		{
			name:    "tool response without output",
			content: `{"sessionId":"s1","messageId":2,"type":"gemini","timestamp":"2024-06-01T10:00:00Z","toolResponses":[{"callId":"c1"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := New().Parse(tt.content)
			require.NoError(t, err)
			assert.Empty(t, session.Messages)
		})
	}
}

func TestThoughtText(t *testing.T) {
	assert.Equal(t, "A\nB", thoughtText(rawThought{Subject: "A", Description: "B"}))
	assert.Equal(t, "A", thoughtText(rawThought{Subject: "A"}))
	assert.Equal(t, "B", thoughtText(rawThought{Description: "B"}))
	assert.Equal(t, "", thoughtText(rawThought{}))
}
