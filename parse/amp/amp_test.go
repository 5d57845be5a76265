package amp

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
			name:    "thread record",
			content: `{"threadID":"T-1","id":"m1","role":"user","timestamp":1717236000000,"content":[{"type":"text","text":"hi"}]}`,
			want:    true,
		},
		{
			name:    "threadID without content array",
			content: `{"threadID":"T-1","id":"m1","role":"user","timestamp":1717236000000,"content":"hi"}`,
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

func TestParseSplitsMultiToolRecord(t *testing.T) {
	content := `{"threadID":"T-1","id":"m1","role":"user","timestamp":1717236000000,"content":[{"type":"text","text":"update both files"}]}
{"threadID":"T-1","id":"m2","role":"assistant","timestamp":1717236010000,"content":[{"type":"text","text":"Editing both."},{"type":"tool_use","id":"tu_1","name":"edit_file","input":{"path":"a.go"}},{"type":"tool_use","id":"tu_2","name":"edit_file","input":{"path":"b.go"}}],"usage":{"inputTokens":300,"outputTokens":50}}`

	session, err := New().Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "T-1", session.SessionID)
	require.Len(t, session.Messages, 4)

	assert.Equal(t, core.TypeUserInput, session.Messages[0].Type)

	text := session.Messages[1]
	assert.Equal(t, "m2-text", text.ID)
	assert.Equal(t, core.TypeAssistantResponse, text.Type)

	// One message per tool part, usage on the first emitted message only.
	usage := core.UsageOf(text)
	require.NotNil(t, usage)
	assert.Equal(t, 300, usage.InputTokens)

	first := session.Messages[2]
	assert.Equal(t, "m2-tool-0", first.ID)
	assert.Equal(t, core.TypeToolUse, first.Type)
	assert.Equal(t, "tu_1", first.Metadata["toolId"])
	assert.Nil(t, core.UsageOf(first))

	second := session.Messages[3]
	assert.Equal(t, "m2-tool-1", second.ID)
	assert.Equal(t, "tu_2", second.Metadata["toolId"])
}

func TestParseToolResults(t *testing.T) {
	content := `{"threadID":"T-1","id":"m3","role":"user","timestamp":1717236020000,"content":[{"type":"tool_result","toolUseID":"tu_1","output":"wrote a.go"},{"type":"tool_result","toolUseID":"tu_2","output":[{"type":"text","text":"wrote"},{"type":"text","text":"b.go"}]}]}`

	session, err := New().Parse(content)
	require.NoError(t, err)
	require.Len(t, session.Messages, 2)

	first := session.Messages[0]
	assert.Equal(t, "m3-result-tu_1", first.ID)
	assert.Equal(t, core.TypeToolResult, first.Type)
	assert.Equal(t, "tu_1", first.LinkedTo)
	assert.Equal(t, "wrote a.go", first.Content.Structured.ToolResult.Content)

	second := session.Messages[1]
	assert.Equal(t, "wrote\nb.go", second.Content.Structured.ToolResult.Content)
}

func TestParseDropsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing id",
			content: `{"threadID":"T-1","role":"user","timestamp":1717236000000,"content":[{"type":"text","text":"hi"}]}`,
		},
		{
			name:    "missing timestamp",
			content: `{"threadID":"T-1","id":"m1","role":"user","content":[{"type":"text","text":"hi"}]}`,
		},
		{
			name:    "result without linkage id",
			content: `{"threadID":"T-1","id":"m1","role":"user","timestamp":1717236000000,"content":[{"type":"tool_result","output":"data"}]}`,
		},
		{
			name:    "whitespace text only",
			content: `{"threadID":"T-1","id":"m1","role":"assistant","timestamp":1717236000000,"content":[{"type":"text","text":"  \n "}]}`,
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

func TestFlattenOutput(t *testing.T) {
	assert.Equal(t, "plain", flattenOutput([]byte(`"plain"`)))
	assert.Equal(t, "a\nb", flattenOutput([]byte(`[{"type":"text","text":"a"},{"type":"text","text":"b"}]`)))
	assert.Equal(t, "", flattenOutput(nil))
	assert.Equal(t, "", flattenOutput([]byte(`42`)))
}
