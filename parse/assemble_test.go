package parse

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veedhi/agentwire/core"
)

func TestAssemblerSortsByTimestamp(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	a := NewAssembler("test")
	a.ObserveSessionID("s1")
	a.Add(
		core.Message{ID: "late", Timestamp: base.Add(5 * time.Minute)},
		core.Message{ID: "early", Timestamp: base},
		core.Message{ID: "mid", Timestamp: base.Add(time.Minute)},
	)

	s := a.Session()
	require.Len(t, s.Messages, 3)
	assert.Equal(t, "early", s.Messages[0].ID)
	assert.Equal(t, "mid", s.Messages[1].ID)
	assert.Equal(t, "late", s.Messages[2].ID)

	assert.Equal(t, base, s.StartTime)
	assert.Equal(t, base.Add(5*time.Minute), s.EndTime)
	assert.Equal(t, int64(300000), s.Duration)
	assert.Equal(t, 3, s.Metadata.MessageCount)
}

func TestAssemblerStableForSameTimestamp(t *testing.T) {
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	a := NewAssembler("test")
	a.Add(
		core.Message{ID: "u1-text", Timestamp: ts},
		core.Message{ID: "u1", Timestamp: ts},
		core.Message{ID: "u1-tool-t1", Timestamp: ts},
	)

	s := a.Session()
	require.Len(t, s.Messages, 3)
	assert.Equal(t, "u1-text", s.Messages[0].ID)
	assert.Equal(t, "u1", s.Messages[1].ID)
	assert.Equal(t, "u1-tool-t1", s.Messages[2].ID)
}

func TestAssemblerFirstSessionIDWins(t *testing.T) {
	a := NewAssembler("test")
	a.ObserveSessionID("")
	a.ObserveSessionID("s1")
	a.ObserveSessionID("s2")

	assert.Equal(t, "s1", a.Session().SessionID)
}

func TestAssemblerSynthesizesSessionID(t *testing.T) {
	s := NewAssembler("test").Session()
	assert.Regexp(t, regexp.MustCompile(`^session_\d+$`), s.SessionID)
}

func TestAssemblerEmptySession(t *testing.T) {
	a := NewAssembler("test")
	a.SetLineCount(4)

	s := a.Session()
	assert.NotNil(t, s.Messages)
	assert.Empty(t, s.Messages)
	assert.Zero(t, s.Duration)
	assert.True(t, s.StartTime.IsZero())
	assert.Equal(t, 4, s.Metadata.LineCount)
	assert.Equal(t, "test", s.Provider)
}

func TestGenericParse(t *testing.T) {
	content := `{"sessionId":"s1","id":"m1","timestamp":"2024-06-01T10:00:00Z","role":"user","text":"hello"}
not json
{"ts":1717236060,"role":"assistant","message":"hi there"}
{"role":"assistant","text":"no timestamp, dropped"}`

	g := NewGeneric("custom")
	session, err := g.Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "s1", session.SessionID)
	assert.Equal(t, "custom", session.Provider)
	require.Len(t, session.Messages, 2)

	first := session.Messages[0]
	assert.Equal(t, "m1", first.ID)
	assert.Equal(t, core.TypeUserInput, first.Type)
	assert.Equal(t, "hello", first.Content.String())

	second := session.Messages[1]
	assert.Equal(t, "line-3", second.ID)
	assert.Equal(t, core.TypeAssistantResponse, second.Type)

	assert.Equal(t, 4, session.Metadata.LineCount)
}

func TestGenericDefaults(t *testing.T) {
	g := NewGeneric("")
	assert.Equal(t, "generic", g.Name())
	assert.False(t, g.CanParse(`{"anything":true}`))
}
