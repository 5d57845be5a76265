package parse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	content := "first\n\n  second  \n\t\nthird\n"
	lines := Lines(content)

	require.Len(t, lines, 3)
	assert.Equal(t, Line{Number: 1, Text: "first"}, lines[0])
	assert.Equal(t, Line{Number: 3, Text: "second"}, lines[1])
	assert.Equal(t, Line{Number: 5, Text: "third"}, lines[2])

	assert.Empty(t, Lines(""))
	assert.Empty(t, Lines("\n\n  \n"))
}

func TestProbe(t *testing.T) {
	t.Run("skips non-json lines", func(t *testing.T) {
		content := "garbage\n{\"a\":1}\nmore garbage\n{\"b\":2}"
		probed := Probe(content)
		require.Len(t, probed, 2)
		assert.Equal(t, float64(1), probed[0]["a"])
	})

	t.Run("inspects only the first lines", func(t *testing.T) {
		content := `{"n":1}
{"n":2}
{"n":3}
{"n":4}
{"n":5}
{"n":6}`
		assert.Len(t, Probe(content), detectLimit)
	})
}

func TestStringField(t *testing.T) {
	m := map[string]any{"a": "", "b": "value", "c": 42}

	assert.Equal(t, "value", StringField(m, "a", "b"))
	assert.Equal(t, "", StringField(m, "c"))
	assert.Equal(t, "", StringField(m, "missing"))
}

func TestHasField(t *testing.T) {
	m := map[string]any{"a": 1, "b": nil}

	assert.True(t, HasField(m, "a"))
	assert.True(t, HasField(m, "a", "b"))
	assert.False(t, HasField(m, "a", "c"))
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Time
		ok    bool
	}{
		{
			name:  "rfc3339",
			value: "2024-06-01T10:00:00Z",
			want:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "rfc3339 with millis",
			value: "2024-06-01T10:00:00.250Z",
			want:  time.Date(2024, 6, 1, 10, 0, 0, 250_000_000, time.UTC),
			ok:    true,
		},
		{
			name:  "epoch millis",
			value: float64(1717236000000),
			want:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "epoch seconds",
			value: float64(1717236000),
			want:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "json number",
			value: json.Number("1717236000000"),
			want:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{name: "garbage string", value: "yesterday"},
		{name: "zero", value: float64(0)},
		{name: "negative", value: float64(-5)},
		{name: "nil", value: nil},
		{name: "wrong type", value: []any{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Timestamp(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			}
		})
	}
}
