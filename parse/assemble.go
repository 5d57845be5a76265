package parse

import (
	"fmt"
	"sort"
	"time"

	"github.com/veedhi/agentwire/core"
)

// Assembler accumulates canonical messages across a parse pass and builds
// the final session: running min/max timestamps, a stable timestamp sort
// that preserves within-record emission order, and a synthesized session
// id when the log never exposed one.
type Assembler struct {
	provider  string
	sessionID string
	lineCount int
	messages  []core.Message
	start     time.Time
	end       time.Time
}

// NewAssembler creates an assembler for one parse pass.
func NewAssembler(provider string) *Assembler {
	return &Assembler{provider: provider}
}

// SetLineCount records how many non-empty lines the input had.
func (a *Assembler) SetLineCount(n int) { a.lineCount = n }

// ObserveSessionID records a session id from a log record. The first
// recognizable id wins; later records cannot change it.
func (a *Assembler) ObserveSessionID(id string) {
	if a.sessionID == "" && id != "" {
		a.sessionID = id
	}
}

// Add appends messages and updates the running start/end timestamps.
func (a *Assembler) Add(msgs ...core.Message) {
	for _, m := range msgs {
		if a.start.IsZero() || m.Timestamp.Before(a.start) {
			a.start = m.Timestamp
		}
		if a.end.IsZero() || m.Timestamp.After(a.end) {
			a.end = m.Timestamp
		}
		a.messages = append(a.messages, m)
	}
}

// Session finalizes the pass. Messages are sorted ascending by timestamp;
// the sort is stable so same-timestamp siblings keep their emission order.
func (a *Assembler) Session() *core.Session {
	msgs := a.messages
	if msgs == nil {
		msgs = []core.Message{}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})

	sessionID := a.sessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%d", time.Now().UnixMilli())
	}

	var duration int64
	if !a.start.IsZero() && !a.end.IsZero() {
		duration = a.end.Sub(a.start).Milliseconds()
	}

	return &core.Session{
		SessionID: sessionID,
		Provider:  a.provider,
		Messages:  msgs,
		StartTime: a.start,
		EndTime:   a.end,
		Duration:  duration,
		Metadata: core.SessionMetadata{
			MessageCount: len(msgs),
			LineCount:    a.lineCount,
		},
	}
}
