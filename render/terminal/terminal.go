// Package terminal renders sessions as ANSI-colored message cards.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"github.com/veedhi/agentwire/core"
)

const defaultWidth = 100

// Renderer pretty-prints a session as message cards to the terminal.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int
}

// New creates a terminal Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the session as ANSI-colored message cards to w.
func (r *Renderer) Render(w io.Writer, s *core.Session) error {
	width := r.termWidth()

	writeHeader(w, s)

	var prevTimestamp time.Time
	for i := range s.Messages {
		msg := &s.Messages[i]

		var gap string
		if !msg.Timestamp.IsZero() && !prevTimestamp.IsZero() {
			gap = formatDuration(msg.Timestamp.Sub(prevTimestamp))
		}
		if !msg.Timestamp.IsZero() {
			prevTimestamp = msg.Timestamp
		}

		writeMessage(w, msg, gap, width)
	}

	fmt.Fprintln(w)
	return nil
}

func (r *Renderer) termWidth() int {
	if r.Width > 0 {
		return r.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// writeHeader renders the session metadata block.
func writeHeader(w io.Writer, s *core.Session) {
	fmt.Fprintln(w, styleTitle.Render("Session "+s.SessionID))

	var parts []string
	if s.Provider != "" {
		parts = append(parts, "@"+s.Provider)
	}
	if !s.StartTime.IsZero() {
		parts = append(parts, formatTime(s.StartTime))
	}
	if s.Duration > 0 {
		parts = append(parts, formatDuration(time.Duration(s.Duration)*time.Millisecond))
	}
	parts = append(parts, fmt.Sprintf("%d messages", s.Metadata.MessageCount))
	fmt.Fprintln(w, styleMeta.Render(strings.Join(parts, "  ")))

	if usage := s.AggregateUsage(); usage != nil {
		fmt.Fprintln(w)
		writeUsage(w, usage)
	}
}

// writeUsage renders token counters in two rows: values then labels.
func writeUsage(w io.Writer, u *core.Usage) {
	type stat struct {
		value int
		label string
	}
	stats := []stat{
		{u.InputTokens, "INPUT"},
		{u.OutputTokens, "OUTPUT"},
	}
	if u.CacheReadTokens > 0 {
		stats = append(stats, stat{u.CacheReadTokens, "CACHE READ"})
	}
	if u.CacheCreationTokens > 0 {
		stats = append(stats, stat{u.CacheCreationTokens, "CACHE WRITE"})
	}

	var values, labels []string
	for _, s := range stats {
		formatted := formatNumber(s.value)
		colWidth := max(len(formatted), len(s.label))
		values = append(values, fmt.Sprintf("%*s", colWidth, formatted))
		labels = append(labels, fmt.Sprintf("%-*s", colWidth, s.label))
	}

	fmt.Fprintln(w, "  "+styleStat.Render(strings.Join(values, "    ")))
	fmt.Fprintln(w, "  "+styleStatLabel.Render(strings.Join(labels, "    ")))
}

func writeSeparator(w io.Writer, width int) {
	n := min(width, 72)
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleSeparator.Render(strings.Repeat("─", n)))
}

// writeMessage renders a single message card: type badge, metadata, body.
func writeMessage(w io.Writer, msg *core.Message, gap string, width int) {
	contentWidth := width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	lines := messageLines(msg, contentWidth)
	if len(lines) == 0 {
		return
	}

	writeSeparator(w, width)

	header := typeBadge(msg.Type)
	var metaParts []string
	if !msg.Timestamp.IsZero() {
		metaParts = append(metaParts, formatTime(msg.Timestamp))
	}
	if gap != "" {
		metaParts = append(metaParts, "+"+gap)
	}
	if len(metaParts) > 0 {
		header += "    " + styleMeta.Render(strings.Join(metaParts, "    "))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, " "+header)

	for _, line := range lines {
		fmt.Fprintln(w, "  "+line)
	}
}

// messageLines builds the body lines for one message card.
func messageLines(msg *core.Message, contentWidth int) []string {
	if thinking, ok := msg.Metadata["thinking"].(bool); ok && thinking {
		return []string{styleThinking.Render("▸ " + truncate(msg.Content.String(), contentWidth-2))}
	}

	if !msg.Content.IsStructured() {
		text := strings.TrimSpace(msg.Content.Text)
		if text == "" {
			return nil
		}
		return []string{truncate(text, contentWidth)}
	}

	sc := msg.Content.Structured
	var lines []string
	for _, b := range sc.Blocks {
		switch b.Type {
		case core.BlockText:
			if text := strings.TrimSpace(b.Text); text != "" {
				lines = append(lines, truncate(text, contentWidth))
			}
		case core.BlockThinking:
			lines = append(lines, styleThinking.Render("▸ Thinking..."))
		case core.BlockToolUse:
			lines = append(lines, toolUseLine(b, contentWidth))
		case core.BlockToolResult:
			style := styleToolDetail
			if b.IsError {
				style = styleToolError
			}
			lines = append(lines, style.Render(truncate(b.Content, contentWidth)))
		}
	}
	return lines
}

func toolUseLine(b core.ContentBlock, contentWidth int) string {
	name := b.Name
	if name == "" {
		name = "tool"
	}
	line := styleToolName.Render("⚙ " + name)
	if summary := extractToolSummary(strings.ToLower(name), b.Input); summary != "" {
		nameWidth := lipgloss.Width("⚙ " + name + "  ")
		line += "  " + styleToolDetail.Render(truncate(summary, contentWidth-nameWidth))
	}
	return line
}

func typeBadge(t core.MessageType) string {
	switch t {
	case core.TypeUserInput:
		return styleUserBadge.Render("USER")
	case core.TypeCommand:
		return styleUserBadge.Render("COMMAND")
	case core.TypeInterruption:
		return styleUserBadge.Render("INTERRUPT")
	case core.TypeAssistantResponse:
		return styleAssistantBadge.Render("ASSISTANT")
	case core.TypeToolUse:
		return styleToolBadge.Render("TOOL")
	case core.TypeToolResult:
		return styleToolBadge.Render("RESULT")
	case core.TypeCompact:
		return styleMetaBadge.Render("COMPACT")
	default:
		return styleMetaBadge.Render("META")
	}
}

// truncate shortens text to maxWidth, appending "..." if needed.
// Multi-line text is reduced to the first line.
func truncate(s string, maxWidth int) string {
	if maxWidth < 4 {
		maxWidth = 4
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if lipgloss.Width(s) <= maxWidth {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func formatTime(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumber(n/1000) + "," + fmt.Sprintf("%03d", n%1000)
}
