package html

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var content embed.FS

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatTime":     formatTime,
		"formatNumber":   formatNumber,
		"formatDuration": formatDuration,
		"title":          titleCase,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
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

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// toolIcon returns a small inline icon span for a tool name.
func toolIcon(name string) template.HTML {
	var glyph string
	switch strings.ToLower(name) {
	case "bash", "shell", "run_shell_command":
		glyph = "&#36;"
	case "read", "read_file":
		glyph = "&#128196;"
	case "write", "write_file", "edit", "edit_file":
		glyph = "&#9998;"
	case "glob", "grep", "search":
		glyph = "&#128269;"
	default:
		glyph = "&#9881;"
	}
	return template.HTML(`<span class="text-xs">` + glyph + `</span>`)
}
