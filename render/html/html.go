// Package html renders sessions as standalone HTML pages styled with
// Tailwind CSS v4 (CDN) and syntax highlighting via goldmark + chroma.
package html

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/veedhi/agentwire/core"
)

// Renderer renders a session to a standalone HTML page.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template

	// SessionHref, when non-nil, overrides the default {id}.html link
	// pattern on the index page. Used by the serve command to generate
	// server-routed URLs instead of static file links.
	SessionHref func(sessionID string) string
}

// New creates an HTML Renderer with goldmark configured for GFM and
// syntax highlighting.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles for standalone pages
				),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(), // allow raw HTML in markdown
		),
	)

	tmpl := template.Must(
		template.New("page.html").
			Funcs(funcMap()).
			ParseFS(content, "templates/*.html"),
	)

	return &Renderer{md: md, tmpl: tmpl}
}

// pageData is the top-level template data passed to page.html.
type pageData struct {
	Session         *core.Session
	Messages        []messageData
	Usage           *core.Usage
	OverallDuration string
}

// messageData is the per-message template data.
type messageData struct {
	ID          string // anchor ID for timeline links (e.g. "msg-0")
	TypeLabel   string
	BorderClass string
	BadgeClass  string
	DotClass    string // timeline dot color class
	Timestamp   time.Time
	Duration    string // time since previous message (e.g. "4s")
	Summary     string // short text description for timeline sidebar
	Blocks      []template.HTML
}

// indexEntry is one session row on the index page.
type indexEntry struct {
	Session *core.Session
	Href    string
}

// RenderIndex writes an HTML index page listing the given sessions,
// sorted newest-first by start time.
func (r *Renderer) RenderIndex(w io.Writer, sessions []*core.Session) error {
	sorted := make([]*core.Session, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})

	entries := make([]indexEntry, len(sorted))
	for i, s := range sorted {
		href := s.SessionID + ".html"
		if r.SessionHref != nil {
			href = r.SessionHref(s.SessionID)
		}
		entries[i] = indexEntry{Session: s, Href: href}
	}
	return r.tmpl.ExecuteTemplate(w, "index.html", entries)
}

// Render writes the session as a complete HTML page to w. Tool results
// are folded into the card of the tool call they answer; the standalone
// result message is then skipped.
func (r *Renderer) Render(w io.Writer, s *core.Session) error {
	resultIndex := make(map[string]*core.ContentBlock)
	for i := range s.Messages {
		msg := &s.Messages[i]
		if msg.Type != core.TypeToolResult || msg.LinkedTo == "" {
			continue
		}
		if b := resultBlock(msg); b != nil {
			resultIndex[msg.LinkedTo] = b
		}
	}

	consumed := make(map[string]bool)

	var prevTimestamp time.Time
	var messages []messageData
	for i := range s.Messages {
		msg := &s.Messages[i]

		md := messageData{
			ID:          fmt.Sprintf("msg-%d", i),
			TypeLabel:   typeLabel(msg.Type),
			BorderClass: borderClass(msg.Type),
			BadgeClass:  badgeClass(msg.Type),
			DotClass:    dotClass(msg.Type),
			Timestamp:   msg.Timestamp,
		}
		if !msg.Timestamp.IsZero() && !prevTimestamp.IsZero() {
			md.Duration = formatDuration(msg.Timestamp.Sub(prevTimestamp))
		}
		if !msg.Timestamp.IsZero() {
			prevTimestamp = msg.Timestamp
		}
		md.Summary = messageSummary(msg)

		blocks, err := r.messageBlocks(msg, resultIndex, consumed)
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			continue
		}
		md.Blocks = blocks
		messages = append(messages, md)
	}

	var overallDuration string
	if s.Duration > 0 {
		overallDuration = formatDuration(time.Duration(s.Duration) * time.Millisecond)
	}

	data := pageData{
		Session:         s,
		Messages:        messages,
		Usage:           s.AggregateUsage(),
		OverallDuration: overallDuration,
	}
	return r.tmpl.ExecuteTemplate(w, "page.html", data)
}

// messageBlocks renders one message into HTML fragments.
func (r *Renderer) messageBlocks(msg *core.Message, resultIndex map[string]*core.ContentBlock, consumed map[string]bool) ([]template.HTML, error) {
	switch msg.Type {
	case core.TypeToolUse:
		use := useBlock(msg)
		if use == nil {
			return nil, nil
		}
		result := resultIndex[use.ToolUseID]
		if result != nil {
			consumed[use.ToolUseID] = true
		}
		rendered, err := r.renderToolUseBlock(*use, result)
		if err != nil {
			return nil, fmt.Errorf("render tool_use block: %w", err)
		}
		return []template.HTML{rendered}, nil

	case core.TypeToolResult:
		if msg.LinkedTo != "" && consumed[msg.LinkedTo] {
			return nil, nil
		}
		b := resultBlock(msg)
		if b == nil {
			return nil, nil
		}
		return []template.HTML{renderToolResultBlock(*b)}, nil

	default:
		text := msg.Content.String()
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		if thinking, ok := msg.Metadata["thinking"].(bool); ok && thinking {
			return []template.HTML{renderThinkingBlock(text)}, nil
		}
		rendered, err := r.renderTextBlock(text, msg.Type)
		if err != nil {
			return nil, fmt.Errorf("render text block: %w", err)
		}
		return []template.HTML{rendered}, nil
	}
}

func useBlock(msg *core.Message) *core.ContentBlock {
	if msg.Content.Structured == nil {
		return nil
	}
	return msg.Content.Structured.ToolUse
}

func resultBlock(msg *core.Message) *core.ContentBlock {
	if msg.Content.Structured == nil {
		return nil
	}
	return msg.Content.Structured.ToolResult
}

func typeLabel(t core.MessageType) string {
	switch t {
	case core.TypeUserInput:
		return "User"
	case core.TypeAssistantResponse:
		return "Assistant"
	case core.TypeToolUse:
		return "Tool"
	case core.TypeToolResult:
		return "Result"
	case core.TypeCommand:
		return "Command"
	case core.TypeInterruption:
		return "Interrupted"
	case core.TypeCompact:
		return "Compacted"
	default:
		return "Meta"
	}
}

func borderClass(t core.MessageType) string {
	switch t {
	case core.TypeUserInput, core.TypeCommand, core.TypeInterruption:
		return "border-l-4 border-l-blue-500"
	case core.TypeAssistantResponse:
		return "border-l-4 border-l-emerald-500"
	case core.TypeToolUse, core.TypeToolResult:
		return "border-l-4 border-l-violet-500"
	default:
		return "border-l-4 border-l-slate-400"
	}
}

func badgeClass(t core.MessageType) string {
	switch t {
	case core.TypeUserInput, core.TypeCommand, core.TypeInterruption:
		return "text-blue-700 dark:text-blue-400 bg-blue-50 dark:bg-blue-950"
	case core.TypeAssistantResponse:
		return "text-emerald-700 dark:text-emerald-400 bg-emerald-50 dark:bg-emerald-950"
	case core.TypeToolUse, core.TypeToolResult:
		return "text-violet-700 dark:text-violet-400 bg-violet-50 dark:bg-violet-950"
	default:
		return "text-slate-600 dark:text-slate-400 bg-slate-100 dark:bg-slate-800"
	}
}

func dotClass(t core.MessageType) string {
	switch t {
	case core.TypeUserInput, core.TypeCommand, core.TypeInterruption:
		return "bg-blue-500"
	case core.TypeAssistantResponse:
		return "bg-emerald-500"
	case core.TypeToolUse, core.TypeToolResult:
		return "bg-violet-500"
	default:
		return "bg-slate-400"
	}
}

// messageSummary returns a short text description for the timeline sidebar.
func messageSummary(msg *core.Message) string {
	if use := useBlock(msg); use != nil {
		return use.Name
	}
	text := strings.TrimSpace(msg.Content.String())
	if text == "" {
		return string(msg.Type)
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	if len(text) > 50 {
		text = text[:47] + "..."
	}
	return text
}
