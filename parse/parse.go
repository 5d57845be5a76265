// Package parse selects and runs session log parsers. A Registry holds all
// registered parsers in first-match-wins order; selection honors an explicit
// provider hint before structural auto-detection.
package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/veedhi/agentwire/core"
)

// Parser turns one provider's raw session log into a canonical session.
// Implementations are stateless; a single instance may be used by
// concurrent callers.
type Parser interface {
	// Name is the registered provider name, e.g. "claude" or "copilot".
	Name() string

	// CanParse reports whether the content structurally matches this
	// parser's format. Detection inspects only a short prefix of lines.
	CanParse(content string) bool

	// Parse transforms the full log content into a session.
	Parse(content string) (*core.Session, error)
}

// ErrEmptyContent is returned when the input is empty or whitespace-only.
var ErrEmptyContent = errors.New("session content is empty")

// ErrNoParser is returned when auto-detection finds no matching parser.
var ErrNoParser = errors.New("no suitable parser for session content")

// SyntaxError reports a line that is not valid JSON, with its 1-based
// line number in the original content.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: invalid JSON: %v", e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Registry holds parsers in selection order. It is populated once at
// startup; Register prepends so custom parsers win over built-ins.
// Lookups are read-only and safe for concurrent use after setup.
type Registry struct {
	parsers []Parser
}

// NewRegistry creates a registry with the given parsers, tried in order.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// Register prepends a parser ahead of all existing ones.
func (r *Registry) Register(p Parser) {
	r.parsers = append([]Parser{p}, r.parsers...)
}

// Parsers returns the registered parsers in selection order.
func (r *Registry) Parsers() []Parser {
	return r.parsers
}

// ParseSession parses the content with the parser selected by the provider
// hint, or by auto-detection when no hint is given. A hint that matches no
// registered parser falls back to the generic best-effort parser; pure
// auto-detection never does.
func (r *Registry) ParseSession(content, provider string) (*core.Session, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	if provider != "" {
		if p := r.lookup(provider); p != nil {
			return p.Parse(content)
		}
		return NewGeneric(provider).Parse(content)
	}

	for _, p := range r.parsers {
		if p.CanParse(content) {
			return p.Parse(content)
		}
	}
	return nil, ErrNoParser
}

// lookup resolves a provider hint: exact name match first, then substring
// match in either direction.
func (r *Registry) lookup(provider string) Parser {
	hint := strings.ToLower(strings.TrimSpace(provider))
	for _, p := range r.parsers {
		if p.Name() == hint {
			return p
		}
	}
	for _, p := range r.parsers {
		if strings.Contains(hint, p.Name()) || strings.Contains(p.Name(), hint) {
			return p
		}
	}
	return nil
}
