// Package agentwire normalizes session logs from AI coding assistants
// into one canonical message schema. The root package wires the built-in
// provider parsers into a default registry; the parse subpackages hold the
// individual format adapters.
package agentwire

import (
	"github.com/veedhi/agentwire/core"
	"github.com/veedhi/agentwire/parse"
	"github.com/veedhi/agentwire/parse/amp"
	"github.com/veedhi/agentwire/parse/canonical"
	"github.com/veedhi/agentwire/parse/claude"
	"github.com/veedhi/agentwire/parse/copilot"
	"github.com/veedhi/agentwire/parse/gemini"
	"github.com/veedhi/agentwire/parse/qwen"
)

// DefaultRegistry returns a registry with every built-in parser, tried in
// order: the canonical format first, then the provider adapters.
func DefaultRegistry() *parse.Registry {
	return parse.NewRegistry(
		canonical.New(),
		claude.New(),
		copilot.New(),
		gemini.New(),
		amp.New(),
		qwen.New(),
	)
}

// ParseSession parses raw session log content with the default registry.
// provider is an optional hint; pass "" to auto-detect the format.
func ParseSession(content, provider string) (*core.Session, error) {
	return DefaultRegistry().ParseSession(content, provider)
}
