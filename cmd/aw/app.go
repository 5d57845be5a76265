package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/veedhi/agentwire"
	"github.com/veedhi/agentwire/core"
	"github.com/veedhi/agentwire/redact"
	"github.com/veedhi/agentwire/render"
	htmlrender "github.com/veedhi/agentwire/render/html"
	jsonrender "github.com/veedhi/agentwire/render/json"
	"github.com/veedhi/agentwire/render/terminal"
)

// app holds the renderer registry used by CLI commands.
type app struct {
	renderers map[string]func() render.Renderer
}

func newApp() *app {
	return &app{
		renderers: map[string]func() render.Renderer{
			"terminal": func() render.Renderer { return terminal.New() },
			"html":     func() render.Renderer { return htmlrender.New() },
			"json":     func() render.Renderer { return jsonrender.New() },
		},
	}
}

func (a *app) renderer(name string) (render.Renderer, error) {
	fn, ok := a.renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", name)
	}
	return fn(), nil
}

// loadSession reads and parses the session file named by --file, with
// --provider as the optional parser hint.
func loadSession(cmd *cli.Command) (*core.Session, error) {
	file := cmd.String("file")
	if file == "" {
		return nil, fmt.Errorf("--file is required")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return agentwire.ParseSession(string(data), cmd.String("provider"))
}

// newRedactor builds a Redactor from CLI flags. Returns nil when
// --no-redact is set.
func newRedactor(cmd *cli.Command) (*redact.Redactor, error) {
	if cmd.Bool("no-redact") {
		return nil, nil
	}

	cfg := redact.Config{}
	rules := cmd.StringSlice("redact")

	if len(rules) == 0 {
		cfg.Secrets = true
		cfg.PII = true
	} else {
		for _, r := range rules {
			switch r {
			case "secrets":
				cfg.Secrets = true
			case "pii":
				cfg.PII = true
			default:
				return nil, fmt.Errorf("unknown redaction rule %q", r)
			}
		}
	}

	return redact.New(cfg), nil
}
