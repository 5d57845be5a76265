package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/veedhi/agentwire/compact"
	"github.com/veedhi/agentwire/core"
)

func parseCmd() *cli.Command {
	return &cli.Command{
		Name:  "parse",
		Usage: "Normalize a session log and render the canonical message stream",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to a session log file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Provider hint (claude, copilot, gemini, amp, qwen); omit to auto-detect",
			},
			&cli.StringFlag{
				Name:  "o",
				Usage: "Output format: json, terminal, html",
				Value: "terminal",
			},
			&cli.BoolFlag{
				Name:  "no-redact",
				Usage: "Disable redaction of secrets and PII",
			},
			&cli.StringSliceFlag{
				Name:  "redact",
				Usage: "Allowlist of rules to redact. Example: --redact=secrets,pii",
			},
			&cli.StringFlag{
				Name:  "compact",
				Usage: "Enable compact mode. Use --compact=no-thinking to also drop thinking messages",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a := newApp()

			session, err := loadSession(cmd)
			if err != nil {
				return err
			}

			redactor, err := newRedactor(cmd)
			if err != nil {
				return err
			}
			if redactor != nil {
				if err := core.Chain(session, redactor); err != nil {
					return fmt.Errorf("redact: %w", err)
				}
			}

			if v := cmd.String("compact"); v != "" {
				cfg := compact.Config{}
				if v == "no-thinking" {
					cfg.StripThinking = true
				}
				if err := core.Chain(session, compact.New(cfg)); err != nil {
					return fmt.Errorf("compact: %w", err)
				}
			}

			rnd, err := a.renderer(cmd.String("o"))
			if err != nil {
				return err
			}
			if err := rnd.Render(os.Stdout, session); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			return nil
		},
	}
}
