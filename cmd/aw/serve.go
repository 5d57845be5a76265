package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/veedhi/agentwire"
	"github.com/veedhi/agentwire/core"
	"github.com/veedhi/agentwire/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve parsed sessions for browsing in a local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory of session log files (.json, .jsonl)",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Single session log file",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Provider hint applied to every file; omit to auto-detect",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
				Value: 8080,
			},
			&cli.BoolFlag{
				Name:  "no-redact",
				Usage: "Disable redaction of secrets and PII",
			},
			&cli.StringSliceFlag{
				Name:  "redact",
				Usage: "Allowlist of rules to redact. Example: --redact=secrets,pii",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("dir")
			file := cmd.String("file")
			if (dir == "") == (file == "") {
				return fmt.Errorf("exactly one of --dir or --file is required")
			}

			srv := server.New(agentwire.DefaultRegistry(), int(cmd.Int("port")))
			srv.Provider = cmd.String("provider")

			if dir != "" {
				if err := srv.LoadDir(dir); err != nil {
					return err
				}
			} else {
				if err := srv.LoadFile(file); err != nil {
					return err
				}
			}

			redactor, err := newRedactor(cmd)
			if err != nil {
				return err
			}
			if redactor != nil {
				for _, s := range srv.Sessions() {
					if err := core.Chain(s, redactor); err != nil {
						return fmt.Errorf("redact: %w", err)
					}
				}
			}

			return srv.ListenAndServe()
		},
	}
}
