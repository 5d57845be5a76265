package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:  "aw",
		Usage: "Normalize AI coding-assistant session logs into one canonical schema",
		Description: `
  __ _ __ _ ___ _ _| |___ __ _(_)_ _ ___
 / _' / _' / -_) ' \  _\ V  V / | '_/ -_)
 \__,_\__, \___|_||_\__|\_/\_/|_|_| \___|
      |___/

 One message stream for every agent log.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "error",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			parseCmd(),
			statsCmd(),
			serveCmd(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
