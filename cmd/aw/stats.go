package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/veedhi/agentwire/core"
)

func statsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Summarize a session log: message types, tool calls, token usage",
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
				Usage:   "Provider hint; omit to auto-detect",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			session, err := loadSession(cmd)
			if err != nil {
				return err
			}
			printStats(session)
			return nil
		},
	}
}

func printStats(s *core.Session) {
	fmt.Printf("Session %s (%s)\n", s.SessionID, s.Provider)

	turns := core.GroupTurns(s.Messages)

	summary := newStatsTable()
	summary.AppendHeader(table.Row{"Metric", "Value"})
	summary.AppendRows([]table.Row{
		{"Messages", s.Metadata.MessageCount},
		{"Lines", s.Metadata.LineCount},
		{"Turns", len(turns)},
	})
	if s.Duration > 0 {
		summary.AppendRow(table.Row{"Duration", fmt.Sprintf("%.1fs", float64(s.Duration)/1000)})
	}
	if usage := s.AggregateUsage(); usage != nil {
		summary.AppendRows([]table.Row{
			{"Input tokens", usage.InputTokens},
			{"Output tokens", usage.OutputTokens},
		})
		if usage.CacheReadTokens > 0 {
			summary.AppendRow(table.Row{"Cache read tokens", usage.CacheReadTokens})
		}
		if usage.CacheCreationTokens > 0 {
			summary.AppendRow(table.Row{"Cache write tokens", usage.CacheCreationTokens})
		}
	}
	summary.Render()

	byType := make(map[core.MessageType]int)
	toolCalls := make(map[string]int)
	for i := range s.Messages {
		msg := &s.Messages[i]
		byType[msg.Type]++
		if msg.Type == core.TypeToolUse {
			name, _ := msg.Metadata["toolName"].(string)
			if name == "" {
				name = "(unnamed)"
			}
			toolCalls[name]++
		}
	}

	types := newStatsTable()
	types.AppendHeader(table.Row{"Message type", "Count"})
	for _, t := range []core.MessageType{
		core.TypeUserInput, core.TypeAssistantResponse, core.TypeToolUse,
		core.TypeToolResult, core.TypeCommand, core.TypeInterruption,
		core.TypeCompact, core.TypeMeta,
	} {
		if byType[t] > 0 {
			types.AppendRow(table.Row{string(t), byType[t]})
		}
	}
	types.Render()

	if len(toolCalls) > 0 {
		names := make([]string, 0, len(toolCalls))
		for name := range toolCalls {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if toolCalls[names[i]] != toolCalls[names[j]] {
				return toolCalls[names[i]] > toolCalls[names[j]]
			}
			return names[i] < names[j]
		})

		tools := newStatsTable()
		tools.AppendHeader(table.Row{"Tool", "Calls"})
		for _, name := range names {
			tools.AppendRow(table.Row{name, toolCalls[name]})
		}
		tools.Render()
	}
}

func newStatsTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		t.SetStyle(table.StyleRounded)
	} else {
		t.SetStyle(table.StyleLight)
		t.Style().Options.DrawBorder = false
	}
	t.Style().Format.Header = text.FormatDefault
	return t
}
