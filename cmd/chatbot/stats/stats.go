package statscmder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatbot/cmd/chatbot/render"
	"github.com/papercomputeco/chatbot/cmd/chatbot/sqlitepath"
	"github.com/papercomputeco/chatbot/pkg/chat"
	"github.com/papercomputeco/chatbot/pkg/storage/sqlite"
)

const statsLongDesc string = `Show statistics for one session in a local SQLite database.

Reports the number of turns, the first and last turn timestamps, and the
total and average response time.

Examples:
  chatbot stats session_1a2b3c4d
  chatbot stats --sqlite /tmp/chat.db --json session_1a2b3c4d`

const statsShortDesc string = "Show session statistics"

type statsCommander struct {
	sqlitePath string
	jsonOut    bool
}

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats <session-id>",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print statistics as JSON")

	return cmd
}

func (c *statsCommander) run(ctx context.Context, cmd *cobra.Command, sessionID string) error {
	dbPath, err := sqlitepath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return fmt.Errorf("could not resolve local database: %w", err)
	}

	driver, err := sqlite.NewDriver(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("could not open local database %s: %w", dbPath, err)
	}
	defer driver.Close()

	turns, err := driver.ListBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("could not list turns: %w", err)
	}

	stats := chat.ComputeStats(sessionID, turns)

	out := cmd.OutOrStdout()
	if c.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintln(out, render.Heading.Render("Session "+stats.SessionID))
	fmt.Fprintf(out, "  messages:       %d\n", stats.MessageCount)
	fmt.Fprintf(out, "  first message:  %s\n", formatTime(stats.FirstMessage))
	fmt.Fprintf(out, "  last message:   %s\n", formatTime(stats.LastMessage))
	fmt.Fprintf(out, "  total time:     %d ms\n", stats.TotalResponseTime)
	fmt.Fprintf(out, "  average time:   %.1f ms\n", stats.AverageResponseTime)

	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
