package historycmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatbot/cmd/chatbot/render"
	"github.com/papercomputeco/chatbot/cmd/chatbot/sqlitepath"
	"github.com/papercomputeco/chatbot/pkg/llm"
	"github.com/papercomputeco/chatbot/pkg/storage/sqlite"
)

const historyLongDesc string = `Show stored conversation turns from a local SQLite database.

With a session id, that session's turns are listed oldest first, optionally
limited to --start/--end (RFC 3339). With --ip, the turns recorded from one
client address are listed newest first. With neither, the most recent
turns across all sessions are listed.

Examples:
  chatbot history session_1a2b3c4d
  chatbot history session_1a2b3c4d --start 2024-01-01T00:00:00Z --end 2024-01-02T00:00:00Z
  chatbot history --ip 203.0.113.7
  chatbot history --limit 10 --json`

const historyShortDesc string = "Show stored conversation turns"

type historyCommander struct {
	sqlitePath string
	clientIP   string
	start      string
	end        string
	limit      int
	jsonOut    bool
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sessionID string
			if len(args) == 1 {
				sessionID = args[0]
			}
			return cmder.run(cmd.Context(), cmd, sessionID)
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVar(&cmder.clientIP, "ip", "", "List turns recorded from this client IP")
	cmd.Flags().StringVar(&cmder.start, "start", "", "Range start (RFC 3339), requires --end")
	cmd.Flags().StringVar(&cmder.end, "end", "", "Range end (RFC 3339), requires --start")
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 50, "Number of recent turns to show")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print turns as JSON")

	return cmd
}

func (c *historyCommander) run(ctx context.Context, cmd *cobra.Command, sessionID string) error {
	if sessionID != "" && c.clientIP != "" {
		return errors.New("give either a session id or --ip, not both")
	}
	if (c.start == "") != (c.end == "") {
		return errors.New("--start and --end must be given together")
	}
	if c.start != "" && sessionID == "" {
		return errors.New("--start and --end need a session id")
	}
	if c.limit <= 0 {
		return errors.New("--limit must be positive")
	}

	dbPath, err := sqlitepath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return fmt.Errorf("could not resolve local database: %w", err)
	}

	driver, err := sqlite.NewDriver(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("could not open local database %s: %w", dbPath, err)
	}
	defer driver.Close()

	var turns []*llm.ConversationTurn

	switch {
	case c.clientIP != "":
		turns, err = driver.ListByClientIP(ctx, c.clientIP)
	case sessionID != "" && c.start != "":
		var start, end time.Time
		if start, err = time.Parse(time.RFC3339, c.start); err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		if end, err = time.Parse(time.RFC3339, c.end); err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		turns, err = driver.ListBySessionInRange(ctx, sessionID, start, end)
	case sessionID != "":
		turns, err = driver.ListBySession(ctx, sessionID)
	default:
		turns, err = driver.ListRecent(ctx, c.limit)
	}
	if err != nil {
		return fmt.Errorf("could not list turns: %w", err)
	}

	if c.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(turns)
	}

	printTurns(cmd.OutOrStdout(), turns)
	return nil
}

func printTurns(w io.Writer, turns []*llm.ConversationTurn) {
	if len(turns) == 0 {
		fmt.Fprintln(w, "No turns found.")
		return
	}

	for _, t := range turns {
		meta := fmt.Sprintf("#%d  %s  %s  %d ms", t.ID, t.Timestamp.Format(time.RFC3339), t.SessionID, t.ResponseTimeMs)
		if t.ClientIP != "" {
			meta += "  " + t.ClientIP
		}

		fmt.Fprintln(w, render.Muted.Render(meta))
		fmt.Fprintln(w, render.User.Render("You:"), t.UserMessage)
		fmt.Fprintln(w, render.Bot.Render("Bot:"), t.AIResponse)
		fmt.Fprintln(w)
	}
}
