package purgecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatbot/cmd/chatbot/sqlitepath"
	"github.com/papercomputeco/chatbot/pkg/storage/sqlite"
)

const purgeLongDesc string = `Delete every stored turn of one or more sessions from a local SQLite database.

Purging a session with no turns is not an error.

Examples:
  chatbot purge session_1a2b3c4d
  chatbot purge --sqlite /tmp/chat.db session_1a2b3c4d session_5e6f7a8b`

const purgeShortDesc string = "Delete session history"

type purgeCommander struct {
	sqlitePath string
}

func NewPurgeCmd() *cobra.Command {
	cmder := &purgeCommander{}

	cmd := &cobra.Command{
		Use:   "purge <session-id...>",
		Short: purgeShortDesc,
		Long:  purgeLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *purgeCommander) run(ctx context.Context, cmd *cobra.Command, sessionIDs []string) error {
	dbPath, err := sqlitepath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return fmt.Errorf("could not resolve local database: %w", err)
	}

	driver, err := sqlite.NewDriver(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("could not open local database %s: %w", dbPath, err)
	}
	defer driver.Close()

	var total int64
	for _, id := range sessionIDs {
		count, err := driver.CountBySession(ctx, id)
		if err != nil {
			return fmt.Errorf("could not count turns in %s: %w", id, err)
		}

		if err := driver.DeleteBySession(ctx, id); err != nil {
			return fmt.Errorf("could not delete session %s: %w", id, err)
		}

		total += count
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d turns deleted\n", id, count)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d turns from %d sessions in %s\n", total, len(sessionIDs), dbPath)

	return nil
}
