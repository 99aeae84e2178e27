package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/ziwei/internal/config"
	"github.com/papapumpkin/ziwei/internal/history"
	"github.com/papapumpkin/ziwei/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, print or delete saved reports",
	Long: `Reports generated with --save (or history.enabled in config) are kept in a
local SQLite database. Commands taking an id accept any unique prefix of it.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withHistory(cmd, func(ctx context.Context, store *history.Store) error {
			entries, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), ui.HistoryTable(entries))
			return err
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved report document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(ctx context.Context, store *history.Store) error {
			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return historyLookupError(args[0], err)
			}
			_, err = cmd.OutOrStdout().Write(rec.Document)
			return err
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(ctx context.Context, store *history.Store) error {
			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return historyLookupError(args[0], err)
			}
			if err := store.Delete(ctx, rec.ID); err != nil {
				return err
			}
			ui.New().Info(fmt.Sprintf("deleted report %s", rec.ID))
			return nil
		})
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of reports to list (0 for all)")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

// withHistory opens the configured history database for the duration of fn.
// The database is opened even when saving is disabled so earlier reports
// stay reachable.
func withHistory(cmd *cobra.Command, fn func(context.Context, *history.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

func historyLookupError(id string, err error) error {
	switch {
	case errors.Is(err, history.ErrNotFound):
		return fmt.Errorf("no saved report matches %q", id)
	case errors.Is(err, history.ErrAmbiguousID):
		return fmt.Errorf("%q matches several reports; use a longer prefix", id)
	}
	return err
}
