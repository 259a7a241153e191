package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/iexc-go/iexc/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect quotes recorded with quote --history",
}

var historyListCmd = &cobra.Command{
	Use:   "list [SYMBOL]",
	Short: "List recorded quotes, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryList,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded quote",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete recorded quotes older than --older-than",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyDeleteCmd, historyPruneCmd)

	historyCmd.PersistentFlags().String("db", "", "SQLite history database path")
	historyListCmd.Flags().Int("limit", 0, "Maximum number of records (0 = all)")
	historyPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Age beyond which records are deleted")
}

func openHistory(cmd *cobra.Command) (*history.SQLiteStore, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		return nil, fmt.Errorf("history database is required (use --db)")
	}
	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %q: %w", dbPath, err)
	}
	return store, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	reporter, err := newReporter(cmd)
	if err != nil {
		return err
	}

	symbol := ""
	if len(args) == 1 {
		symbol = args[0]
	}
	limit, _ := cmd.Flags().GetInt("limit")

	ctx, cancel := commandContext(cmd)
	defer cancel()

	recs, err := store.List(ctx, symbol, limit)
	if err != nil {
		return err
	}
	return withOutput(cmd, func(w io.Writer) error {
		return reporter.History(ctx, recs, w)
	})
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := store.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	olderThan, _ := cmd.Flags().GetDuration("older-than")

	ctx, cancel := commandContext(cmd)
	defer cancel()

	n, err := store.Prune(ctx, olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d record(s)\n", n)
	return nil
}
