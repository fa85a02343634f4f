package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/anstrom/netsentinel/internal/config"
	"github.com/anstrom/netsentinel/internal/db"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/store"
)

const storeTimeout = 30 * time.Second

var (
	historyLimit  int
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored scans",
	Long: `List stored scan snapshots, most recent first.

The memory store does not survive restarts, so history is only meaningful
with the postgres driver.

Examples:
  netsentinel history --limit 10
  netsentinel history show 42`,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <scan-id>",
	Short: "Show the devices of one stored scan",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyCmd.PersistentFlags().StringVarP(&historyOutput, "output", "o", outputTable, "output format (table, json)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", store.DefaultListLimit, "maximum number of scans")
}

// withStore opens the configured store for the duration of fn.
func withStore(fn func(ctx context.Context, s store.Store, cfg *config.Config) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	s, err := db.OpenStore(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logging.Warn("Failed to close store", "error", err)
		}
	}()

	return fn(ctx, s, cfg)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if err := validateOutput(historyOutput); err != nil {
		return err
	}
	return withStore(func(ctx context.Context, s store.Store, _ *config.Config) error {
		entries, err := s.List(ctx, historyLimit)
		if err != nil {
			return err
		}
		if historyOutput == outputJSON {
			return writeJSON(cmd.OutOrStdout(), entries)
		}
		return renderHistory(cmd.OutOrStdout(), entries)
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if err := validateOutput(historyOutput); err != nil {
		return err
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return fmt.Errorf("invalid scan id %q", args[0])
	}

	return withStore(func(ctx context.Context, s store.Store, _ *config.Config) error {
		snapshot, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if historyOutput == outputJSON {
			return writeJSON(cmd.OutOrStdout(), snapshot)
		}
		return renderSnapshot(cmd.OutOrStdout(), snapshot)
	})
}
