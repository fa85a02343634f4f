package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/anstrom/netsentinel/internal/db"
	"github.com/anstrom/netsentinel/internal/logging"
)

var migrateForce bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
	Long: `Apply, inspect or reset the embedded PostgreSQL migrations. The service
applies pending migrations on startup; these commands are for operators.

Examples:
  netsentinel migrate status
  netsentinel migrate up
  netsentinel migrate reset --force`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(func(ctx context.Context, m *db.Migrator) error {
			applied, err := m.Up(ctx)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", name)
			}
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(func(ctx context.Context, m *db.Migrator) error {
			statuses, err := m.Status(ctx)
			if err != nil {
				return err
			}
			return renderMigrations(cmd.OutOrStdout(), statuses)
		})
	},
}

var migrateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop every table and re-apply the migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !migrateForce {
			return fmt.Errorf("reset deletes all scan history; pass --force to confirm")
		}
		return withMigrator(func(ctx context.Context, m *db.Migrator) error {
			if err := m.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database reset.")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd, migrateResetCmd)

	migrateResetCmd.Flags().BoolVar(&migrateForce, "force", false, "confirm the reset")
}

func withMigrator(fn func(ctx context.Context, m *db.Migrator) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != db.DriverPostgres {
		return fmt.Errorf("migrations need database.driver %q, got %q", db.DriverPostgres, cfg.Database.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logging.Warn("Failed to close database", "error", err)
		}
	}()

	return fn(ctx, db.NewMigrator(database.DB, logger))
}

func renderMigrations(w io.Writer, statuses []db.MigrationStatus) error {
	table := tablewriter.NewWriter(w)
	table.Header("Migration", "Applied", "Applied At", "Modified")
	for _, st := range statuses {
		appliedAt := "-"
		if st.Applied {
			appliedAt = st.AppliedAt.Local().Format(timeLayout)
		}
		if err := table.Append([]string{
			st.Name,
			strconv.FormatBool(st.Applied),
			appliedAt,
			strconv.FormatBool(st.Modified),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
