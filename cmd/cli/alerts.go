package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anstrom/netsentinel/internal/alerts"
	"github.com/anstrom/netsentinel/internal/config"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/notify"
	"github.com/anstrom/netsentinel/internal/store"
)

var (
	alertsLimit      int
	alertsUnnotified bool
	alertsOutput     string
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List stored alerts",
	Long: `List stored alerts, most recent first. With --unnotified only alerts
whose delivery has not succeeded are shown, oldest first.

Examples:
  netsentinel alerts
  netsentinel alerts --unnotified
  netsentinel alerts retry`,
	RunE: runAlertsList,
}

var alertsRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Redeliver alerts whose notification failed",
	RunE:  runAlertsRetry,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsRetryCmd)

	alertsCmd.Flags().IntVarP(&alertsLimit, "limit", "l", store.DefaultListLimit, "maximum number of alerts")
	alertsCmd.Flags().BoolVar(&alertsUnnotified, "unnotified", false, "only alerts not yet delivered")
	alertsCmd.Flags().StringVarP(&alertsOutput, "output", "o", outputTable, "output format (table, json)")
}

func runAlertsList(cmd *cobra.Command, _ []string) error {
	if err := validateOutput(alertsOutput); err != nil {
		return err
	}
	return withStore(func(ctx context.Context, s store.Store, _ *config.Config) error {
		var (
			list []models.Alert
			err  error
		)
		if alertsUnnotified {
			list, err = s.ListUnnotified(ctx, alertsLimit)
		} else {
			list, err = s.ListAlerts(ctx, alertsLimit)
		}
		if err != nil {
			return err
		}
		if alertsOutput == outputJSON {
			return writeJSON(cmd.OutOrStdout(), list)
		}
		return renderAlerts(cmd.OutOrStdout(), list)
	})
}

func runAlertsRetry(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, s store.Store, cfg *config.Config) error {
		logger := logging.Default()
		discord := notify.NewDiscord(notify.Config{
			WebhookURL:        cfg.Notify.Discord.WebhookURL,
			Timeout:           cfg.Notify.Discord.Timeout,
			RequestsPerMinute: cfg.Notify.Discord.RequestsPerMinute,
			Burst:             cfg.Notify.Discord.Burst,
		}, s, s, logger)

		sent, err := alerts.NewPublisher(s, discord, nil, logger).Retry(ctx)
		if err != nil {
			return fmt.Errorf("retry failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Delivered %d alert(s)\n", sent)
		return nil
	})
}
