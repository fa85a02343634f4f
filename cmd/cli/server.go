package cli

import (
	"github.com/spf13/cobra"

	"github.com/anstrom/netsentinel/internal/daemon"
)

// serverCmd runs the long-lived service in the foreground.
var serverCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve", "daemon"},
	Short:   "Run the netsentinel service",
	Long: `Run the netsentinel service in the foreground. The service exposes the
HTTP API, runs scheduled scans and delivers alerts until it receives
SIGINT or SIGTERM. SIGUSR1 logs a status summary.

Examples:
  # Serve on the configured address
  netsentinel server

  # Override the listen address and scan immediately
  netsentinel server --host 0.0.0.0 --port 8000 --scan-on-startup`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("host", "", "API listen host")
	serverCmd.Flags().Int("port", 0, "API listen port")
	serverCmd.Flags().Bool("scan-on-startup", false, "run one scan as soon as the service is up")

	bindFlag(serverCmd.Flags().Lookup("host"), "api.host")
	bindFlag(serverCmd.Flags().Lookup("port"), "api.port")
	bindFlag(serverCmd.Flags().Lookup("scan-on-startup"), "daemon.scan_on_startup")
}

func runServer(_ *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	logger.Info("Starting netsentinel",
		"version", version,
		"config", getConfigFilePath(),
		"address", cfg.GetAPIAddress())

	return daemon.New(cfg, version, logger).Start()
}
