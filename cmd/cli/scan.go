package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anstrom/netsentinel/internal/daemon"
	"github.com/anstrom/netsentinel/internal/scanning"
)

const maxPort = 65535

var (
	scanNetwork string
	scanPorts   string
	scanNoPorts bool
	scanOutput  string
)

// scanCmd runs one scan in the foreground and prints the snapshot.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single network scan",
	Long: `Sweep the network once, probe the discovered hosts and print the scored
devices. The snapshot is stored and alerts are raised exactly as for
scans started by the service.

Examples:
  # Scan the configured network (or the default route's network)
  netsentinel scan

  # Discovery only, as JSON
  netsentinel scan --network 192.168.1.0/24 --no-ports --output json

  # Probe a custom port list
  netsentinel scan --ports 22,80,443,8000-8010`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanNetwork, "network", "n", "", "IPv4 CIDR to scan")
	scanCmd.Flags().StringVarP(&scanPorts, "ports", "p", "", "ports to probe, e.g. 22,80,8000-8010")
	scanCmd.Flags().BoolVar(&scanNoPorts, "no-ports", false, "skip port probing")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", outputTable, "output format (table, json)")

	bindFlag(scanCmd.Flags().Lookup("network"), "scanning.network")
}

func runScan(cmd *cobra.Command, _ []string) error {
	if err := validateOutput(scanOutput); err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if scanPorts != "" {
		ports, err := parsePorts(scanPorts)
		if err != nil {
			return err
		}
		cfg.Scanning.Ports = ports
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := daemon.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
		defer cancel()
		if err := components.Close(closeCtx); err != nil {
			logger.Warn("Failed to release scan resources", "error", err)
		}
	}()

	started := time.Now()
	snapshot, err := components.Orchestrator.Run(ctx, scanning.Request{
		Network:   scanNetwork,
		ScanPorts: !scanNoPorts,
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Scan completed in %s\n", time.Since(started).Round(time.Millisecond))
	}

	if scanOutput == outputJSON {
		return writeJSON(cmd.OutOrStdout(), snapshot)
	}
	return renderSnapshot(cmd.OutOrStdout(), snapshot)
}

// parsePorts expands a comma-separated list of ports and ranges. The
// result keeps first-seen order without duplicates.
func parsePorts(spec string) ([]int, error) {
	var ports []int
	seen := make(map[int]struct{})
	add := func(p int) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			ports = append(ports, p)
		}
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := parsePort(lo)
			if err != nil {
				return nil, fmt.Errorf("invalid start port in range: %s", part)
			}
			end, err := parsePort(hi)
			if err != nil {
				return nil, fmt.Errorf("invalid end port in range: %s", part)
			}
			if start > end {
				return nil, fmt.Errorf("start port cannot be greater than end port: %s", part)
			}
			for p := start; p <= end; p++ {
				add(p)
			}
			continue
		}

		p, err := parsePort(part)
		if err != nil {
			return nil, fmt.Errorf("invalid port: %s", part)
		}
		add(p)
	}

	if len(ports) == 0 {
		return nil, fmt.Errorf("empty port specification")
	}
	return ports, nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if p < 1 || p > maxPort {
		return 0, fmt.Errorf("port %d out of range", p)
	}
	return p, nil
}
