package discovery

import (
	"context"
	stderrors "errors"
	"os/exec"

	"github.com/Ullaakut/nmap/v3"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
)

// NmapSweeper runs an nmap ping scan (-sn). When run with root privileges
// nmap reports MAC addresses for hosts on the local segment.
type NmapSweeper struct {
	cfg    Config
	logger *logging.Logger
}

// NewNmapSweeper creates an nmap-backed discoverer.
func NewNmapSweeper(cfg Config, logger *logging.Logger) *NmapSweeper {
	return &NmapSweeper{cfg: cfg, logger: logging.OrDefault(logger)}
}

// Method implements Discoverer.
func (s *NmapSweeper) Method() string { return MethodNmap }

// Check verifies the nmap binary is installed.
func (s *NmapSweeper) Check(_ context.Context) error {
	if _, err := exec.LookPath("nmap"); err != nil {
		return errors.ErrDiscoveryUnavailable(MethodNmap, err)
	}
	return nil
}

// Discover runs the ping sweep.
func (s *NmapSweeper) Discover(ctx context.Context, network string) ([]Host, error) {
	prefix, err := parseTarget(network)
	if err != nil {
		return nil, err
	}

	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	scanner, err := nmap.NewScanner(sweepCtx, buildNmapOptions(prefix.String())...)
	if err != nil {
		if stderrors.Is(err, nmap.ErrNmapNotInstalled) {
			return nil, errors.ErrDiscoveryUnavailable(MethodNmap, err)
		}
		return nil, errors.ErrDiscoveryFailed(network, err)
	}

	result, warnings, err := scanner.Run()
	if warnings != nil && len(*warnings) > 0 {
		s.logger.Debug("nmap warnings", "warnings", *warnings)
	}
	if err != nil {
		// A sweep cut short by its timeout still yields the hosts seen so far.
		if sweepCtx.Err() == nil || result == nil {
			return nil, errors.ErrDiscoveryFailed(network, err)
		}
	}
	if result == nil {
		return []Host{}, nil
	}

	return finalize(hostsFromNmap(result.Hosts)), nil
}

func buildNmapOptions(target string) []nmap.Option {
	return []nmap.Option{
		nmap.WithTargets(target),
		nmap.WithPingScan(),
		nmap.WithTimingTemplate(nmap.TimingAggressive),
	}
}

// hostsFromNmap returns IP -> MAC for hosts reported up.
func hostsFromNmap(hosts []nmap.Host) map[string]string {
	out := make(map[string]string, len(hosts))
	for i := range hosts {
		h := &hosts[i]
		if h.Status.State != "up" {
			continue
		}
		var ip, mac string
		for _, addr := range h.Addresses {
			switch addr.AddrType {
			case "ipv4":
				ip = addr.Addr
			case "mac":
				mac = NormalizeMAC(addr.Addr)
			}
		}
		if ip == "" {
			continue
		}
		if _, seen := out[ip]; !seen {
			out[ip] = mac
		}
	}
	return out
}
