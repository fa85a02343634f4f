package probe

import (
	"context"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/Ullaakut/nmap/v3"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
)

// NmapProber delegates one host's port check to an nmap connect scan.
type NmapProber struct {
	timeout time.Duration
	logger  *logging.Logger
}

// NewNmapProber creates an nmap-backed prober. timeout is the per-port
// budget; the whole host gets timeout times the number of ports.
func NewNmapProber(timeout time.Duration, logger *logging.Logger) *NmapProber {
	if timeout <= 0 {
		timeout = defaultPortTimeout
	}
	return &NmapProber{timeout: timeout, logger: logging.OrDefault(logger)}
}

// Method implements Prober.
func (p *NmapProber) Method() string { return MethodNmap }

// Probe implements Prober.
func (p *NmapProber) Probe(ctx context.Context, ip string, ports []int) (Result, error) {
	if _, err := netip.ParseAddr(ip); err != nil {
		return Result{}, errors.NewScanError(errors.CodeTargetInvalid, fmt.Sprintf("invalid address %q", ip))
	}
	if err := ValidatePorts(ports); err != nil {
		return Result{}, errors.WrapScanError(errors.CodeValidation, "invalid port list", err)
	}
	ports = uniquePorts(ports)
	if len(ports) == 0 {
		return Result{Ports: []models.Port{}}, nil
	}

	hostCtx, cancel := context.WithTimeout(ctx, p.timeout*time.Duration(len(ports))+time.Second)
	defer cancel()

	scanner, err := nmap.NewScanner(hostCtx, buildScanOptions(ip, ports, p.timeout)...)
	if err != nil {
		p.logger.Warn("nmap scanner unavailable", "ip", ip, "error", err)
		return Result{Ports: []models.Port{}}, nil
	}

	result, warnings, err := scanner.Run()
	if warnings != nil && len(*warnings) > 0 {
		p.logger.Debug("nmap warnings", "ip", ip, "warnings", *warnings)
	}
	out := Result{Ports: []models.Port{}, Checked: len(ports)}
	if err != nil || result == nil {
		if hostCtx.Err() != nil {
			out.Timeouts = len(ports)
		}
		p.logger.Debug("nmap probe failed", "ip", ip, "error", err)
		return out, nil
	}

	out.Ports = openPorts(result.Hosts)
	return out, nil
}

func buildScanOptions(ip string, ports []int, timeout time.Duration) []nmap.Option {
	list := make([]string, len(ports))
	for i, p := range ports {
		list[i] = strconv.Itoa(p)
	}
	return []nmap.Option{
		nmap.WithTargets(ip),
		nmap.WithPorts(strings.Join(list, ",")),
		nmap.WithConnectScan(),
		nmap.WithSkipHostDiscovery(),
		nmap.WithTimingTemplate(nmap.TimingAggressive),
		nmap.WithMaxRetries(0),
		nmap.WithMaxRTTTimeout(timeout),
	}
}

// openPorts collects the open ports nmap reported, labelled from the
// service table.
func openPorts(hosts []nmap.Host) []models.Port {
	out := []models.Port{}
	for i := range hosts {
		for j := range hosts[i].Ports {
			p := &hosts[i].Ports[j]
			if p.State.State != "open" {
				continue
			}
			port := int(p.ID)
			out = append(out, models.Port{Port: port, Service: ServiceName(port)})
		}
	}
	return models.SortPorts(out)
}
