// Package probe checks which TCP ports of a host are open. Ports of one host
// are probed concurrently and a shared Limiter bounds the total number of
// connections in flight across all hosts.
package probe

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
)

//go:generate mockgen -destination=mocks/mock_probe.go -package=mocks github.com/anstrom/netsentinel/internal/probe Prober

// Probe methods.
const (
	MethodConnect = "connect"
	MethodNmap    = "nmap"
)

const defaultPortTimeout = 500 * time.Millisecond

// Result is the outcome of probing one host.
type Result struct {
	// Open ports, ascending, with service labels.
	Ports []models.Port
	// Checked counts the ports actually attempted.
	Checked int
	// Timeouts counts attempts that ran out of time.
	Timeouts int
}

// Prober returns the open ports of a host. Unreachable ports and probe
// timeouts are reported as closed, never as errors; an error means the
// request itself was invalid.
type Prober interface {
	Probe(ctx context.Context, ip string, ports []int) (Result, error)
	Method() string
}

// Config controls probing.
type Config struct {
	Method      string
	PortTimeout time.Duration
}

// New returns the prober for cfg.Method sharing the given limiter.
func New(cfg Config, limiter *Limiter, logger *logging.Logger) (Prober, error) {
	switch cfg.Method {
	case "", MethodConnect:
		return NewConnectProber(cfg.PortTimeout, limiter, logger), nil
	case MethodNmap:
		return NewNmapProber(cfg.PortTimeout, logger), nil
	default:
		return nil, errors.ErrConfigInvalid("scanning.prober", cfg.Method)
	}
}

type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// ConnectProber completes a TCP handshake against each port.
type ConnectProber struct {
	timeout time.Duration
	limiter *Limiter
	logger  *logging.Logger
	dial    dialFunc
}

// NewConnectProber creates a connect prober. A nil limiter means no global
// ceiling.
func NewConnectProber(timeout time.Duration, limiter *Limiter, logger *logging.Logger) *ConnectProber {
	if timeout <= 0 {
		timeout = defaultPortTimeout
	}
	var d net.Dialer
	return &ConnectProber{
		timeout: timeout,
		limiter: limiter,
		logger:  logging.OrDefault(logger),
		dial:    d.DialContext,
	}
}

// Method implements Prober.
func (p *ConnectProber) Method() string { return MethodConnect }

// Probe implements Prober. When ctx is canceled mid-probe the ports found
// so far are returned.
func (p *ConnectProber) Probe(ctx context.Context, ip string, ports []int) (Result, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return Result{}, errors.NewScanError(errors.CodeTargetInvalid, fmt.Sprintf("invalid address %q", ip))
	}
	if err := ValidatePorts(ports); err != nil {
		return Result{}, errors.WrapScanError(errors.CodeValidation, "invalid port list", err)
	}

	var (
		mu       sync.Mutex
		open     []models.Port
		checked  atomic.Int32
		timeouts atomic.Int32
		g        errgroup.Group
	)

	for _, port := range uniquePorts(ports) {
		g.Go(func() error {
			if p.limiter != nil {
				if err := p.limiter.Acquire(ctx); err != nil {
					return nil
				}
				defer p.limiter.Release()
			}
			if ctx.Err() != nil {
				return nil
			}

			checked.Add(1)
			ok, err := p.check(ctx, addr, port)
			if err != nil && isTimeout(err) {
				timeouts.Add(1)
				p.logger.Debug("Port probe timed out", "error", errors.ErrProbeTimeout(net.JoinHostPort(ip, strconv.Itoa(port))))
			}
			if ok {
				mu.Lock()
				open = append(open, models.Port{Port: port, Service: ServiceName(port)})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return Result{
		Ports:    models.SortPorts(open),
		Checked:  int(checked.Load()),
		Timeouts: int(timeouts.Load()),
	}, nil
}

func (p *ConnectProber) check(ctx context.Context, addr netip.Addr, port int) (bool, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dial(probeCtx, "tcp", netip.AddrPortFrom(addr, uint16(port)).String())
	if err != nil {
		if probeCtx.Err() != nil && ctx.Err() == nil {
			return false, context.DeadlineExceeded
		}
		return false, err
	}
	_ = conn.Close()
	return true, nil
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}
