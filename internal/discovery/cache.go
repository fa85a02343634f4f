package discovery

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
)

const (
	procARPPath = "/proc/net/arp"
	// ARP flag meaning the entry is complete.
	arpFlagComplete = 0x2
	pokeWorkers     = 64
)

// pokePorts are connected to only to make the kernel resolve the neighbour.
var pokePorts = []string{"80", "443"}

// CacheSweeper fills the kernel ARP cache by connecting to every address in
// the network and then reads the resolved neighbours back from /proc/net/arp.
// It needs no raw-socket privilege.
type CacheSweeper struct {
	cfg      Config
	logger   *logging.Logger
	arpPath  string
	dialer   func(ctx context.Context, network, addr string) (net.Conn, error)
	pokeWait time.Duration
}

// NewCacheSweeper creates an ARP-cache sweeper.
func NewCacheSweeper(cfg Config, logger *logging.Logger) *CacheSweeper {
	d := &net.Dialer{}
	return &CacheSweeper{
		cfg:      cfg,
		logger:   logging.OrDefault(logger),
		arpPath:  procARPPath,
		dialer:   d.DialContext,
		pokeWait: 300 * time.Millisecond,
	}
}

// Method implements Discoverer.
func (s *CacheSweeper) Method() string { return MethodARPCache }

// Check verifies the ARP table can be read.
func (s *CacheSweeper) Check(_ context.Context) error {
	f, err := os.Open(s.arpPath)
	if err != nil {
		return errors.ErrDiscoveryUnavailable(MethodARPCache, err)
	}
	return f.Close()
}

// Discover pokes every address and collects complete neighbour entries.
func (s *CacheSweeper) Discover(ctx context.Context, network string) ([]Host, error) {
	prefix, err := parseTarget(network)
	if err != nil {
		return nil, err
	}

	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	s.poke(sweepCtx, hostAddrs(prefix))

	f, err := os.Open(s.arpPath)
	if err != nil {
		return nil, errors.ErrDiscoveryUnavailable(MethodARPCache, err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseARPTable(f, prefix)
	if err != nil {
		return nil, errors.ErrDiscoveryFailed(network, err)
	}
	return finalize(entries), nil
}

func (s *CacheSweeper) poke(ctx context.Context, addrs []netip.Addr) {
	work := make(chan netip.Addr)
	var wg sync.WaitGroup

	workers := pokeWorkers
	if len(addrs) < workers {
		workers = len(addrs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range work {
				s.pokeOne(ctx, a)
			}
		}()
	}

feed:
	for _, a := range addrs {
		select {
		case <-ctx.Done():
			break feed
		case work <- a:
		}
	}
	close(work)
	wg.Wait()
}

func (s *CacheSweeper) pokeOne(ctx context.Context, a netip.Addr) {
	for _, port := range pokePorts {
		dialCtx, cancel := context.WithTimeout(ctx, s.pokeWait)
		conn, err := s.dialer(dialCtx, "tcp", net.JoinHostPort(a.String(), port))
		cancel()
		if err == nil {
			_ = conn.Close()
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// parseARPTable reads /proc/net/arp content and returns IP -> MAC for complete
// entries inside prefix.
func parseARPTable(r io.Reader, prefix netip.Prefix) (map[string]string, error) {
	sc := bufio.NewScanner(r)
	out := map[string]string{}
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			continue
		}
		// IP address  HW type  Flags  HW address  Mask  Device
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		addr, err := netip.ParseAddr(fields[0])
		if err != nil || !prefix.Contains(addr) {
			continue
		}
		if !flagComplete(fields[2]) {
			continue
		}
		mac := NormalizeMAC(fields[3])
		if mac == "" {
			continue
		}
		out[addr.String()] = mac
	}
	return out, sc.Err()
}

func flagComplete(flags string) bool {
	v, err := strconv.ParseInt(flags, 0, 32)
	return err == nil && v&arpFlagComplete != 0
}
