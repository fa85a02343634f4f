//go:build !pcap

package discovery

import "github.com/anstrom/netsentinel/internal/logging"

// Without libpcap the ARP method reads the kernel neighbour cache instead.
// Build with -tags pcap for the link-layer sweep.
func newARPSweeper(cfg Config, logger *logging.Logger) Discoverer {
	logger.Warn("Built without pcap, ARP discovery falls back to the neighbour cache",
		"method", MethodARP, "fallback", MethodARPCache)
	return NewCacheSweeper(cfg, logger)
}
