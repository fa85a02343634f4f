// Package discovery finds responding hosts on the local network.
// It offers a link-layer ARP sweep (built with -tags pcap), an ARP-cache
// sweep that needs no raw sockets, and an nmap ping sweep. Vendors are
// resolved from a static OUI table and hostnames through pluggable resolvers.
package discovery

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sort"
	"time"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
)

const (
	defaultSweepTimeout = 3 * time.Second
	// Sweeps are limited to /16 or smaller networks.
	maxNetworkSizeBits = 16
)

//go:generate mockgen -destination=mocks/mock_discovery.go -package=mocks github.com/anstrom/netsentinel/internal/discovery Discoverer,HostnameResolver

// Host is one responding address found by a sweep.
type Host struct {
	IP     string
	MAC    string
	Vendor string
}

// Discoverer sweeps a network for responding hosts.
type Discoverer interface {
	// Check verifies the capability the sweep depends on. It is called once
	// per scan before any sweep.
	Check(ctx context.Context) error
	// Discover runs one bounded sweep. Hosts that do not answer before the
	// sweep timeout are absent from the result.
	Discover(ctx context.Context, network string) ([]Host, error)
	// Method names the sweep for logs and metrics.
	Method() string
}

// Config selects and tunes a discoverer.
type Config struct {
	Method       string
	Interface    string
	SweepTimeout time.Duration
}

// Method names.
const (
	MethodARP      = "arp"
	MethodARPCache = "arp-cache"
	MethodNmap     = "nmap"
)

// New returns the discoverer named by cfg.Method.
func New(cfg Config, logger *logging.Logger) (Discoverer, error) {
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = defaultSweepTimeout
	}
	logger = logging.OrDefault(logger).WithComponent("discovery")

	switch cfg.Method {
	case MethodARP, "":
		return newARPSweeper(cfg, logger), nil
	case MethodARPCache:
		return NewCacheSweeper(cfg, logger), nil
	case MethodNmap:
		return NewNmapSweeper(cfg, logger), nil
	default:
		return nil, errors.ErrConfigInvalid("scanning.discovery_method", cfg.Method)
	}
}

// parseTarget validates a sweep target and returns its prefix.
func parseTarget(network string) (netip.Prefix, error) {
	prefix, err := netip.ParsePrefix(network)
	if err != nil {
		return netip.Prefix{}, errors.NewConfigFieldError(errors.CodeTargetInvalid,
			fmt.Sprintf("invalid network %q", network), "network", network)
	}
	if !prefix.Addr().Is4() {
		return netip.Prefix{}, errors.NewConfigFieldError(errors.CodeTargetInvalid,
			"only IPv4 networks can be swept", "network", network)
	}
	if prefix.Bits() < maxNetworkSizeBits {
		return netip.Prefix{}, errors.NewConfigFieldError(errors.CodeTargetInvalid,
			fmt.Sprintf("network %s is larger than /%d", network, maxNetworkSizeBits), "network", network)
	}
	return prefix.Masked(), nil
}

// hostAddrs lists the usable host addresses in prefix, skipping the network
// and broadcast addresses for prefixes shorter than /31.
func hostAddrs(prefix netip.Prefix) []netip.Addr {
	prefix = prefix.Masked()
	first := prefix.Addr()
	var out []netip.Addr
	for a := first; prefix.Contains(a); a = a.Next() {
		out = append(out, a)
		if !a.Next().IsValid() {
			break
		}
	}
	if prefix.Bits() < 31 && len(out) >= 2 {
		out = out[1 : len(out)-1]
	}
	return out
}

// finalize de-duplicates hosts by IP, fills the vendor, and sorts by address.
func finalize(hosts map[string]string) []Host {
	out := make([]Host, 0, len(hosts))
	for ip, mac := range hosts {
		out = append(out, Host{IP: ip, MAC: mac, Vendor: LookupVendor(mac)})
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := netip.ParseAddr(out[i].IP)
		b, errB := netip.ParseAddr(out[j].IP)
		if errA != nil || errB != nil {
			return out[i].IP < out[j].IP
		}
		return a.Less(b)
	})
	return out
}

// interfaceForPrefix returns the interface holding an address inside prefix.
func interfaceForPrefix(prefix netip.Prefix, name string) (*net.Interface, net.IP, error) {
	if name != "" {
		iface, err := net.InterfaceByName(name)
		if err != nil {
			return nil, nil, err
		}
		return iface, interfaceIPv4(iface), nil
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, nil, err
	}
	for i := range ifaces {
		iface := &ifaces[i]
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			a, ok := netip.AddrFromSlice(ipnet.IP.To4())
			if ok && prefix.Contains(a) {
				return iface, ipnet.IP.To4(), nil
			}
		}
	}
	return nil, nil, fmt.Errorf("no interface on %s", prefix)
}

func interfaceIPv4(iface *net.Interface) net.IP {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok {
			if ip := ipnet.IP.To4(); ip != nil {
				return ip
			}
		}
	}
	return nil
}
