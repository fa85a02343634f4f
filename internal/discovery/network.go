package discovery

import (
	"bufio"
	"io"
	"net"
	"net/netip"
	"os"
	"strings"

	"github.com/anstrom/netsentinel/internal/logging"
)

// FallbackNetwork is swept when no local network can be inferred.
const FallbackNetwork = "192.168.1.0/24"

const procRoutePath = "/proc/net/route"

// LocalNetwork infers the network to sweep: the IPv4 network of the
// interface carrying the default route, then the first non-loopback
// interface that is up, then FallbackNetwork.
func LocalNetwork(logger *logging.Logger) string {
	logger = logging.OrDefault(logger)

	if name, err := defaultRouteInterface(procRoutePath); err == nil && name != "" {
		if iface, err := net.InterfaceByName(name); err == nil {
			if network, ok := interfaceNetwork(iface); ok {
				return network
			}
		}
	}

	ifaces, err := net.Interfaces()
	if err == nil {
		for i := range ifaces {
			iface := &ifaces[i]
			if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
				continue
			}
			if network, ok := interfaceNetwork(iface); ok {
				return network
			}
		}
	}

	logger.Warn("Could not infer local network, using fallback", "network", FallbackNetwork)
	return FallbackNetwork
}

func defaultRouteInterface(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return parseDefaultRoute(f)
}

// parseDefaultRoute reads a /proc/net/route table and returns the interface
// of the first default (destination 00000000) route.
func parseDefaultRoute(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 8 {
			continue
		}
		// Iface Destination Gateway Flags RefCnt Use Metric Mask
		if fields[1] == "00000000" && fields[7] == "00000000" {
			return fields[0], nil
		}
	}
	return "", sc.Err()
}

func interfaceNetwork(iface *net.Interface) (string, bool) {
	addrs, err := iface.Addrs()
	if err != nil {
		return "", false
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.To4() == nil || ipnet.IP.IsLoopback() {
			continue
		}
		if network, ok := networkOf(ipnet); ok {
			return network, true
		}
	}
	return "", false
}

func networkOf(ipnet *net.IPNet) (string, bool) {
	a, ok := netip.AddrFromSlice(ipnet.IP.To4())
	if !ok {
		return "", false
	}
	bits, _ := ipnet.Mask.Size()
	if len(ipnet.Mask) == net.IPv6len {
		bits -= 96
	}
	if bits < maxNetworkSizeBits {
		// Sweeping more than a /16 is refused; narrow to the host's /24.
		bits = 24
	}
	return netip.PrefixFrom(a, bits).Masked().String(), true
}
