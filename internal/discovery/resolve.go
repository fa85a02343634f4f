package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/miekg/dns"

	"github.com/anstrom/netsentinel/internal/logging"
)

const (
	resolvConfPath    = "/etc/resolv.conf"
	defaultDNSTimeout = time.Second
	oidSysName        = ".1.3.6.1.2.1.1.5.0"
)

// HostnameResolver maps an address to a hostname. An empty result with a nil
// error means the address has no name.
type HostnameResolver interface {
	LookupHostname(ctx context.Context, ip string) (string, error)
}

// DNSResolver answers PTR queries against the configured name server.
type DNSResolver struct {
	server  string
	client  *dns.Client
	timeout time.Duration
}

// NewDNSResolver creates a PTR resolver. An empty server means the first
// name server from /etc/resolv.conf.
func NewDNSResolver(server string, timeout time.Duration) (*DNSResolver, error) {
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}
	if server == "" {
		conf, err := dns.ClientConfigFromFile(resolvConfPath)
		if err != nil {
			return nil, fmt.Errorf("read resolver config: %w", err)
		}
		if len(conf.Servers) == 0 {
			return nil, fmt.Errorf("no name servers in %s", resolvConfPath)
		}
		server = net.JoinHostPort(conf.Servers[0], conf.Port)
	} else if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	return &DNSResolver{
		server:  server,
		client:  &dns.Client{Net: "udp", Timeout: timeout},
		timeout: timeout,
	}, nil
}

// LookupHostname returns the first PTR target for ip.
func (r *DNSResolver) LookupHostname(ctx context.Context, ip string) (string, error) {
	name, err := dns.ReverseAddr(ip)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msg := new(dns.Msg)
	msg.SetQuestion(name, dns.TypePTR)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return "", err
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", nil
	}
	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			return strings.TrimSuffix(ptr.Ptr, "."), nil
		}
	}
	return "", nil
}

// SNMPResolver reads sysName.0 with an SNMPv2c community.
type SNMPResolver struct {
	community string
	port      uint16
	timeout   time.Duration
}

// NewSNMPResolver creates a sysName resolver.
func NewSNMPResolver(community string, port int, timeout time.Duration) *SNMPResolver {
	if port <= 0 {
		port = 161
	}
	return &SNMPResolver{community: community, port: uint16(port), timeout: timeout}
}

// LookupHostname queries sysName.0 on ip.
func (r *SNMPResolver) LookupHostname(ctx context.Context, ip string) (string, error) {
	client := &gosnmp.GoSNMP{
		Target:    ip,
		Port:      r.port,
		Community: r.community,
		Version:   gosnmp.Version2c,
		Timeout:   r.timeout,
		Retries:   0,
		MaxOids:   gosnmp.MaxOids,
		Context:   ctx,
	}
	if err := client.Connect(); err != nil {
		return "", err
	}
	defer func() { _ = client.Conn.Close() }()

	result, err := client.Get([]string{oidSysName})
	if err != nil {
		return "", err
	}
	if result.Error != gosnmp.NoError {
		return "", fmt.Errorf("SNMP error: %s", result.Error)
	}
	for _, v := range result.Variables {
		if v.Type != gosnmp.OctetString {
			continue
		}
		if b, ok := v.Value.([]byte); ok {
			return strings.TrimSpace(string(b)), nil
		}
	}
	return "", nil
}

// ChainResolver tries each resolver in order and returns the first name.
type ChainResolver struct {
	resolvers []HostnameResolver
	logger    *logging.Logger
}

// NewChainResolver combines resolvers. Nil entries are skipped.
func NewChainResolver(logger *logging.Logger, resolvers ...HostnameResolver) *ChainResolver {
	c := &ChainResolver{logger: logging.OrDefault(logger)}
	for _, r := range resolvers {
		if r != nil {
			c.resolvers = append(c.resolvers, r)
		}
	}
	return c
}

// LookupHostname implements HostnameResolver. Individual resolver failures
// are logged at debug level and never returned.
func (c *ChainResolver) LookupHostname(ctx context.Context, ip string) (string, error) {
	for _, r := range c.resolvers {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		name, err := r.LookupHostname(ctx, ip)
		if err != nil {
			c.logger.Debug("Hostname lookup failed", "ip", ip, "resolver", fmt.Sprintf("%T", r), "error", err)
			continue
		}
		if name != "" {
			return name, nil
		}
	}
	return "", nil
}

// Len returns the number of resolvers in the chain.
func (c *ChainResolver) Len() int {
	return len(c.resolvers)
}
