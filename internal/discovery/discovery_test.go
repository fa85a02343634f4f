package discovery

import (
	"context"
	stderrors "errors"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ullaakut/nmap/v3"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
)

const sampleARPTable = `IP address       HW type     Flags       HW address            Mask     Device
192.168.1.1      0x1         0x2         b8:27:eb:12:34:56     *        eth0
192.168.1.20     0x1         0x2         aa:bb:cc:dd:ee:ff     *        eth0
192.168.1.30     0x1         0x0         00:00:00:00:00:00     *        eth0
192.168.1.40     0x1         0x2         00:11:22:33:44:55     *        eth0
10.0.0.7         0x1         0x2         00:50:56:aa:bb:cc     *        eth1
`

func TestLookupVendor(t *testing.T) {
	tests := []struct {
		mac  string
		want string
	}{
		{"B8:27:EB:00:11:22", "Raspberry Pi"},
		{"b8-27-eb-00-11-22", "Raspberry Pi"},
		{"00:50:56:01:02:03", "VMware"},
		{"52:54:00:ab:cd:ef", "QEMU/KVM"},
		{"F4:39:09:00:00:01", "HP"},
		{"DA:A1:19:00:00:01", VendorRandomized},
		{"00:11:22:33:44:55", VendorUnknown},
		{"", VendorUnknown},
		{"garbage", VendorUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.mac, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupVendor(tt.mac))
		})
	}
}

func TestNormalizeMAC(t *testing.T) {
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", NormalizeMAC("aa-bb-cc-dd-ee-ff"))
	assert.Equal(t, "", NormalizeMAC("00:00:00:00:00:00"))
	assert.Equal(t, "", NormalizeMAC("ff:ff:ff:ff:ff:ff"))
	assert.Equal(t, "", NormalizeMAC("not a mac"))
}

func TestParseARPTable(t *testing.T) {
	prefix := netip.MustParsePrefix("192.168.1.0/24")
	got, err := parseARPTable(strings.NewReader(sampleARPTable), prefix)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"192.168.1.1":  "B8:27:EB:12:34:56",
		"192.168.1.20": "AA:BB:CC:DD:EE:FF",
		"192.168.1.40": "00:11:22:33:44:55",
	}, got)
}

func TestParseDefaultRoute(t *testing.T) {
	table := `Iface	Destination	Gateway 	Flags	RefCnt	Use	Metric	Mask		MTU	Window	IRTT
docker0	000011AC	00000000	0001	0	0	0	0000FFFF	0	0	0
wlan0	00000000	0101A8C0	0003	0	0	600	00000000	0	0	0
wlan0	0001A8C0	00000000	0001	0	0	600	00FFFFFF	0	0	0
`
	name, err := parseDefaultRoute(strings.NewReader(table))
	require.NoError(t, err)
	assert.Equal(t, "wlan0", name)

	name, err = parseDefaultRoute(strings.NewReader("Iface\tDestination\n"))
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestNetworkOf(t *testing.T) {
	got, ok := networkOf(&net.IPNet{IP: net.ParseIP("10.1.2.3"), Mask: net.CIDRMask(20, 32)})
	require.True(t, ok)
	assert.Equal(t, "10.1.0.0/20", got)

	got, ok = networkOf(&net.IPNet{IP: net.ParseIP("10.1.2.3"), Mask: net.CIDRMask(8, 32)})
	require.True(t, ok)
	assert.Equal(t, "10.1.2.0/24", got, "oversized networks narrow to /24")
}

func TestLocalNetworkIsValidCIDR(t *testing.T) {
	network := LocalNetwork(logging.Discard())
	_, err := netip.ParsePrefix(network)
	assert.NoError(t, err)
}

func TestParseTarget(t *testing.T) {
	prefix, err := parseTarget("192.168.1.77/24")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.0/24", prefix.String())

	for _, bad := range []string{"nope", "10.0.0.0/8", "fe80::/64"} {
		_, err := parseTarget(bad)
		assert.True(t, errors.IsCode(err, errors.CodeTargetInvalid), bad)
	}
}

func TestHostAddrs(t *testing.T) {
	addrs := hostAddrs(netip.MustParsePrefix("10.0.0.0/29"))
	require.Len(t, addrs, 6)
	assert.Equal(t, "10.0.0.1", addrs[0].String())
	assert.Equal(t, "10.0.0.6", addrs[5].String())

	assert.Len(t, hostAddrs(netip.MustParsePrefix("10.0.0.4/31")), 2)
	assert.Len(t, hostAddrs(netip.MustParsePrefix("10.0.0.4/32")), 1)
	assert.Len(t, hostAddrs(netip.MustParsePrefix("10.0.0.0/24")), 254)
}

func TestFinalizeSortsAndResolvesVendor(t *testing.T) {
	hosts := finalize(map[string]string{
		"10.0.0.10": "00:50:56:00:00:01",
		"10.0.0.2":  "",
		"10.0.0.9":  "B8:27:EB:00:00:02",
	})
	require.Len(t, hosts, 3)
	assert.Equal(t, []string{"10.0.0.2", "10.0.0.9", "10.0.0.10"},
		[]string{hosts[0].IP, hosts[1].IP, hosts[2].IP})
	assert.Equal(t, VendorUnknown, hosts[0].Vendor)
	assert.Equal(t, "Raspberry Pi", hosts[1].Vendor)
	assert.Equal(t, "VMware", hosts[2].Vendor)
}

func TestHostsFromNmap(t *testing.T) {
	hosts := []nmap.Host{
		{
			Status: nmap.Status{State: "up"},
			Addresses: []nmap.Address{
				{Addr: "192.168.1.5", AddrType: "ipv4"},
				{Addr: "b8:27:eb:01:02:03", AddrType: "mac", Vendor: "Raspberry Pi Foundation"},
			},
		},
		{Status: nmap.Status{State: "down"}, Addresses: []nmap.Address{{Addr: "192.168.1.6", AddrType: "ipv4"}}},
		{Status: nmap.Status{State: "up"}, Addresses: []nmap.Address{{Addr: "192.168.1.7", AddrType: "ipv4"}}},
	}

	got := hostsFromNmap(hosts)
	assert.Equal(t, map[string]string{
		"192.168.1.5": "B8:27:EB:01:02:03",
		"192.168.1.7": "",
	}, got)
}

func TestNew(t *testing.T) {
	tests := []struct {
		method  string
		want    string
		wantErr bool
	}{
		{MethodARPCache, MethodARPCache, false},
		{MethodNmap, MethodNmap, false},
		{"icmp", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			d, err := New(Config{Method: tt.method}, logging.Discard())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Method())
		})
	}

	d, err := New(Config{Method: MethodARP}, logging.Discard())
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestCacheSweeperCheckMissingTable(t *testing.T) {
	s := NewCacheSweeper(Config{SweepTimeout: time.Second}, logging.Discard())
	s.arpPath = filepath.Join(t.TempDir(), "missing")

	err := s.Check(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDiscoveryUnavailable))
	assert.True(t, errors.IsFatal(err))
}

func TestCacheSweeperDiscover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arp")
	require.NoError(t, os.WriteFile(path, []byte(sampleARPTable), 0600))

	s := NewCacheSweeper(Config{SweepTimeout: 2 * time.Second}, logging.Discard())
	s.arpPath = path

	var poked atomic.Int32
	s.dialer = func(ctx context.Context, network, addr string) (net.Conn, error) {
		poked.Add(1)
		return nil, stderrors.New("refused")
	}
	hosts, err := s.Discover(context.Background(), "192.168.1.0/30")
	require.NoError(t, err)
	assert.Equal(t, int32(4), poked.Load(), "two addresses, two poke ports each")

	require.Len(t, hosts, 1)
	assert.Equal(t, "192.168.1.1", hosts[0].IP)
	assert.Equal(t, "Raspberry Pi", hosts[0].Vendor)
}

func TestCacheSweeperRejectsBadTarget(t *testing.T) {
	s := NewCacheSweeper(Config{SweepTimeout: time.Second}, logging.Discard())
	_, err := s.Discover(context.Background(), "bogus")
	assert.Error(t, err)
}

type stubResolver struct {
	name string
	err  error
	hits int
}

func (s *stubResolver) LookupHostname(context.Context, string) (string, error) {
	s.hits++
	return s.name, s.err
}

func TestChainResolver(t *testing.T) {
	failing := &stubResolver{err: stderrors.New("timeout")}
	empty := &stubResolver{}
	named := &stubResolver{name: "printer.lan"}
	never := &stubResolver{name: "unused"}

	chain := NewChainResolver(logging.Discard(), failing, nil, empty, named, never)
	assert.Equal(t, 4, chain.Len())

	name, err := chain.LookupHostname(context.Background(), "10.0.0.3")
	require.NoError(t, err)
	assert.Equal(t, "printer.lan", name)
	assert.Equal(t, 0, never.hits)

	name, err = NewChainResolver(nil, failing).LookupHostname(context.Background(), "10.0.0.3")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestDNSResolver(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	server := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(req)
			if req.Question[0].Name == "5.0.0.10.in-addr.arpa." {
				m.Answer = append(m.Answer, &dns.PTR{
					Hdr: dns.RR_Header{Name: req.Question[0].Name, Rrtype: dns.TypePTR, Class: dns.ClassINET, Ttl: 60},
					Ptr: "nas.home.arpa.",
				})
			} else {
				m.Rcode = dns.RcodeNameError
			}
			_ = w.WriteMsg(m)
		}),
	}
	go func() { _ = server.ActivateAndServe() }()
	defer func() { _ = server.Shutdown() }()
	<-started

	r, err := NewDNSResolver(pc.LocalAddr().String(), time.Second)
	require.NoError(t, err)

	name, err := r.LookupHostname(context.Background(), "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, "nas.home.arpa", name)

	name, err = r.LookupHostname(context.Background(), "10.0.0.6")
	require.NoError(t, err)
	assert.Empty(t, name)
}
