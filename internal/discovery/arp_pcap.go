//go:build pcap

package discovery

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
)

const (
	snapLen       = 1024
	requestPacing = 2 * time.Millisecond
)

var broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// ARPSweeper broadcasts an ARP request for every address and collects the
// replies that arrive before the sweep timeout. It needs CAP_NET_RAW.
type ARPSweeper struct {
	cfg    Config
	logger *logging.Logger
}

func newARPSweeper(cfg Config, logger *logging.Logger) Discoverer {
	return &ARPSweeper{cfg: cfg, logger: logger}
}

// Method implements Discoverer.
func (s *ARPSweeper) Method() string { return MethodARP }

// Check opens and closes a capture handle to prove raw access.
func (s *ARPSweeper) Check(_ context.Context) error {
	name := s.cfg.Interface
	if name == "" {
		devs, err := pcap.FindAllDevs()
		if err != nil {
			return errors.ErrDiscoveryUnavailable(MethodARP, err)
		}
		if len(devs) == 0 {
			return errors.ErrDiscoveryUnavailable(MethodARP, nil)
		}
		name = devs[0].Name
	}
	handle, err := pcap.OpenLive(name, snapLen, false, time.Second)
	if err != nil {
		return errors.ErrDiscoveryUnavailable(MethodARP, err)
	}
	handle.Close()
	return nil
}

// Discover sweeps network and returns the hosts that replied.
func (s *ARPSweeper) Discover(ctx context.Context, network string) ([]Host, error) {
	prefix, err := parseTarget(network)
	if err != nil {
		return nil, err
	}

	iface, srcIP, err := interfaceForPrefix(prefix, s.cfg.Interface)
	if err != nil {
		return nil, errors.ErrDiscoveryFailed(network, err)
	}
	if srcIP == nil || len(iface.HardwareAddr) != 6 {
		return nil, errors.ErrDiscoveryUnavailable(MethodARP, nil)
	}

	handle, err := pcap.OpenLive(iface.Name, snapLen, false, 100*time.Millisecond)
	if err != nil {
		return nil, errors.ErrDiscoveryUnavailable(MethodARP, err)
	}
	if err := handle.SetBPFFilter("arp"); err != nil {
		handle.Close()
		return nil, errors.ErrDiscoveryFailed(network, err)
	}

	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		replies = map[string]string{}
		wg      sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		source := gopacket.NewPacketSource(handle, handle.LinkType())
		packets := source.Packets()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case packet, ok := <-packets:
				if !ok {
					return
				}
				ip, mac, ok := parseReply(packet, prefix)
				if !ok {
					continue
				}
				mu.Lock()
				if _, seen := replies[ip]; !seen {
					replies[ip] = mac
				}
				mu.Unlock()
			}
		}
	}()

	sent := 0
	for _, dst := range hostAddrs(prefix) {
		if sweepCtx.Err() != nil {
			break
		}
		if err := writeRequest(handle, srcIP, iface.HardwareAddr, dst); err != nil {
			s.logger.Debug("ARP request failed", "target", dst, "error", err)
			continue
		}
		sent++
		time.Sleep(requestPacing)
	}

	<-sweepCtx.Done()
	wg.Wait()
	handle.Close()

	mu.Lock()
	defer mu.Unlock()
	s.logger.InfoDiscovery("ARP sweep finished", network, "requests", sent, "replies", len(replies))
	return finalize(replies), nil
}

func parseReply(packet gopacket.Packet, prefix netip.Prefix) (string, string, bool) {
	layer := packet.Layer(layers.LayerTypeARP)
	if layer == nil {
		return "", "", false
	}
	arp, ok := layer.(*layers.ARP)
	if !ok || arp.Operation != layers.ARPReply {
		return "", "", false
	}
	addr, ok := netip.AddrFromSlice(arp.SourceProtAddress)
	if !ok || !prefix.Contains(addr) {
		return "", "", false
	}
	mac := NormalizeMAC(net.HardwareAddr(arp.SourceHwAddress).String())
	if mac == "" {
		return "", "", false
	}
	return addr.String(), mac, true
}

func writeRequest(handle *pcap.Handle, srcIP net.IP, srcMAC net.HardwareAddr, dst netip.Addr) error {
	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       broadcastMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	dstIP := dst.As4()
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(srcMAC),
		SourceProtAddress: []byte(srcIP.To4()),
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    dstIP[:],
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, arp); err != nil {
		return err
	}
	return handle.WritePacketData(buf.Bytes())
}
