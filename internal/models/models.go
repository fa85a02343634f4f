// Package models defines the data shared by the scan pipeline, the stores and
// the HTTP surface: devices, risk assessments, snapshots and alerts.
package models

import (
	"net/netip"
	"sort"
	"strings"
	"time"
)

// RiskLevel is the ordinal risk classification of a device.
type RiskLevel string

const (
	RiskMinimal RiskLevel = "MINIMAL"
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
)

// RiskLevels lists every level from lowest to highest.
var RiskLevels = []RiskLevel{RiskMinimal, RiskLow, RiskMedium, RiskHigh}

// Rank returns the ordinal position of the level, MINIMAL being 0.
// Unknown levels rank as MINIMAL.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// Valid reports whether l is one of the defined levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskMinimal, RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Port is an open port with its best-effort service label.
type Port struct {
	Port    int    `json:"port"`
	Service string `json:"service"`
}

// RiskAssessment is the scorer's verdict for one device.
type RiskAssessment struct {
	Score   int       `json:"score"`
	Level   RiskLevel `json:"level"`
	Reasons []string  `json:"reasons"`
}

// Device is one responding host inside a snapshot.
type Device struct {
	IP       string         `json:"ip"`
	MAC      string         `json:"mac"`
	Hostname *string        `json:"hostname"`
	Vendor   string         `json:"vendor"`
	Ports    []Port         `json:"ports"`
	Risk     RiskAssessment `json:"risk"`
}

// IdentityKey matches a device across snapshots: the MAC when known, else the IP.
func (d *Device) IdentityKey() string {
	if mac := strings.TrimSpace(d.MAC); mac != "" {
		return strings.ToUpper(mac)
	}
	return d.IP
}

// HostnameOrEmpty returns the resolved hostname or "".
func (d *Device) HostnameOrEmpty() string {
	if d.Hostname == nil {
		return ""
	}
	return *d.Hostname
}

// PortSet returns the device's open port numbers as a set.
func (d *Device) PortSet() map[int]struct{} {
	set := make(map[int]struct{}, len(d.Ports))
	for _, p := range d.Ports {
		set[p.Port] = struct{}{}
	}
	return set
}

// StringPtr returns a pointer to s, or nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SortPorts orders ports ascending and removes duplicates.
func SortPorts(ports []Port) []Port {
	if len(ports) == 0 {
		return []Port{}
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Port < ports[j].Port })
	out := ports[:1]
	for _, p := range ports[1:] {
		if p.Port != out[len(out)-1].Port {
			out = append(out, p)
		}
	}
	return out
}

// LessIP orders two address strings numerically, falling back to string order
// when either side does not parse.
func LessIP(a, b string) bool {
	ap, errA := netip.ParseAddr(a)
	bp, errB := netip.ParseAddr(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return ap.Less(bp)
}

// RiskCounts tallies devices per risk level.
type RiskCounts struct {
	High    int `json:"HIGH"`
	Medium  int `json:"MEDIUM"`
	Low     int `json:"LOW"`
	Minimal int `json:"MINIMAL"`
}

// Add counts one device at the given level.
func (c *RiskCounts) Add(level RiskLevel) {
	switch level {
	case RiskHigh:
		c.High++
	case RiskMedium:
		c.Medium++
	case RiskLow:
		c.Low++
	default:
		c.Minimal++
	}
}

// Snapshot is one completed scan. It is immutable once persisted.
type Snapshot struct {
	ID          int64     `json:"id"`
	ScanTime    time.Time `json:"scan_time"`
	Network     string    `json:"network"`
	DeviceCount int       `json:"device_count"`
	Devices     []Device  `json:"devices"`
}

// NewSnapshot assembles a snapshot: devices are de-duplicated by IP (first
// wins), sorted ascending by IP, and DeviceCount is set to len(Devices).
func NewSnapshot(network string, scanTime time.Time, devices []Device) *Snapshot {
	seen := make(map[string]struct{}, len(devices))
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		if _, dup := seen[d.IP]; dup {
			continue
		}
		seen[d.IP] = struct{}{}
		d.Ports = SortPorts(append([]Port(nil), d.Ports...))
		if d.Risk.Reasons == nil {
			d.Risk.Reasons = []string{}
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return LessIP(out[i].IP, out[j].IP) })

	return &Snapshot{
		ScanTime:    scanTime,
		Network:     network,
		DeviceCount: len(out),
		Devices:     out,
	}
}

// Clone returns a deep copy so callers cannot mutate stored snapshots.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Devices = make([]Device, len(s.Devices))
	for i, d := range s.Devices {
		if d.Hostname != nil {
			h := *d.Hostname
			d.Hostname = &h
		}
		d.Ports = append([]Port{}, d.Ports...)
		d.Risk.Reasons = append([]string{}, d.Risk.Reasons...)
		c.Devices[i] = d
	}
	return &c
}

// FindDevice returns the device with the given IP.
func (s *Snapshot) FindDevice(ip string) (*Device, bool) {
	for i := range s.Devices {
		if s.Devices[i].IP == ip {
			return &s.Devices[i], true
		}
	}
	return nil, false
}

// RiskCounts tallies the snapshot's devices per level.
func (s *Snapshot) RiskCounts() RiskCounts {
	var c RiskCounts
	for _, d := range s.Devices {
		c.Add(d.Risk.Level)
	}
	return c
}

// Summary derives the history entry for the snapshot.
func (s *Snapshot) Summary() HistoryEntry {
	counts := s.RiskCounts()
	entry := HistoryEntry{
		ID:               s.ID,
		ScanTime:         s.ScanTime,
		Network:          s.Network,
		DeviceCount:      s.DeviceCount,
		HighRiskCount:    counts.High,
		MediumRiskCount:  counts.Medium,
		LowRiskCount:     counts.Low,
		MinimalRiskCount: counts.Minimal,
	}
	for _, d := range s.Devices {
		entry.TotalOpenPorts += len(d.Ports)
	}
	return entry
}

// HistoryEntry is the denormalized summary of a snapshot.
type HistoryEntry struct {
	ID               int64     `json:"id" db:"id"`
	ScanTime         time.Time `json:"scan_time" db:"scan_time"`
	Network          string    `json:"network" db:"network"`
	DeviceCount      int       `json:"device_count" db:"device_count"`
	HighRiskCount    int       `json:"high_risk_count" db:"high_risk_count"`
	MediumRiskCount  int       `json:"medium_risk_count" db:"medium_risk_count"`
	LowRiskCount     int       `json:"low_risk_count" db:"low_risk_count"`
	MinimalRiskCount int       `json:"minimal_risk_count" db:"minimal_risk_count"`
	TotalOpenPorts   int       `json:"total_open_ports" db:"total_open_ports"`
}

// AlertType enumerates the conditions the alert engine reports.
type AlertType string

const (
	AlertNewDevice      AlertType = "NEW_DEVICE"
	AlertNewHighRisk    AlertType = "NEW_HIGH_RISK"
	AlertRiskEscalation AlertType = "RISK_ESCALATION"
	AlertNewOpenPort    AlertType = "NEW_OPEN_PORT"
	AlertTest           AlertType = "TEST"
)

// Severity of an alert. It shares the risk level vocabulary.
type Severity string

const (
	SeverityMinimal Severity = "MINIMAL"
	SeverityLow     Severity = "LOW"
	SeverityMedium  Severity = "MEDIUM"
	SeverityHigh    Severity = "HIGH"
)

// SeverityOf maps a risk level onto an alert severity.
func SeverityOf(level RiskLevel) Severity {
	return Severity(level)
}

// Alert is a security-relevant change detected between two snapshots.
type Alert struct {
	ID        int64     `json:"id" db:"id"`
	ScanID    int64     `json:"scan_id" db:"scan_id"`
	DeviceIP  string    `json:"device_ip" db:"device_ip"`
	AlertType AlertType `json:"alert_type" db:"alert_type"`
	Message   string    `json:"message" db:"message"`
	Severity  Severity  `json:"severity" db:"severity"`
	Notified  bool      `json:"notified" db:"notified"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
