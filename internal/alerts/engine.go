// Package alerts detects security-relevant changes between consecutive
// snapshots and hands the resulting alerts to a notification dispatcher.
package alerts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/probe"
	"github.com/anstrom/netsentinel/internal/risk"
)

// Diff compares current against previous and returns the alerts to raise,
// all referencing current.ID. previous may be nil for the first scan, in
// which case only devices already at HIGH risk are reported.
//
// Devices are matched by identity key (MAC, else IP), falling back to the
// IP when one MAC answers on several addresses. Alerts follow the
// current device order, then rule order: new device, level change, new
// ports ascending. Diff is pure and safe for concurrent use.
func Diff(previous, current *models.Snapshot) []models.Alert {
	out := []models.Alert{}
	if current == nil {
		return out
	}

	if previous == nil {
		for i := range current.Devices {
			d := &current.Devices[i]
			if d.Risk.Level == models.RiskHigh {
				out = append(out, newAlert(current.ID, d, models.AlertNewHighRisk, models.SeverityHigh,
					fmt.Sprintf("High risk device on first scan: %s (%s)%s", d.IP, d.Vendor, topReason(d))))
			}
		}
		return out
	}

	known := indexByIdentity(previous.Devices)
	counts := make(map[string]int, len(current.Devices))
	for i := range current.Devices {
		counts[current.Devices[i].IdentityKey()]++
	}

	for i := range current.Devices {
		d := &current.Devices[i]
		prev, seen := match(known[d.IdentityKey()], d, counts[d.IdentityKey()])

		if !seen {
			out = append(out, newAlert(current.ID, d, models.AlertNewDevice, models.SeverityOf(d.Risk.Level),
				fmt.Sprintf("New device detected: %s (%s) risk %s", d.IP, d.Vendor, d.Risk.Level)))
			continue
		}

		if a, ok := levelChange(current.ID, prev, d); ok {
			out = append(out, a)
		}

		for _, port := range newPorts(prev, d) {
			sev := models.SeverityMedium
			if risk.IsHighRiskPort(port.Port) {
				sev = models.SeverityHigh
			}
			out = append(out, newAlert(current.ID, d, models.AlertNewOpenPort, sev,
				fmt.Sprintf("New open port on %s: %d (%s)", d.IP, port.Port, port.Service)))
		}
	}
	return out
}

func indexByIdentity(devices []models.Device) map[string][]*models.Device {
	out := make(map[string][]*models.Device, len(devices))
	for i := range devices {
		key := devices[i].IdentityKey()
		out[key] = append(out[key], &devices[i])
	}
	return out
}

// match pairs cur with its previous record. A MAC answering on several
// addresses is matched by IP; the MAC alone is trusted only when it maps to
// exactly one device in both snapshots, which covers DHCP address changes.
func match(candidates []*models.Device, cur *models.Device, currentCount int) (*models.Device, bool) {
	for _, c := range candidates {
		if c.IP == cur.IP {
			return c, true
		}
	}
	if len(candidates) == 1 && currentCount == 1 {
		return candidates[0], true
	}
	return nil, false
}

// levelChange reports a rise in risk level. Jumping into HIGH from LOW or
// MINIMAL is NEW_HIGH_RISK; every other rise is RISK_ESCALATION.
func levelChange(scanID int64, prev, cur *models.Device) (models.Alert, bool) {
	from, to := prev.Risk.Level, cur.Risk.Level
	if to.Rank() <= from.Rank() {
		return models.Alert{}, false
	}

	kind := models.AlertRiskEscalation
	if to == models.RiskHigh && from.Rank() <= models.RiskLow.Rank() {
		kind = models.AlertNewHighRisk
	}
	msg := fmt.Sprintf("Risk increased on %s: %s -> %s%s", cur.IP, from, to, topReason(cur))
	return newAlert(scanID, cur, kind, models.SeverityOf(to), msg), true
}

func newPorts(prev, cur *models.Device) []models.Port {
	before := prev.PortSet()
	var out []models.Port
	for _, p := range cur.Ports {
		if _, ok := before[p.Port]; !ok {
			if p.Service == "" {
				p.Service = probe.ServiceName(p.Port)
			}
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Port < out[j].Port })
	return out
}

func topReason(d *models.Device) string {
	for _, r := range d.Risk.Reasons {
		if strings.HasPrefix(r, string(models.RiskHigh)+":") {
			return " - " + r
		}
	}
	return ""
}

func newAlert(scanID int64, d *models.Device, kind models.AlertType, sev models.Severity, msg string) models.Alert {
	return models.Alert{
		ScanID:    scanID,
		DeviceIP:  d.IP,
		AlertType: kind,
		Message:   msg,
		Severity:  sev,
	}
}
