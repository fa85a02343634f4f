package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/anstrom/netsentinel/internal/models"
)

const (
	outputTable = "table"
	outputJSON  = "json"

	timeLayout = "2006-01-02 15:04:05"
)

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use table or json)", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderSnapshot prints the scan header followed by one row per device.
func renderSnapshot(w io.Writer, s *models.Snapshot) error {
	counts := s.RiskCounts()
	fmt.Fprintf(w, "Scan #%d of %s at %s: %d devices (HIGH %d, MEDIUM %d, LOW %d, MINIMAL %d)\n",
		s.ID, s.Network, s.ScanTime.Local().Format(timeLayout), s.DeviceCount,
		counts.High, counts.Medium, counts.Low, counts.Minimal)

	table := tablewriter.NewWriter(w)
	table.Header("IP", "MAC", "Hostname", "Vendor", "Open Ports", "Risk", "Score")
	for i := range s.Devices {
		d := &s.Devices[i]
		if err := table.Append([]string{
			d.IP,
			d.MAC,
			orDash(d.HostnameOrEmpty()),
			orDash(d.Vendor),
			formatPorts(d.Ports),
			string(d.Risk.Level),
			strconv.Itoa(d.Risk.Score),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderHistory(w io.Writer, entries []models.HistoryEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No scans recorded.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Time", "Network", "Devices", "High", "Medium", "Low", "Minimal", "Open Ports")
	for _, e := range entries {
		if err := table.Append([]string{
			strconv.FormatInt(e.ID, 10),
			e.ScanTime.Local().Format(timeLayout),
			e.Network,
			strconv.Itoa(e.DeviceCount),
			strconv.Itoa(e.HighRiskCount),
			strconv.Itoa(e.MediumRiskCount),
			strconv.Itoa(e.LowRiskCount),
			strconv.Itoa(e.MinimalRiskCount),
			strconv.Itoa(e.TotalOpenPorts),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderAlerts(w io.Writer, alerts []models.Alert) error {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No alerts.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Scan", "Time", "Device", "Type", "Severity", "Notified", "Message")
	for _, a := range alerts {
		if err := table.Append([]string{
			strconv.FormatInt(a.ID, 10),
			strconv.FormatInt(a.ScanID, 10),
			a.CreatedAt.Local().Format(timeLayout),
			a.DeviceIP,
			string(a.AlertType),
			string(a.Severity),
			strconv.FormatBool(a.Notified),
			a.Message,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func formatPorts(ports []models.Port) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("%d/%s", p.Port, p.Service)
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
