// Package report renders snapshots as PDF security reports.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/anstrom/netsentinel/internal/models"
)

const (
	maxPortsListed  = 3
	maxVendorLength = 15
)

// Options tune a generated report.
type Options struct {
	// Analysis is optional model commentary appended as its own section.
	Analysis string
	// GeneratedAt defaults to the current time.
	GeneratedAt time.Time
}

// Filename returns the attachment name for a report generated at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("netsentinel_report_%s.pdf", t.Format("20060102_150405"))
}

// PDF renders the snapshot as an A4 report.
func PDF(snapshot *models.Snapshot, opts Options) ([]byte, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("no snapshot to report on")
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	addHeader(pdf, snapshot, opts.GeneratedAt)
	addSummary(pdf, snapshot)
	addInventory(pdf, snapshot)
	addFindings(pdf, snapshot)
	if strings.TrimSpace(opts.Analysis) != "" {
		addAnalysis(pdf, opts.Analysis)
	}
	addFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func addHeader(pdf *gofpdf.Fpdf, s *models.Snapshot, generated time.Time) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 136, 85)
	pdf.CellFormat(0, 14, "Network Sentinel", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 14)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 8, "Security Assessment Report", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 6, "Report Generated: "+generated.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Scan Time: "+s.ScanTime.UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Network: "+s.Network, "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 110, 160)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func tableHeader(pdf *gofpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFillColor(30, 30, 46)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 10)
	for i, c := range cols {
		pdf.CellFormat(widths[i], 8, c, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func addSummary(pdf *gofpdf.Fpdf, s *models.Snapshot) {
	sectionTitle(pdf, "Executive Summary")

	summary := s.Summary()
	rows := [][2]string{
		{"Total Devices", fmt.Sprint(summary.DeviceCount)},
		{"Open Ports", fmt.Sprint(summary.TotalOpenPorts)},
		{"High Risk Devices", fmt.Sprint(summary.HighRiskCount)},
		{"Medium Risk Devices", fmt.Sprint(summary.MediumRiskCount)},
		{"Low Risk Devices", fmt.Sprint(summary.LowRiskCount)},
		{"Minimal Risk Devices", fmt.Sprint(summary.MinimalRiskCount)},
	}

	widths := []float64{80, 40}
	tableHeader(pdf, []string{"Metric", "Value"}, widths)
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(40, 40, 40)
	for i, r := range rows {
		shade(pdf, i)
		pdf.CellFormat(widths[0], 7, r[0], "1", 0, "L", true, 0, "")
		pdf.CellFormat(widths[1], 7, r[1], "1", 1, "L", true, 0, "")
	}
	pdf.Ln(6)
}

func addInventory(pdf *gofpdf.Fpdf, s *models.Snapshot) {
	sectionTitle(pdf, "Device Inventory")

	widths := []float64{32, 40, 38, 45, 25}
	tableHeader(pdf, []string{"IP Address", "MAC Address", "Vendor", "Open Ports", "Risk"}, widths)

	pdf.SetFont("Arial", "", 9)
	for i, d := range s.Devices {
		shade(pdf, i)
		r, g, b := levelColor(d.Risk.Level)
		pdf.SetTextColor(40, 40, 40)
		pdf.CellFormat(widths[0], 7, d.IP, "1", 0, "L", true, 0, "")
		pdf.CellFormat(widths[1], 7, orNA(d.MAC), "1", 0, "L", true, 0, "")
		pdf.CellFormat(widths[2], 7, truncate(orUnknown(d.Vendor), maxVendorLength), "1", 0, "L", true, 0, "")
		pdf.CellFormat(widths[3], 7, portsCell(d.Ports), "1", 0, "L", true, 0, "")
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(widths[4], 7, string(d.Risk.Level), "1", 1, "L", true, 0, "")
	}
	pdf.SetTextColor(40, 40, 40)
	pdf.Ln(6)
}

func addFindings(pdf *gofpdf.Fpdf, s *models.Snapshot) {
	sectionTitle(pdf, "Security Findings")

	found := false
	for _, d := range s.Devices {
		if len(d.Risk.Reasons) == 0 {
			continue
		}
		found = true
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s (%s)", d.IP, orUnknown(d.Vendor)), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, reason := range d.Risk.Reasons {
			pdf.MultiCell(0, 5, "  - "+reason, "", "L", false)
		}
		pdf.Ln(2)
	}
	if !found {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 6, "No significant security issues detected.", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addAnalysis(pdf *gofpdf.Fpdf, analysis string) {
	sectionTitle(pdf, "AI Security Analysis")
	pdf.SetTextColor(40, 40, 40)

	for _, para := range strings.Split(analysis, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if strings.HasPrefix(para, "**") || strings.HasPrefix(para, "#") {
			pdf.SetFont("Arial", "B", 10)
			para = strings.TrimSpace(strings.NewReplacer("**", "", "#", "").Replace(para))
		} else {
			pdf.SetFont("Arial", "", 10)
		}
		pdf.MultiCell(0, 5, para, "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(4)
}

func addFooter(pdf *gofpdf.Fpdf) {
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 5, "Generated by Network Sentinel", "", 1, "L", false, 0, "")
}

func shade(pdf *gofpdf.Fpdf, row int) {
	if row%2 == 0 {
		pdf.SetFillColor(255, 255, 255)
	} else {
		pdf.SetFillColor(240, 240, 240)
	}
}

func levelColor(l models.RiskLevel) (r, g, b int) {
	switch l {
	case models.RiskHigh:
		return 220, 53, 69
	case models.RiskMedium:
		return 255, 149, 0
	case models.RiskLow:
		return 200, 160, 0
	default:
		return 52, 160, 89
	}
}

func portsCell(ports []models.Port) string {
	if len(ports) == 0 {
		return "None"
	}
	n := min(len(ports), maxPortsListed)
	parts := make([]string, n)
	for i := range n {
		parts[i] = fmt.Sprint(ports[i].Port)
	}
	out := strings.Join(parts, ", ")
	if extra := len(ports) - n; extra > 0 {
		out += fmt.Sprintf(" (+%d)", extra)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
