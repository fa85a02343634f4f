package enrich

import (
	"fmt"
	"strings"

	"github.com/anstrom/netsentinel/internal/models"
)

func summaryPrompt(s *models.Snapshot, counts models.RiskCounts) string {
	var b strings.Builder
	b.WriteString("You are assisting the owner of a home network who runs a monitoring tool on their own hardware. ")
	b.WriteString("The scan below was made with their consent on their own network.\n\n")
	b.WriteString("Write a short summary of two or three sentences about the health of this network.\n\n")
	fmt.Fprintf(&b, "Network: %s\n", s.Network)
	fmt.Fprintf(&b, "Devices found: %d\n", s.DeviceCount)
	fmt.Fprintf(&b, "- Needing attention (high risk): %d\n", counts.High)
	fmt.Fprintf(&b, "- Worth reviewing (medium risk): %d\n", counts.Medium)
	fmt.Fprintf(&b, "- Normal (low or minimal risk): %d\n\n", counts.Low+counts.Minimal)
	b.WriteString(`Answer conversationally, for example "Your network has 12 devices and everything looks normal." `)
	b.WriteString(`or "You have 12 devices and 2 may need attention because of open ports."`)
	return b.String()
}

func analysisPrompt(network string, devices []models.Device) string {
	var b strings.Builder
	b.WriteString("You are assisting the owner of a home network who wants to understand what is connected to it. ")
	b.WriteString("This is an audit of their own network.\n\n")
	b.WriteString("Review the scan results and cover:\n")
	b.WriteString("1. **Overview**: what kind of network this looks like\n")
	b.WriteString("2. **Devices**: what types of devices are connected\n")
	b.WriteString("3. **Attention**: devices whose exposed services deserve a closer look\n")
	b.WriteString("4. **Tips**: simple steps to keep the network healthy\n\n")
	fmt.Fprintf(&b, "Network: %s\n", network)
	fmt.Fprintf(&b, "Devices: %d\n\n", len(devices))
	b.WriteString("Device details:\n")
	for i := range devices {
		b.WriteString(deviceLine(&devices[i]))
		b.WriteByte('\n')
	}
	b.WriteString("\nUse plain language and format the answer as markdown.")
	return b.String()
}

func deviceLine(d *models.Device) string {
	vendor := d.Vendor
	if vendor == "" {
		vendor = "Unknown"
	}
	line := fmt.Sprintf("- IP: %s, MAC: %s, Vendor: %s", d.IP, d.MAC, vendor)
	if h := d.HostnameOrEmpty(); h != "" {
		line += ", Hostname: " + h
	}
	if len(d.Ports) > 0 {
		ports := make([]string, len(d.Ports))
		for i, p := range d.Ports {
			ports[i] = fmt.Sprintf("%d/%s", p.Port, p.Service)
		}
		line += ", Open Ports: " + strings.Join(ports, ", ")
	}
	if len(d.Risk.Reasons) > 0 {
		line += ", Risk Issues: " + strings.Join(d.Risk.Reasons, "; ")
	}
	return line
}
