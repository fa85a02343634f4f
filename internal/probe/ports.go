package probe

import (
	"fmt"
	"strconv"
)

// Service labels a well-known port.
type Service struct {
	Port int
	Name string
}

// CommonPorts is the default probe list with service labels.
var CommonPorts = []Service{
	{21, "FTP"},
	{22, "SSH"},
	{23, "Telnet"},
	{25, "SMTP"},
	{53, "DNS"},
	{80, "HTTP"},
	{110, "POP3"},
	{143, "IMAP"},
	{443, "HTTPS"},
	{445, "SMB"},
	{993, "IMAPS"},
	{995, "POP3S"},
	{1433, "MSSQL"},
	{1883, "MQTT"},
	{3306, "MySQL"},
	{3389, "RDP"},
	{5432, "PostgreSQL"},
	{5900, "VNC"},
	{6379, "Redis"},
	{8080, "HTTP-Alt"},
	{8443, "HTTPS-Alt"},
	{8883, "MQTT-TLS"},
	{9000, "PHP-FPM"},
	{27017, "MongoDB"},
	{32400, "Plex"},
}

var serviceByPort = func() map[int]string {
	m := make(map[int]string, len(CommonPorts))
	for _, s := range CommonPorts {
		m[s.Port] = s.Name
	}
	return m
}()

// DefaultPorts returns the port numbers of CommonPorts.
func DefaultPorts() []int {
	ports := make([]int, len(CommonPorts))
	for i, s := range CommonPorts {
		ports[i] = s.Port
	}
	return ports
}

// ServiceName returns the label for port, or the port number itself when
// the port is not in the table.
func ServiceName(port int) string {
	if name, ok := serviceByPort[port]; ok {
		return name
	}
	return strconv.Itoa(port)
}

// ValidatePorts rejects out-of-range port numbers.
func ValidatePorts(ports []int) error {
	for _, p := range ports {
		if p < 1 || p > 65535 {
			return fmt.Errorf("port %d out of range", p)
		}
	}
	return nil
}

// uniquePorts drops duplicates while keeping order.
func uniquePorts(ports []int) []int {
	seen := make(map[int]struct{}, len(ports))
	out := make([]int, 0, len(ports))
	for _, p := range ports {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
