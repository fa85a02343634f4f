package discovery

import (
	"net"
	"strings"
)

// Vendor labels for MACs outside the table.
const (
	VendorUnknown    = "Unknown"
	VendorRandomized = "Randomized"
)

// ouiTable maps the first three octets of a MAC to its manufacturer.
var ouiTable = map[string]string{
	"B8:27:EB": "Raspberry Pi",
	"DC:A6:32": "Raspberry Pi",
	"E4:5F:01": "Raspberry Pi",
	"D8:3A:DD": "Raspberry Pi",
	"2C:CF:67": "Apple",
	"F0:18:98": "Apple",
	"A4:83:E7": "Apple",
	"00:1A:2B": "Cisco",
	"00:50:56": "VMware",
	"00:0C:29": "VMware",
	"52:54:00": "QEMU/KVM",
	"00:15:5D": "Microsoft Hyper-V",
	"94:65:9C": "Intel",
	"00:1B:21": "Intel",
	"00:1E:67": "Intel",
	"30:9C:23": "Intel",
	"AC:22:0B": "ASRock",
	"00:E0:4C": "Realtek",
	"3C:7C:3F": "ASUSTek",
	"00:26:B9": "Dell",
	"F8:B1:56": "Dell",
	"F4:39:09": "HP",
}

// LookupVendor resolves the manufacturer of mac from the OUI table.
func LookupVendor(mac string) string {
	hw, err := net.ParseMAC(strings.TrimSpace(mac))
	if err != nil || len(hw) < 3 {
		return VendorUnknown
	}
	prefix := strings.ToUpper(hw[:3].String())
	if vendor, ok := ouiTable[prefix]; ok {
		return vendor
	}
	// locally administered bit: the address was generated, not assigned
	if hw[0]&0x02 != 0 {
		return VendorRandomized
	}
	return VendorUnknown
}

// NormalizeMAC returns mac in upper-case colon form, or "" when it does not
// parse or is the all-zero or broadcast address.
func NormalizeMAC(mac string) string {
	hw, err := net.ParseMAC(strings.TrimSpace(mac))
	if err != nil || len(hw) != 6 {
		return ""
	}
	s := strings.ToUpper(hw.String())
	if s == "00:00:00:00:00:00" || s == "FF:FF:FF:FF:FF:FF" {
		return ""
	}
	return s
}
