package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskLevelRank(t *testing.T) {
	for i, level := range RiskLevels {
		assert.Equal(t, i, level.Rank())
		assert.True(t, level.Valid())
	}
	assert.False(t, RiskLevel("CRITICAL").Valid())
	assert.Equal(t, 0, RiskLevel("").Rank())
}

func TestIdentityKey(t *testing.T) {
	withMAC := Device{IP: "10.0.0.5", MAC: "aa:bb:cc:dd:ee:ff"}
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", withMAC.IdentityKey())

	noMAC := Device{IP: "10.0.0.6", MAC: " "}
	assert.Equal(t, "10.0.0.6", noMAC.IdentityKey())
}

func TestNewSnapshotOrdersAndDeduplicates(t *testing.T) {
	scanTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := NewSnapshot("192.168.1.0/24", scanTime, []Device{
		{IP: "192.168.1.100", Ports: []Port{{Port: 443}, {Port: 22}, {Port: 443}}},
		{IP: "192.168.1.9"},
		{IP: "192.168.1.100", MAC: "dup"},
		{IP: "192.168.1.20"},
	})

	require.Equal(t, 3, snap.DeviceCount)
	require.Len(t, snap.Devices, 3)
	assert.Equal(t, "192.168.1.9", snap.Devices[0].IP)
	assert.Equal(t, "192.168.1.20", snap.Devices[1].IP)
	assert.Equal(t, "192.168.1.100", snap.Devices[2].IP)
	assert.Empty(t, snap.Devices[2].MAC, "first occurrence wins")
	assert.Equal(t, []Port{{Port: 22}, {Port: 443}}, snap.Devices[2].Ports)
	assert.Equal(t, scanTime, snap.ScanTime)
}

func TestDeviceJSONShape(t *testing.T) {
	snap := NewSnapshot("10.0.0.0/24", time.Now(), []Device{{IP: "10.0.0.1", MAC: "AA:BB:CC:00:11:22", Vendor: "Unknown"}})

	data, err := json.Marshal(snap.Devices[0])
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Nil(t, raw["hostname"], "unresolved hostname serializes as null")
	assert.Equal(t, []any{}, raw["ports"], "no ports serializes as an empty list")
	risk := raw["risk"].(map[string]any)
	assert.Equal(t, []any{}, risk["reasons"])
}

func TestCloneIsDeep(t *testing.T) {
	snap := NewSnapshot("10.0.0.0/24", time.Now(), []Device{{
		IP:       "10.0.0.1",
		Hostname: StringPtr("router"),
		Ports:    []Port{{Port: 80, Service: "HTTP"}},
		Risk:     RiskAssessment{Reasons: []string{"a"}},
	}})

	c := snap.Clone()
	*c.Devices[0].Hostname = "changed"
	c.Devices[0].Ports[0].Port = 81
	c.Devices[0].Risk.Reasons[0] = "b"

	assert.Equal(t, "router", snap.Devices[0].HostnameOrEmpty())
	assert.Equal(t, 80, snap.Devices[0].Ports[0].Port)
	assert.Equal(t, "a", snap.Devices[0].Risk.Reasons[0])
	assert.Nil(t, (*Snapshot)(nil).Clone())
}

func TestSummary(t *testing.T) {
	snap := NewSnapshot("10.0.0.0/24", time.Now(), []Device{
		{IP: "10.0.0.1", Ports: []Port{{Port: 23}}, Risk: RiskAssessment{Level: RiskHigh}},
		{IP: "10.0.0.2", Ports: []Port{{Port: 22}, {Port: 80}}, Risk: RiskAssessment{Level: RiskLow}},
		{IP: "10.0.0.3", Risk: RiskAssessment{Level: RiskMinimal}},
	})
	snap.ID = 7

	entry := snap.Summary()
	assert.Equal(t, int64(7), entry.ID)
	assert.Equal(t, 3, entry.DeviceCount)
	assert.Equal(t, 1, entry.HighRiskCount)
	assert.Equal(t, 0, entry.MediumRiskCount)
	assert.Equal(t, 1, entry.LowRiskCount)
	assert.Equal(t, 1, entry.MinimalRiskCount)
	assert.Equal(t, 3, entry.TotalOpenPorts)

	d, ok := snap.FindDevice("10.0.0.2")
	require.True(t, ok)
	assert.Len(t, d.PortSet(), 2)
	_, ok = snap.FindDevice("10.0.0.99")
	assert.False(t, ok)
}

func TestLessIP(t *testing.T) {
	assert.True(t, LessIP("10.0.0.2", "10.0.0.10"))
	assert.False(t, LessIP("10.0.0.10", "10.0.0.2"))
	assert.True(t, LessIP("abc", "abd"))
}
