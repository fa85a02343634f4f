package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/models"
)

func testSnapshot(at time.Time, ips ...string) *models.Snapshot {
	devices := make([]models.Device, 0, len(ips))
	for _, ip := range ips {
		devices = append(devices, models.Device{
			IP:     ip,
			Vendor: "Unknown",
			Ports:  []models.Port{{Port: 22, Service: "SSH"}},
			Risk:   models.RiskAssessment{Score: 35, Level: models.RiskLow},
		})
	}
	return models.NewSnapshot("10.0.0.0/24", at, devices)
}

func TestMemoryStoreEmpty(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Latest(ctx)
	assert.True(t, errors.IsNotFound(err))

	_, err = s.Get(ctx, 1)
	assert.True(t, errors.IsNotFound(err))

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStoreAppendLatest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	id1, err := s.Append(ctx, testSnapshot(base, "10.0.0.9", "10.0.0.2"))
	require.NoError(t, err)
	id2, err := s.Append(ctx, testSnapshot(base.Add(time.Minute), "10.0.0.5"))
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, id2, latest.ID)
	assert.Equal(t, len(latest.Devices), latest.DeviceCount)

	first, err := s.Get(ctx, id1)
	require.NoError(t, err)
	require.Len(t, first.Devices, 2)
	assert.Equal(t, "10.0.0.2", first.Devices[0].IP)
	assert.Equal(t, "10.0.0.9", first.Devices[1].IP)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemoryStoreAppendNormalizesDevices(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	raw := &models.Snapshot{
		ScanTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Network:  "10.0.0.0/24",
		Devices: []models.Device{
			{IP: "10.0.0.9", Vendor: "A"},
			{IP: "10.0.0.10", Vendor: "B"},
			{IP: "10.0.0.2", Vendor: "C"},
			{IP: "10.0.0.2", Vendor: "D"},
		},
	}
	raw.DeviceCount = len(raw.Devices)

	_, err := s.Append(ctx, raw)
	require.NoError(t, err)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, latest.Devices, 3)
	assert.Equal(t, 3, latest.DeviceCount)
	assert.Equal(t, "10.0.0.2", latest.Devices[0].IP)
	assert.Equal(t, "C", latest.Devices[0].Vendor, "first duplicate wins")
	assert.Equal(t, "10.0.0.9", latest.Devices[1].IP)
	assert.Equal(t, "10.0.0.10", latest.Devices[2].IP)
	assert.Len(t, raw.Devices, 4, "caller's snapshot is untouched")

	list, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].DeviceCount)
}

func TestMemoryStoreSnapshotsAreImmutable(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	snap := testSnapshot(time.Now(), "10.0.0.2")
	id, err := s.Append(ctx, snap)
	require.NoError(t, err)

	snap.Devices[0].Ports[0].Port = 9999
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	got.Devices[0].Risk.Reasons = append(got.Devices[0].Risk.Reasons, "tampered")

	again, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 22, again.Devices[0].Ports[0].Port)
	assert.Empty(t, again.Devices[0].Risk.Reasons)
}

func TestMemoryStoreListMostRecentFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		_, err := s.Append(ctx, testSnapshot(base.Add(time.Duration(i)*time.Second), "10.0.0.1", "10.0.0.2"))
		require.NoError(t, err)
	}

	list, err := s.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(5), list[0].ID)
	assert.Equal(t, int64(3), list[2].ID)
	assert.Equal(t, 2, list[0].DeviceCount)
	assert.Equal(t, 2, list[0].LowRiskCount)
	assert.Equal(t, 2, list[0].TotalOpenPorts)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestMemoryStoreAppendHonoursContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Append(ctx, testSnapshot(time.Now(), "10.0.0.1"))
	assert.True(t, errors.IsCode(err, errors.CodePersistenceFailure))

	_, err = s.Latest(context.Background())
	assert.True(t, errors.IsNotFound(err), "failed append must not publish latest")
}

func TestMemoryStoreConcurrentReaders(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Append(ctx, testSnapshot(time.Now(), "10.0.0.1", "10.0.0.2", "10.0.0.3"))
		}()
		go func() {
			defer wg.Done()
			if snap, err := s.Latest(ctx); err == nil {
				assert.Equal(t, 3, snap.DeviceCount)
				assert.Len(t, snap.Devices, 3)
			}
		}()
	}
	wg.Wait()

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}

func TestMemoryStoreAlerts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	scanID, err := s.Append(ctx, testSnapshot(time.Now(), "10.0.0.1"))
	require.NoError(t, err)

	_, err = s.InsertAlerts(ctx, []models.Alert{{ScanID: scanID + 1, DeviceIP: "10.0.0.1"}})
	assert.Error(t, err, "alerts must reference an existing snapshot")

	saved, err := s.InsertAlerts(ctx, []models.Alert{
		{ScanID: scanID, DeviceIP: "10.0.0.1", AlertType: models.AlertNewDevice, Severity: models.SeverityLow},
		{ScanID: scanID, DeviceIP: "10.0.0.1", AlertType: models.AlertNewOpenPort, Severity: models.SeverityMedium},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotZero(t, saved[0].ID)
	assert.False(t, saved[0].CreatedAt.IsZero())

	unnotified, err := s.CountUnnotified(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, unnotified)

	require.NoError(t, s.MarkNotified(ctx, []int64{saved[0].ID, 999}))

	pending, err := s.ListUnnotified(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, saved[1].ID, pending[0].ID)

	list, err := s.ListAlerts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, saved[1].ID, list[0].ID, "most recent first")
	assert.True(t, list[1].Notified)
}

func TestMemoryStoreSettings(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetSetting(ctx, SettingDiscordWebhookURL)
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, s.SetSetting(ctx, SettingDiscordWebhookURL, "https://discord.com/api/webhooks/1/abc"))
	v, err := s.GetSetting(ctx, SettingDiscordWebhookURL)
	require.NoError(t, err)
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc", v)
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name       string
		limit, max int
		want       int
	}{
		{"default", 0, 100, DefaultListLimit},
		{"negative", -5, 100, DefaultListLimit},
		{"within", 10, 100, 10},
		{"capped", 500, 100, 100},
		{"uncapped", 500, 0, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLimit(tt.limit, tt.max))
		})
	}
}
