package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/store"
)

type capture struct {
	calls    atomic.Int32
	status   int
	payloads chan webhookPayload
}

func newWebhook(t *testing.T, status int) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{status: status, payloads: make(chan webhookPayload, 10)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var p webhookPayload
		assert.NoError(t, json.Unmarshal(body, &p))
		c.payloads <- p

		w.WriteHeader(c.status)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func makeAlerts(n int, sev models.Severity) []models.Alert {
	out := make([]models.Alert, n)
	for i := range out {
		out[i] = models.Alert{
			ID:        int64(i + 1),
			DeviceIP:  fmt.Sprintf("192.168.1.%d", i+10),
			AlertType: models.AlertNewOpenPort,
			Severity:  sev,
			Message:   fmt.Sprintf("alert %d", i),
		}
	}
	return out
}

func newTestDiscord(settings store.SettingsStore, scans store.ScanStore, url string) *Discord {
	d := NewDiscord(Config{WebhookURL: url, Timeout: 2 * time.Second, RequestsPerMinute: 600, Burst: 10},
		settings, scans, logging.Discard())
	d.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return d
}

func TestDispatchSendsEmbed(t *testing.T) {
	srv, c := newWebhook(t, http.StatusNoContent)
	settings := store.NewMemoryStore()
	require.NoError(t, settings.SetSetting(context.Background(), store.SettingDiscordWebhookURL, srv.URL))

	d := newTestDiscord(settings, nil, "")
	require.NoError(t, d.Dispatch(context.Background(), makeAlerts(2, models.SeverityMedium)))

	p := <-c.payloads
	require.Len(t, p.Embeds, 1)
	e := p.Embeds[0]
	assert.Equal(t, "Network Sentinel Alert", e.Title)
	assert.Equal(t, colorWarning, e.Color)
	require.Len(t, e.Fields, 3)
	assert.Equal(t, "Scan Summary", e.Fields[0].Name)
	assert.Equal(t, "[*] NEW_OPEN_PORT", e.Fields[1].Name)
	assert.Equal(t, "alert 0", e.Fields[1].Value)
	assert.Equal(t, "2026-03-01T12:00:00Z", e.Timestamp)
}

func TestDispatchHighSeverityColour(t *testing.T) {
	srv, c := newWebhook(t, http.StatusOK)
	d := newTestDiscord(nil, nil, srv.URL)

	batch := makeAlerts(3, models.SeverityLow)
	batch[2].Severity = models.SeverityHigh
	require.NoError(t, d.Dispatch(context.Background(), batch))

	p := <-c.payloads
	assert.Equal(t, colorHigh, p.Embeds[0].Color)
}

func TestDispatchTruncatesFields(t *testing.T) {
	srv, c := newWebhook(t, http.StatusOK)
	d := newTestDiscord(nil, nil, srv.URL)

	require.NoError(t, d.Dispatch(context.Background(), makeAlerts(14, models.SeverityMedium)))

	fields := (<-c.payloads).Embeds[0].Fields
	// summary + 10 alerts + overflow line
	require.Len(t, fields, 12)
	assert.Equal(t, "*...and 4 more alerts*", fields[11].Value)
}

func TestDispatchIncludesScanSummary(t *testing.T) {
	srv, c := newWebhook(t, http.StatusOK)
	mem := store.NewMemoryStore()
	snap := models.NewSnapshot("10.0.0.0/24", time.Now(), []models.Device{
		{IP: "10.0.0.5", Ports: []models.Port{{Port: 22}, {Port: 80}}, Risk: models.RiskAssessment{Level: models.RiskLow}},
	})
	id, err := mem.Append(context.Background(), snap)
	require.NoError(t, err)

	d := newTestDiscord(mem, mem, srv.URL)
	batch := makeAlerts(1, models.SeverityMedium)
	batch[0].ScanID = id
	require.NoError(t, d.Dispatch(context.Background(), batch))

	e := (<-c.payloads).Embeds[0]
	assert.Contains(t, e.Description, "10.0.0.0/24")
	assert.Equal(t, "Devices: 1 | Open Ports: 2 | Alerts: 1", e.Fields[0].Value)
}

func TestDispatchUnconfigured(t *testing.T) {
	d := newTestDiscord(store.NewMemoryStore(), nil, "")

	err := d.Dispatch(context.Background(), makeAlerts(1, models.SeverityLow))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotificationFailure, errors.GetCode(err))
	assert.False(t, d.Configured(context.Background()))
}

func TestDispatchEmptyBatchSendsNothing(t *testing.T) {
	srv, c := newWebhook(t, http.StatusOK)
	d := newTestDiscord(nil, nil, srv.URL)

	require.NoError(t, d.Dispatch(context.Background(), nil))
	assert.Zero(t, c.calls.Load())
}

func TestDispatchServerError(t *testing.T) {
	srv, _ := newWebhook(t, http.StatusInternalServerError)
	d := newTestDiscord(nil, nil, srv.URL)

	err := d.Dispatch(context.Background(), makeAlerts(1, models.SeverityLow))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotificationFailure, errors.GetCode(err))
	assert.Contains(t, err.Error(), "discord")
}

func TestDispatchBreakerOpensAfterFailures(t *testing.T) {
	srv, c := newWebhook(t, http.StatusBadGateway)
	d := newTestDiscord(nil, nil, srv.URL)
	ctx := context.Background()

	for range 3 {
		require.Error(t, d.Dispatch(ctx, makeAlerts(1, models.SeverityLow)))
	}
	err := d.Dispatch(ctx, makeAlerts(1, models.SeverityLow))
	require.Error(t, err)
	assert.Equal(t, errors.CodeServiceUnavailable, errors.GetCode(err))
	assert.Equal(t, int32(3), c.calls.Load(), "open breaker short-circuits the request")
}

func TestSendTest(t *testing.T) {
	srv, c := newWebhook(t, http.StatusOK)
	d := newTestDiscord(nil, nil, srv.URL)

	require.NoError(t, d.SendTest(context.Background()))

	fields := (<-c.payloads).Embeds[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "[-] TEST", fields[1].Name)
}

func TestWebhookURLPrefersSetting(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	d := newTestDiscord(mem, nil, "https://discord.example/fallback")

	url, err := d.WebhookURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://discord.example/fallback", url)

	require.NoError(t, mem.SetSetting(ctx, store.SettingDiscordWebhookURL, "https://discord.example/saved"))
	url, err = d.WebhookURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://discord.example/saved", url)
}

func TestMaskURL(t *testing.T) {
	long := "https://discord.com/api/webhooks/123456789012345678/abcdefghijklmnopqrstuvwxyz"
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"short", "https://x.test/hook", "https://x.test/hook..."},
		{"long", long, long[:50] + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskURL(tt.in)
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.Contains(got, "uvwxyz"))
		})
	}
}
