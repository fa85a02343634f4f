// Package notify delivers alerts to external channels.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/anstrom/netsentinel/internal/alerts"
	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/store"
)

const (
	serviceName = "discord"

	embedTitle  = "Network Sentinel Alert"
	embedFooter = "Network Sentinel"

	colorHigh    = 0xff0055
	colorWarning = 0xffcc00

	// maxAlertFields is the number of alerts listed before the overflow line.
	maxAlertFields = 10
	maskedPrefix   = 50

	defaultTimeout           = 10 * time.Second
	defaultRequestsPerMinute = 30
	defaultBurst             = 5
	maxErrorBody             = 512
)

// Config configures the Discord dispatcher.
type Config struct {
	// WebhookURL is used when no URL has been saved in settings.
	WebhookURL        string
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooterText struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Color       int             `json:"color"`
	Fields      []embedField    `json:"fields"`
	Footer      embedFooterText `json:"footer"`
	Timestamp   string          `json:"timestamp"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

var _ alerts.Dispatcher = (*Discord)(nil)

// Discord posts alert batches to a Discord webhook as a single embed.
// Requests are rate limited and guarded by a circuit breaker.
type Discord struct {
	settings store.SettingsStore
	scans    store.ScanStore
	fallback string

	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
	now     func() time.Time
}

// NewDiscord creates a dispatcher. settings supplies the webhook URL; scans
// is optional and adds the scan summary to each message.
func NewDiscord(cfg Config, settings store.SettingsStore, scans store.ScanStore, logger *logging.Logger) *Discord {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	logger = logging.OrDefault(logger).WithComponent("notify")

	return &Discord{
		settings: settings,
		scans:    scans,
		fallback: cfg.WebhookURL,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        serviceName,
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker state changed",
					"breaker", name, "from", from.String(), "to", to.String())
			},
		}),
		logger: logger,
		now:    time.Now,
	}
}

// WebhookURL returns the configured webhook, preferring the saved setting.
// The empty string means notifications are not configured.
func (d *Discord) WebhookURL(ctx context.Context) (string, error) {
	if d.settings != nil {
		url, err := d.settings.GetSetting(ctx, store.SettingDiscordWebhookURL)
		switch {
		case err == nil && url != "":
			return url, nil
		case err != nil && !errors.IsNotFound(err):
			return "", err
		}
	}
	return d.fallback, nil
}

// Configured reports whether a webhook URL is available.
func (d *Discord) Configured(ctx context.Context) bool {
	url, err := d.WebhookURL(ctx)
	return err == nil && url != ""
}

// Dispatch implements alerts.Dispatcher.
func (d *Discord) Dispatch(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	url, err := d.WebhookURL(ctx)
	if err != nil {
		return errors.ErrNotification(serviceName, err)
	}
	if url == "" {
		return errors.ErrNotification(serviceName, errors.ErrConfigMissing("notify.discord.webhook_url"))
	}

	payload := webhookPayload{Embeds: []embed{d.buildEmbed(ctx, alerts)}}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.ErrNotification(serviceName, err)
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return errors.ErrNotification(serviceName, err)
	}

	_, err = d.breaker.Execute(func() (interface{}, error) {
		return nil, d.post(ctx, url, body)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return errors.ErrServiceUnavailable(serviceName, err)
		}
		return errors.ErrNotification(serviceName, err)
	}

	d.logger.Info("Alerts sent to Discord", "count", len(alerts))
	return nil
}

// SendTest dispatches a single low-severity test alert.
func (d *Discord) SendTest(ctx context.Context) error {
	return d.Dispatch(ctx, []models.Alert{TestAlert(d.now())})
}

// TestAlert is the alert sent by SendTest.
func TestAlert(at time.Time) models.Alert {
	return models.Alert{
		DeviceIP:  "192.168.1.1",
		AlertType: models.AlertTest,
		Message:   "This is a test notification from Network Sentinel",
		Severity:  models.SeverityLow,
		CreatedAt: at.UTC(),
	}
}

func (d *Discord) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (d *Discord) buildEmbed(ctx context.Context, alerts []models.Alert) embed {
	e := embed{
		Title:       embedTitle,
		Description: "Security changes detected on network `Unknown`",
		Color:       colorWarning,
		Footer:      embedFooterText{Text: embedFooter},
		Timestamp:   d.now().UTC().Format(time.RFC3339),
	}
	for _, a := range alerts {
		if a.Severity == models.SeverityHigh {
			e.Color = colorHigh
			break
		}
	}

	e.Fields = append(e.Fields, d.summaryField(ctx, alerts, &e))

	for i, a := range alerts {
		if i == maxAlertFields {
			e.Fields = append(e.Fields, embedField{
				Name:  "\u200b",
				Value: fmt.Sprintf("*...and %d more alerts*", len(alerts)-maxAlertFields),
			})
			break
		}
		e.Fields = append(e.Fields, embedField{
			Name:  fmt.Sprintf("%s %s", severityMarker(a.Severity), a.AlertType),
			Value: a.Message,
		})
	}
	return e
}

// summaryField describes the scan the alerts came from. Without a scan store
// it falls back to counting the alerts.
func (d *Discord) summaryField(ctx context.Context, alerts []models.Alert, e *embed) embedField {
	field := embedField{
		Name:  "Scan Summary",
		Value: fmt.Sprintf("Alerts: %d", len(alerts)),
	}
	scanID := alerts[0].ScanID
	if d.scans == nil || scanID == 0 {
		return field
	}

	snap, err := d.scans.Get(ctx, scanID)
	if err != nil {
		d.logger.Debug("Scan summary unavailable", "scan_id", scanID, "error", err)
		return field
	}
	summary := snap.Summary()
	e.Description = fmt.Sprintf("Security changes detected on network `%s`", summary.Network)
	field.Value = fmt.Sprintf("Devices: %d | Open Ports: %d | Alerts: %d",
		summary.DeviceCount, summary.TotalOpenPorts, len(alerts))
	return field
}

func severityMarker(s models.Severity) string {
	switch s {
	case models.SeverityHigh:
		return "[!]"
	case models.SeverityMedium:
		return "[*]"
	case models.SeverityLow:
		return "[-]"
	default:
		return "[.]"
	}
}

// MaskURL shortens a webhook URL for display so the token is not exposed.
func MaskURL(url string) string {
	if url == "" {
		return ""
	}
	return url[:min(len(url), maskedPrefix)] + "..."
}
