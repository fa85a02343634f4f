package handlers

import (
	"context"
	"net/http"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/notify"
	"github.com/anstrom/netsentinel/internal/store"
)

// WebhookNotifier is the notification transport configured through the
// settings endpoints.
type WebhookNotifier interface {
	WebhookURL(ctx context.Context) (string, error)
	SendTest(ctx context.Context) error
}

// SettingsHandler handles the notification settings endpoints.
type SettingsHandler struct {
	settings store.SettingsStore
	notifier WebhookNotifier
	logger   *logging.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settings store.SettingsStore, notifier WebhookNotifier, logger *logging.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		notifier: notifier,
		logger:   logging.OrDefault(logger).WithComponent("settings-handler"),
	}
}

// DiscordSettingsRequest is the body of POST /api/settings/discord.
type DiscordSettingsRequest struct {
	WebhookURL string `json:"webhook_url" validate:"required,url,startswith=https://"`
}

// DiscordSettingsResponse reports whether a webhook is configured. The URL
// itself is never returned in full.
type DiscordSettingsResponse struct {
	Configured       bool    `json:"configured"`
	WebhookURLMasked *string `json:"webhook_url_masked"`
}

// GetDiscord handles GET /api/settings/discord.
func (h *SettingsHandler) GetDiscord(w http.ResponseWriter, r *http.Request) {
	url, err := h.notifier.WebhookURL(r.Context())
	if err != nil {
		handleError(w, r, err, "read discord settings", h.logger)
		return
	}

	resp := DiscordSettingsResponse{Configured: url != ""}
	if url != "" {
		masked := notify.MaskURL(url)
		resp.WebhookURLMasked = &masked
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// SaveDiscord handles POST /api/settings/discord.
func (h *SettingsHandler) SaveDiscord(w http.ResponseWriter, r *http.Request) {
	var req DiscordSettingsRequest
	if err := parseJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.settings.SetSetting(r.Context(), store.SettingDiscordWebhookURL, req.WebhookURL); err != nil {
		handleError(w, r, err, "save discord settings", h.logger)
		return
	}

	h.logger.Info("Discord webhook configured", "webhook", notify.MaskURL(req.WebhookURL))
	writeJSON(w, r, http.StatusOK, StatusResponse{
		Status:  "configured",
		Message: "Discord webhook URL saved",
	})
}

// TestDiscord handles POST /api/settings/discord/test.
func (h *SettingsHandler) TestDiscord(w http.ResponseWriter, r *http.Request) {
	url, err := h.notifier.WebhookURL(r.Context())
	if err != nil {
		handleError(w, r, err, "read discord settings", h.logger)
		return
	}
	if url == "" {
		writeMessage(w, r, http.StatusBadRequest, "Discord webhook not configured", errors.CodeConfiguration)
		return
	}

	if err := h.notifier.SendTest(r.Context()); err != nil {
		if statusFromError(err) == http.StatusServiceUnavailable {
			writeError(w, r, http.StatusServiceUnavailable, err)
			return
		}
		h.logger.Warn("Discord test notification failed", "error", err)
		writeMessage(w, r, http.StatusInternalServerError, "Failed to send test notification", errors.GetCode(err))
		return
	}

	writeJSON(w, r, http.StatusOK, StatusResponse{
		Status:  "sent",
		Message: "Test notification sent to Discord",
	})
}
