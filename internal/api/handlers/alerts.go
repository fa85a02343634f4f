package handlers

import (
	"context"
	"net/http"

	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/store"
)

// AlertRetrier re-sends undelivered alerts.
type AlertRetrier interface {
	Retry(ctx context.Context) (int, error)
	Pending(ctx context.Context) (int, error)
}

// AlertHandler handles the alert endpoints.
type AlertHandler struct {
	alerts       store.AlertStore
	retrier      AlertRetrier
	defaultLimit int
	logger       *logging.Logger
}

// NewAlertHandler creates a new alert handler. defaultLimit applies when a
// request carries no limit.
func NewAlertHandler(alerts store.AlertStore, retrier AlertRetrier, defaultLimit int, logger *logging.Logger) *AlertHandler {
	if defaultLimit <= 0 {
		defaultLimit = defaultListLimit
	}
	return &AlertHandler{
		alerts:       alerts,
		retrier:      retrier,
		defaultLimit: defaultLimit,
		logger:       logging.OrDefault(logger).WithComponent("alert-handler"),
	}
}

// AlertListResponse wraps a list of alerts.
type AlertListResponse struct {
	Alerts []models.Alert `json:"alerts"`
	Count  int            `json:"count"`
}

// RetryResponse reports the outcome of POST /api/alerts/retry.
type RetryResponse struct {
	Status     string `json:"status"`
	Dispatched int    `json:"dispatched"`
	Pending    int    `json:"pending"`
}

// List handles GET /api/alerts?limit=N, newest first.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := getLimit(r, h.defaultLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	alerts, err := h.alerts.ListAlerts(r.Context(), limit)
	if err != nil {
		handleError(w, r, err, "list alerts", h.logger)
		return
	}
	writeJSON(w, r, http.StatusOK, newAlertList(alerts))
}

// Unnotified handles GET /api/alerts/unnotified.
func (h *AlertHandler) Unnotified(w http.ResponseWriter, r *http.Request) {
	limit, err := getLimit(r, h.defaultLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	alerts, err := h.alerts.ListUnnotified(r.Context(), limit)
	if err != nil {
		handleError(w, r, err, "list unnotified alerts", h.logger)
		return
	}
	writeJSON(w, r, http.StatusOK, newAlertList(alerts))
}

// Retry handles POST /api/alerts/retry. Retrying is an explicit operator
// action; nothing retries automatically.
func (h *AlertHandler) Retry(w http.ResponseWriter, r *http.Request) {
	n, err := h.retrier.Retry(r.Context())
	if err != nil {
		handleError(w, r, err, "retry alert dispatch", h.logger)
		return
	}

	pending, err := h.retrier.Pending(r.Context())
	if err != nil {
		handleError(w, r, err, "count pending alerts", h.logger)
		return
	}

	h.logger.Info("Alert dispatch retried", "dispatched", n, "pending", pending)
	writeJSON(w, r, http.StatusOK, RetryResponse{Status: "retried", Dispatched: n, Pending: pending})
}

func newAlertList(alerts []models.Alert) AlertListResponse {
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return AlertListResponse{Alerts: alerts, Count: len(alerts)}
}
