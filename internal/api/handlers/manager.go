package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/anstrom/netsentinel/internal/enrich"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/store"
)

// Dependencies are the collaborators shared by the handler groups.
type Dependencies struct {
	Database   DatabasePinger
	Scans      store.ScanStore
	Alerts     store.AlertStore
	Settings   store.SettingsStore
	Controller ScanController
	Retrier    AlertRetrier
	Notifier   WebhookNotifier
	Enricher   enrich.Enricher

	Version        string
	Model          string
	AlertListLimit int
	Logger         *logging.Logger
}

// HandlerManager owns every handler group and their routes.
type HandlerManager struct {
	health   *HealthHandler
	scan     *ScanHandler
	alerts   *AlertHandler
	ai       *AIHandler
	settings *SettingsHandler
	stats    *StatsHandler
	report   *ReportHandler
}

// New creates a new handler manager with all handler groups initialized.
func New(deps Dependencies) *HandlerManager {
	logger := logging.OrDefault(deps.Logger)

	return &HandlerManager{
		health:   NewHealthHandler(deps.Database, deps.Version, deps.Model, logger),
		scan:     NewScanHandler(deps.Scans, deps.Controller, logger),
		alerts:   NewAlertHandler(deps.Alerts, deps.Retrier, deps.AlertListLimit, logger),
		ai:       NewAIHandler(deps.Scans, deps.Enricher, logger),
		settings: NewSettingsHandler(deps.Settings, deps.Notifier, logger),
		stats:    NewStatsHandler(deps.Scans, deps.Alerts, logger),
		report:   NewReportHandler(deps.Scans, deps.Enricher, logger),
	}
}

// Index handles GET /.
func (hm *HandlerManager) Index(w http.ResponseWriter, r *http.Request) {
	hm.health.Index(w, r)
}

// Health handles GET /api/health.
func (hm *HandlerManager) Health(w http.ResponseWriter, r *http.Request) {
	hm.health.Health(w, r)
}

// RegisterRoutes mounts the API endpoints on api, which is expected to be
// the /api subrouter.
func (hm *HandlerManager) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/health", hm.health.Health).Methods(http.MethodGet)

	api.HandleFunc("/scan/start", hm.scan.StartScan).Methods(http.MethodPost)
	api.HandleFunc("/scan/status", hm.scan.Status).Methods(http.MethodGet)
	api.HandleFunc("/scan/latest", hm.scan.Latest).Methods(http.MethodGet)
	api.HandleFunc("/scan/history", hm.scan.History).Methods(http.MethodGet)
	api.HandleFunc("/scan/history/{id:[0-9]+}", hm.scan.GetScan).Methods(http.MethodGet)
	api.HandleFunc("/scan/device/{ip}", hm.scan.Device).Methods(http.MethodGet)

	api.HandleFunc("/alerts", hm.alerts.List).Methods(http.MethodGet)
	api.HandleFunc("/alerts/unnotified", hm.alerts.Unnotified).Methods(http.MethodGet)
	api.HandleFunc("/alerts/retry", hm.alerts.Retry).Methods(http.MethodPost)

	api.HandleFunc("/ai/quick-summary", hm.ai.QuickSummary).Methods(http.MethodGet)
	api.HandleFunc("/ai/analyze", hm.ai.Analyze).Methods(http.MethodPost)
	api.HandleFunc("/ollama/status", hm.ai.OllamaStatus).Methods(http.MethodGet)

	api.HandleFunc("/settings/discord", hm.settings.GetDiscord).Methods(http.MethodGet)
	api.HandleFunc("/settings/discord", hm.settings.SaveDiscord).Methods(http.MethodPost)
	api.HandleFunc("/settings/discord/test", hm.settings.TestDiscord).Methods(http.MethodPost)

	api.HandleFunc("/stats", hm.stats.Stats).Methods(http.MethodGet)
	api.HandleFunc("/report/pdf", hm.report.PDF).Methods(http.MethodGet)
}
