package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/anstrom/netsentinel/internal/logging"
)

// DatabasePinger defines the interface for database health checking.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

const healthCheckTimeout = 5 * time.Second

// Status constants.
const (
	StatusHealthy       = "healthy"
	StatusUnhealthy     = "unhealthy"
	StatusNotConfigured = "not configured"
)

// HealthHandler serves the unauthenticated liveness endpoints.
type HealthHandler struct {
	database  DatabasePinger
	version   string
	model     string
	logger    *logging.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler. database may be nil when
// the memory store is in use.
func NewHealthHandler(database DatabasePinger, version, model string, logger *logging.Logger) *HealthHandler {
	return &HealthHandler{
		database:  database,
		version:   version,
		model:     model,
		logger:    logging.OrDefault(logger).WithComponent("health"),
		startTime: time.Now(),
	}
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`
}

// IndexResponse is returned for the API root.
type IndexResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Version     string `json:"version"`
	OllamaModel string `json:"ollama_model"`
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := StatusHealthy
	checks := map[string]string{"database": StatusNotConfigured}

	if h.database != nil {
		if err := h.database.Ping(ctx); err != nil {
			h.logger.Warn("Database health check failed", "error", err)
			status = StatusUnhealthy
			checks["database"] = StatusUnhealthy
		} else {
			checks["database"] = StatusHealthy
		}
	}

	code := http.StatusOK
	if status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, r, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	})
}

// Index handles GET / and reports the service identity.
func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, IndexResponse{
		Status:      "online",
		Service:     "Network Sentinel API",
		Version:     h.version,
		OllamaModel: h.model,
	})
}
