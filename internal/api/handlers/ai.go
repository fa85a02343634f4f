package handlers

import (
	"net/http"

	"github.com/anstrom/netsentinel/internal/enrich"
	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/store"
)

// AIHandler exposes model-generated commentary on the latest scan. Calls
// run on the request context with the enricher's own timeouts and never
// touch scan state.
type AIHandler struct {
	scans    store.ScanStore
	enricher enrich.Enricher
	logger   *logging.Logger
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(scans store.ScanStore, enricher enrich.Enricher, logger *logging.Logger) *AIHandler {
	return &AIHandler{
		scans:    scans,
		enricher: enricher,
		logger:   logging.OrDefault(logger).WithComponent("ai-handler"),
	}
}

// AnalyzeRequest is the optional body of POST /api/ai/analyze.
type AnalyzeRequest struct {
	DeviceIP string `json:"device_ip,omitempty" validate:"omitempty,ip"`
}

// QuickSummary handles GET /api/ai/quick-summary.
func (h *AIHandler) QuickSummary(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.latest(w, r)
	if !ok {
		return
	}

	summary, err := h.enricher.Summarize(r.Context(), snapshot)
	if err != nil {
		handleError(w, r, err, "generate AI summary", h.logger)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

// Analyze handles POST /api/ai/analyze.
func (h *AIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := parseJSON(r, &req, true); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	snapshot, ok := h.latest(w, r)
	if !ok {
		return
	}
	if req.DeviceIP != "" {
		if _, found := snapshot.FindDevice(req.DeviceIP); !found {
			writeMessage(w, r, http.StatusNotFound, "Device "+req.DeviceIP+" not found", errors.CodeNotFound)
			return
		}
	}

	analysis, err := h.enricher.Analyze(r.Context(), snapshot, req.DeviceIP)
	if err != nil {
		handleError(w, r, err, "generate AI analysis", h.logger)
		return
	}
	writeJSON(w, r, http.StatusOK, analysis)
}

// OllamaStatus handles GET /api/ollama/status. It always answers 200; an
// unreachable runtime is reported in the body.
func (h *AIHandler) OllamaStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.enricher.Status(r.Context()))
}

func (h *AIHandler) latest(w http.ResponseWriter, r *http.Request) (*models.Snapshot, bool) {
	snapshot, err := h.scans.Latest(r.Context())
	if err != nil {
		if errors.IsNotFound(err) {
			writeMessage(w, r, http.StatusNotFound, "No scan results found. Run a scan first.", errors.CodeNotFound)
			return nil, false
		}
		handleError(w, r, err, "load latest scan", h.logger)
		return nil, false
	}
	return snapshot, true
}
