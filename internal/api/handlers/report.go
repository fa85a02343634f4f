package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anstrom/netsentinel/internal/enrich"
	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/report"
	"github.com/anstrom/netsentinel/internal/store"
)

// ReportHandler renders snapshots as downloadable PDF reports.
type ReportHandler struct {
	scans    store.ScanStore
	enricher enrich.Enricher
	logger   *logging.Logger
	now      func() time.Time
}

// NewReportHandler creates a new report handler. enricher may be nil, in
// which case ?include_ai is ignored.
func NewReportHandler(scans store.ScanStore, enricher enrich.Enricher, logger *logging.Logger) *ReportHandler {
	return &ReportHandler{
		scans:    scans,
		enricher: enricher,
		logger:   logging.OrDefault(logger).WithComponent("report-handler"),
		now:      time.Now,
	}
}

// PDF handles GET /api/report/pdf?scan_id=N&include_ai=true.
func (h *ReportHandler) PDF(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	opts := report.Options{GeneratedAt: h.now()}
	if h.enricher != nil && getQueryParamBool(r, "include_ai") {
		analysis, err := h.enricher.Analyze(r.Context(), snapshot, "")
		if err != nil {
			h.logger.Warn("AI analysis for report failed, continuing without it",
				"scan_id", snapshot.ID, "error", err)
		} else {
			opts.Analysis = analysis.Analysis
		}
	}

	body, err := report.PDF(snapshot, opts)
	if err != nil {
		handleError(w, r, err, "generate report", h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(opts.GeneratedAt)))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("Failed to write report", "error", err)
	}
}

func (h *ReportHandler) snapshot(w http.ResponseWriter, r *http.Request) (*models.Snapshot, bool) {
	var (
		snapshot *models.Snapshot
		err      error
	)

	if raw := r.URL.Query().Get("scan_id"); raw != "" {
		id, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil || id < 1 {
			writeMessage(w, r, http.StatusBadRequest, "invalid scan_id parameter", errors.CodeValidation)
			return nil, false
		}
		snapshot, err = h.scans.Get(r.Context(), id)
	} else {
		snapshot, err = h.scans.Latest(r.Context())
	}

	if err != nil {
		if errors.IsNotFound(err) {
			writeMessage(w, r, http.StatusNotFound, "No scan results found", errors.CodeNotFound)
			return nil, false
		}
		handleError(w, r, err, "load scan", h.logger)
		return nil, false
	}
	return snapshot, true
}
