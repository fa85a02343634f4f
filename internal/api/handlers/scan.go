package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/scanning"
	"github.com/anstrom/netsentinel/internal/store"
)

// ScanController starts scans and reports the orchestrator state.
type ScanController interface {
	Start(req scanning.Request) error
	Status() scanning.Status
}

// ScanHandler handles the scan endpoints.
type ScanHandler struct {
	scans      store.ScanStore
	controller ScanController
	logger     *logging.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scans store.ScanStore, controller ScanController, logger *logging.Logger) *ScanHandler {
	return &ScanHandler{
		scans:      scans,
		controller: controller,
		logger:     logging.OrDefault(logger).WithComponent("scan-handler"),
	}
}

// StartScanRequest is the body of POST /api/scan/start.
type StartScanRequest struct {
	Network   string `json:"network,omitempty" validate:"omitempty,cidrv4"`
	ScanPorts *bool  `json:"scan_ports,omitempty"`
}

// HistoryResponse lists stored scans, most recent first.
type HistoryResponse struct {
	Scans []models.HistoryEntry `json:"scans"`
	Count int                   `json:"count"`
}

// StartScan handles POST /api/scan/start. The scan runs in the background;
// clients poll /api/scan/latest for completion.
func (h *ScanHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	var req StartScanRequest
	if err := parseJSON(r, &req, true); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	scanReq := scanning.Request{Network: req.Network, ScanPorts: true}
	if req.ScanPorts != nil {
		scanReq.ScanPorts = *req.ScanPorts
	}

	if err := h.controller.Start(scanReq); err != nil {
		if errors.IsCode(err, errors.CodeAlreadyRunning) {
			writeMessage(w, r, http.StatusConflict, "Scan already in progress", errors.CodeAlreadyRunning)
			return
		}
		handleError(w, r, err, "start scan", h.logger)
		return
	}

	h.logger.Info("Scan started via API", "network", req.Network, "scan_ports", scanReq.ScanPorts)
	writeJSON(w, r, http.StatusOK, StatusResponse{
		Status:  "started",
		Message: "Scan initiated in background",
	})
}

// Latest handles GET /api/scan/latest.
func (h *ScanHandler) Latest(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.scans.Latest(r.Context())
	if err != nil {
		if errors.IsNotFound(err) {
			writeMessage(w, r, http.StatusNotFound, "No scan results found. Run a scan first.", errors.CodeNotFound)
			return
		}
		handleError(w, r, err, "load latest scan", h.logger)
		return
	}
	writeJSON(w, r, http.StatusOK, snapshot)
}

// History handles GET /api/scan/history?limit=N.
func (h *ScanHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := getLimit(r, defaultListLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	entries, err := h.scans.List(r.Context(), limit)
	if err != nil {
		handleError(w, r, err, "list scan history", h.logger)
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	writeJSON(w, r, http.StatusOK, HistoryResponse{Scans: entries, Count: len(entries)})
}

// GetScan handles GET /api/scan/history/{id}.
func (h *ScanHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		writeMessage(w, r, http.StatusBadRequest, "invalid scan id", errors.CodeValidation)
		return
	}

	snapshot, err := h.scans.Get(r.Context(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			writeMessage(w, r, http.StatusNotFound, "Scan "+strconv.FormatInt(id, 10)+" not found", errors.CodeNotFound)
			return
		}
		handleError(w, r, err, "load scan", h.logger)
		return
	}
	writeJSON(w, r, http.StatusOK, snapshot)
}

// Device handles GET /api/scan/device/{ip}.
func (h *ScanHandler) Device(w http.ResponseWriter, r *http.Request) {
	ip := mux.Vars(r)["ip"]
	if err := validate.Var(ip, "required,ip"); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid device ip", errors.CodeValidation)
		return
	}

	snapshot, err := h.scans.Latest(r.Context())
	if err != nil {
		if errors.IsNotFound(err) {
			writeMessage(w, r, http.StatusNotFound, "No scan results found", errors.CodeNotFound)
			return
		}
		handleError(w, r, err, "load latest scan", h.logger)
		return
	}

	device, ok := snapshot.FindDevice(ip)
	if !ok {
		writeMessage(w, r, http.StatusNotFound, "Device "+ip+" not found", errors.CodeNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, device)
}

// Status handles GET /api/scan/status.
func (h *ScanHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.controller.Status())
}
