package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/store"
)

const unknownVendor = "Unknown"

// StatsHandler serves the dashboard aggregates.
type StatsHandler struct {
	scans  store.ScanStore
	alerts store.AlertStore
	logger *logging.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(scans store.ScanStore, alerts store.AlertStore, logger *logging.Logger) *StatsHandler {
	return &StatsHandler{
		scans:  scans,
		alerts: alerts,
		logger: logging.OrDefault(logger).WithComponent("stats-handler"),
	}
}

// VendorCount is one entry of the vendor distribution.
type VendorCount struct {
	Vendor string `json:"vendor"`
	Count  int    `json:"count"`
}

// StatsResponse aggregates the latest snapshot and the history.
type StatsResponse struct {
	HasData            bool               `json:"has_data"`
	Message            string             `json:"message,omitempty"`
	TotalScans         int                `json:"total_scans"`
	LatestDeviceCount  int                `json:"latest_device_count"`
	RiskCounts         *models.RiskCounts `json:"risk_counts,omitempty"`
	TotalOpenPorts     int                `json:"total_open_ports"`
	UnnotifiedAlerts   int                `json:"unnotified_alerts"`
	LastScanTime       *time.Time         `json:"last_scan_time,omitempty"`
	Network            string             `json:"network,omitempty"`
	VendorDistribution []VendorCount      `json:"vendor_distribution,omitempty"`
}

// Stats handles GET /api/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.scans.Count(ctx)
	if err != nil {
		handleError(w, r, err, "count scans", h.logger)
		return
	}
	pending, err := h.alerts.CountUnnotified(ctx)
	if err != nil {
		handleError(w, r, err, "count unnotified alerts", h.logger)
		return
	}

	snapshot, err := h.scans.Latest(ctx)
	if err != nil {
		if errors.IsNotFound(err) {
			writeJSON(w, r, http.StatusOK, StatsResponse{
				HasData:          false,
				Message:          "No scan data available",
				TotalScans:       total,
				UnnotifiedAlerts: pending,
			})
			return
		}
		handleError(w, r, err, "load latest scan", h.logger)
		return
	}

	summary := snapshot.Summary()
	counts := snapshot.RiskCounts()
	scanTime := snapshot.ScanTime
	writeJSON(w, r, http.StatusOK, StatsResponse{
		HasData:            true,
		TotalScans:         total,
		LatestDeviceCount:  snapshot.DeviceCount,
		RiskCounts:         &counts,
		TotalOpenPorts:     summary.TotalOpenPorts,
		UnnotifiedAlerts:   pending,
		LastScanTime:       &scanTime,
		Network:            snapshot.Network,
		VendorDistribution: vendorDistribution(snapshot.Devices),
	})
}

// vendorDistribution counts devices per vendor, largest first and then by
// name. Devices without a vendor are grouped under "Unknown".
func vendorDistribution(devices []models.Device) []VendorCount {
	counts := make(map[string]int)
	for _, d := range devices {
		vendor := d.Vendor
		if vendor == "" {
			vendor = unknownVendor
		}
		counts[vendor]++
	}

	out := make([]VendorCount, 0, len(counts))
	for vendor, n := range counts {
		out = append(out, VendorCount{Vendor: vendor, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Vendor < out[j].Vendor
	})
	return out
}
