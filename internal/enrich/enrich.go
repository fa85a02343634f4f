// Package enrich produces plain-language commentary on snapshots using a
// local Ollama model. Requests are on-demand, bounded by their own timeouts
// and independent of scan state.
package enrich

import (
	"context"
	"time"

	"github.com/anstrom/netsentinel/internal/models"
)

//go:generate mockgen -destination=mocks/mock_enricher.go -package=mocks github.com/anstrom/netsentinel/internal/enrich Enricher

// Request kinds, used in metrics labels.
const (
	KindSummary  = "summary"
	KindAnalysis = "analysis"
	KindStatus   = "status"
)

// Summary is a short overview of a snapshot.
type Summary struct {
	Summary      string            `json:"summary"`
	RiskCounts   models.RiskCounts `json:"risk_counts"`
	TotalDevices int               `json:"total_devices"`
}

// Analysis is a detailed review of some or all devices in a snapshot.
type Analysis struct {
	Analysis        string    `json:"analysis"`
	AnalyzedDevices int       `json:"analyzed_devices"`
	Model           string    `json:"model"`
	Timestamp       time.Time `json:"timestamp"`
}

// Status describes the model runtime.
type Status struct {
	Available      bool     `json:"available"`
	Host           string   `json:"host"`
	Model          string   `json:"model"`
	ModelAvailable bool     `json:"model_available"`
	Models         []string `json:"models"`
	Message        string   `json:"message,omitempty"`
}

// Enricher generates commentary for snapshots.
type Enricher interface {
	Summarize(ctx context.Context, snapshot *models.Snapshot) (*Summary, error)
	// Analyze reviews every device, or only deviceIP when it is non-empty.
	Analyze(ctx context.Context, snapshot *models.Snapshot, deviceIP string) (*Analysis, error)
	Status(ctx context.Context) Status
}
