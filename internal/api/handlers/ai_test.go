package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anstrom/netsentinel/internal/enrich"
	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/models"
)

func TestAIHandler_QuickSummary(t *testing.T) {
	t.Run("summary", func(t *testing.T) {
		env := newTestEnv(t)
		snapshot := fixtureSnapshot()
		env.scans.EXPECT().Latest(gomock.Any()).Return(snapshot, nil)
		env.enricher.EXPECT().Summarize(gomock.Any(), snapshot).Return(&enrich.Summary{
			Summary:      "Two devices, one exposes SMB.",
			RiskCounts:   snapshot.RiskCounts(),
			TotalDevices: 2,
		}, nil)

		rec := env.do(http.MethodGet, "/api/ai/quick-summary", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[map[string]interface{}](t, rec)
		assert.Equal(t, "Two devices, one exposes SMB.", body["summary"])
		assert.EqualValues(t, 2, body["total_devices"])
		counts := body["risk_counts"].(map[string]interface{})
		assert.EqualValues(t, 1, counts["MEDIUM"])
		assert.EqualValues(t, 1, counts["LOW"])
	})

	t.Run("no scan", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().Latest(gomock.Any()).Return(nil, errors.ErrNotFound("scan"))

		rec := env.do(http.MethodGet, "/api/ai/quick-summary", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("errors map to statuses", func(t *testing.T) {
		tests := []struct {
			name     string
			err      error
			expected int
		}{
			{"timeout", errors.ErrEnrichmentTimeout("ollama", assert.AnError), http.StatusGatewayTimeout},
			{"unreachable", errors.ErrServiceUnavailable("ollama", assert.AnError), http.StatusServiceUnavailable},
			{"unexpected", assert.AnError, http.StatusInternalServerError},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				env := newTestEnv(t)
				env.scans.EXPECT().Latest(gomock.Any()).Return(fixtureSnapshot(), nil)
				env.enricher.EXPECT().Summarize(gomock.Any(), gomock.Any()).Return(nil, tt.err)

				rec := env.do(http.MethodGet, "/api/ai/quick-summary", nil)
				assert.Equal(t, tt.expected, rec.Code)
			})
		}
	})
}

func TestAIHandler_Analyze(t *testing.T) {
	analysis := &enrich.Analysis{
		Analysis:        "Close SMB on the NAS.",
		AnalyzedDevices: 1,
		Model:           "llama3.2",
		Timestamp:       fixtureTime,
	}

	t.Run("whole network with empty body", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().Latest(gomock.Any()).Return(fixtureSnapshot(), nil)
		env.enricher.EXPECT().Analyze(gomock.Any(), gomock.Any(), "").Return(analysis, nil)

		rec := env.do(http.MethodPost, "/api/ai/analyze", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[enrich.Analysis](t, rec)
		assert.Equal(t, "llama3.2", body.Model)
	})

	t.Run("single device", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().Latest(gomock.Any()).Return(fixtureSnapshot(), nil)
		env.enricher.EXPECT().Analyze(gomock.Any(), gomock.Any(), "10.0.0.2").Return(analysis, nil)

		rec := env.do(http.MethodPost, "/api/ai/analyze", AnalyzeRequest{DeviceIP: "10.0.0.2"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown device", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().Latest(gomock.Any()).Return(fixtureSnapshot(), nil)

		rec := env.do(http.MethodPost, "/api/ai/analyze", AnalyzeRequest{DeviceIP: "10.0.0.200"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed device ip", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodPost, "/api/ai/analyze", `{"device_ip":"not-an-ip"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "device_ip failed ip validation")
	})

	t.Run("timeout", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().Latest(gomock.Any()).Return(fixtureSnapshot(), nil)
		env.enricher.EXPECT().Analyze(gomock.Any(), gomock.Any(), "").
			Return(nil, errors.ErrEnrichmentTimeout("ollama", assert.AnError))

		rec := env.do(http.MethodPost, "/api/ai/analyze", nil)
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})
}

func TestAIHandler_OllamaStatus(t *testing.T) {
	env := newTestEnv(t)
	env.enricher.EXPECT().Status(gomock.Any()).Return(enrich.Status{
		Available: false,
		Host:      "http://localhost:11434",
		Model:     "llama3.2",
		Models:    []string{},
		Message:   "Ollama is not running",
	})

	rec := env.do(http.MethodGet, "/api/ollama/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[enrich.Status](t, rec)
	assert.False(t, body.Available)
	assert.Equal(t, "llama3.2", body.Model)
}

func TestAIHandler_DoesNotMutateSnapshot(t *testing.T) {
	env := newTestEnv(t)
	snapshot := fixtureSnapshot()
	before := snapshot.Clone()
	env.scans.EXPECT().Latest(gomock.Any()).Return(snapshot, nil)
	env.enricher.EXPECT().Summarize(gomock.Any(), snapshot).
		DoAndReturn(func(_ context.Context, s *models.Snapshot) (*enrich.Summary, error) {
			return &enrich.Summary{Summary: "ok", RiskCounts: s.RiskCounts(), TotalDevices: s.DeviceCount}, nil
		})

	env.do(http.MethodGet, "/api/ai/quick-summary", nil)
	assert.Equal(t, before, snapshot)
}
