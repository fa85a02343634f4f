package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
)

func testSnapshot() *models.Snapshot {
	return models.NewSnapshot("192.168.1.0/24", time.Now(), []models.Device{
		{
			IP: "192.168.1.10", MAC: "B8:27:EB:00:00:01", Vendor: "Raspberry Pi Foundation",
			Hostname: models.StringPtr("pi.lan"),
			Ports:    []models.Port{{Port: 23, Service: "Telnet"}},
			Risk: models.RiskAssessment{Score: 70, Level: models.RiskHigh,
				Reasons: []string{"HIGH: Port 23 (Telnet) - Unencrypted remote access"}},
		},
		{
			IP: "192.168.1.20", MAC: "00:11:22:33:44:55", Vendor: "Unknown",
			Risk: models.RiskAssessment{Score: 10, Level: models.RiskMinimal},
		},
	})
}

type fakeOllama struct {
	t        *testing.T
	reply    string
	status   int
	delay    time.Duration
	requests chan generateRequest
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/generate":
		var req generateRequest
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.requests <- req
		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-r.Context().Done():
				return
			}
		}
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: f.reply})
	case "/api/tags":
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:1b"},{"name":"mistral:7b"}]}`))
	default:
		http.NotFound(w, r)
	}
}

func newFake(t *testing.T, f *fakeOllama) *Ollama {
	t.Helper()
	f.t = t
	f.requests = make(chan generateRequest, 4)
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewOllama(Config{Host: srv.URL + "/", SummaryTimeout: time.Second, AnalysisTimeout: time.Second}, nil, logging.Discard())
}

func TestSummarize(t *testing.T) {
	f := &fakeOllama{reply: "Your network has 2 devices."}
	o := newFake(t, f)

	got, err := o.Summarize(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "Your network has 2 devices.", got.Summary)
	assert.Equal(t, 2, got.TotalDevices)
	assert.Equal(t, 1, got.RiskCounts.High)
	assert.Equal(t, 1, got.RiskCounts.Minimal)

	req := <-f.requests
	assert.Equal(t, DefaultModel, req.Model)
	assert.False(t, req.Stream)
	assert.InDelta(t, 0.7, req.Options.Temperature, 1e-9)
	assert.InDelta(t, 0.9, req.Options.TopP, 1e-9)
	assert.Contains(t, req.Prompt, "Network: 192.168.1.0/24")
	assert.Contains(t, req.Prompt, "Needing attention (high risk): 1")
}

func TestAnalyzeAllAndSingleDevice(t *testing.T) {
	f := &fakeOllama{reply: "## Overview"}
	o := newFake(t, f)
	ctx := context.Background()

	all, err := o.Analyze(ctx, testSnapshot(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, all.AnalyzedDevices)
	assert.Equal(t, DefaultModel, all.Model)
	req := <-f.requests
	assert.Contains(t, req.Prompt, "192.168.1.20")
	assert.Contains(t, req.Prompt, "Open Ports: 23/Telnet")
	assert.Contains(t, req.Prompt, "Hostname: pi.lan")

	one, err := o.Analyze(ctx, testSnapshot(), "192.168.1.10")
	require.NoError(t, err)
	assert.Equal(t, 1, one.AnalyzedDevices)
	req = <-f.requests
	assert.NotContains(t, req.Prompt, "192.168.1.20")
	assert.Contains(t, req.Prompt, "Risk Issues: HIGH: Port 23")
}

func TestAnalyzeUnknownDevice(t *testing.T) {
	o := newFake(t, &fakeOllama{})

	_, err := o.Analyze(context.Background(), testSnapshot(), "10.9.9.9")
	assert.True(t, errors.IsNotFound(err))
}

func TestNilSnapshot(t *testing.T) {
	o := newFake(t, &fakeOllama{})

	_, err := o.Summarize(context.Background(), nil)
	assert.True(t, errors.IsNotFound(err))
	_, err = o.Analyze(context.Background(), nil, "")
	assert.True(t, errors.IsNotFound(err))
}

func TestGenerateTimeout(t *testing.T) {
	f := &fakeOllama{reply: "late", delay: 2 * time.Second}
	o := newFake(t, f)
	o.cfg.SummaryTimeout = 50 * time.Millisecond

	_, err := o.Summarize(context.Background(), testSnapshot())
	require.Error(t, err)
	assert.Equal(t, errors.CodeEnrichmentTimeout, errors.GetCode(err))
}

func TestGenerateServerError(t *testing.T) {
	o := newFake(t, &fakeOllama{status: http.StatusInternalServerError})

	_, err := o.Analyze(context.Background(), testSnapshot(), "")
	require.Error(t, err)
	assert.Equal(t, errors.CodeServiceUnavailable, errors.GetCode(err))
}

func TestEmptyResponse(t *testing.T) {
	o := newFake(t, &fakeOllama{reply: ""})

	got, err := o.Summarize(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "No response generated", got.Summary)
}

func TestStatus(t *testing.T) {
	o := newFake(t, &fakeOllama{})

	st := o.Status(context.Background())
	assert.True(t, st.Available)
	assert.True(t, st.ModelAvailable)
	assert.Equal(t, []string{"llama3.2:1b", "mistral:7b"}, st.Models)
	assert.Equal(t, DefaultModel, st.Model)
}

func TestStatusOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := srv.URL
	srv.Close()

	o := NewOllama(Config{Host: host, StatusTimeout: time.Second}, nil, logging.Discard())
	st := o.Status(context.Background())
	assert.False(t, st.Available)
	assert.Equal(t, "Cannot connect to Ollama", st.Message)
	assert.Empty(t, st.Models)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Host: "http://ollama:11434/"}.withDefaults()
	assert.Equal(t, "http://ollama:11434", cfg.Host)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultSummaryTimeout, cfg.SummaryTimeout)
	assert.Equal(t, DefaultAnalysisTimeout, cfg.AnalysisTimeout)
	assert.Equal(t, DefaultStatusTimeout, cfg.StatusTimeout)
}
