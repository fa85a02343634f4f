package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/metrics"
	"github.com/anstrom/netsentinel/internal/models"
)

const (
	serviceName = "ollama"

	DefaultHost            = "http://localhost:11434"
	DefaultModel           = "llama3.2:1b"
	DefaultSummaryTimeout  = 120 * time.Second
	DefaultAnalysisTimeout = 180 * time.Second
	DefaultStatusTimeout   = 10 * time.Second

	temperature = 0.7
	topP        = 0.9

	maxErrorBody = 512
	noResponse   = "No response generated"
)

var _ Enricher = (*Ollama)(nil)

// Config configures the Ollama client.
type Config struct {
	Host            string
	Model           string
	SummaryTimeout  time.Duration
	AnalysisTimeout time.Duration
	StatusTimeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	c.Host = strings.TrimRight(c.Host, "/")
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.SummaryTimeout <= 0 {
		c.SummaryTimeout = DefaultSummaryTimeout
	}
	if c.AnalysisTimeout <= 0 {
		c.AnalysisTimeout = DefaultAnalysisTimeout
	}
	if c.StatusTimeout <= 0 {
		c.StatusTimeout = DefaultStatusTimeout
	}
	return c
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Ollama talks to the Ollama HTTP API.
type Ollama struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics metrics.Recorder
	logger  *logging.Logger
	now     func() time.Time
}

// NewOllama creates a client. Per-request deadlines come from cfg, so the
// underlying HTTP client carries no timeout of its own.
func NewOllama(cfg Config, m metrics.Recorder, logger *logging.Logger) *Ollama {
	logger = logging.OrDefault(logger).WithComponent("enrich")
	return &Ollama{
		cfg:    cfg.withDefaults(),
		client: &http.Client{},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        serviceName,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker state changed",
					"breaker", name, "from", from.String(), "to", to.String())
			},
		}),
		metrics: metrics.OrNop(m),
		logger:  logger,
		now:     time.Now,
	}
}

// Host returns the configured Ollama base URL.
func (o *Ollama) Host() string { return o.cfg.Host }

// Model returns the configured model name.
func (o *Ollama) Model() string { return o.cfg.Model }

// Summarize implements Enricher.
func (o *Ollama) Summarize(ctx context.Context, snapshot *models.Snapshot) (*Summary, error) {
	if snapshot == nil {
		return nil, errors.ErrNotFound("scan")
	}
	counts := snapshot.RiskCounts()

	text, err := o.generate(ctx, KindSummary, summaryPrompt(snapshot, counts), o.cfg.SummaryTimeout)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Summary:      text,
		RiskCounts:   counts,
		TotalDevices: snapshot.DeviceCount,
	}, nil
}

// Analyze implements Enricher.
func (o *Ollama) Analyze(ctx context.Context, snapshot *models.Snapshot, deviceIP string) (*Analysis, error) {
	if snapshot == nil {
		return nil, errors.ErrNotFound("scan")
	}

	devices := snapshot.Devices
	if deviceIP != "" {
		d, ok := snapshot.FindDevice(deviceIP)
		if !ok {
			return nil, errors.ErrNotFound("device " + deviceIP)
		}
		devices = []models.Device{*d}
	}

	text, err := o.generate(ctx, KindAnalysis, analysisPrompt(snapshot.Network, devices), o.cfg.AnalysisTimeout)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		Analysis:        text,
		AnalyzedDevices: len(devices),
		Model:           o.cfg.Model,
		Timestamp:       o.now().UTC(),
	}, nil
}

// Status implements Enricher. It never fails; an unreachable runtime is
// reported as unavailable.
func (o *Ollama) Status(ctx context.Context) Status {
	start := time.Now()
	st := Status{Host: o.cfg.Host, Model: o.cfg.Model, Models: []string{}}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.StatusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.cfg.Host+"/api/tags", nil)
	if err != nil {
		st.Message = err.Error()
		return st
	}
	resp, err := o.client.Do(req)
	if err != nil {
		o.metrics.EnrichRequest(KindStatus, metrics.StatusError, time.Since(start))
		st.Message = "Cannot connect to Ollama"
		return st
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		o.metrics.EnrichRequest(KindStatus, metrics.StatusError, time.Since(start))
		st.Message = fmt.Sprintf("Unexpected status: %d", resp.StatusCode)
		return st
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		o.metrics.EnrichRequest(KindStatus, metrics.StatusError, time.Since(start))
		st.Message = "Invalid response from Ollama"
		return st
	}

	st.Available = true
	family, _, _ := strings.Cut(o.cfg.Model, ":")
	for _, m := range tags.Models {
		st.Models = append(st.Models, m.Name)
		if m.Name == o.cfg.Model || strings.Contains(m.Name, family) {
			st.ModelAvailable = true
		}
	}
	o.metrics.EnrichRequest(KindStatus, metrics.StatusSuccess, time.Since(start))
	return st
}

// generate runs one non-streaming completion under timeout.
func (o *Ollama) generate(ctx context.Context, kind, prompt string, timeout time.Duration) (string, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Model:   o.cfg.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: temperature, TopP: topP},
	})
	if err != nil {
		return "", errors.ErrServiceUnavailable(serviceName, err)
	}

	out, err := o.breaker.Execute(func() (interface{}, error) {
		return o.post(ctx, body)
	})
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			o.metrics.EnrichRequest(kind, metrics.StatusTimeout, time.Since(start))
			o.logger.Warn("Ollama request timed out", "kind", kind, "timeout", timeout)
			return "", errors.ErrEnrichmentTimeout(serviceName, err)
		}
		o.metrics.EnrichRequest(kind, metrics.StatusError, time.Since(start))
		o.logger.Warn("Ollama request failed", "kind", kind, "error", err)
		return "", errors.ErrServiceUnavailable(serviceName, err)
	}

	o.metrics.EnrichRequest(kind, metrics.StatusSuccess, time.Since(start))
	text, _ := out.(string)
	if text == "" {
		text = noResponse
	}
	return text, nil
}

func (o *Ollama) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.Host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return out.Response, nil
}
