package daemon

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsentinel/internal/config"
	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/scanning"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Scanning.ReverseDNS = false
	cfg.API.Enabled = false
	cfg.API.RateLimit.Enabled = false
	cfg.Logging.RequestLogging = false
	cfg.Daemon.ShutdownTimeout = 5 * time.Second
	return cfg
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func waitReady(t *testing.T, d *Daemon) {
	t.Helper()
	select {
	case <-d.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not become ready")
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)
	d := New(cfg, "1.2.3", logging.Discard())

	require.NotNil(t, d)
	assert.Same(t, cfg, d.config)
	assert.Equal(t, "1.2.3", d.version)
	assert.NotNil(t, d.logger)
	assert.True(t, d.IsRunning())
	assert.Nil(t, d.Components())
}

func TestBuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true

	c, err := Build(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	assert.NotNil(t, c.Store)
	assert.Nil(t, c.Database, "memory store has no database to ping")
	assert.NotNil(t, c.Metrics)
	assert.Equal(t, cfg.Scanning.MaxConcurrentProbes, c.Limiter.Capacity())
	assert.Equal(t, scanning.StateIdle, c.Orchestrator.Status().State)
	assert.NotNil(t, c.Publisher)
	assert.False(t, c.Notifier.Configured(context.Background()))
	assert.Equal(t, cfg.AI.Ollama.Model, c.Enricher.Model())

	require.NoError(t, c.Close(context.Background()))
}

func TestBuild_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false

	c, err := Build(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	assert.Nil(t, c.Metrics)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"unknown driver", func(c *config.Config) { c.Database.Driver = "sqlite" }},
		{"unknown discovery method", func(c *config.Config) { c.Scanning.DiscoveryMethod = "icmp" }},
		{"unknown prober", func(c *config.Config) { c.Scanning.Prober = "syn" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(cfg)

			c, err := Build(context.Background(), cfg, logging.Discard())
			require.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestBuildResolver(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.ScanningConfig)
		wantNil bool
	}{
		{name: "all disabled", modify: func(*config.ScanningConfig) {}, wantNil: true},
		{
			name:   "reverse dns",
			modify: func(s *config.ScanningConfig) { s.ReverseDNS, s.DNSServer = true, "192.0.2.53:53" },
		},
		{
			name:   "snmp",
			modify: func(s *config.ScanningConfig) { s.SNMP.Enabled = true },
		},
		{
			name: "dns and snmp",
			modify: func(s *config.ScanningConfig) {
				s.ReverseDNS, s.DNSServer = true, "192.0.2.53"
				s.SNMP.Enabled = true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testConfig(t).Scanning
			tt.modify(&s)

			resolver := buildResolver(s, logging.Discard())
			if tt.wantNil {
				assert.Nil(t, resolver)
			} else {
				assert.NotNil(t, resolver)
			}
		})
	}
}

func TestComponents_Close(t *testing.T) {
	c, err := Build(context.Background(), testConfig(t), logging.Discard())
	require.NoError(t, err)

	require.NoError(t, c.Close(context.Background()))

	_, err = c.Store.Latest(context.Background())
	assert.True(t, errors.IsNotFound(err), "memory store stays readable after close")
}

func TestComponents_HandlerDependencies(t *testing.T) {
	cfg := testConfig(t)
	cfg.Alerts.ListLimit = 75

	c, err := Build(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	deps := c.HandlerDependencies(cfg, "dev", logging.Discard())
	assert.Equal(t, "dev", deps.Version)
	assert.Equal(t, cfg.AI.Ollama.Model, deps.Model)
	assert.Equal(t, 75, deps.AlertListLimit)
	assert.Nil(t, deps.Database)
	assert.NotNil(t, deps.Controller)
	assert.NotNil(t, deps.Retrier)
	assert.NotNil(t, deps.Notifier)
	assert.NotNil(t, deps.Enricher)
}

func TestStart_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scanning.HostConcurrency = 0

	err := New(cfg, "dev", logging.Discard()).Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestStart_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schedule.Enabled = true
	cfg.Schedule.Cron = "every tuesday"

	err := New(cfg, "dev", logging.Discard()).Start()
	require.Error(t, err)
}

func TestStartStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schedule.Enabled = true
	cfg.Schedule.Cron = "0 3 * * *"

	d := New(cfg, "dev", logging.Discard())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Start() }()

	waitReady(t, d)
	require.NotNil(t, d.Components())
	require.NotNil(t, d.scheduler)
	assert.Len(t, d.scheduler.GetJobs(), 1)

	require.NoError(t, d.Stop())
	assert.False(t, d.IsRunning())

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestStartStop_ServesAPI(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.Enabled = true
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = freePort(t)

	d := New(cfg, "dev", logging.Discard())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Start() }()
	t.Cleanup(func() { _ = d.Stop() })
	waitReady(t, d)

	url := fmt.Sprintf("http://%s/api/health", cfg.GetAPIAddress())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 25*time.Millisecond)

	require.NoError(t, d.Stop())
	assert.NoError(t, <-errCh)
}
