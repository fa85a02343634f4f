// Package config loads and validates the netsentinel configuration file.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/anstrom/netsentinel/internal/db"
	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
)

// Discovery methods.
const (
	DiscoveryARP      = "arp"
	DiscoveryARPCache = "arp-cache"
	DiscoveryNmap     = "nmap"
)

// Port probers.
const (
	ProberConnect = "connect"
	ProberNmap    = "nmap"
)

const (
	maxPort     = 65535
	dirPerm     = 0750
	configPerm  = 0600
	defaultPort = 8080
)

// Config represents the complete daemon configuration
type Config struct {
	Daemon   DaemonConfig   `yaml:"daemon" json:"daemon"`
	Database db.Config      `yaml:"database" json:"database"`
	Scanning ScanningConfig `yaml:"scanning" json:"scanning"`
	Risk     RiskConfig     `yaml:"risk" json:"risk"`
	Alerts   AlertsConfig   `yaml:"alerts" json:"alerts"`
	Notify   NotifyConfig   `yaml:"notify" json:"notify"`
	AI       AIConfig       `yaml:"ai" json:"ai"`
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`
	API      APIConfig      `yaml:"api" json:"api"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// DaemonConfig holds daemon-specific settings
type DaemonConfig struct {
	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// Run one scan as soon as the daemon is up
	ScanOnStartup bool `yaml:"scan_on_startup" json:"scan_on_startup"`
}

// ScanningConfig controls discovery and port probing.
type ScanningConfig struct {
	// CIDR to sweep. Empty means infer from the default route.
	Network string `yaml:"network" json:"network"`

	// Ports to probe. Empty means the built-in common ports table.
	Ports []int `yaml:"ports" json:"ports"`

	DiscoveryMethod string `yaml:"discovery_method" json:"discovery_method"`
	Interface       string `yaml:"interface" json:"interface"`
	Prober          string `yaml:"prober" json:"prober"`

	SweepTimeout time.Duration `yaml:"sweep_timeout" json:"sweep_timeout"`
	PortTimeout  time.Duration `yaml:"port_timeout" json:"port_timeout"`
	ScanTimeout  time.Duration `yaml:"scan_timeout" json:"scan_timeout"`

	// Hosts probed at once within a scan
	HostConcurrency int `yaml:"host_concurrency" json:"host_concurrency"`

	// Process-wide ceiling on concurrent probe connections
	MaxConcurrentProbes int `yaml:"max_concurrent_probes" json:"max_concurrent_probes"`

	ReverseDNS bool       `yaml:"reverse_dns" json:"reverse_dns"`
	DNSServer  string     `yaml:"dns_server" json:"dns_server"`
	SNMP       SNMPConfig `yaml:"snmp" json:"snmp"`
}

// SNMPConfig enables sysName lookups for devices without a PTR record.
type SNMPConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Community string        `yaml:"community" json:"community"`
	Port      int           `yaml:"port" json:"port"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// RiskConfig holds the scorer's rule weights.
type RiskConfig struct {
	HighRiskServiceWeight int `yaml:"high_risk_service_weight" json:"high_risk_service_weight"`
	RemoteAccessWeight    int `yaml:"remote_access_weight" json:"remote_access_weight"`
	NewDeviceWeight       int `yaml:"new_device_weight" json:"new_device_weight"`
	UnknownIdentityWeight int `yaml:"unknown_identity_weight" json:"unknown_identity_weight"`
}

// AlertsConfig controls alert listing and dispatch.
type AlertsConfig struct {
	ListLimit      int  `yaml:"list_limit" json:"list_limit"`
	DispatchOnScan bool `yaml:"dispatch_on_scan" json:"dispatch_on_scan"`
}

// NotifyConfig holds outbound notification settings.
type NotifyConfig struct {
	Discord DiscordConfig `yaml:"discord" json:"discord"`
}

// DiscordConfig configures the Discord webhook dispatcher. A webhook URL saved
// through the settings endpoint takes precedence over WebhookURL.
type DiscordConfig struct {
	WebhookURL        string        `yaml:"webhook_url" json:"webhook_url"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int           `yaml:"burst" json:"burst"`
}

// AIConfig holds model runtime settings.
type AIConfig struct {
	Ollama OllamaConfig `yaml:"ollama" json:"ollama"`
}

// OllamaConfig configures the local model runtime client.
type OllamaConfig struct {
	Host            string        `yaml:"host" json:"host"`
	Model           string        `yaml:"model" json:"model"`
	SummaryTimeout  time.Duration `yaml:"summary_timeout" json:"summary_timeout"`
	AnalysisTimeout time.Duration `yaml:"analysis_timeout" json:"analysis_timeout"`
	StatusTimeout   time.Duration `yaml:"status_timeout" json:"status_timeout"`
}

// ScheduleConfig drives periodic scans.
type ScheduleConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Cron    string `yaml:"cron" json:"cron"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Enabled        bool          `yaml:"enabled" json:"enabled"`
	Host           string        `yaml:"host" json:"host"`
	Port           int           `yaml:"port" json:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes" json:"max_header_bytes"`
	MaxRequestSize int64         `yaml:"max_request_size" json:"max_request_size"`

	CORS      CORSConfig      `yaml:"cors" json:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// AuthEnabled requires X-API-Key or a Bearer token on /api routes.
	AuthEnabled bool `yaml:"auth_enabled" json:"auth_enabled"`

	// APIKeys holds bcrypt hashes produced by `netsentinel apikeys generate`.
	APIKeys []string `yaml:"api_keys" json:"api_keys"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

// RateLimitConfig holds per-client API rate limiting settings
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" json:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level          string `yaml:"level" json:"level"`
	Format         string `yaml:"format" json:"format"`
	Output         string `yaml:"output" json:"output"`
	AddSource      bool   `yaml:"add_source" json:"add_source"`
	RequestLogging bool   `yaml:"request_logging" json:"request_logging"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Daemon: DaemonConfig{
			ShutdownTimeout: 30 * time.Second,
		},
		Database: db.DefaultConfig(),
		Scanning: ScanningConfig{
			DiscoveryMethod:     DiscoveryARP,
			Prober:              ProberConnect,
			SweepTimeout:        3 * time.Second,
			PortTimeout:         500 * time.Millisecond,
			ScanTimeout:         10 * time.Minute,
			HostConcurrency:     20,
			MaxConcurrentProbes: 256,
			ReverseDNS:          true,
			SNMP: SNMPConfig{
				Enabled:   false,
				Community: "public",
				Port:      161,
				Timeout:   time.Second,
			},
		},
		Risk: RiskConfig{
			HighRiskServiceWeight: 70,
			RemoteAccessWeight:    25,
			NewDeviceWeight:       10,
			UnknownIdentityWeight: 10,
		},
		Alerts: AlertsConfig{
			ListLimit:      50,
			DispatchOnScan: true,
		},
		Notify: NotifyConfig{
			Discord: DiscordConfig{
				Timeout:           10 * time.Second,
				RequestsPerMinute: 30,
				Burst:             5,
			},
		},
		AI: AIConfig{
			Ollama: OllamaConfig{
				Host:            "http://localhost:11434",
				Model:           "llama3.2:1b",
				SummaryTimeout:  120 * time.Second,
				AnalysisTimeout: 180 * time.Second,
				StatusTimeout:   5 * time.Second,
			},
		},
		Schedule: ScheduleConfig{
			Enabled: false,
			Cron:    "0 */6 * * *",
		},
		API: APIConfig{
			Enabled:        true,
			Host:           "127.0.0.1",
			Port:           defaultPort,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   200 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 20,
			MaxRequestSize: 1 << 20,
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
			},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 10,
				Burst:             20,
			},
			AuthEnabled: false,
			APIKeys:     []string{},
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			Output:         "stdout",
			RequestLogging: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			// yaml.v3 also accepts JSON documents.
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", filepath.Base(path), err)
			}
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnv honours the runtime environment variables the model runtime
// conventionally uses.
func (c *Config) applyEnv() {
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		c.AI.Ollama.Host = host
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		c.AI.Ollama.Model = model
	}
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, configPerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.validateScanning(); err != nil {
		return err
	}

	r := c.Risk
	for field, w := range map[string]int{
		"risk.high_risk_service_weight": r.HighRiskServiceWeight,
		"risk.remote_access_weight":     r.RemoteAccessWeight,
		"risk.new_device_weight":        r.NewDeviceWeight,
		"risk.unknown_identity_weight":  r.UnknownIdentityWeight,
	} {
		if w < 0 || w > 100 {
			return errors.ErrConfigInvalid(field, w)
		}
	}

	if c.Alerts.ListLimit <= 0 {
		return errors.ErrConfigInvalid("alerts.list_limit", c.Alerts.ListLimit)
	}

	if c.Notify.Discord.RequestsPerMinute <= 0 {
		return errors.ErrConfigInvalid("notify.discord.requests_per_minute", c.Notify.Discord.RequestsPerMinute)
	}

	if c.AI.Ollama.Host == "" {
		return errors.ErrConfigMissing("ai.ollama.host")
	}
	if c.AI.Ollama.Model == "" {
		return errors.ErrConfigMissing("ai.ollama.model")
	}

	if c.Schedule.Enabled {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return errors.ErrConfigInvalid("schedule.cron", c.Schedule.Cron)
		}
	}

	if c.API.Enabled {
		if c.API.Port <= 0 || c.API.Port > maxPort {
			return errors.ErrConfigInvalid("api.port", c.API.Port)
		}
		if c.API.Host == "" {
			return errors.ErrConfigMissing("api.host")
		}
		if c.API.AuthEnabled && len(c.API.APIKeys) == 0 {
			return errors.ErrConfigMissing("api.api_keys")
		}
	}

	switch logging.LogLevel(strings.ToLower(c.Logging.Level)) {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return errors.ErrConfigInvalid("logging.level", c.Logging.Level)
	}
	switch logging.LogFormat(c.Logging.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return errors.ErrConfigInvalid("logging.format", c.Logging.Format)
	}

	return nil
}

func (c *Config) validateScanning() error {
	s := c.Scanning
	if s.Network != "" {
		if _, _, err := net.ParseCIDR(s.Network); err != nil {
			return errors.ErrConfigInvalid("scanning.network", s.Network)
		}
	}
	for _, p := range s.Ports {
		if p <= 0 || p > maxPort {
			return errors.ErrConfigInvalid("scanning.ports", p)
		}
	}
	// "arp" sweeps the link layer only in binaries built with -tags pcap;
	// other builds fall back to "arp-cache" and warn when the discoverer
	// is created.
	switch s.DiscoveryMethod {
	case DiscoveryARP, DiscoveryARPCache, DiscoveryNmap:
	default:
		return errors.ErrConfigInvalid("scanning.discovery_method", s.DiscoveryMethod)
	}
	switch s.Prober {
	case ProberConnect, ProberNmap:
	default:
		return errors.ErrConfigInvalid("scanning.prober", s.Prober)
	}
	if s.SweepTimeout <= 0 {
		return errors.ErrConfigInvalid("scanning.sweep_timeout", s.SweepTimeout)
	}
	if s.PortTimeout <= 0 {
		return errors.ErrConfigInvalid("scanning.port_timeout", s.PortTimeout)
	}
	if s.ScanTimeout <= 0 {
		return errors.ErrConfigInvalid("scanning.scan_timeout", s.ScanTimeout)
	}
	if s.HostConcurrency <= 0 {
		return errors.ErrConfigInvalid("scanning.host_concurrency", s.HostConcurrency)
	}
	if s.MaxConcurrentProbes <= 0 {
		return errors.ErrConfigInvalid("scanning.max_concurrent_probes", s.MaxConcurrentProbes)
	}
	if s.SNMP.Enabled && s.SNMP.Community == "" {
		return errors.ErrConfigMissing("scanning.snmp.community")
	}
	return nil
}

// GetAPIAddress returns the full API address
func (c *Config) GetAPIAddress() string {
	return net.JoinHostPort(c.API.Host, fmt.Sprint(c.API.Port))
}

// LoggerConfig converts the logging section into the logger's own config.
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:     logging.LogLevel(strings.ToLower(c.Logging.Level)),
		Format:    logging.LogFormat(c.Logging.Format),
		Output:    c.Logging.Output,
		AddSource: c.Logging.AddSource,
	}
}
