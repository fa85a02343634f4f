package daemon

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/anstrom/netsentinel/internal/alerts"
	"github.com/anstrom/netsentinel/internal/api/handlers"
	"github.com/anstrom/netsentinel/internal/config"
	"github.com/anstrom/netsentinel/internal/db"
	"github.com/anstrom/netsentinel/internal/discovery"
	"github.com/anstrom/netsentinel/internal/enrich"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/metrics"
	"github.com/anstrom/netsentinel/internal/notify"
	"github.com/anstrom/netsentinel/internal/probe"
	"github.com/anstrom/netsentinel/internal/risk"
	"github.com/anstrom/netsentinel/internal/scanning"
	"github.com/anstrom/netsentinel/internal/store"
)

// Components is the wired scanning pipeline. The daemon serves it over HTTP;
// one-shot CLI commands drive it directly.
type Components struct {
	Store        store.Store
	Database     handlers.DatabasePinger
	Metrics      *metrics.PrometheusMetrics
	Limiter      *probe.Limiter
	Orchestrator *scanning.Orchestrator
	// Publisher always dispatches; it backs explicit retries.
	Publisher *alerts.Publisher
	Notifier  *notify.Discord
	Enricher  *enrich.Ollama
}

// Build opens the store and assembles every collaborator from cfg. The
// caller owns the result and must Close it.
func Build(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Components, error) {
	logger = logging.OrDefault(logger)

	st, err := db.OpenStore(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	c := &Components{Store: st}
	if p, ok := st.(handlers.DatabasePinger); ok {
		c.Database = p
	}

	var recorder metrics.Recorder
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.NewPrometheusMetrics()
		recorder = c.Metrics
	}

	discoverer, err := discovery.New(discovery.Config{
		Method:       cfg.Scanning.DiscoveryMethod,
		Interface:    cfg.Scanning.Interface,
		SweepTimeout: cfg.Scanning.SweepTimeout,
	}, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	c.Limiter = probe.NewLimiter(cfg.Scanning.MaxConcurrentProbes)
	prober, err := probe.New(probe.Config{
		Method:      cfg.Scanning.Prober,
		PortTimeout: cfg.Scanning.PortTimeout,
	}, c.Limiter, logger)
	if err != nil {
		c.Limiter.Close()
		_ = st.Close()
		return nil, err
	}

	c.Notifier = notify.NewDiscord(notify.Config{
		WebhookURL:        cfg.Notify.Discord.WebhookURL,
		Timeout:           cfg.Notify.Discord.Timeout,
		RequestsPerMinute: cfg.Notify.Discord.RequestsPerMinute,
		Burst:             cfg.Notify.Discord.Burst,
	}, st, st, logger)
	c.Publisher = alerts.NewPublisher(st, c.Notifier, recorder, logger)

	// Scans store their alerts either way; delivery on scan is optional.
	var scanDispatcher alerts.Dispatcher
	if cfg.Alerts.DispatchOnScan {
		scanDispatcher = c.Notifier
	}

	c.Orchestrator = scanning.NewOrchestrator(scanning.Config{
		Network:         cfg.Scanning.Network,
		Ports:           cfg.Scanning.Ports,
		ScanTimeout:     cfg.Scanning.ScanTimeout,
		HostConcurrency: cfg.Scanning.HostConcurrency,
	}, scanning.Deps{
		Discoverer: discoverer,
		Prober:     prober,
		Resolver:   buildResolver(cfg.Scanning, logger),
		Scorer: risk.NewScorer(risk.Weights{
			HighRiskService: cfg.Risk.HighRiskServiceWeight,
			RemoteAccess:    cfg.Risk.RemoteAccessWeight,
			NewDevice:       cfg.Risk.NewDeviceWeight,
			UnknownIdentity: cfg.Risk.UnknownIdentityWeight,
		}),
		Store:     st,
		Publisher: alerts.NewPublisher(st, scanDispatcher, recorder, logger),
		Metrics:   recorder,
	}, logger)

	c.Enricher = enrich.NewOllama(enrich.Config{
		Host:            cfg.AI.Ollama.Host,
		Model:           cfg.AI.Ollama.Model,
		SummaryTimeout:  cfg.AI.Ollama.SummaryTimeout,
		AnalysisTimeout: cfg.AI.Ollama.AnalysisTimeout,
		StatusTimeout:   cfg.AI.Ollama.StatusTimeout,
	}, recorder, logger)

	return c, nil
}

// buildResolver returns the hostname resolver chain, or nil when every
// resolver is disabled.
func buildResolver(cfg config.ScanningConfig, logger *logging.Logger) discovery.HostnameResolver {
	var resolvers []discovery.HostnameResolver

	if cfg.ReverseDNS {
		dnsResolver, err := discovery.NewDNSResolver(cfg.DNSServer, 0)
		if err != nil {
			logger.Warn("Reverse DNS disabled", "error", err)
		} else {
			resolvers = append(resolvers, dnsResolver)
		}
	}
	if cfg.SNMP.Enabled {
		resolvers = append(resolvers, discovery.NewSNMPResolver(cfg.SNMP.Community, cfg.SNMP.Port, cfg.SNMP.Timeout))
	}

	if len(resolvers) == 0 {
		return nil
	}
	return discovery.NewChainResolver(logger, resolvers...)
}

// Close waits for a running scan to stop and releases every resource.
func (c *Components) Close(ctx context.Context) error {
	var result *multierror.Error

	if c.Orchestrator != nil {
		if err := c.Orchestrator.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("orchestrator shutdown: %w", err))
		}
	}
	if c.Limiter != nil {
		c.Limiter.Close()
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("store close: %w", err))
		}
	}

	return result.ErrorOrNil()
}

// HandlerDependencies exposes the components to the HTTP handlers.
func (c *Components) HandlerDependencies(cfg *config.Config, version string, logger *logging.Logger) handlers.Dependencies {
	return handlers.Dependencies{
		Database:       c.Database,
		Scans:          c.Store,
		Alerts:         c.Store,
		Settings:       c.Store,
		Controller:     c.Orchestrator,
		Retrier:        c.Publisher,
		Notifier:       c.Notifier,
		Enricher:       c.Enricher,
		Version:        version,
		Model:          c.Enricher.Model(),
		AlertListLimit: cfg.Alerts.ListLimit,
		Logger:         logger,
	}
}
