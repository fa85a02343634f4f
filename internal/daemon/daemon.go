// Package daemon runs netsentinel as a long-lived service. It wires the
// scanning pipeline, serves the HTTP API, drives scheduled scans and
// coordinates graceful shutdown.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/anstrom/netsentinel/internal/api"
	"github.com/anstrom/netsentinel/internal/config"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/scanning"
	"github.com/anstrom/netsentinel/internal/scheduler"
)

const (
	healthCheckInterval   = 30 * time.Second
	metricsUpdateInterval = 15 * time.Second

	scheduledScanJob = "scheduled-scan"
)

// Daemon represents the main daemon process.
type Daemon struct {
	config  *config.Config
	version string
	logger  *logging.Logger

	components *Components
	apiServer  *api.Server
	scheduler  *scheduler.Scheduler

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	ready     chan struct{}
	wg        sync.WaitGroup
	cleanOnce sync.Once
	sigChan   chan os.Signal
	startedAt time.Time
	mu        sync.RWMutex
}

// New creates a new daemon instance.
func New(cfg *config.Config, version string, logger *logging.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		config:  cfg,
		version: version,
		logger:  logging.OrDefault(logger).WithComponent("daemon"),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		ready:   make(chan struct{}),
	}
}

// Start brings every component up and blocks until the daemon is stopped
// by Stop or a termination signal.
func (d *Daemon) Start() error {
	d.logger.InfoDaemon("Starting netsentinel daemon", "version", d.version)

	if err := d.config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	components, err := Build(d.ctx, d.config, d.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	d.mu.Lock()
	d.components = components
	d.startedAt = time.Now()
	d.mu.Unlock()

	if err := d.initAPIServer(); err != nil {
		d.cleanup()
		return fmt.Errorf("failed to initialize API server: %w", err)
	}

	if err := d.initScheduler(); err != nil {
		d.cleanup()
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	d.setupSignalHandlers()

	if d.config.Daemon.ScanOnStartup {
		if err := components.Orchestrator.Start(scanning.Request{ScanPorts: true}); err != nil {
			d.logger.ErrorDaemon("Startup scan not started", err)
		}
	}

	d.logger.InfoDaemon("Daemon started successfully")
	close(d.ready)
	return d.run()
}

// Stop stops the daemon gracefully.
func (d *Daemon) Stop() error {
	d.logger.InfoDaemon("Stopping daemon")
	d.cancel()

	select {
	case <-d.done:
		d.logger.InfoDaemon("Daemon stopped gracefully")
	case <-time.After(d.config.Daemon.ShutdownTimeout):
		d.logger.Warn("Shutdown timeout reached, forcing exit")
		d.cleanup()
	}
	return nil
}

// IsRunning reports whether the daemon has not been told to stop.
func (d *Daemon) IsRunning() bool {
	select {
	case <-d.ctx.Done():
		return false
	default:
		return true
	}
}

// Ready is closed once Start has brought every component up.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Components returns the wired pipeline, or nil before Start.
func (d *Daemon) Components() *Components {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.components
}

func (d *Daemon) initAPIServer() error {
	if !d.config.API.Enabled {
		d.logger.InfoDaemon("API server disabled")
		return nil
	}

	deps := d.components.HandlerDependencies(d.config, d.version, d.logger)
	server, err := api.New(d.config, deps, d.components.Metrics)
	if err != nil {
		return err
	}
	d.apiServer = server
	return nil
}

func (d *Daemon) initScheduler() error {
	if !d.config.Schedule.Enabled {
		return nil
	}

	d.scheduler = scheduler.NewScheduler(d.components.Orchestrator, d.logger)
	req := scanning.Request{Network: d.config.Scanning.Network, ScanPorts: true}
	if _, err := d.scheduler.AddScanJob(scheduledScanJob, d.config.Schedule.Cron, req); err != nil {
		return err
	}
	return d.scheduler.Start()
}

func (d *Daemon) setupSignalHandlers() {
	d.sigChan = make(chan os.Signal, 1)
	signal.Notify(d.sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGUSR1)

	go func() {
		for {
			select {
			case <-d.ctx.Done():
				return
			case sig := <-d.sigChan:
				d.logger.InfoDaemon("Received signal", "signal", sig.String())
				switch sig {
				case syscall.SIGTERM, syscall.SIGINT:
					d.logger.InfoDaemon("Initiating graceful shutdown")
					d.cancel()
					return
				case syscall.SIGUSR1:
					d.dumpStatus()
				}
			}
		}
	}()
}

func (d *Daemon) run() error {
	if d.apiServer != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.apiServer.Start(d.ctx); err != nil {
				d.logger.ErrorDaemon("API server error", err)
				d.cancel()
			}
		}()
	}

	if pm := d.components.Metrics; pm != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			pm.StartPeriodicUpdates(d.ctx, metricsUpdateInterval)
		}()
	}

	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.logger.InfoDaemon("Shutdown signal received")
			d.cleanup()
			close(d.done)
			return nil
		case <-ticker.C:
			d.performHealthCheck()
		}
	}
}

func (d *Daemon) performHealthCheck() {
	if d.components.Database == nil {
		return
	}
	ctx, cancel := context.WithTimeout(d.ctx, healthCheckInterval/2)
	defer cancel()
	if err := d.components.Database.Ping(ctx); err != nil {
		d.logger.ErrorDaemon("Database health check failed", err)
	}
}

// cleanup runs at most once. The API server stops itself when the context
// is canceled; scans in flight get ShutdownTimeout to finish.
func (d *Daemon) cleanup() {
	d.cleanOnce.Do(func() {
		d.logger.InfoDaemon("Performing cleanup")
		d.cancel()

		if d.sigChan != nil {
			signal.Stop(d.sigChan)
		}
		if d.scheduler != nil {
			d.scheduler.Stop()
		}
		d.wg.Wait()

		if d.components != nil {
			ctx, cancel := context.WithTimeout(context.Background(), d.config.Daemon.ShutdownTimeout)
			defer cancel()
			if err := d.components.Close(ctx); err != nil {
				d.logger.ErrorDaemon("Error releasing components", err)
			}
		}

		d.logger.InfoDaemon("Cleanup completed")
	})
}

// dumpStatus logs a snapshot of the daemon state.
func (d *Daemon) dumpStatus() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status := d.components.Orchestrator.Status()
	fields := []any{
		"pid", os.Getpid(),
		"uptime", time.Since(d.startedAt).Round(time.Second).String(),
		"goroutines", runtime.NumGoroutine(),
		"alloc_kb", m.Alloc / 1024,
		"scan_state", string(status.State),
		"probes_active", d.components.Limiter.Active(),
	}

	database := "not configured"
	if d.components.Database != nil {
		if err := d.components.Database.Ping(d.ctx); err != nil {
			database = "disconnected"
		} else {
			database = "connected"
		}
	}
	fields = append(fields, "database", database)

	if pending, err := d.components.Publisher.Pending(d.ctx); err == nil {
		fields = append(fields, "unnotified_alerts", pending)
	}
	if d.apiServer != nil {
		fields = append(fields, "api_address", d.apiServer.GetAddress())
	}

	d.logger.InfoDaemon("Daemon status", fields...)
}
