// Package metrics provides Prometheus-based metrics collection for netsentinel.
// The scan pipeline reports through the Recorder interface so tests can run
// without a registry.
package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all netsentinel metrics
	namespace = "netsentinel"

	// Subsystems
	subsystemScan      = "scan"
	subsystemDiscovery = "discovery"
	subsystemProbe     = "probe"
	subsystemAlerts    = "alerts"
	subsystemEnrich    = "enrich"
	subsystemSystem    = "system"
	subsystemAPI       = "api"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusTimeout = "timeout"
)

// PrometheusMetrics holds all Prometheus metric collectors
type PrometheusMetrics struct {
	// Scan metrics
	scansTotal   *prometheus.CounterVec
	scanDuration prometheus.Histogram
	scanDevices  prometheus.Gauge
	activeScans  prometheus.Gauge

	// Discovery metrics
	discoveryTotal    *prometheus.CounterVec
	discoveryDuration *prometheus.HistogramVec
	hostsDiscovered   *prometheus.CounterVec

	// Probe metrics
	portsChecked  prometheus.Counter
	portsOpen     prometheus.Counter
	probeTimeouts prometheus.Counter

	// Alert metrics
	alertsGenerated  *prometheus.CounterVec
	alertsDispatched *prometheus.CounterVec

	// Enrichment metrics
	enrichRequests *prometheus.CounterVec
	enrichDuration *prometheus.HistogramVec

	// API metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec

	// System metrics
	memoryUsage prometheus.Gauge
	goroutines  prometheus.Gauge
	uptime      prometheus.Gauge

	startTime  time.Time
	lastUpdate time.Time
	mu         sync.RWMutex
	registry   *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{
		startTime: time.Now(),
		registry:  registry,
	}

	pm.initScanMetrics()
	pm.initDiscoveryMetrics()
	pm.initProbeMetrics()
	pm.initAlertMetrics()
	pm.initEnrichMetrics()
	pm.initAPIMetrics()
	pm.initSystemMetrics()

	pm.registerMetrics()

	// Register standard Go and process collectors for runtime visibility
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

func (pm *PrometheusMetrics) initScanMetrics() {
	pm.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "total",
			Help:      "Total number of scans by final status",
		},
		[]string{"status"},
	)

	pm.scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of scans in seconds",
			Buckets:   []float64{1.0, 5.0, 10.0, 30.0, 60.0, 120.0, 300.0, 600.0},
		},
	)

	pm.scanDevices = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "devices",
			Help:      "Number of devices in the latest snapshot",
		},
	)

	pm.activeScans = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "active",
			Help:      "Whether a scan is currently running",
		},
	)
}

func (pm *PrometheusMetrics) initDiscoveryMetrics() {
	pm.discoveryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemDiscovery,
			Name:      "total",
			Help:      "Total number of discovery sweeps by method and status",
		},
		[]string{"method", "status"},
	)

	pm.discoveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemDiscovery,
			Name:      "duration_seconds",
			Help:      "Duration of discovery sweeps in seconds",
			Buckets:   []float64{0.5, 1.0, 3.0, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"method"},
	)

	pm.hostsDiscovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemDiscovery,
			Name:      "hosts_total",
			Help:      "Total number of hosts discovered",
		},
		[]string{"method"},
	)
}

func (pm *PrometheusMetrics) initProbeMetrics() {
	pm.portsChecked = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemProbe,
		Name:      "ports_checked_total",
		Help:      "Total number of port checks attempted",
	})
	pm.portsOpen = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemProbe,
		Name:      "ports_open_total",
		Help:      "Total number of port checks that found the port open",
	})
	pm.probeTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemProbe,
		Name:      "timeouts_total",
		Help:      "Total number of port checks that timed out",
	})
}

func (pm *PrometheusMetrics) initAlertMetrics() {
	pm.alertsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemAlerts,
			Name:      "generated_total",
			Help:      "Total number of alerts generated by type",
		},
		[]string{"alert_type"},
	)

	pm.alertsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemAlerts,
			Name:      "dispatched_total",
			Help:      "Total number of alerts handed to the notification dispatcher by status",
		},
		[]string{"status"},
	)
}

func (pm *PrometheusMetrics) initEnrichMetrics() {
	pm.enrichRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemEnrich,
			Name:      "requests_total",
			Help:      "Total number of AI enrichment requests by kind and status",
		},
		[]string{"kind", "status"},
	)

	pm.enrichDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemEnrich,
			Name:      "duration_seconds",
			Help:      "Duration of AI enrichment requests in seconds",
			Buckets:   []float64{1.0, 5.0, 15.0, 30.0, 60.0, 120.0, 180.0},
		},
		[]string{"kind"},
	)
}

func (pm *PrometheusMetrics) initAPIMetrics() {
	pm.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	pm.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"method", "path"},
	)

	pm.httpErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "errors_total",
			Help:      "Total number of HTTP errors by method, path and error type",
		},
		[]string{"method", "path", "error_type"},
	)
}

func (pm *PrometheusMetrics) initSystemMetrics() {
	pm.memoryUsage = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "memory_bytes",
			Help:      "Current memory usage in bytes",
		},
	)

	pm.goroutines = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		},
	)

	pm.uptime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "uptime_seconds",
			Help:      "Application uptime in seconds",
		},
	)
}

// registerMetrics registers all metrics with the Prometheus registry
func (pm *PrometheusMetrics) registerMetrics() {
	pm.registry.MustRegister(
		pm.scansTotal, pm.scanDuration, pm.scanDevices, pm.activeScans,
		pm.discoveryTotal, pm.discoveryDuration, pm.hostsDiscovered,
		pm.portsChecked, pm.portsOpen, pm.probeTimeouts,
		pm.alertsGenerated, pm.alertsDispatched,
		pm.enrichRequests, pm.enrichDuration,
		pm.httpRequests, pm.httpDuration, pm.httpErrors,
		pm.memoryUsage, pm.goroutines, pm.uptime,
	)
}

// GetRegistry returns the Prometheus registry for HTTP handler
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// ScanStarted marks a scan as active.
func (pm *PrometheusMetrics) ScanStarted() {
	pm.activeScans.Set(1)
}

// ScanFinished records the outcome of a scan.
func (pm *PrometheusMetrics) ScanFinished(status string, duration time.Duration, devices int) {
	pm.activeScans.Set(0)
	pm.scansTotal.WithLabelValues(status).Inc()
	pm.scanDuration.Observe(duration.Seconds())
	if status == StatusSuccess {
		pm.scanDevices.Set(float64(devices))
	}
}

// DiscoveryCompleted records one discovery sweep.
func (pm *PrometheusMetrics) DiscoveryCompleted(method string, duration time.Duration, hosts int, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	pm.discoveryTotal.WithLabelValues(method, status).Inc()
	pm.discoveryDuration.WithLabelValues(method).Observe(duration.Seconds())
	pm.hostsDiscovered.WithLabelValues(method).Add(float64(hosts))
}

// PortsProbed records the port checks made against one host.
func (pm *PrometheusMetrics) PortsProbed(checked, open, timeouts int) {
	pm.portsChecked.Add(float64(checked))
	pm.portsOpen.Add(float64(open))
	pm.probeTimeouts.Add(float64(timeouts))
}

// AlertGenerated counts one alert of the given type.
func (pm *PrometheusMetrics) AlertGenerated(alertType string) {
	pm.alertsGenerated.WithLabelValues(alertType).Inc()
}

// AlertsDispatched counts alerts handed to the dispatcher.
func (pm *PrometheusMetrics) AlertsDispatched(status string, count int) {
	pm.alertsDispatched.WithLabelValues(status).Add(float64(count))
}

// EnrichRequest records one AI enrichment call.
func (pm *PrometheusMetrics) EnrichRequest(kind, status string, duration time.Duration) {
	pm.enrichRequests.WithLabelValues(kind, status).Inc()
	pm.enrichDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// HTTPRequest records one served API request.
func (pm *PrometheusMetrics) HTTPRequest(method, path, status string, duration time.Duration) {
	pm.httpRequests.WithLabelValues(method, path, status).Inc()
	pm.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementHTTPErrors increments HTTP error counter
func (pm *PrometheusMetrics) IncrementHTTPErrors(method, path, errorType string) {
	pm.httpErrors.WithLabelValues(method, path, errorType).Inc()
}

// UpdateSystemMetrics updates all system metrics with current values
func (pm *PrometheusMetrics) UpdateSystemMetrics() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	pm.memoryUsage.Set(float64(memStats.Alloc))
	pm.goroutines.Set(float64(runtime.NumGoroutine()))
	pm.uptime.Set(time.Since(pm.startTime).Seconds())

	pm.lastUpdate = time.Now()
}

// GetUptime returns the application uptime
func (pm *PrometheusMetrics) GetUptime() time.Duration {
	return time.Since(pm.startTime)
}

// GetLastUpdate returns the last metrics update time
func (pm *PrometheusMetrics) GetLastUpdate() time.Time {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.lastUpdate
}

// StartPeriodicUpdates refreshes system metrics until ctx is done.
func (pm *PrometheusMetrics) StartPeriodicUpdates(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pm.UpdateSystemMetrics()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.UpdateSystemMetrics()
		}
	}
}
