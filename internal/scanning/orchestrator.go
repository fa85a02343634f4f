package scanning

import (
	"context"
	"fmt"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anstrom/netsentinel/internal/alerts"
	"github.com/anstrom/netsentinel/internal/discovery"
	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/metrics"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/probe"
	"github.com/anstrom/netsentinel/internal/risk"
	"github.com/anstrom/netsentinel/internal/store"
)

// State is the run state of an Orchestrator.
type State string

const (
	StateIdle      State = "IDLE"
	StateRunning   State = "RUNNING"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
)

const (
	DefaultScanTimeout     = 10 * time.Minute
	DefaultHostConcurrency = 20
	DefaultResolveTimeout  = time.Second

	// Consecutive snapshots are at least this far apart.
	minScanTimeStep = time.Microsecond
)

// Config tunes the pipeline.
type Config struct {
	// Network is swept when a request names none. Empty means the network
	// of the default route.
	Network string
	// Ports probed on each host. Empty means probe.DefaultPorts().
	Ports           []int
	ScanTimeout     time.Duration
	HostConcurrency int
	ResolveTimeout  time.Duration
}

// Deps are the collaborators of an Orchestrator. Resolver and Publisher
// are optional.
type Deps struct {
	Discoverer discovery.Discoverer
	Prober     probe.Prober
	Resolver   discovery.HostnameResolver
	Scorer     *risk.Scorer
	Store      store.ScanStore
	Publisher  *alerts.Publisher
	Metrics    metrics.Recorder
}

// Request describes one scan.
type Request struct {
	// Network overrides the configured network.
	Network string `json:"network,omitempty"`
	// ScanPorts set to false skips probing; devices carry no ports.
	ScanPorts bool `json:"scan_ports"`
}

// Status is a point-in-time view of the orchestrator.
type Status struct {
	State          State      `json:"state"`
	ScanInProgress bool       `json:"scan_in_progress"`
	Network        string     `json:"network,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	LastScanID     int64      `json:"last_scan_id,omitempty"`
	LastScanTime   *time.Time `json:"last_scan_time,omitempty"`
	LastResult     State      `json:"last_result,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

// Orchestrator runs scans one at a time.
type Orchestrator struct {
	cfg  Config
	deps Deps

	logger  *logging.Logger
	metrics metrics.Recorder
	now     func() time.Time

	// running is the single-flight guard. It is flipped with CompareAndSwap
	// and everything below is only read for status reporting.
	running atomic.Bool

	mu           sync.RWMutex
	state        State
	network      string
	startedAt    time.Time
	lastScanID   int64
	lastScanTime time.Time
	lastResult   State
	lastErr      error

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates an idle orchestrator.
func NewOrchestrator(cfg Config, deps Deps, logger *logging.Logger) *Orchestrator {
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = DefaultScanTimeout
	}
	if cfg.HostConcurrency <= 0 {
		cfg.HostConcurrency = DefaultHostConcurrency
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = DefaultResolveTimeout
	}
	if len(cfg.Ports) == 0 {
		cfg.Ports = probe.DefaultPorts()
	}
	if deps.Scorer == nil {
		deps.Scorer = risk.NewScorer(risk.DefaultWeights())
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:     cfg,
		deps:    deps,
		logger:  logging.OrDefault(logger).WithComponent("scanning"),
		metrics: metrics.OrNop(deps.Metrics),
		now:     time.Now,
		state:   StateIdle,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Start launches a scan in the background and returns at once. It fails
// with CodeAlreadyRunning while another scan is in progress and with
// CodeServiceUnavailable once Shutdown has been called.
func (o *Orchestrator) Start(req Request) error {
	if o.baseCtx.Err() != nil {
		return errors.NewScanError(errors.CodeServiceUnavailable, "scan orchestrator is shut down")
	}
	if !o.acquire() {
		return errors.ErrAlreadyRunning()
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		_, _ = o.execute(o.baseCtx, req)
	}()
	return nil
}

// Run executes a scan synchronously and returns the persisted snapshot.
// It shares the single-flight guard with Start.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*models.Snapshot, error) {
	if !o.acquire() {
		return nil, errors.ErrAlreadyRunning()
	}
	return o.execute(ctx, req)
}

// Status returns the current state. It never blocks on a running scan.
func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()

	st := Status{
		State:          o.state,
		ScanInProgress: o.state == StateRunning,
		LastScanID:     o.lastScanID,
		LastResult:     o.lastResult,
	}
	if st.ScanInProgress {
		started := o.startedAt
		st.StartedAt = &started
		st.Network = o.network
	}
	if !o.lastScanTime.IsZero() {
		last := o.lastScanTime
		st.LastScanTime = &last
	}
	if o.lastErr != nil {
		st.LastError = o.lastErr.Error()
	}
	return st
}

// Shutdown cancels a background scan and waits for it to finish or for ctx
// to expire. The orchestrator accepts no background scans afterwards.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.cancel()
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until any background scan has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) acquire() bool {
	if !o.running.CompareAndSwap(false, true) {
		return false
	}
	o.mu.Lock()
	o.state = StateRunning
	o.startedAt = o.now()
	o.network = ""
	o.mu.Unlock()
	return true
}

// execute runs the pipeline and performs the terminal transition. The
// caller must hold the guard.
func (o *Orchestrator) execute(ctx context.Context, req Request) (*models.Snapshot, error) {
	start := time.Now()
	o.metrics.ScanStarted()

	snapshot, err := o.pipeline(ctx, req)

	status := metrics.StatusSuccess
	devices := 0
	if err != nil {
		status = metrics.StatusError
	} else {
		devices = snapshot.DeviceCount
	}
	o.metrics.ScanFinished(status, time.Since(start), devices)
	o.finish(snapshot, err)
	return snapshot, err
}

func (o *Orchestrator) finish(snapshot *models.Snapshot, err error) {
	o.mu.Lock()
	if err != nil {
		o.state = StateFailed
		o.lastErr = err
	} else {
		o.state = StateCompleted
		o.lastErr = nil
		o.lastScanID = snapshot.ID
		o.lastScanTime = snapshot.ScanTime
	}
	o.lastResult = o.state
	o.state = StateIdle
	o.mu.Unlock()

	o.running.Store(false)
}

func (o *Orchestrator) setNetwork(network string) {
	o.mu.Lock()
	o.network = network
	o.mu.Unlock()
}

func (o *Orchestrator) pipeline(ctx context.Context, req Request) (*models.Snapshot, error) {
	network, err := o.resolveNetwork(req.Network)
	if err != nil {
		o.logger.ErrorScan("Invalid scan target", req.Network, err)
		return nil, err
	}
	o.setNetwork(network)
	o.logger.InfoScan("Scan started", network, "scan_ports", req.ScanPorts)

	// Discovery and probing share the wall-clock ceiling. Persistence and
	// alerting run on the caller's context so a late scan is still saved.
	scanCtx, cancel := context.WithTimeout(ctx, o.cfg.ScanTimeout)
	defer cancel()

	hosts, err := o.discover(scanCtx, network)
	if err != nil {
		return nil, err
	}

	previous, err := o.previous(ctx)
	if err != nil {
		o.logger.ErrorScan("Failed to load previous snapshot", network, err)
		return nil, errors.ErrPersistence(err)
	}

	devices := o.probeHosts(scanCtx, hosts, req.ScanPorts)
	if scanCtx.Err() != nil && ctx.Err() == nil {
		o.logger.Warn("Scan ceiling reached, keeping partial results",
			"network", network, "timeout", o.cfg.ScanTimeout)
	}
	o.score(devices, previous)

	snapshot := models.NewSnapshot(network, o.nextScanTime(previous), devices)
	id, err := o.deps.Store.Append(ctx, snapshot)
	if err != nil {
		o.logger.ErrorScan("Failed to persist snapshot", network, err)
		if errors.IsCode(err, errors.CodePersistenceFailure) {
			return nil, err
		}
		return nil, errors.ErrPersistence(err)
	}
	snapshot.ID = id

	o.publish(ctx, previous, snapshot)

	counts := snapshot.RiskCounts()
	o.logger.WithScanID(id).InfoScan("Scan completed", network,
		"devices", snapshot.DeviceCount,
		"high_risk", counts.High,
		"medium_risk", counts.Medium)
	return snapshot, nil
}

// resolveNetwork picks the sweep target: request, config, then the local
// network.
func (o *Orchestrator) resolveNetwork(requested string) (string, error) {
	network := requested
	if network == "" {
		network = o.cfg.Network
	}
	if network == "" {
		network = discovery.LocalNetwork(o.logger)
	}
	prefix, err := netip.ParsePrefix(network)
	if err != nil {
		return "", errors.WrapScanError(errors.CodeTargetInvalid,
			fmt.Sprintf("invalid network %q", network), err).WithStage("target")
	}
	return prefix.Masked().String(), nil
}

func (o *Orchestrator) discover(ctx context.Context, network string) ([]discovery.Host, error) {
	d := o.deps.Discoverer
	start := time.Now()

	if err := d.Check(ctx); err != nil {
		o.metrics.DiscoveryCompleted(d.Method(), time.Since(start), 0, err)
		o.logger.ErrorDiscovery("Discovery capability unavailable", network, err, "method", d.Method())
		if errors.IsCode(err, errors.CodeDiscoveryUnavailable) {
			return nil, err
		}
		return nil, errors.ErrDiscoveryUnavailable(d.Method(), err)
	}

	hosts, err := d.Discover(ctx, network)
	o.metrics.DiscoveryCompleted(d.Method(), time.Since(start), len(hosts), err)
	if err != nil {
		o.logger.ErrorDiscovery("Discovery failed", network, err, "method", d.Method())
		if errors.GetCode(err) != errors.CodeUnknown {
			return nil, err
		}
		return nil, errors.ErrDiscoveryFailed(network, err)
	}

	o.logger.InfoDiscovery("Discovery completed", network,
		"method", d.Method(), "hosts", len(hosts), "duration", time.Since(start))
	return hosts, nil
}

func (o *Orchestrator) previous(ctx context.Context) (*models.Snapshot, error) {
	prev, err := o.deps.Store.Latest(ctx)
	if errors.IsNotFound(err) {
		return nil, nil
	}
	return prev, err
}

// probeHosts builds a device per host. Hosts are probed HostConcurrency at
// a time; a failing host keeps an empty port set.
func (o *Orchestrator) probeHosts(ctx context.Context, hosts []discovery.Host, scanPorts bool) []models.Device {
	devices := make([]models.Device, len(hosts))

	var g errgroup.Group
	g.SetLimit(o.cfg.HostConcurrency)

	for i, h := range hosts {
		devices[i] = models.Device{
			IP:     h.IP,
			MAC:    h.MAC,
			Vendor: h.Vendor,
			Ports:  []models.Port{},
		}
		g.Go(func() error {
			d := &devices[i]
			d.Hostname = o.lookupHostname(ctx, h.IP)
			if !scanPorts || ctx.Err() != nil {
				return nil
			}

			res, err := o.deps.Prober.Probe(ctx, h.IP, o.cfg.Ports)
			if err != nil {
				o.logger.Warn("Port probe failed", "ip", h.IP, "error", err)
				return nil
			}
			o.metrics.PortsProbed(res.Checked, len(res.Ports), res.Timeouts)
			if res.Ports != nil {
				d.Ports = res.Ports
			}
			return nil
		})
	}
	_ = g.Wait()
	return devices
}

func (o *Orchestrator) lookupHostname(ctx context.Context, ip string) *string {
	if o.deps.Resolver == nil || ctx.Err() != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, o.cfg.ResolveTimeout)
	defer cancel()

	name, err := o.deps.Resolver.LookupHostname(ctx, ip)
	if err != nil {
		o.logger.Debug("Hostname lookup failed", "ip", ip, "error", err)
		return nil
	}
	return models.StringPtr(name)
}

// score assesses every device. Without a previous snapshot all devices are
// first seen.
func (o *Orchestrator) score(devices []models.Device, previous *models.Snapshot) {
	known := map[string]struct{}{}
	if previous != nil {
		for i := range previous.Devices {
			known[previous.Devices[i].IdentityKey()] = struct{}{}
		}
	}
	for i := range devices {
		_, seen := known[devices[i].IdentityKey()]
		devices[i].Risk = o.deps.Scorer.ScoreDevice(&devices[i], !seen)
	}
}

// nextScanTime returns now, nudged forward when needed so scan_time strictly
// increases across snapshots.
func (o *Orchestrator) nextScanTime(previous *models.Snapshot) time.Time {
	now := o.now().UTC()

	o.mu.RLock()
	last := o.lastScanTime
	o.mu.RUnlock()
	if previous != nil && previous.ScanTime.After(last) {
		last = previous.ScanTime
	}

	if floor := last.Add(minScanTimeStep); !last.IsZero() && now.Before(floor) {
		return floor.UTC()
	}
	return now
}

func (o *Orchestrator) publish(ctx context.Context, previous, current *models.Snapshot) {
	found := alerts.Diff(previous, current)
	if len(found) == 0 || o.deps.Publisher == nil {
		return
	}
	stored, err := o.deps.Publisher.Publish(ctx, found)
	if err != nil {
		o.logger.WithScanID(current.ID).Error("Failed to store alerts", "count", len(found), "error", err)
		return
	}
	o.logger.WithScanID(current.ID).Info("Alerts generated", "count", len(stored))
}
