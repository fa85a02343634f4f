// Package scanning runs the netsentinel scan pipeline.
//
// An Orchestrator owns one pipeline and enforces single-flight execution:
// at most one scan is RUNNING at a time and a second request fails with
// an ALREADY_RUNNING error instead of queueing.
//
// # Pipeline
//
// Each scan runs the same stages in order:
//
//   - discovery: check the sweep capability, then sweep the network
//   - probing: probe the open ports of every discovered host, HostConcurrency
//     hosts at a time, under the process-wide probe Limiter
//   - scoring: score each device, treating devices absent from the previous
//     snapshot as first seen
//   - persistence: append the snapshot to the ScanStore
//   - alerting: diff against the previous snapshot and publish the alerts
//
// Discovery and persistence failures abort the scan: the state moves to
// FAILED and back to IDLE and no snapshot is stored. Probe failures only
// affect the host they belong to.
//
// # Timeouts
//
// ScanTimeout is a wall-clock ceiling for discovery and probing. When it
// expires outstanding probes are cancelled and the scan continues with the
// ports already found, so a slow network yields a partial snapshot rather
// than none.
//
// # Usage
//
//	orch := scanning.NewOrchestrator(cfg, scanning.Deps{
//		Discoverer: disc,
//		Prober:     prober,
//		Scorer:     risk.NewScorer(risk.DefaultWeights()),
//		Store:      st,
//		Publisher:  alerts.NewPublisher(st, discord, rec, logger),
//	}, logger)
//
//	if err := orch.Start(scanning.Request{ScanPorts: true}); errors.IsCode(err, errors.CodeAlreadyRunning) {
//		// a scan is already in progress
//	}
//
// Completion is observed by polling Status or ScanStore.Latest: scan_time
// strictly increases with every completed scan.
package scanning
