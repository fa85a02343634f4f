package metrics

import "time"

// Recorder receives measurements from the scan pipeline and HTTP surface.
type Recorder interface {
	ScanStarted()
	ScanFinished(status string, duration time.Duration, devices int)
	DiscoveryCompleted(method string, duration time.Duration, hosts int, err error)
	PortsProbed(checked, open, timeouts int)
	AlertGenerated(alertType string)
	AlertsDispatched(status string, count int)
	EnrichRequest(kind, status string, duration time.Duration)
	HTTPRequest(method, path, status string, duration time.Duration)
}

// NopRecorder discards every measurement.
type NopRecorder struct{}

func (NopRecorder) ScanStarted() {}
func (NopRecorder) ScanFinished(string, time.Duration, int) {}
func (NopRecorder) DiscoveryCompleted(string, time.Duration, int, error) {}
func (NopRecorder) PortsProbed(int, int, int) {}
func (NopRecorder) AlertGenerated(string) {}
func (NopRecorder) AlertsDispatched(string, int) {}
func (NopRecorder) EnrichRequest(string, string, time.Duration) {}
func (NopRecorder) HTTPRequest(string, string, string, time.Duration) {}

// OrNop returns r, or a NopRecorder when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return NopRecorder{}
	}
	return r
}

var (
	_ Recorder = (*PrometheusMetrics)(nil)
	_ Recorder = NopRecorder{}
)
