package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequest is a no-op.
func (n *NoopRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {}

// IncAuthEvent is a no-op.
func (n *NoopRecorder) IncAuthEvent(event, outcome string) {}

// IncSessionLookup is a no-op.
func (n *NoopRecorder) IncSessionLookup(outcome string) {}

// ObserveApplicationsListed is a no-op.
func (n *NoopRecorder) ObserveApplicationsListed(count int) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited(scope string) {}
