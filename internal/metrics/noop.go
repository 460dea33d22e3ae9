package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCacheHit is a no-op.
func (n *NoopRecorder) IncCacheHit(tag string) {}

// IncCacheMiss is a no-op.
func (n *NoopRecorder) IncCacheMiss(tag string) {}

// ObserveUpstreamRequest is a no-op.
func (n *NoopRecorder) ObserveUpstreamRequest(endpoint, outcome string, duration time.Duration) {}

// IncUpstreamRetry is a no-op.
func (n *NoopRecorder) IncUpstreamRetry(endpoint string) {}

// IncPaginationStopped is a no-op.
func (n *NoopRecorder) IncPaginationStopped(reason string) {}

// IncDegradedResponse is a no-op.
func (n *NoopRecorder) IncDegradedResponse(tag string) {}
