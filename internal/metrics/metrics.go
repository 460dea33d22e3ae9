// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Upstream call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeHTTP    = "http_status"
	OutcomeNetwork = "network"
	OutcomeDecode  = "decode"
)

// Pagination stop reasons.
const (
	StopComplete = "complete"
	StopCapped   = "capped"
	StopError    = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Response cache metrics
	IncCacheHit(tag string)
	IncCacheMiss(tag string)

	// Upstream client metrics
	ObserveUpstreamRequest(endpoint, outcome string, duration time.Duration)
	IncUpstreamRetry(endpoint string)

	// Aggregation metrics
	IncPaginationStopped(reason string)
	IncDegradedResponse(tag string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
