package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CacheHits         map[string]uint64
	CacheMisses       map[string]uint64
	UpstreamRequests  map[string]uint64 // keyed by outcome
	UpstreamRetries   uint64
	UpstreamTotalNs   int64
	PaginationStops   map[string]uint64 // keyed by reason
	DegradedResponses map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                sync.Mutex
	cacheHits         map[string]uint64
	cacheMisses       map[string]uint64
	upstreamRequests  map[string]uint64
	paginationStops   map[string]uint64
	degradedResponses map[string]uint64

	upstreamRetries uint64
	upstreamTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		cacheHits:         make(map[string]uint64),
		cacheMisses:       make(map[string]uint64),
		upstreamRequests:  make(map[string]uint64),
		paginationStops:   make(map[string]uint64),
		degradedResponses: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		CacheHits:         copyCounts(m.cacheHits),
		CacheMisses:       copyCounts(m.cacheMisses),
		UpstreamRequests:  copyCounts(m.upstreamRequests),
		UpstreamRetries:   atomic.LoadUint64(&m.upstreamRetries),
		UpstreamTotalNs:   atomic.LoadInt64(&m.upstreamTotalNs),
		PaginationStops:   copyCounts(m.paginationStops),
		DegradedResponses: copyCounts(m.degradedResponses),
	}
}

// IncCacheHit increments the cache hit counter for tag.
func (m *InMemoryRecorder) IncCacheHit(tag string) {
	m.inc(m.cacheHits, tag)
}

// IncCacheMiss increments the cache miss counter for tag.
func (m *InMemoryRecorder) IncCacheMiss(tag string) {
	m.inc(m.cacheMisses, tag)
}

// ObserveUpstreamRequest records one upstream call.
func (m *InMemoryRecorder) ObserveUpstreamRequest(endpoint, outcome string, duration time.Duration) {
	m.inc(m.upstreamRequests, outcome)
	atomic.AddInt64(&m.upstreamTotalNs, duration.Nanoseconds())
}

// IncUpstreamRetry increments the retry counter.
func (m *InMemoryRecorder) IncUpstreamRetry(endpoint string) {
	atomic.AddUint64(&m.upstreamRetries, 1)
}

// IncPaginationStopped records why a pagination loop ended.
func (m *InMemoryRecorder) IncPaginationStopped(reason string) {
	m.inc(m.paginationStops, reason)
}

// IncDegradedResponse increments the degraded response counter for tag.
func (m *InMemoryRecorder) IncDegradedResponse(tag string) {
	m.inc(m.degradedResponses, tag)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, key string) {
	m.mu.Lock()
	counts[key]++
	m.mu.Unlock()
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
