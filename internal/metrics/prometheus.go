package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wikidash"

// PrometheusRecorder exports metrics through a dedicated Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	cacheRequests     *prometheus.CounterVec
	upstreamRequests  *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	upstreamRetries   *prometheus.CounterVec
	paginationStops   *prometheus.CounterVec
	degradedResponses *prometheus.CounterVec
}

// NewPrometheus creates a recorder with its own registry, so tests and
// multiple instances never collide on the global default registry.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := &PrometheusRecorder{
		registry: reg,
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Response cache lookups by endpoint tag and result",
		}, []string{"tag", "result"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API calls by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API call latency",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		upstreamRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_retries_total",
			Help:      "Upstream API calls that were retried",
		}, []string{"endpoint"}),
		paginationStops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pagination_stops_total",
			Help:      "Pagination loops by stop reason",
		}, []string{"reason"}),
		degradedResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_responses_total",
			Help:      "Responses served with an embedded error",
		}, []string{"tag"}),
	}

	reg.MustRegister(
		p.cacheRequests,
		p.upstreamRequests,
		p.upstreamDuration,
		p.upstreamRetries,
		p.paginationStops,
		p.degradedResponses,
	)

	return p
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// IncCacheHit increments the cache hit counter for tag.
func (p *PrometheusRecorder) IncCacheHit(tag string) {
	p.cacheRequests.WithLabelValues(tag, "hit").Inc()
}

// IncCacheMiss increments the cache miss counter for tag.
func (p *PrometheusRecorder) IncCacheMiss(tag string) {
	p.cacheRequests.WithLabelValues(tag, "miss").Inc()
}

// ObserveUpstreamRequest records one upstream call.
func (p *PrometheusRecorder) ObserveUpstreamRequest(endpoint, outcome string, duration time.Duration) {
	p.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	p.upstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncUpstreamRetry increments the retry counter.
func (p *PrometheusRecorder) IncUpstreamRetry(endpoint string) {
	p.upstreamRetries.WithLabelValues(endpoint).Inc()
}

// IncPaginationStopped records why a pagination loop ended.
func (p *PrometheusRecorder) IncPaginationStopped(reason string) {
	p.paginationStops.WithLabelValues(reason).Inc()
}

// IncDegradedResponse increments the degraded response counter for tag.
func (p *PrometheusRecorder) IncDegradedResponse(tag string) {
	p.degradedResponses.WithLabelValues(tag).Inc()
}
