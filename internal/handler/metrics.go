package handler

import (
	"net/http"
)

// MetricsHandler exposes the metrics registry.
type MetricsHandler struct {
	exposer http.Handler
}

// NewMetricsHandler creates a new MetricsHandler around an exposition
// handler such as promhttp's.
func NewMetricsHandler(exposer http.Handler) *MetricsHandler {
	return &MetricsHandler{exposer: exposer}
}

// Metrics returns metrics in Prometheus exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.exposer == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	h.exposer.ServeHTTP(w, r)
}
