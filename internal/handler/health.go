package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	cache        HealthChecker
	cacheBackend string
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for cache if it is not initialized.
func NewHealthHandler(cache HealthChecker, cacheBackend string) *HealthHandler {
	return &HealthHandler{
		cache:        cache,
		cacheBackend: cacheBackend,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint.
// It returns 200 if the server is running.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe endpoint. It pings the response cache; the
// upstream wiki is not probed.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	name := "cache"
	if h.cacheBackend != "" {
		name = "cache_" + h.cacheBackend
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks[name] = "error: " + err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	} else {
		checks[name] = "not configured"
	}

	status := "ok"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status: status,
		Checks: checks,
	})
}
