package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wikidash/wikidash/internal/analytics"
	"github.com/wikidash/wikidash/internal/cache"
	"github.com/wikidash/wikidash/internal/middleware"
	"github.com/wikidash/wikidash/internal/service"
)

// Response cache status header.
const (
	cacheHeader = "X-Cache"
	cacheHit    = "HIT"
	cacheMiss   = "MISS"
)

// param locates one request parameter that identifies a response.
type param struct {
	name string
	// path selects a chi URL parameter instead of the query string.
	path      bool
	validate  func(string) error
	normalize func(string) string
}

func (p param) value(r *http.Request) string {
	var v string
	if p.path {
		v = chi.URLParam(r, p.name)
	} else {
		v = r.URL.Query().Get(p.name)
	}
	if p.normalize != nil {
		v = p.normalize(v)
	}
	return v
}

// cacheRoute names a cacheable route and the parameters that key it. The
// primary parameter is required; the secondary one is optional.
type cacheRoute struct {
	tag       string
	primary   param
	secondary *param
}

// keyParams are the resolved identifying parameters of a request.
type keyParams struct {
	Primary   string
	Secondary string
}

// computeFunc produces a response payload. A non-nil error marks the
// payload as degraded.
type computeFunc func(ctx context.Context, p keyParams) (any, error)

// cached wraps compute with parameter validation and the response cache.
// Only successful payloads are stored, as the exact bytes served, so a hit
// is byte-identical to the miss that filled it. Degraded payloads are
// served with HTTP 200 and an error field.
func (h *InsightsHandler) cached(route cacheRoute, compute computeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		primary := route.primary.value(r)
		if primary == "" {
			writeError(w, http.StatusBadRequest, "Missing "+route.primary.name+" parameter")
			return
		}
		if route.primary.validate != nil {
			if err := route.primary.validate(primary); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid "+route.primary.name+" parameter: "+err.Error())
				return
			}
		}

		var secondary string
		if route.secondary != nil {
			secondary = route.secondary.value(r)
			if secondary != "" && route.secondary.validate != nil {
				if err := route.secondary.validate(secondary); err != nil {
					writeError(w, http.StatusBadRequest, "Invalid "+route.secondary.name+" parameter: "+err.Error())
					return
				}
			}
		}

		key := cache.Key(route.tag, primary, secondary)
		if body, ok := h.cache.Get(ctx, key); ok {
			h.metrics.IncCacheHit(route.tag)
			w.Header().Set(cacheHeader, cacheHit)
			writeBody(w, http.StatusOK, body)
			return
		}
		h.metrics.IncCacheMiss(route.tag)

		payload, err := compute(ctx, keyParams{Primary: primary, Secondary: secondary})
		if err != nil {
			h.metrics.IncDegradedResponse(route.tag)
			h.logger.Warn("serving degraded response",
				slog.String("endpoint", route.tag),
				slog.String("key", key),
				slog.String("error", err.Error()),
				slog.String("request_id", middleware.GetRequestID(ctx)),
			)
			w.Header().Set(cacheHeader, cacheMiss)
			writeJSON(w, http.StatusOK, degrade(payload, service.ErrorMessage(err)))
			return
		}

		body, err := json.Marshal(payload)
		if err != nil {
			h.logger.Error("failed to encode response",
				slog.String("endpoint", route.tag),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if err := h.cache.Set(ctx, key, body); err != nil {
			h.logger.Warn("failed to cache response",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}

		w.Header().Set(cacheHeader, cacheMiss)
		writeBody(w, http.StatusOK, body)
	}
}

// degradedList wraps an array payload that carries an error.
type degradedList struct {
	Error string `json:"error"`
	Data  any    `json:"data"`
}

// degrade attaches msg to a payload. Object payloads carry it in their own
// error field, date maps gain an "error" key and arrays are wrapped.
func degrade(payload any, msg string) any {
	switch p := payload.(type) {
	case analytics.DateCounts:
		out := make(map[string]any, len(p)+1)
		for date, count := range p {
			out[date] = count
		}
		out["error"] = msg
		return out
	case service.ArticleOverview:
		p.Error = msg
		return p
	case service.EditCount:
		p.Error = msg
		return p
	case analytics.CitationStats:
		p.Error = msg
		return p
	case analytics.IntensityReport:
		p.Error = msg
		return p
	case analytics.AccountAnalysis:
		p.Error = msg
		return p
	case analytics.RiskAssessment:
		p.Error = msg
		return p
	case analytics.ContributionSummary:
		p.Error = msg
		return p
	default:
		return degradedList{Error: msg, Data: payload}
	}
}
