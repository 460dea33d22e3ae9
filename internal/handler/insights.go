package handler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wikidash/wikidash/internal/analytics"
	"github.com/wikidash/wikidash/internal/cache"
	"github.com/wikidash/wikidash/internal/metrics"
	"github.com/wikidash/wikidash/internal/service"
)

// Insights is the analytics surface served over HTTP.
type Insights interface {
	Article(ctx context.Context, title string) (service.ArticleOverview, error)
	EditCount(ctx context.Context, title string) (service.EditCount, error)
	EditTimeline(ctx context.Context, title string) (analytics.DateCounts, error)
	RevertTimeline(ctx context.Context, title string) (analytics.DateCounts, error)
	TopEditors(ctx context.Context, title string, limit int) ([]analytics.EditorCount, error)
	TopReverters(ctx context.Context, title string, limit int) ([]analytics.ReverterCount, error)
	CoEditors(ctx context.Context, title string) ([]analytics.Connection, error)
	Citations(ctx context.Context, title string) (analytics.CitationStats, error)
	Intensity(ctx context.Context, title string) (analytics.IntensityReport, error)
	UserAnalysis(ctx context.Context, title string) (analytics.AccountAnalysis, error)
	Risk(ctx context.Context, username, title string) (analytics.RiskAssessment, error)
	Contributions(ctx context.Context, username string) (analytics.ContributionSummary, error)
	TopLimit() int
}

// InsightsHandler serves the cached analytics routes.
type InsightsHandler struct {
	svc     Insights
	cache   cache.Store
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(svc Insights, store cache.Store, logger *slog.Logger, recorder metrics.Recorder) *InsightsHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &InsightsHandler{
		svc:     svc,
		cache:   store,
		logger:  logger.With("component", "handler.insights"),
		metrics: recorder,
	}
}

var (
	titleParam    = param{name: "title", validate: analytics.ValidateTitle}
	usernameParam = param{name: "username", path: true, validate: analytics.ValidateUsername}
)

// limitParam normalizes ?limit= so that equivalent requests share a cache
// entry.
func (h *InsightsHandler) limitParam() *param {
	return &param{
		name: "limit",
		normalize: func(raw string) string {
			n, _ := strconv.Atoi(raw)
			return strconv.Itoa(analytics.NormalizeLimit(n, h.svc.TopLimit()))
		},
	}
}

// Routes registers the analytics routes. Mount under /api.
func (h *InsightsHandler) Routes(r chi.Router) {
	r.Get("/article", h.cached(cacheRoute{tag: "article", primary: titleParam}, h.article))
	r.Get("/edits", h.cached(cacheRoute{tag: "edits", primary: titleParam}, h.edits))
	r.Get("/edit-timeline", h.cached(cacheRoute{tag: "timeline", primary: titleParam}, h.editTimeline))
	r.Get("/reverts", h.cached(cacheRoute{tag: "reverts", primary: titleParam}, h.reverts))
	r.Get("/editors", h.cached(cacheRoute{tag: "editors", primary: titleParam, secondary: h.limitParam()}, h.editors))
	r.Get("/reverters", h.cached(cacheRoute{tag: "reverters", primary: titleParam, secondary: h.limitParam()}, h.reverters))
	r.Get("/co-editors", h.cached(cacheRoute{tag: "coeditors", primary: titleParam}, h.coEditors))
	r.Get("/citations", h.cached(cacheRoute{tag: "citations", primary: titleParam}, h.citations))
	r.Get("/intensity", h.cached(cacheRoute{tag: "intensity", primary: titleParam}, h.intensity))
	r.Get("/user-analysis", h.cached(cacheRoute{tag: "useranalysis", primary: titleParam}, h.userAnalysis))

	r.Route("/users/{username}", func(r chi.Router) {
		r.Get("/risk", h.cached(cacheRoute{tag: "risk", primary: usernameParam, secondary: &titleParam}, h.risk))
		r.Get("/contributions", h.cached(cacheRoute{tag: "contributions", primary: usernameParam}, h.contributions))
	})
}

func (h *InsightsHandler) article(ctx context.Context, p keyParams) (any, error) {
	return h.svc.Article(ctx, p.Primary)
}

func (h *InsightsHandler) edits(ctx context.Context, p keyParams) (any, error) {
	return h.svc.EditCount(ctx, p.Primary)
}

func (h *InsightsHandler) editTimeline(ctx context.Context, p keyParams) (any, error) {
	return h.svc.EditTimeline(ctx, p.Primary)
}

func (h *InsightsHandler) reverts(ctx context.Context, p keyParams) (any, error) {
	return h.svc.RevertTimeline(ctx, p.Primary)
}

func (h *InsightsHandler) editors(ctx context.Context, p keyParams) (any, error) {
	limit, _ := strconv.Atoi(p.Secondary)
	return h.svc.TopEditors(ctx, p.Primary, limit)
}

func (h *InsightsHandler) reverters(ctx context.Context, p keyParams) (any, error) {
	limit, _ := strconv.Atoi(p.Secondary)
	return h.svc.TopReverters(ctx, p.Primary, limit)
}

func (h *InsightsHandler) coEditors(ctx context.Context, p keyParams) (any, error) {
	return h.svc.CoEditors(ctx, p.Primary)
}

func (h *InsightsHandler) citations(ctx context.Context, p keyParams) (any, error) {
	return h.svc.Citations(ctx, p.Primary)
}

func (h *InsightsHandler) intensity(ctx context.Context, p keyParams) (any, error) {
	return h.svc.Intensity(ctx, p.Primary)
}

func (h *InsightsHandler) userAnalysis(ctx context.Context, p keyParams) (any, error) {
	return h.svc.UserAnalysis(ctx, p.Primary)
}

func (h *InsightsHandler) risk(ctx context.Context, p keyParams) (any, error) {
	return h.svc.Risk(ctx, p.Primary, p.Secondary)
}

func (h *InsightsHandler) contributions(ctx context.Context, p keyParams) (any, error) {
	return h.svc.Contributions(ctx, p.Primary)
}
