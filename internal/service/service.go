// Package service orchestrates upstream wiki queries and the analytics
// folds behind each API endpoint.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wikidash/wikidash/internal/analytics"
	"github.com/wikidash/wikidash/internal/model"
	"github.com/wikidash/wikidash/internal/wiki"
)

// DefaultPageviewsDays is the pageview window when none is configured.
const DefaultPageviewsDays = 60

// WikiClient is the upstream surface the service depends on.
type WikiClient interface {
	Revisions(ctx context.Context, title string, props ...string) wiki.PartialResult[model.Revision]
	Content(ctx context.Context, title string) (string, error)
	Summary(ctx context.Context, title string) (*model.ArticleSummary, error)
	CreatedAt(ctx context.Context, title string) (string, error)
	CanonicalTitle(ctx context.Context, title string) (string, error)
	Pageviews(ctx context.Context, title string, start, end time.Time) ([]model.PageView, error)
	Users(ctx context.Context, names []string) ([]model.UserInfo, error)
	User(ctx context.Context, name string) (*model.UserInfo, error)
	Contributions(ctx context.Context, username string) wiki.PartialResult[model.UserEdit]
	ArticleContributions(ctx context.Context, username, title string) wiki.PartialResult[model.Revision]
}

// Config tunes the insight service.
type Config struct {
	Detector      *analytics.RevertDetector
	TopLimit      int
	PageviewsDays int
}

// InsightService computes per-article and per-user analytics. Every method
// returns a usable, default-valued result even when it also returns an
// error; the error reports that the result is degraded.
type InsightService struct {
	client        WikiClient
	detector      *analytics.RevertDetector
	topLimit      int
	pageviewsDays int
	now           func() time.Time
	logger        *slog.Logger
}

// NewInsightService creates a new InsightService.
func NewInsightService(client WikiClient, cfg Config, logger *slog.Logger) *InsightService {
	detector := cfg.Detector
	if detector == nil {
		detector = analytics.DefaultRevertDetector()
	}
	days := cfg.PageviewsDays
	if days <= 0 {
		days = DefaultPageviewsDays
	}
	return &InsightService{
		client:        client,
		detector:      detector,
		topLimit:      analytics.NormalizeLimit(cfg.TopLimit, analytics.DefaultLimit),
		pageviewsDays: days,
		now:           time.Now,
		logger:        logger.With("component", "service.insights"),
	}
}

// TopLimit returns the default ranking length.
func (s *InsightService) TopLimit() int {
	return s.topLimit
}

// ErrorMessage renders a degraded-result error for API clients.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "Upstream request timed out: " + err.Error()
	case errors.Is(err, wiki.ErrNotFound):
		return "Not found: " + err.Error()
	case errors.Is(err, wiki.ErrMalformed):
		return "Malformed upstream response: " + err.Error()
	case errors.Is(err, wiki.ErrUnavailable):
		return "Upstream unavailable: " + err.Error()
	default:
		return err.Error()
	}
}

// warn logs a degraded computation.
func (s *InsightService) warn(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.WarnContext(ctx, msg, attrs...)
}
