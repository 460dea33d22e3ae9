package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wikidash/wikidash/internal/analytics"
	"github.com/wikidash/wikidash/internal/model"
	"github.com/wikidash/wikidash/internal/wiki"
)

// ArticleOverview combines an article's summary, creation metadata and
// recent pageviews.
type ArticleOverview struct {
	Summary   model.ArticleSummary  `json:"summary"`
	Metadata  model.ArticleMetadata `json:"metadata"`
	Pageviews []model.PageView      `json:"pageviews"`
	Error     string                `json:"error,omitempty"`
}

// EditCount is the number of revisions of an article.
type EditCount struct {
	EditCount int    `json:"edit_count"`
	Complete  bool   `json:"complete"`
	Error     string `json:"error,omitempty"`
}

// Article fetches summary, creation metadata and pageviews concurrently.
// Pageviews cover the configured number of days ending yesterday (UTC).
func (s *InsightService) Article(ctx context.Context, title string) (ArticleOverview, error) {
	overview := ArticleOverview{
		Summary:   model.ArticleSummary{Title: title},
		Pageviews: []model.PageView{},
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		summary, err := s.client.Summary(ctx, title)
		if err != nil {
			fail(fmt.Errorf("failed to fetch summary: %w", err))
			return nil
		}
		overview.Summary = *summary
		return nil
	})
	g.Go(func() error {
		createdAt, err := s.client.CreatedAt(ctx, title)
		if err != nil {
			fail(fmt.Errorf("failed to fetch creation metadata: %w", err))
			return nil
		}
		overview.Metadata.CreatedAt = &createdAt
		return nil
	})
	g.Go(func() error {
		canonical, err := s.client.CanonicalTitle(ctx, title)
		if err != nil {
			fail(fmt.Errorf("failed to resolve title: %w", err))
			return nil
		}
		end := s.now().UTC().AddDate(0, 0, -1)
		start := end.AddDate(0, 0, -(s.pageviewsDays - 1))
		views, err := s.client.Pageviews(ctx, canonical, start, end)
		if err != nil {
			fail(fmt.Errorf("failed to fetch pageviews: %w", err))
			return nil
		}
		overview.Pageviews = views
		return nil
	})
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		s.warn(ctx, "article overview degraded", err, slog.String("title", title))
		return overview, err
	}
	return overview, nil
}

// EditCount counts every revision of an article, up to the page cap.
func (s *InsightService) EditCount(ctx context.Context, title string) (EditCount, error) {
	res := s.client.Revisions(ctx, title, wiki.PropIDs)
	count := EditCount{EditCount: len(res.Items), Complete: res.Complete}
	if res.Err != nil {
		err := fmt.Errorf("failed to count revisions: %w", res.Err)
		s.warn(ctx, "edit count degraded", err, slog.String("title", title))
		return count, err
	}
	return count, nil
}

// revisions fetches an article's history, logging truncation.
func (s *InsightService) revisions(ctx context.Context, op, title string, props ...string) ([]model.Revision, error) {
	res := s.client.Revisions(ctx, title, props...)
	if res.Err != nil {
		err := fmt.Errorf("failed to fetch revisions: %w", res.Err)
		s.warn(ctx, op+" degraded", err,
			slog.String("title", title),
			slog.Int("partial_revisions", len(res.Items)),
		)
		return res.Items, err
	}
	return res.Items, nil
}

// EditTimeline counts revisions per day.
func (s *InsightService) EditTimeline(ctx context.Context, title string) (analytics.DateCounts, error) {
	revs, err := s.revisions(ctx, "edit timeline", title, wiki.PropTimestamp)
	return analytics.EditTimeline(revs), err
}

// RevertTimeline counts reverts per day.
func (s *InsightService) RevertTimeline(ctx context.Context, title string) (analytics.DateCounts, error) {
	revs, err := s.revisions(ctx, "revert timeline", title, wiki.PropTimestamp, wiki.PropComment)
	return analytics.RevertTimeline(revs, s.detector), err
}

// TopEditors ranks the article's editors by edit count.
func (s *InsightService) TopEditors(ctx context.Context, title string, limit int) ([]analytics.EditorCount, error) {
	revs, err := s.revisions(ctx, "top editors", title, wiki.PropUser)
	return analytics.TopEditors(revs, analytics.NormalizeLimit(limit, s.topLimit)), err
}

// TopReverters ranks the article's editors by revert count.
func (s *InsightService) TopReverters(ctx context.Context, title string, limit int) ([]analytics.ReverterCount, error) {
	revs, err := s.revisions(ctx, "top reverters", title, wiki.PropUser, wiki.PropComment)
	return analytics.TopReverters(revs, s.detector, analytics.NormalizeLimit(limit, s.topLimit)), err
}

// CoEditors links adjacent editors of the default ranking. The edges are a
// visualization placeholder, not measured collaboration.
func (s *InsightService) CoEditors(ctx context.Context, title string) ([]analytics.Connection, error) {
	ranking, err := s.TopEditors(ctx, title, s.topLimit)
	return analytics.CoEditors(ranking), err
}

// Citations summarizes the references of the article's current wikitext.
func (s *InsightService) Citations(ctx context.Context, title string) (analytics.CitationStats, error) {
	content, err := s.client.Content(ctx, title)
	if err != nil {
		err = fmt.Errorf("failed to fetch content: %w", err)
		s.warn(ctx, "citation stats degraded", err, slog.String("title", title))
		return analytics.Citations(""), err
	}
	return analytics.Citations(content), nil
}

// Intensity scores each day of the article's history.
func (s *InsightService) Intensity(ctx context.Context, title string) (analytics.IntensityReport, error) {
	revs, err := s.revisions(ctx, "revision intensity", title, wiki.PropTimestamp, wiki.PropUser, wiki.PropComment)
	return analytics.RevisionIntensity(revs, s.detector), err
}
