package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/wikidash/wikidash/internal/analytics"
	"github.com/wikidash/wikidash/internal/model"
	"github.com/wikidash/wikidash/internal/wiki"
)

// UserAnalysis summarizes the accounts that edited an article. Anonymous
// editors are counted but never looked up.
func (s *InsightService) UserAnalysis(ctx context.Context, title string) (analytics.AccountAnalysis, error) {
	revs, revErr := s.revisions(ctx, "user analysis", title, wiki.PropUser)
	editors := analytics.ClassifyEditors(revs)

	infos, err := s.client.Users(ctx, editors.Registered)
	if err != nil {
		err = fmt.Errorf("failed to fetch user info: %w", err)
		s.warn(ctx, "user analysis degraded", err,
			slog.String("title", title),
			slog.Int("registered", len(editors.Registered)),
			slog.Int("resolved", len(infos)),
		)
	}

	return analytics.AnalyzeAccounts(editors, infos, s.now()), errors.Join(revErr, err)
}

// Risk assesses a user, optionally scoped to one article. Account metadata
// and article contributions are fetched concurrently.
func (s *InsightService) Risk(ctx context.Context, username, title string) (analytics.RiskAssessment, error) {
	input := analytics.RiskInput{Username: username, Now: s.now()}

	var infoErr, contribErr error
	var g errgroup.Group
	if !model.IsAnonymous(username) {
		g.Go(func() error {
			info, err := s.client.User(ctx, username)
			if err != nil {
				infoErr = fmt.Errorf("failed to fetch user %q: %w", username, err)
				return nil
			}
			input.Info = info
			return nil
		})
	}
	if title != "" {
		g.Go(func() error {
			res := s.client.ArticleContributions(ctx, username, title)
			input.ArticleEdits = len(res.Items)
			for _, rev := range res.Items {
				if s.detector.IsRevert(rev.Comment) {
					input.ArticleReverts++
				}
			}
			if res.Err != nil {
				contribErr = fmt.Errorf("failed to fetch article contributions: %w", res.Err)
			}
			return nil
		})
	}
	_ = g.Wait()

	assessment := analytics.AssessRisk(input)
	assessment.Title = title

	if err := errors.Join(infoErr, contribErr); err != nil {
		s.warn(ctx, "risk assessment degraded", err,
			slog.String("username", username),
			slog.String("title", title),
		)
		return assessment, err
	}
	return assessment, nil
}

// Contributions groups a user's edits by article.
func (s *InsightService) Contributions(ctx context.Context, username string) (analytics.ContributionSummary, error) {
	res := s.client.Contributions(ctx, username)
	summary := analytics.SummarizeContributions(res.Items)
	if res.Err != nil {
		err := fmt.Errorf("failed to fetch contributions: %w", res.Err)
		s.warn(ctx, "contributions degraded", err,
			slog.String("username", username),
			slog.Int("partial_edits", len(res.Items)),
		)
		return summary, err
	}
	return summary, nil
}
