package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wikidash/wikidash/internal/analytics"
	"github.com/wikidash/wikidash/internal/cache"
	"github.com/wikidash/wikidash/internal/metrics"
	"github.com/wikidash/wikidash/internal/model"
	"github.com/wikidash/wikidash/internal/service"
	"github.com/wikidash/wikidash/internal/wiki"
)

// fakeInsights returns canned results and counts calls per operation.
type fakeInsights struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func newFakeInsights() *fakeInsights {
	return &fakeInsights{calls: map[string]int{}}
}

func (f *fakeInsights) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeInsights) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeInsights) Article(_ context.Context, title string) (service.ArticleOverview, error) {
	f.record("article")
	return service.ArticleOverview{Summary: model.ArticleSummary{Title: title}, Pageviews: []model.PageView{}}, f.err
}

func (f *fakeInsights) EditCount(_ context.Context, title string) (service.EditCount, error) {
	f.record("edits")
	return service.EditCount{EditCount: 42, Complete: f.err == nil}, f.err
}

func (f *fakeInsights) EditTimeline(_ context.Context, title string) (analytics.DateCounts, error) {
	f.record("timeline")
	return analytics.DateCounts{"2024-01-01": 2}, f.err
}

func (f *fakeInsights) RevertTimeline(_ context.Context, title string) (analytics.DateCounts, error) {
	f.record("reverts")
	return analytics.DateCounts{"2024-01-01": 1}, f.err
}

func (f *fakeInsights) TopEditors(_ context.Context, title string, _ int) ([]analytics.EditorCount, error) {
	f.record("editors")
	return []analytics.EditorCount{{User: "Alice", Edits: 3}}, f.err
}

func (f *fakeInsights) TopReverters(_ context.Context, title string, _ int) ([]analytics.ReverterCount, error) {
	f.record("reverters")
	return []analytics.ReverterCount{}, f.err
}

func (f *fakeInsights) CoEditors(_ context.Context, title string) ([]analytics.Connection, error) {
	f.record("coeditors")
	return []analytics.Connection{}, f.err
}

func (f *fakeInsights) Citations(_ context.Context, title string) (analytics.CitationStats, error) {
	f.record("citations")
	return analytics.CitationStats{DomainBreakdown: map[string]int{}}, f.err
}

func (f *fakeInsights) Intensity(_ context.Context, title string) (analytics.IntensityReport, error) {
	f.record("intensity")
	return analytics.IntensityReport{IntensityData: map[string]float64{}}, f.err
}

func (f *fakeInsights) UserAnalysis(_ context.Context, title string) (analytics.AccountAnalysis, error) {
	f.record("useranalysis")
	return analytics.AccountAnalysis{AccountAges: map[string]int{}}, f.err
}

func (f *fakeInsights) Risk(_ context.Context, username, title string) (analytics.RiskAssessment, error) {
	f.record("risk")
	return analytics.RiskAssessment{Username: username, Title: title, Alerts: []string{}}, f.err
}

func (f *fakeInsights) Contributions(_ context.Context, username string) (analytics.ContributionSummary, error) {
	f.record("contributions")
	return analytics.ContributionSummary{Contributions: []model.Contribution{}}, f.err
}

func (f *fakeInsights) TopLimit() int {
	return 10
}

type testEnv struct {
	router  *chi.Mux
	fake    *fakeInsights
	store   *cache.Memory
	metrics *metrics.InMemoryRecorder
	advance func(time.Duration)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	env := &testEnv{
		fake:    newFakeInsights(),
		store:   cache.NewMemory(300*time.Second, cache.WithClock(clock)),
		metrics: metrics.NewInMemory(),
		advance: func(d time.Duration) {
			mu.Lock()
			now = now.Add(d)
			mu.Unlock()
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewInsightsHandler(env.fake, env.store, logger, env.metrics)

	env.router = chi.NewRouter()
	env.router.Route("/api", h.Routes)
	return env
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestInsights_RiskKeysDistinguishUnderscores(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	first := env.get(t, "/api/users/Foo_Bar/risk")
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("first X-Cache = %q, want MISS", got)
	}

	second := env.get(t, "/api/users/Foo/risk?title=Bar")
	if got := second.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("second X-Cache = %q, want MISS", got)
	}

	var risk analytics.RiskAssessment
	if err := json.NewDecoder(second.Body).Decode(&risk); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if risk.Username != "Foo" || risk.Title != "Bar" {
		t.Errorf("got assessment for %q/%q, want Foo/Bar", risk.Username, risk.Title)
	}
	if n := env.fake.count("risk"); n != 2 {
		t.Errorf("risk computed %d times, want 2", n)
	}
	if env.store.Len() != 2 {
		t.Errorf("cache entries = %d, want 2", env.store.Len())
	}
}

func TestInsights_MissingTitle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	routes := []string{
		"/api/article", "/api/edits", "/api/edit-timeline", "/api/reverts",
		"/api/editors", "/api/reverters", "/api/co-editors", "/api/citations",
		"/api/intensity", "/api/user-analysis", "/api/editors?limit=5",
	}

	for _, route := range routes {
		rec := env.get(t, route)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", route, rec.Code)
			continue
		}
		var body ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%s: failed to decode: %v", route, err)
		}
		if body.Error != "Missing title parameter" {
			t.Errorf("%s: unexpected error %q", route, body.Error)
		}
	}
}

func TestInsights_InvalidTitle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.get(t, "/api/edit-timeline?title=a%7Cb")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if env.fake.count("timeline") != 0 {
		t.Error("invalid title must not reach the service")
	}
}

func TestInsights_CacheHitIsByteIdentical(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	first := env.get(t, "/api/edit-timeline?title=Go")
	if first.Code != http.StatusOK || first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("expected 200 MISS, got %d %s", first.Code, first.Header().Get("X-Cache"))
	}
	second := env.get(t, "/api/edit-timeline?title=Go")
	if second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("expected HIT, got %s", second.Header().Get("X-Cache"))
	}

	if first.Body.String() != second.Body.String() {
		t.Errorf("cached body differs:\n%s\n%s", first.Body, second.Body)
	}
	if first.Body.String() != `{"2024-01-01":2}` {
		t.Errorf("unexpected body %s", first.Body)
	}
	if env.fake.count("timeline") != 1 {
		t.Errorf("expected one computation, got %d", env.fake.count("timeline"))
	}

	snap := env.metrics.Snapshot()
	if snap.CacheHits["timeline"] != 1 || snap.CacheMisses["timeline"] != 1 {
		t.Errorf("unexpected cache metrics %+v", snap)
	}
}

func TestInsights_CacheExpires(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	env.get(t, "/api/citations?title=Go")
	env.advance(300 * time.Second)
	rec := env.get(t, "/api/citations?title=Go")

	if rec.Header().Get("X-Cache") != "MISS" {
		t.Errorf("expected MISS after TTL, got %s", rec.Header().Get("X-Cache"))
	}
	if env.fake.count("citations") != 2 {
		t.Errorf("expected recomputation after TTL, got %d calls", env.fake.count("citations"))
	}
}

func TestInsights_LimitIsPartOfKey(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	env.get(t, "/api/editors?title=Go")
	env.get(t, "/api/editors?title=Go&limit=10")
	env.get(t, "/api/editors?title=Go&limit=abc")
	if env.fake.count("editors") != 1 {
		t.Errorf("default, explicit and invalid limits should share one entry, got %d calls", env.fake.count("editors"))
	}

	env.get(t, "/api/editors?title=Go&limit=3")
	if env.fake.count("editors") != 2 {
		t.Errorf("a different limit should miss, got %d calls", env.fake.count("editors"))
	}
	if _, ok := env.store.Get(context.Background(), "editors_Go_3"); !ok {
		t.Error("expected entry editors_Go_3")
	}
}

func TestInsights_UserRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/api/users/Alice/risk?title=Go")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var risk analytics.RiskAssessment
	if err := json.NewDecoder(rec.Body).Decode(&risk); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if risk.Username != "Alice" || risk.Title != "Go" {
		t.Errorf("unexpected assessment %+v", risk)
	}
	if _, ok := env.store.Get(context.Background(), "risk_Alice_Go"); !ok {
		t.Error("expected entry risk_Alice_Go")
	}

	env.get(t, "/api/users/Alice/risk")
	if _, ok := env.store.Get(context.Background(), "risk_Alice"); !ok {
		t.Error("expected entry risk_Alice for an unscoped assessment")
	}

	rec = env.get(t, "/api/users/Alice/contributions")
	if rec.Code != http.StatusOK || env.fake.count("contributions") != 1 {
		t.Errorf("contributions: %d, %d calls", rec.Code, env.fake.count("contributions"))
	}
}

func TestInsights_DegradedResponses(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.fake.err = &wiki.FetchError{Kind: wiki.KindHTTPStatus, StatusCode: 503, Message: "down"}

	tests := []struct {
		name   string
		target string
		check  func(t *testing.T, body map[string]any)
	}{
		{
			name:   "object payload gains error field",
			target: "/api/citations?title=Go",
			check: func(t *testing.T, body map[string]any) {
				if _, ok := body["total_refs"]; !ok {
					t.Error("expected default-valued fields")
				}
			},
		},
		{
			name:   "date map gains error key",
			target: "/api/reverts?title=Go",
			check: func(t *testing.T, body map[string]any) {
				if body["2024-01-01"] != float64(1) {
					t.Errorf("expected partial buckets kept, got %v", body)
				}
			},
		},
		{
			name:   "array payload is wrapped",
			target: "/api/editors?title=Go",
			check: func(t *testing.T, body map[string]any) {
				data, ok := body["data"].([]any)
				if !ok || len(data) != 1 {
					t.Errorf("expected wrapped data, got %v", body["data"])
				}
			},
		},
		{
			name:   "risk object",
			target: "/api/users/Bob/risk",
			check: func(t *testing.T, body map[string]any) {
				if body["username"] != "Bob" {
					t.Errorf("unexpected username %v", body["username"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.get(t, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200 for degraded result, got %d", rec.Code)
			}
			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			msg, _ := body["error"].(string)
			if msg == "" {
				t.Fatalf("expected error field, got %v", body)
			}
			tt.check(t, body)
		})
	}

	if env.store.Len() != 0 {
		t.Errorf("degraded responses must not be cached, store has %d entries", env.store.Len())
	}
	if got := env.metrics.Snapshot().DegradedResponses["citations"]; got != 1 {
		t.Errorf("expected degraded metric, got %d", got)
	}
}

func TestInsights_SuccessfulArrayIsNotWrapped(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.get(t, "/api/co-editors?title=Go")
	if rec.Body.String() != "[]" {
		t.Errorf("expected bare array, got %s", rec.Body)
	}
}
