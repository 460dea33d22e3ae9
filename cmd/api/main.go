// Package main is the entrypoint for the WikiDash API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/wikidash/wikidash/internal/analytics"
	"github.com/wikidash/wikidash/internal/cache"
	"github.com/wikidash/wikidash/internal/config"
	"github.com/wikidash/wikidash/internal/handler"
	"github.com/wikidash/wikidash/internal/metrics"
	"github.com/wikidash/wikidash/internal/middleware"
	"github.com/wikidash/wikidash/internal/server"
	"github.com/wikidash/wikidash/internal/service"
	"github.com/wikidash/wikidash/internal/wiki"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", slog.String("error", sanitizeError(err, cfg.RedisURL)))
		os.Exit(1)
	}

	srv := server.New(a.router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("cache", func(context.Context) error {
		return a.store.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"wiki_api", cfg.WikiAPIURL,
		"cache_backend", cfg.CacheBackend,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// app holds the wired components behind the router.
type app struct {
	router http.Handler
	store  cache.Store
}

// newApp connects the cache and builds every layer from cfg.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	recorder := metrics.NewPrometheus()

	var (
		store   cache.Store
		limiter cache.IPRateLimiter
	)
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CacheTTL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", redactURL(cfg.RedisURL), err)
		}
		logger.Info("connected to Redis")
		store, limiter = rc, rc
	default:
		store = cache.NewMemory(cfg.CacheTTL)
		limiter = cache.NewLocalRateLimiter()
	}

	detector, err := analytics.NewRevertDetector(cfg.RevertMatchMode)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Info("revert detection configured", "mode", detector.Mode())

	client := wiki.New(wiki.Config{
		APIURL:       cfg.WikiAPIURL,
		PageviewsURL: cfg.PageviewsAPIURL,
		Project:      cfg.WikiProject,
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.UpstreamTimeout,
		RPS:          cfg.UpstreamRPS,
		Burst:        cfg.UpstreamBurst,
		Retries:      cfg.UpstreamRetries,
		MaxPages:     cfg.MaxPages,
	}, logger, recorder)

	insightService := service.NewInsightService(client, service.Config{
		Detector:      detector,
		TopLimit:      cfg.TopLimit,
		PageviewsDays: cfg.PageviewsDays,
	}, logger)

	r := setupRouter(routerDeps{
		index:    handler.New(),
		health:   handler.NewHealthHandler(store, cfg.CacheBackend),
		metrics:  handler.NewMetricsHandler(recorder.Handler()),
		insights: handler.NewInsightsHandler(insightService, store, logger, recorder),
		rateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: limiter,
			Enabled: cfg.RateLimitEnabled,
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
		},
		cors:          cfg.GetCORSAllowedOrigins(),
		isDevelopment: cfg.IsDevelopment(),
		logger:        logger,
	})

	return &app{router: r, store: store}, nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	index         *handler.Handler
	health        *handler.HealthHandler
	metrics       *handler.MetricsHandler
	insights      *handler.InsightsHandler
	rateLimit     middleware.RateLimitConfig
	cors          []string
	isDevelopment bool
	logger        *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cors

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.isDevelopment}))
	r.Use(middleware.CORS(corsCfg))

	r.Get("/", d.index.Index)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metrics.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(d.rateLimit))
		d.insights.Routes(r)
	})

	r.NotFound(d.index.NotFound)
	r.MethodNotAllowed(d.index.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
