// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Revert matching modes.
const (
	RevertMatchSubstring = "substring"
	RevertMatchWord      = "word"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings. APP_PORT wins over the platform-provided PORT.
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT"`
	Port    int    `env:"PORT" envDefault:"10000"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. WriteTimeout must cover a full upstream fan-out.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"90s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Upstream wiki APIs
	WikiAPIURL      string        `env:"WIKI_API_URL" envDefault:"https://en.wikipedia.org/w/api.php"`
	PageviewsAPIURL string        `env:"PAGEVIEWS_API_URL" envDefault:"https://wikimedia.org/api/rest_v1/metrics/pageviews/per-article"`
	WikiProject     string        `env:"WIKI_PROJECT" envDefault:"en.wikipedia.org"`
	UserAgent       string        `env:"USER_AGENT" envDefault:"WikiDash/1.0 (https://github.com/wikidash/wikidash)"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	UpstreamRPS     float64       `env:"UPSTREAM_RPS" envDefault:"10"`
	UpstreamBurst   int           `env:"UPSTREAM_BURST" envDefault:"5"`
	UpstreamRetries int           `env:"UPSTREAM_RETRIES" envDefault:"1"`
	MaxPages        int           `env:"PAGINATION_MAX_PAGES" envDefault:"10"`
	PageviewsDays   int           `env:"PAGEVIEWS_DAYS" envDefault:"60"`

	// Response cache
	CacheBackend string        `env:"CACHE_BACKEND" envDefault:"memory"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"300s"`
	RedisURL     string        `env:"REDIS_URL"`

	// Analytics
	RevertMatchMode string `env:"REVERT_MATCH_MODE" envDefault:"substring"`
	TopLimit        int    `env:"TOP_LIMIT_DEFAULT" envDefault:"10"`

	// Rate limiting (per client IP)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// CORS configuration
	// Comma-separated list of allowed origins; "*" allows any origin.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	if c.AppPort < 1 || c.AppPort > 65535 {
		return fmt.Errorf("port %d out of range", c.AppPort)
	}

	switch c.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	switch c.RevertMatchMode {
	case RevertMatchSubstring, RevertMatchWord:
	default:
		return fmt.Errorf("unknown REVERT_MATCH_MODE %q", c.RevertMatchMode)
	}

	if c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	if c.MaxPages <= 0 {
		return errors.New("PAGINATION_MAX_PAGES must be positive")
	}
	if c.TopLimit <= 0 {
		return errors.New("TOP_LIMIT_DEFAULT must be positive")
	}

	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if a variable is malformed or the combination is invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.AppPort == 0 {
		cfg.AppPort = cfg.Port
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
