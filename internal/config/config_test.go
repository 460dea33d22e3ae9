package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.AppEnv != "development" {
		t.Errorf("expected default AppEnv 'development', got %s", cfg.AppEnv)
	}

	if cfg.AppPort != 10000 {
		t.Errorf("expected default AppPort 10000, got %d", cfg.AppPort)
	}

	if cfg.LogFormat != "json" {
		t.Errorf("expected default LogFormat 'json', got %s", cfg.LogFormat)
	}

	if cfg.CacheBackend != CacheBackendMemory {
		t.Errorf("expected default CacheBackend 'memory', got %s", cfg.CacheBackend)
	}

	if cfg.CacheTTL != 300*time.Second {
		t.Errorf("expected default CacheTTL 300s, got %v", cfg.CacheTTL)
	}

	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("expected default UpstreamTimeout 10s, got %v", cfg.UpstreamTimeout)
	}

	if cfg.RevertMatchMode != RevertMatchSubstring {
		t.Errorf("expected default RevertMatchMode 'substring', got %s", cfg.RevertMatchMode)
	}
}

func TestLoad_Port(t *testing.T) {
	tests := []struct {
		name    string
		appPort string
		port    string
		want    int
	}{
		{"default", "", "", 10000},
		{"platform PORT", "", "8080", 8080},
		{"APP_PORT wins", "9000", "8080", 9000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.appPort != "" {
				t.Setenv("APP_PORT", tt.appPort)
			}
			if tt.port != "" {
				t.Setenv("PORT", tt.port)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cfg.AppPort != tt.want {
				t.Errorf("AppPort = %d, want %d", cfg.AppPort, tt.want)
			}
		})
	}
}

func TestLoad_RedisBackendRequiresURL(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "redis")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for redis backend without REDIS_URL, got nil")
	}

	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Errorf("expected RedisURL to be set, got %s", cfg.RedisURL)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown backend", "CACHE_BACKEND", "memcached"},
		{"unknown revert mode", "REVERT_MATCH_MODE", "fuzzy"},
		{"zero max pages", "PAGINATION_MAX_PAGES", "0"},
		{"malformed duration", "CACHE_TTL", "soon"},
		{"port out of range", "PORT", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestConfig_GetCORSAllowedOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"*", []string{"*"}},
		{"https://a.example, https://b.example ,", []string{"https://a.example", "https://b.example"}},
	}

	for _, tt := range tests {
		cfg := &Config{CORSAllowedOrigins: tt.raw}
		got := cfg.GetCORSAllowedOrigins()
		if len(got) != len(tt.want) {
			t.Fatalf("GetCORSAllowedOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("GetCORSAllowedOrigins(%q)[%d] = %q, want %q", tt.raw, i, got[i], tt.want[i])
			}
		}
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{AppEnv: "development"}
	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment to return true")
	}

	cfg.AppEnv = "production"
	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment to return false")
	}
}
