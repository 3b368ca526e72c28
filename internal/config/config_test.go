package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CacheBackend != CacheBackendMemory {
		t.Fatalf("unexpected cache backend: %s", cfg.CacheBackend)
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Fatalf("unexpected cache ttl: %s", cfg.CacheTTL)
	}
	if cfg.FetchPolicy != "current" || cfg.BrowserEnabled {
		t.Fatalf("expected current policy without browser, got %s browser=%v", cfg.FetchPolicy, cfg.BrowserEnabled)
	}
	if cfg.FetchMinSnapshotBytes != 5000 || cfg.FetchRetryAttempts != 3 || cfg.HistoricalRecentWindow != 3 {
		t.Fatalf("unexpected fetch defaults: %+v", cfg)
	}
	if cfg.LineupLocation.String() != "America/New_York" {
		t.Fatalf("unexpected lineup location: %s", cfg.LineupLocation)
	}
	if cfg.LogFormat != logging.FormatJSON {
		t.Fatalf("expected json logs in prod, got %s", cfg.LogFormat)
	}
}

func TestLoad_HistoricalEnablesBrowserByDefault(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FETCH_POLICY", "Historical")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FetchPolicy != "historical" || !cfg.BrowserEnabled {
		t.Fatalf("unexpected fetch config: policy=%s browser=%v", cfg.FetchPolicy, cfg.BrowserEnabled)
	}
	if cfg.LogFormat != logging.FormatConsole {
		t.Fatalf("expected console logs in dev, got %s", cfg.LogFormat)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "cache backend", key: "CACHE_BACKEND", value: "redis"},
		{name: "fetch policy", key: "FETCH_POLICY", value: "yesterday"},
		{name: "timezone", key: "LINEUP_TIMEZONE", value: "Mars/Olympus"},
		{name: "negative ttl", key: "CACHE_TTL", value: "-1h"},
		{name: "zero workers", key: "WARMUP_WORKERS", value: "0"},
		{name: "bad bool", key: "NBA_STATS_ENABLED", value: "maybe"},
		{name: "negative window", key: "HISTORICAL_RECENT_WINDOW", value: "-2"},
		{name: "log format", key: "APP_LOG_FORMAT", value: "xml"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn='https://token@api.uptrace.dev/1'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "nba-lineups-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "nba-lineups-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
}
