package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/nba-lineups/internal/config"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "nba-lineups",
		HTTPAddr:           ":0",
		CacheBackend:       config.CacheBackendMemory,
		CacheTTL:           time.Hour,
		CacheLocalTTL:      time.Minute,
		FetchPolicy:        "current",
		LineupLocation:     time.UTC,
		FetchTimeout:       time.Second,
		NBAStatsEnabled:    false,
		RosterCacheTTL:     time.Hour,
		WarmupWorkers:      2,
		FetchRetryAttempts: 1,
	}
}

func TestNew_MemoryBackend(t *testing.T) {
	a, err := New(testConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if a.Scraper() == nil || a.Warmup() == nil {
		t.Fatalf("expected wired services")
	}
	removed, err := a.PurgeExpired(context.Background())
	if err != nil || removed != 0 {
		t.Fatalf("unexpected purge result: removed=%d err=%v", removed, err)
	}

	srv, err := NewHTTPServer(a)
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}
	if srv.Handler == nil || srv.Addr != ":0" {
		t.Fatalf("unexpected server: %+v", srv)
	}
}

func TestNew_BadgerInMemory(t *testing.T) {
	cfg := testConfig()
	cfg.CacheBackend = config.CacheBackendBadger

	a, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if _, err := a.PurgeExpired(context.Background()); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{name: "unknown backend", mutate: func(c *config.Config) { c.CacheBackend = "redis" }, want: "unsupported cache backend"},
		{name: "postgres without url", mutate: func(c *config.Config) { c.CacheBackend = config.CacheBackendPostgres }, want: "DB_URL is required"},
		{name: "unknown policy", mutate: func(c *config.Config) { c.FetchPolicy = "archive" }, want: "unknown fetch policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			_, err := New(cfg, logging.NewNop())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ""
	a, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if _, err := NewHTTPServer(a); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
