package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/nba-lineups/external/nbastats"
	"github.com/riskibarqy/nba-lineups/external/rotowire"
	"github.com/riskibarqy/nba-lineups/internal/config"
	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	badgerrepo "github.com/riskibarqy/nba-lineups/internal/infrastructure/repository/badger"
	cacherepo "github.com/riskibarqy/nba-lineups/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/nba-lineups/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nba-lineups/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/nba-lineups/internal/interfaces/httpapi"
	"github.com/riskibarqy/nba-lineups/internal/platform/cache"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
	"github.com/riskibarqy/nba-lineups/internal/platform/resilience"
	"github.com/riskibarqy/nba-lineups/internal/usecase"
)

// expiredPurger is implemented by every lineup cache backend.
type expiredPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// App holds the wired lineup services shared by the API server and the CLI.
type App struct {
	cfg     config.Config
	logger  *logging.Logger
	scraper *usecase.LineupScrapeService
	warmup  *usecase.LineupWarmupService
	purger  expiredPurger
	closers []func() error
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{cfg: cfg, logger: logger}

	backend, purger, err := a.openLineupBackend()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.purger = purger
	repo := lineup.Repository(cacherepo.NewLineupRepository(backend, cache.NewStore(cfg.CacheLocalTTL), cfg.CacheLocalTTL))

	var (
		rosterProvider   usecase.RosterProvider
		scheduleProvider usecase.ScheduleProvider
	)
	if cfg.NBAStatsEnabled {
		stats := nbastats.NewClient(nbastats.ClientConfig{
			BaseURL:    cfg.NBAStatsBaseURL,
			Timeout:    cfg.NBAStatsTimeout,
			MaxRetries: cfg.NBAStatsMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.NBAStatsCircuitEnabled,
				FailureThreshold: cfg.NBAStatsCircuitFailures,
				OpenTimeout:      cfg.NBAStatsCircuitOpenTimeout,
				HalfOpenMaxReq:   1,
			},
		})
		rosterProvider = stats
		scheduleProvider = stats
	} else {
		logger.Warn("nba stats disabled, roster validation and opponent lookup are off")
	}

	fetcher, err := a.newFetcher()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	rosters := usecase.NewRosterResolver(rosterProvider, cache.NewStore(cfg.RosterCacheTTL), usecase.RosterResolverConfig{
		Timeout:  cfg.NBAStatsTimeout,
		CacheTTL: cfg.RosterCacheTTL,
	}, logger)
	opponents := usecase.NewOpponentResolver(scheduleProvider, cfg.NBAStatsTimeout, logger)

	a.scraper = usecase.NewLineupScrapeService(repo, rosters, opponents, fetcher, rotowire.NewParser(), cfg.CacheTTL, logger)
	a.warmup = usecase.NewLineupWarmupService(scheduleProvider, a.scraper, cfg.WarmupWorkers, logger)

	logger.Info("lineup services ready",
		"cache_backend", cfg.CacheBackend,
		"fetch_policy", cfg.FetchPolicy,
		"browser_enabled", cfg.BrowserEnabled,
		"nba_stats_enabled", cfg.NBAStatsEnabled,
	)
	return a, nil
}

func (a *App) openLineupBackend() (lineup.Repository, expiredPurger, error) {
	switch a.cfg.CacheBackend {
	case config.CacheBackendPostgres:
		db, err := openPostgres(a.cfg.DBURL, a.cfg.DBDisablePreparedBinary)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)
		repo := postgres.NewLineupRepository(db)
		return repo, repo, nil
	case config.CacheBackendBadger:
		db, err := badgerrepo.Open(a.cfg.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)
		repo := badgerrepo.NewLineupRepository(db)
		return repo, repo, nil
	case config.CacheBackendMemory, "":
		repo := memory.NewLineupRepository(cache.NewStore(a.cfg.CacheTTL))
		return repo, repo, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend %q", a.cfg.CacheBackend)
	}
}

func (a *App) newFetcher() (*rotowire.Fetcher, error) {
	policy, err := rotowire.ParsePolicy(a.cfg.FetchPolicy)
	if err != nil {
		return nil, err
	}

	var navigator rotowire.Navigator
	if a.cfg.BrowserEnabled {
		navigator = rotowire.NewChromeNavigator(rotowire.BrowserConfig{
			ExecPath:          a.cfg.BrowserExecPath,
			Headless:          a.cfg.BrowserHeadless,
			NavigationTimeout: a.cfg.BrowserNavigationTimeout,
			SessionTimeout:    a.cfg.BrowserSessionTimeout,
			Logger:            a.logger,
		})
	} else if policy == rotowire.PolicyHistorical {
		a.logger.Warn("historical fetch policy without a browser, only the live page is served")
	}

	return rotowire.NewFetcher(rotowire.FetcherConfig{
		PageURL:          a.cfg.LineupPageURL,
		Policy:           policy,
		Location:         a.cfg.LineupLocation,
		Timeout:          a.cfg.FetchTimeout,
		MinInterval:      a.cfg.FetchMinInterval,
		RecentWindow:     a.cfg.HistoricalRecentWindow,
		MinSnapshotBytes: a.cfg.FetchMinSnapshotBytes,
		Retry: resilience.RetryConfig{
			Attempts: a.cfg.FetchRetryAttempts,
			Backoff:  []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second},
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          a.cfg.FetchCircuitEnabled,
			FailureThreshold: a.cfg.FetchCircuitFailures,
			OpenTimeout:      a.cfg.FetchCircuitOpenTimeout,
			HalfOpenMaxReq:   1,
		},
		Navigator: navigator,
		Logger:    a.logger,
	}), nil
}

func (a *App) Scraper() *usecase.LineupScrapeService {
	return a.scraper
}

func (a *App) Warmup() *usecase.LineupWarmupService {
	return a.warmup
}

// PurgeExpired removes expired lineups from the configured cache backend.
func (a *App) PurgeExpired(ctx context.Context) (int64, error) {
	if a.purger == nil {
		return 0, nil
	}
	removed, err := a.purger.DeleteExpired(ctx)
	if err != nil {
		return 0, crerr.Wrap(err, "purge expired lineups")
	}
	return removed, nil
}

// Close releases backend handles in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return crerr.Join(errs...)
}

func NewHTTPServer(a *App) (*http.Server, error) {
	handler := httpapi.NewHandler(a.scraper, a.warmup, a.cfg.LineupLocation, a.logger)
	router := httpapi.NewRouter(handler, a.logger, a.cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
