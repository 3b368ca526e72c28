package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/domain/team"
	"github.com/riskibarqy/nba-lineups/internal/platform/cache"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

const StageRoster = "roster"

type RosterResolverConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

// RosterResolver builds roster sets from the stats provider. Any upstream
// failure yields an empty set, which disables validation downstream.
type RosterResolver struct {
	provider RosterProvider
	store    *cache.Store
	timeout  time.Duration
	ttl      time.Duration
	logger   *logging.Logger
}

func NewRosterResolver(provider RosterProvider, store *cache.Store, cfg RosterResolverConfig, logger *logging.Logger) *RosterResolver {
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = cache.NewStore(0)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &RosterResolver{
		provider: provider,
		store:    store,
		timeout:  timeout,
		ttl:      ttl,
		logger:   logger,
	}
}

func (r *RosterResolver) Resolve(ctx context.Context, teamAbbr string, seasonStartYear int, trail *lineup.Trail) *lineup.RosterSet {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterResolver.Resolve")
	defer span.End()

	teamAbbr = team.Normalize(teamAbbr)
	if r == nil || r.provider == nil {
		trail.Add(StageRoster, "roster provider not configured, validation disabled")
		return lineup.NewRosterSet(nil)
	}

	key := "roster:" + teamAbbr + ":" + strconv.Itoa(seasonStartYear)
	value, err := r.store.GetOrLoad(ctx, key, r.ttl, func(ctx context.Context) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		players, err := r.provider.FetchTeamRoster(ctx, teamAbbr, seasonStartYear)
		if err != nil {
			return nil, err
		}
		return lineup.NewRosterSet(players), nil
	})
	if err != nil {
		r.logger.WarnContext(ctx, "roster lookup failed, validation disabled",
			"team", teamAbbr, "season", seasonStartYear, "error", err)
		trail.Add(StageRoster, "roster lookup failed, validation disabled", "error", err.Error())
		return lineup.NewRosterSet(nil)
	}

	roster, _ := value.(*lineup.RosterSet)
	if roster.Len() == 0 {
		trail.Add(StageRoster, "roster empty, validation disabled", "season", lineup.SeasonLabel(seasonStartYear))
		return lineup.NewRosterSet(nil)
	}
	trail.Add(StageRoster, "roster resolved", "season", lineup.SeasonLabel(seasonStartYear), "variants", roster.Len())
	return roster
}
