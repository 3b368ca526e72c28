package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	basecache "github.com/riskibarqy/nba-lineups/internal/platform/cache"
)

// LineupRepository fronts a durable lineup repository with the in-process
// store. Hits from the durable layer are kept locally for at most localTTL.
type LineupRepository struct {
	next     lineup.Repository
	cache    *basecache.Store
	localTTL time.Duration
}

func NewLineupRepository(next lineup.Repository, cache *basecache.Store, localTTL time.Duration) *LineupRepository {
	if cache == nil {
		cache = basecache.NewStore(localTTL)
	}
	if localTTL <= 0 {
		localTTL = 5 * time.Minute
	}
	return &LineupRepository{next: next, cache: cache, localTTL: localTTL}
}

func (r *LineupRepository) Get(ctx context.Context, key string) (lineup.Lineup, bool, error) {
	if v, ok := r.cache.Get(ctx, key); ok {
		if cached, ok := v.(lineup.Lineup); ok {
			return append(lineup.Lineup(nil), cached...), true, nil
		}
	}

	v, err := r.cache.GetOrLoad(ctx, "miss:"+key, time.Second, func(ctx context.Context) (any, error) {
		item, found, err := r.next.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return cachedLineupLookup{value: item, found: found}, nil
	})
	if err != nil {
		return nil, false, err
	}

	lookup, _ := v.(cachedLineupLookup)
	if !lookup.found {
		return nil, false, nil
	}
	r.cache.SetWithTTL(ctx, key, append(lineup.Lineup(nil), lookup.value...), r.localTTL)
	return append(lineup.Lineup(nil), lookup.value...), true, nil
}

func (r *LineupRepository) Set(ctx context.Context, key, kind string, payload lineup.Lineup, ttl time.Duration) error {
	if err := r.next.Set(ctx, key, kind, payload, ttl); err != nil {
		return err
	}

	local := r.localTTL
	if ttl > 0 && ttl < local {
		local = ttl
	}
	r.cache.Delete(ctx, "miss:"+key)
	r.cache.SetWithTTL(ctx, key, append(lineup.Lineup(nil), payload...), local)
	return nil
}

type cachedLineupLookup struct {
	value lineup.Lineup
	found bool
}
