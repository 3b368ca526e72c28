package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/platform/cache"
)

// LineupRepository keeps validated lineups in process memory. Entries expire
// with their own TTL.
type LineupRepository struct {
	store *cache.Store
}

func NewLineupRepository(store *cache.Store) *LineupRepository {
	if store == nil {
		store = cache.NewStore(lineup.CacheTTL)
	}
	return &LineupRepository{store: store}
}

func (r *LineupRepository) Get(ctx context.Context, key string) (lineup.Lineup, bool, error) {
	value, ok := r.store.Get(ctx, key)
	if !ok {
		return nil, false, nil
	}
	item, ok := value.(cachedLineup)
	if !ok {
		r.store.Delete(ctx, key)
		return nil, false, nil
	}
	return cloneLineup(item.payload), true, nil
}

func (r *LineupRepository) Set(ctx context.Context, key, kind string, payload lineup.Lineup, ttl time.Duration) error {
	r.store.SetWithTTL(ctx, key, cachedLineup{kind: kind, payload: cloneLineup(payload)}, ttl)
	return nil
}

type cachedLineup struct {
	kind    string
	payload lineup.Lineup
}

func cloneLineup(in lineup.Lineup) lineup.Lineup {
	return append(lineup.Lineup(nil), in...)
}

// DeleteExpired drops entries whose TTL has passed.
func (r *LineupRepository) DeleteExpired(_ context.Context) (int64, error) {
	return int64(r.store.Purge()), nil
}
