package lineup

import (
	"context"
	"time"
)

const (
	CacheKind = "starting_lineup"
	CacheTTL  = 24 * time.Hour
)

// Repository is the cache gateway for validated lineups.
type Repository interface {
	Get(ctx context.Context, key string) (Lineup, bool, error)
	Set(ctx context.Context, key, kind string, payload Lineup, ttl time.Duration) error
}
