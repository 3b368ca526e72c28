package postgres

import (
	"time"
)

const lineupCacheTable = "lineup_cache"

type lineupCacheTableModel struct {
	Key       string    `db:"cache_key"`
	Kind      string    `db:"kind"`
	Payload   []byte    `db:"payload"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type lineupCacheInsertModel struct {
	Key       string    `db:"cache_key"`
	Kind      string    `db:"kind"`
	Payload   []byte    `db:"payload"`
	ExpiresAt time.Time `db:"expires_at"`
}
