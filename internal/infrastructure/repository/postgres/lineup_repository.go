package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/infrastructure/repository/payload"
	qb "github.com/riskibarqy/nba-lineups/internal/platform/querybuilder"
)

// LineupRepository stores validated lineups in the lineup_cache table with a
// JSONB payload and an absolute expiry.
type LineupRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db, now: time.Now}
}

func (r *LineupRepository) Get(ctx context.Context, key string) (lineup.Lineup, bool, error) {
	query, args, err := lineupCacheSelectBuilder().
		Where(
			qb.Eq("cache_key", key),
			qb.Expr("expires_at > ?", r.now().UTC()),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, false, crerr.Wrap(err, "build get lineup cache query")
	}

	var row lineupCacheTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if shouldRetryLiteral(err) {
			return r.getLiteral(ctx, key)
		}
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, crerr.Wrapf(err, "get lineup cache %s", key)
	}

	return lineupFromRow(row)
}

// getLiteral re-runs the lookup without bind parameters for poolers that lost
// the unnamed prepared statement.
func (r *LineupRepository) getLiteral(ctx context.Context, key string) (lineup.Lineup, bool, error) {
	query, _, err := lineupCacheSelectBuilder().
		Where(
			qb.EqLiteral("cache_key", key),
			qb.Expr("expires_at > now()"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, false, crerr.Wrap(err, "build get lineup cache literal query")
	}

	var row lineupCacheTableModel
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, crerr.Wrapf(err, "get lineup cache literal %s", key)
	}
	return lineupFromRow(row)
}

func (r *LineupRepository) Set(ctx context.Context, key, kind string, l lineup.Lineup, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = lineup.CacheTTL
	}
	raw, err := payload.EncodeLineup(l)
	if err != nil {
		return err
	}

	insertModel := lineupCacheInsertModel{
		Key:       key,
		Kind:      kind,
		Payload:   raw,
		ExpiresAt: r.now().UTC().Add(ttl),
	}
	query, args, err := qb.InsertModel(lineupCacheTable, insertModel, `ON CONFLICT (cache_key)
DO UPDATE SET
    kind = EXCLUDED.kind,
    payload = EXCLUDED.payload,
    expires_at = EXCLUDED.expires_at,
    updated_at = NOW()`)
	if err != nil {
		return crerr.Wrap(err, "build lineup cache upsert query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "upsert lineup cache %s", key)
	}
	return nil
}

// DeleteExpired removes rows whose expiry has passed and reports how many
// were dropped.
func (r *LineupRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query, args, err := qb.DeleteFrom(lineupCacheTable).
		Where(qb.Expr("expires_at <= ?", r.now().UTC())).
		ToSQL()
	if err != nil {
		return 0, crerr.Wrap(err, "build delete expired lineup cache query")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, crerr.Wrap(err, "delete expired lineup cache")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, crerr.Wrap(err, "read deleted lineup cache rows")
	}
	return affected, nil
}

func lineupFromRow(row lineupCacheTableModel) (lineup.Lineup, bool, error) {
	decoded, err := payload.DecodeLineup(row.Payload)
	if err != nil {
		return nil, false, crerr.Wrapf(err, "lineup cache %s", row.Key)
	}
	return decoded, true, nil
}

func lineupCacheSelectBuilder() *qb.SelectBuilder {
	return qb.Select("cache_key", "kind", "payload", "expires_at", "created_at", "updated_at").From(lineupCacheTable)
}
