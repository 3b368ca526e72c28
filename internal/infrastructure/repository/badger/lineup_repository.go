package badger

import (
	"context"
	"errors"
	"time"

	crerr "github.com/cockroachdb/errors"
	badgerdb "github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/infrastructure/repository/payload"
)

var tracer = otel.Tracer("nba-lineups/internal/infrastructure/repository/badger")

// LineupRepository stores lineups in an embedded badger database. Expiry is
// delegated to badger's per-entry TTL; the kind is kept in the user meta byte.
type LineupRepository struct {
	db *badgerdb.DB
}

// Open opens (or creates) the database at dir. An empty dir keeps everything
// in memory.
func Open(dir string) (*badgerdb.DB, error) {
	opts := badgerdb.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, crerr.Wrapf(err, "open badger at %q", dir)
	}
	return db, nil
}

func NewLineupRepository(db *badgerdb.DB) *LineupRepository {
	return &LineupRepository{db: db}
}

const (
	metaUnknown byte = iota
	metaStartingLineup
)

func kindMeta(kind string) byte {
	if kind == lineup.CacheKind {
		return metaStartingLineup
	}
	return metaUnknown
}

func (r *LineupRepository) Get(ctx context.Context, key string) (lineup.Lineup, bool, error) {
	_, span := tracer.Start(ctx, "badger.LineupRepository.Get")
	defer span.End()
	span.SetAttributes(attribute.String("cache_key", key))

	var raw []byte
	err := r.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return nil, false, crerr.Wrapf(err, "get lineup %s", key)
	}

	decoded, err := payload.DecodeLineup(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode cached lineup")
		return nil, false, crerr.Wrapf(err, "lineup %s", key)
	}
	return decoded, true, nil
}

func (r *LineupRepository) Set(ctx context.Context, key, kind string, l lineup.Lineup, ttl time.Duration) error {
	_, span := tracer.Start(ctx, "badger.LineupRepository.Set")
	defer span.End()
	span.SetAttributes(attribute.String("cache_key", key), attribute.String("kind", kind))

	raw, err := payload.EncodeLineup(l)
	if err != nil {
		return err
	}

	entry := badgerdb.NewEntry([]byte(key), raw).WithMeta(kindMeta(kind))
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	if err := r.db.Update(func(txn *badgerdb.Txn) error {
		return txn.SetEntry(entry)
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set badger item")
		return crerr.Wrapf(err, "set lineup %s", key)
	}
	return nil
}

// RunGC reclaims value-log space until badger reports nothing left to rewrite.
// In-memory databases have no value log and return immediately.
func (r *LineupRepository) RunGC(discardRatio float64) error {
	for {
		err := r.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badgerdb.ErrNoRewrite) || errors.Is(err, badgerdb.ErrRejected) || errors.Is(err, badgerdb.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return crerr.Wrap(err, "badger value log gc")
		}
	}
}

// DeleteExpired lets badger reclaim space held by expired entries. Badger
// hides expired keys on its own, so the count is always zero.
func (r *LineupRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return 0, r.RunGC(0.5)
}
