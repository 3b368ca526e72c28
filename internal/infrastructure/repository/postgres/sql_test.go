package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	qb "github.com/riskibarqy/nba-lineups/internal/platform/querybuilder"
)

func TestIsBindParameterMismatch(t *testing.T) {
	t.Run("matches bind mismatch error", func(t *testing.T) {
		err := fakeErr("pq: bind message supplies 2 parameters, but prepared statement \"\" requires 1 (08P01)")
		if !isBindParameterMismatch(err) || !shouldRetryLiteral(err) {
			t.Fatalf("expected true for bind mismatch error")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		err := fakeErr("pq: relation lineup_cache does not exist")
		if isBindParameterMismatch(err) || shouldRetryLiteral(err) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestIsUnnamedPreparedStatementMissing(t *testing.T) {
	t.Run("matches statement missing message", func(t *testing.T) {
		err := fakeErr("pq: unnamed prepared statement does not exist (26000)")
		if !isUnnamedPreparedStatementMissing(err) {
			t.Fatalf("expected true for statement missing error")
		}
	})

	t.Run("matches by 26000 code", func(t *testing.T) {
		err := fakeErr("pq: prepared statement missing (26000)")
		if !isUnnamedPreparedStatementMissing(err) {
			t.Fatalf("expected true for 26000 prepared statement error")
		}
	})

	t.Run("ignores nil", func(t *testing.T) {
		if isUnnamedPreparedStatementMissing(nil) {
			t.Fatalf("expected false for nil")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fakeErr("boom")) {
		t.Fatalf("unexpected not found")
	}
}

func TestLineupCacheQueries(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	query, args, err := lineupCacheSelectBuilder().
		Where(qb.Eq("cache_key", "lineup:MIA:2025-01-15:rotowire"), qb.Expr("expires_at > ?", now)).
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}
	want := "SELECT cache_key, kind, payload, expires_at, created_at, updated_at FROM lineup_cache WHERE cache_key = $1 AND expires_at > $2 LIMIT 1"
	if query != want {
		t.Fatalf("unexpected select:\n got: %s\nwant: %s", query, want)
	}
	if len(args) != 2 || args[0] != "lineup:MIA:2025-01-15:rotowire" {
		t.Fatalf("unexpected args: %v", args)
	}

	insert, insertArgs, err := qb.InsertModel(lineupCacheTable, lineupCacheInsertModel{Key: "k", Kind: "starting_lineup", Payload: []byte("[]"), ExpiresAt: now}, "ON CONFLICT (cache_key) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}
	wantInsert := "INSERT INTO lineup_cache (cache_key, kind, payload, expires_at) VALUES ($1, $2, $3, $4) ON CONFLICT (cache_key) DO NOTHING"
	if insert != wantInsert || len(insertArgs) != 4 {
		t.Fatalf("unexpected insert: %s (%d args)", insert, len(insertArgs))
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
