package badger

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
)

func newTestRepository(t *testing.T) *LineupRepository {
	t.Helper()

	db, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewLineupRepository(db)
}

func sampleLineup() lineup.Lineup {
	out := make(lineup.Lineup, 0, lineup.LineupSize)
	for _, pos := range lineup.RequiredPositions {
		out = append(out, lineup.Entry{Name: "Player " + string(pos), Position: pos, IsVerified: true, Confidence: lineup.ConfidenceHigh})
	}
	return out
}

func TestLineupRepository_SetGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, ok, err := repo.Get(ctx, "lineup:MIA:2025-01-15:rotowire")
	require.NoError(t, err)
	require.False(t, ok)

	want := sampleLineup()
	require.NoError(t, repo.Set(ctx, "lineup:MIA:2025-01-15:rotowire", lineup.CacheKind, want, time.Hour))

	got, ok, err := repo.Get(ctx, "lineup:MIA:2025-01-15:rotowire")
	require.NoError(t, err)
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lineup changed (-want +got):\n%s", diff)
	}
}

func TestLineupRepository_TTLExpires(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	// badger TTLs have one-second resolution.
	require.NoError(t, repo.Set(ctx, "k", lineup.CacheKind, sampleLineup(), time.Second))
	time.Sleep(2100 * time.Millisecond)

	_, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLineupRepository_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Set(ctx, "k", lineup.CacheKind, sampleLineup()[:2], time.Hour))
	_, ok, err := repo.Get(ctx, "k")
	require.Error(t, err)
	require.False(t, ok)
}

func TestLineupRepository_RunGCInMemory(t *testing.T) {
	repo := newTestRepository(t)
	require.NoError(t, repo.RunGC(0.5))
}

func TestLineupRepository_DeleteExpired(t *testing.T) {
	repo := newTestRepository(t)

	removed, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	require.Zero(t, removed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = repo.DeleteExpired(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
