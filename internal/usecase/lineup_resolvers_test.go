package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/platform/cache"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

func TestRosterResolver_CachesPerTeamAndSeason(t *testing.T) {
	t.Parallel()

	provider := &fakeRosterProvider{players: map[string][]lineup.Player{"MIA": heatPlayers()}}
	resolver := NewRosterResolver(provider, cache.NewStore(0), RosterResolverConfig{}, logging.NewNop())

	first := resolver.Resolve(context.Background(), "mia", 2024, lineup.NewTrail())
	second := resolver.Resolve(context.Background(), "MIA", 2024, lineup.NewTrail())
	if !first.Contains("Bam Adebayo") || !second.Contains("T. Herro") {
		t.Fatalf("expected resolved roster")
	}
	if provider.calls != 1 {
		t.Fatalf("expected one provider call, got %d", provider.calls)
	}

	resolver.Resolve(context.Background(), "MIA", 2025, nil)
	if provider.calls != 2 {
		t.Fatalf("expected a new season to reload, got %d calls", provider.calls)
	}
}

func TestRosterResolver_FailuresDisableValidation(t *testing.T) {
	t.Parallel()

	provider := &fakeRosterProvider{err: errors.New("stats down")}
	resolver := NewRosterResolver(provider, nil, RosterResolverConfig{}, logging.NewNop())

	trail := lineup.NewTrail()
	roster := resolver.Resolve(context.Background(), "MIA", 2024, trail)
	if roster == nil || roster.Len() != 0 {
		t.Fatalf("expected empty roster, got %v", roster)
	}
	if !trail.Has(StageRoster, "roster lookup failed, validation disabled") {
		t.Fatalf("expected failure trail event")
	}

	unconfigured := NewRosterResolver(nil, nil, RosterResolverConfig{}, logging.NewNop())
	if unconfigured.Resolve(context.Background(), "MIA", 2024, nil).Len() != 0 {
		t.Fatalf("expected empty roster without provider")
	}
}

func TestOpponentResolver_Resolve(t *testing.T) {
	t.Parallel()

	schedule := &fakeSchedule{games: []ExternalGame{
		{GameID: "1", HomeTeam: "MIA", AwayTeam: "MIL"},
		{GameID: "2", HomeTeam: "NYK", AwayTeam: "BOS"},
	}}
	resolver := NewOpponentResolver(schedule, 0, logging.NewNop())

	tests := []struct {
		team string
		want lineup.Matchup
	}{
		{team: "MIA", want: lineup.Matchup{Opponent: "MIL", Home: "MIA", Away: "MIL"}},
		{team: "bos", want: lineup.Matchup{Opponent: "NYK", Home: "NYK", Away: "BOS"}},
		{team: "LAL", want: lineup.Matchup{}},
	}
	for _, tc := range tests {
		if got := resolver.Resolve(context.Background(), gameDay, tc.team, nil); got != tc.want {
			t.Fatalf("Resolve(%s)=%+v want %+v", tc.team, got, tc.want)
		}
	}
}

func TestOpponentResolver_ScheduleFailure(t *testing.T) {
	t.Parallel()

	resolver := NewOpponentResolver(&fakeSchedule{err: errors.New("down")}, 0, logging.NewNop())
	trail := lineup.NewTrail()
	if got := resolver.Resolve(context.Background(), gameDay, "MIA", trail); got.Found() {
		t.Fatalf("expected no matchup, got %+v", got)
	}
	if !trail.Has(StageOpponent, "schedule lookup failed") {
		t.Fatalf("expected failure trail event")
	}
}
