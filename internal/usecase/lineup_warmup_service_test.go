package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

type recordingScraper struct {
	mu       sync.Mutex
	requests []lineup.Request
	outcomes map[string]lineup.Outcome
}

func (s *recordingScraper) Scrape(_ context.Context, req lineup.Request) (lineup.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if req.Team == "BOS" {
		return lineup.Result{}, errors.New("unexpected")
	}
	return lineup.Result{Team: req.Team, Outcome: s.outcomes[req.Team]}, nil
}

func TestLineupWarmupService_Warmup(t *testing.T) {
	t.Parallel()

	schedule := &fakeSchedule{games: []ExternalGame{
		{GameID: "1", HomeTeam: "MIA", AwayTeam: "MIL"},
		{GameID: "2", HomeTeam: "NYK", AwayTeam: "BOS"},
		{GameID: "3", HomeTeam: "MIA", AwayTeam: "XXX"},
	}}
	scraper := &recordingScraper{outcomes: map[string]lineup.Outcome{
		"MIA": lineup.OutcomeOK,
		"MIL": lineup.OutcomeCached,
		"NYK": lineup.OutcomeAmbiguous,
	}}

	report, err := NewLineupWarmupService(schedule, scraper, 2, logging.NewNop()).Warmup(context.Background(), gameDay)
	require.NoError(t, err)
	require.Equal(t, "2025-01-15", report.Date)
	require.True(t, strings.HasPrefix(report.RunID, "warmup_"))
	require.Equal(t, 2, report.Games)
	require.Len(t, report.Tasks, 4)
	require.Equal(t, 2, report.FilledCount)
	require.Equal(t, 1, report.CachedCount)
	require.Equal(t, 1, report.FailedCount)

	teams := make([]string, 0, len(report.Tasks))
	for _, task := range report.Tasks {
		teams = append(teams, task.Team)
	}
	require.Equal(t, []string{"BOS", "MIA", "MIL", "NYK"}, teams)
	require.Equal(t, lineup.OutcomeInternal, report.Tasks[0].Outcome)

	for _, req := range scraper.requests {
		require.NotEmpty(t, req.Opponent, "warmup must pass the scheduled opponent")
		require.True(t, req.Date.Equal(gameDay))
	}
}

func TestLineupWarmupService_Errors(t *testing.T) {
	t.Parallel()

	service := NewLineupWarmupService(&fakeSchedule{err: errors.New("down")}, &recordingScraper{}, 0, logging.NewNop())

	_, err := service.Warmup(context.Background(), gameDay)
	require.ErrorIs(t, err, ErrDependencyUnavailable)

	_, err = service.Warmup(context.Background(), lineup.Request{}.Date)
	require.ErrorIs(t, err, ErrInvalidInput)

	empty, err := NewLineupWarmupService(&fakeSchedule{}, &recordingScraper{}, 1, logging.NewNop()).Warmup(context.Background(), gameDay)
	require.NoError(t, err)
	require.Empty(t, empty.Tasks)
}
