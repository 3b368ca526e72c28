package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/domain/team"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

const StageOpponent = "opponent"

// OpponentResolver finds a team's scheduled game on a date. It returns the
// zero Matchup when the schedule is unavailable or the team is idle.
type OpponentResolver struct {
	schedule ScheduleProvider
	timeout  time.Duration
	logger   *logging.Logger
}

func NewOpponentResolver(schedule ScheduleProvider, timeout time.Duration, logger *logging.Logger) *OpponentResolver {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpponentResolver{schedule: schedule, timeout: timeout, logger: logger}
}

func (r *OpponentResolver) Resolve(ctx context.Context, date time.Time, teamAbbr string, trail *lineup.Trail) lineup.Matchup {
	ctx, span := startUsecaseSpan(ctx, "usecase.OpponentResolver.Resolve")
	defer span.End()

	teamAbbr = team.Normalize(teamAbbr)
	if r == nil || r.schedule == nil {
		trail.Add(StageOpponent, "schedule provider not configured")
		return lineup.Matchup{}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	games, err := r.schedule.FetchGames(ctx, date)
	if err != nil {
		r.logger.WarnContext(ctx, "schedule lookup failed", "team", teamAbbr, "date", date.Format(time.DateOnly), "error", err)
		trail.Add(StageOpponent, "schedule lookup failed", "error", err.Error())
		return lineup.Matchup{}
	}

	for _, game := range games {
		switch teamAbbr {
		case game.HomeTeam:
			trail.Add(StageOpponent, "opponent resolved", "opponent", game.AwayTeam, "home", true)
			return lineup.Matchup{Opponent: game.AwayTeam, Home: game.HomeTeam, Away: game.AwayTeam}
		case game.AwayTeam:
			trail.Add(StageOpponent, "opponent resolved", "opponent", game.HomeTeam, "home", false)
			return lineup.Matchup{Opponent: game.HomeTeam, Home: game.HomeTeam, Away: game.AwayTeam}
		}
	}
	trail.Add(StageOpponent, "no scheduled game for team", "games", len(games))
	return lineup.Matchup{}
}
