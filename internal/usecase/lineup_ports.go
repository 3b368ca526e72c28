package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
)

// RosterProvider fetches a team's listed players for the season starting in
// seasonStartYear.
type RosterProvider interface {
	FetchTeamRoster(ctx context.Context, teamAbbr string, seasonStartYear int) ([]lineup.Player, error)
}

// ScheduleProvider lists the games scheduled on a calendar date.
type ScheduleProvider interface {
	FetchGames(ctx context.Context, date time.Time) ([]ExternalGame, error)
}

type ExternalGame struct {
	GameID   string
	Date     time.Time
	HomeTeam string
	AwayTeam string
	Status   string
}

// PageFetcher returns the lineup page markup for a date. An empty string with
// a nil error means no usable snapshot was obtained; ErrOutsideFetchPolicy
// means the date is not served at all. Serves answers that question up front
// without any I/O.
type PageFetcher interface {
	Fetch(ctx context.Context, date time.Time, team string, trail *lineup.Trail) (string, error)
	Serves(date time.Time) bool
	Source() string
}

// LineupPageParser locates one game inside a page and pulls its candidate rows.
type LineupPageParser interface {
	Locate(markup, team, opponent string, trail *lineup.Trail) (lineup.GameBox, bool)
	Extract(markup string, box lineup.GameBox, trail *lineup.Trail) (lineup.Extraction, error)
}
