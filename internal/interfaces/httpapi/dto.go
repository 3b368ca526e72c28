package httpapi

import (
	"time"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
)

type lineupQuery struct {
	Team        string `validate:"required,min=2,max=4,alpha"`
	Date        string `validate:"omitempty,datetime=2006-01-02"`
	Opponent    string `validate:"omitempty,min=2,max=4,alpha"`
	BypassCache bool
	Debug       bool
}

type warmupQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

type lineupEntryDTO struct {
	Name        string `json:"name"`
	Position    string `json:"position"`
	IsVerified  bool   `json:"isVerified"`
	IsProjected bool   `json:"isProjected"`
}

type lineupResultDTO struct {
	Team        string           `json:"team"`
	Date        string           `json:"date"`
	Outcome     string           `json:"outcome"`
	Reason      string           `json:"reason,omitempty"`
	Lineup      []lineupEntryDTO `json:"lineup"`
	Diagnostics *diagnosticsDTO  `json:"diagnostics,omitempty"`
}

type gameBoxDTO struct {
	Away          string `json:"away"`
	Home          string `json:"home"`
	Matchup       string `json:"matchup"`
	TargetIsHome  bool   `json:"targetIsHome"`
	StartStrategy string `json:"startStrategy"`
	EndStrategy   string `json:"endStrategy"`
	Start         int    `json:"start"`
	End           int    `json:"end"`
}

type trailEventDTO struct {
	At      string         `json:"at"`
	Stage   string         `json:"stage"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

type diagnosticsDTO struct {
	Box        *gameBoxDTO     `json:"box,omitempty"`
	Column     string          `json:"column,omitempty"`
	MatchCount int             `json:"matchCount"`
	Trail      []trailEventDTO `json:"trail"`
}

func resultToDTO(res lineup.Result, debug bool) lineupResultDTO {
	entries := make([]lineupEntryDTO, 0, len(res.Lineup))
	for _, entry := range res.Lineup {
		entries = append(entries, lineupEntryDTO{
			Name:        entry.Name,
			Position:    string(entry.Position),
			IsVerified:  entry.IsVerified,
			IsProjected: entry.IsProjected,
		})
	}

	out := lineupResultDTO{
		Team:    res.Team,
		Date:    res.Date.Format(time.DateOnly),
		Outcome: string(res.Outcome),
		Reason:  res.Reason,
		Lineup:  entries,
	}
	if debug {
		out.Diagnostics = diagnosticsToDTO(res)
	}
	return out
}

func diagnosticsToDTO(res lineup.Result) *diagnosticsDTO {
	out := &diagnosticsDTO{
		MatchCount: res.MatchCount,
		Trail:      make([]trailEventDTO, 0, len(res.Trail)),
	}
	if res.Box != nil {
		out.Box = &gameBoxDTO{
			Away:          res.Box.Away,
			Home:          res.Box.Home,
			Matchup:       res.Box.Matchup,
			TargetIsHome:  res.Box.TargetIsHome,
			StartStrategy: res.Box.StartStrategy,
			EndStrategy:   res.Box.EndStrategy,
			Start:         res.Box.Start,
			End:           res.Box.End,
		}
	}
	if res.Column != nil {
		out.Column = res.Column.String()
	}
	for _, event := range res.Trail {
		out.Trail = append(out.Trail, trailEventDTO{
			At:      event.At.UTC().Format(time.RFC3339Nano),
			Stage:   event.Stage,
			Message: event.Message,
			Fields:  event.Fields,
		})
	}
	return out
}
