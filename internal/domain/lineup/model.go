package lineup

import (
	"strings"
	"time"
)

// Position is one of the five starting slots.
type Position string

const (
	PositionPG Position = "PG"
	PositionSG Position = "SG"
	PositionSF Position = "SF"
	PositionPF Position = "PF"
	PositionC  Position = "C"
)

// RequiredPositions lists the starting slots in output order.
var RequiredPositions = []Position{PositionPG, PositionSG, PositionSF, PositionPF, PositionC}

const LineupSize = 5

func ParsePosition(raw string) (Position, bool) {
	switch Position(strings.ToUpper(strings.TrimSpace(raw))) {
	case PositionPG:
		return PositionPG, true
	case PositionSG:
		return PositionSG, true
	case PositionSF:
		return PositionSF, true
	case PositionPF:
		return PositionPF, true
	case PositionC:
		return PositionC, true
	default:
		return "", false
	}
}

// Status is the verified/projected hint recovered from page markup.
type Status string

const (
	StatusUnknown   Status = ""
	StatusVerified  Status = "verified"
	StatusProjected Status = "projected"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Column identifies one of the two candidate-name slots of a shared table row.
type Column int

const (
	ColumnA Column = iota
	ColumnB
)

func (c Column) Other() Column {
	if c == ColumnA {
		return ColumnB
	}
	return ColumnA
}

func (c Column) String() string {
	if c == ColumnA {
		return "A"
	}
	return "B"
}

// ConventionColumn is the column used when roster voting cannot decide.
// The upstream table follows the "AWAY @ HOME" reading order: column A holds
// the away team and column B the home team.
func ConventionColumn(targetIsHome bool) Column {
	if targetIsHome {
		return ColumnB
	}
	return ColumnA
}

// Request is one scrape invocation.
type Request struct {
	Date        time.Time
	Team        string
	BypassCache bool
	Opponent    string
	Roster      *RosterSet
}

// GameBox describes the slice of the page that belongs to the requested game.
type GameBox struct {
	Start         int
	End           int
	Away          string
	Home          string
	Matchup       string
	TargetIsHome  bool
	StartStrategy string
	EndStrategy   string
}

// Candidate is one table row: a position and the two names sharing it.
type Candidate struct {
	Position Position
	A        string
	B        string
	Hint     Status
}

func (c Candidate) Name(col Column) string {
	if col == ColumnA {
		return c.A
	}
	return c.B
}

// Extraction is the parsed content of a game box.
type Extraction struct {
	// Candidates holds the first row seen for each position.
	Candidates map[Position]Candidate
	// Rows keeps every labelled row in page order, duplicates included.
	Rows   []Candidate
	Status Status
}

// Entry is the externally visible unit of a lineup.
type Entry struct {
	Name        string     `json:"name"`
	Position    Position   `json:"position"`
	IsVerified  bool       `json:"isVerified"`
	IsProjected bool       `json:"isProjected"`
	Confidence  Confidence `json:"-"`
}

// Lineup is either empty or exactly five entries with distinct positions.
type Lineup []Entry

func (l Lineup) Complete() bool {
	if len(l) != LineupSize {
		return false
	}
	seen := make(map[Position]struct{}, LineupSize)
	for _, entry := range l {
		if _, ok := ParsePosition(string(entry.Position)); !ok {
			return false
		}
		if _, dup := seen[entry.Position]; dup {
			return false
		}
		seen[entry.Position] = struct{}{}
	}
	return true
}

// Matchup is the scheduled game of a team on a date.
type Matchup struct {
	Opponent string
	Home     string
	Away     string
}

func (m Matchup) Found() bool {
	return m.Opponent != ""
}

// Outcome classifies why a scrape produced, or did not produce, a lineup.
type Outcome string

const (
	OutcomeOK                  Outcome = "ok"
	OutcomeCached              Outcome = "cached"
	OutcomeSkipped             Outcome = "skipped"
	OutcomeUpstreamUnavailable Outcome = "upstream_unavailable"
	OutcomeNotFound            Outcome = "not_found"
	OutcomeAmbiguous           Outcome = "ambiguous"
	OutcomeRejected            Outcome = "rejected"
	OutcomeInternal            Outcome = "internal"
)

// Result is the typed output of one scrape.
type Result struct {
	Team       string
	Date       time.Time
	Lineup     Lineup
	Outcome    Outcome
	Reason     string
	Box        *GameBox
	Column     *Column
	MatchCount int
	Trail      []TrailEvent
}

func (r Result) HasLineup() bool {
	return len(r.Lineup) == LineupSize
}
