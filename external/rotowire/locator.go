package rotowire

import (
	"regexp"
	"strings"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/domain/team"
)

const StageLocate = "locate"

const (
	defaultContainerLookback = 4000
	defaultBoxWindow         = 12000
	defaultStartWindow       = 2000
)

// matchupPattern matches "AWAY @ HOME" with optional tags or whitespace around the "@".
var matchupPattern = regexp.MustCompile(`\b([A-Z]{2,4})\b(?:\s|<[^>]*>)*@(?:\s|<[^>]*>)*\b([A-Z]{2,4})\b`)

// containerPattern matches a game container's class attribute whose first
// token is exactly "lineup", so "lineup__player" cells do not qualify.
var containerPattern = regexp.MustCompile(`class="lineup[\s"]`)

// Anchor is the byte span of the chosen matchup marker. Floor is the end of
// the previous marker on the page; a box never starts before it.
type Anchor struct {
	Start int
	End   int
	Floor int
}

// BoundaryStrategy finds one edge of a game box. Strategies are tried in
// order and the first that succeeds wins.
type BoundaryStrategy struct {
	Name string
	Find func(markup string, anchor Anchor) (int, bool)
}

type marker struct {
	Anchor
	Raw  string
	Away string
	Home string
}

// Locator finds the requested team's game inside a page of many games.
type Locator struct {
	StartStrategies []BoundaryStrategy
	EndStrategies   []BoundaryStrategy
}

func NewLocator() *Locator {
	return &Locator{
		StartStrategies: DefaultStartStrategies(),
		EndStrategies:   DefaultEndStrategies(),
	}
}

func DefaultStartStrategies() []BoundaryStrategy {
	return []BoundaryStrategy{
		{Name: "lineup-container", Find: lineupContainerStart(defaultContainerLookback)},
		{Name: "table-open", Find: openingTagBefore("<table")},
		{Name: "div-open", Find: openingTagBefore("<div")},
		{Name: "fixed-window", Find: fixedStart(defaultStartWindow)},
	}
}

func DefaultEndStrategies() []BoundaryStrategy {
	return []BoundaryStrategy{
		{Name: "next-matchup", Find: nextMatchupEnd},
		{Name: "fixed-window", Find: fixedEnd(defaultBoxWindow)},
		{Name: "page-end", Find: pageEnd},
	}
}

// Locate picks the first matchup containing team (and opponent, when known)
// and derives its box. Team codes are league codes.
func (l *Locator) Locate(markup, teamAbbr, opponent string, trail *lineup.Trail) (lineup.GameBox, bool) {
	teamAbbr = team.Normalize(teamAbbr)
	opponent = team.Normalize(opponent)

	markers := scanMatchups(markup)
	trail.Add(StageLocate, "matchup markers scanned", "count", len(markers))

	var chosen *marker
	for i := range markers {
		m := markers[i]
		if m.Away != teamAbbr && m.Home != teamAbbr {
			continue
		}
		if opponent != "" && m.Away != opponent && m.Home != opponent {
			trail.Add(StageLocate, "matchup skipped, opponent mismatch",
				"matchup", m.Away+"@"+m.Home, "expected_opponent", opponent)
			continue
		}
		chosen = &markers[i]
		break
	}
	if chosen == nil {
		trail.Add(StageLocate, "no matchup for team", "team", teamAbbr, "opponent", opponent)
		return lineup.GameBox{}, false
	}

	chosen.Floor = previousMarkerEnd(markup, chosen.Start)
	box := lineup.GameBox{
		Away:         chosen.Away,
		Home:         chosen.Home,
		Matchup:      chosen.Away + " @ " + chosen.Home,
		TargetIsHome: chosen.Home == teamAbbr,
	}
	box.Start, box.StartStrategy = runStrategies(l.StartStrategies, markup, chosen.Anchor, 0)
	box.End, box.EndStrategy = runStrategies(l.EndStrategies, markup, chosen.Anchor, len(markup))
	if box.End < chosen.End {
		box.End = min(len(markup), chosen.End)
	}

	trail.Add(StageLocate, "game box located",
		"matchup", box.Matchup,
		"target_is_home", box.TargetIsHome,
		"start", box.Start,
		"start_strategy", box.StartStrategy,
		"end", box.End,
		"end_strategy", box.EndStrategy,
	)
	return box, true
}

func runStrategies(strategies []BoundaryStrategy, markup string, anchor Anchor, fallback int) (int, string) {
	for _, s := range strategies {
		if s.Find == nil {
			continue
		}
		if pos, ok := s.Find(markup, anchor); ok {
			return pos, s.Name
		}
	}
	return fallback, "none"
}

// scanMatchups returns every marker whose codes are league teams after translation.
func scanMatchups(markup string) []marker {
	matches := matchupPattern.FindAllStringSubmatchIndex(markup, -1)
	out := make([]marker, 0, len(matches))
	for _, idx := range matches {
		away, awayOK := ToLeague(markup[idx[2]:idx[3]])
		home, homeOK := ToLeague(markup[idx[4]:idx[5]])
		if !awayOK || !homeOK || away == home {
			continue
		}
		out = append(out, marker{
			Anchor: Anchor{Start: idx[0], End: idx[1]},
			Raw:    markup[idx[0]:idx[1]],
			Away:   away,
			Home:   home,
		})
	}
	return out
}

func previousMarkerEnd(markup string, before int) int {
	floor := 0
	for _, loc := range matchupPattern.FindAllStringIndex(markup[:before], -1) {
		floor = loc[1]
	}
	return floor
}

func lineupContainerStart(lookback int) func(string, Anchor) (int, bool) {
	return func(markup string, anchor Anchor) (int, bool) {
		from := max(anchor.Floor, anchor.Start-lookback)
		window := markup[from:anchor.Start]
		found := containerPattern.FindAllStringIndex(window, -1)
		if len(found) == 0 {
			return 0, false
		}
		idx := found[len(found)-1][0]
		if tag := strings.LastIndexByte(window[:idx], '<'); tag >= 0 {
			return from + tag, true
		}
		return from + idx, true
	}
}

func openingTagBefore(tag string) func(string, Anchor) (int, bool) {
	return func(markup string, anchor Anchor) (int, bool) {
		idx := strings.LastIndex(markup[anchor.Floor:anchor.Start], tag)
		if idx < 0 {
			return 0, false
		}
		return anchor.Floor + idx, true
	}
}

func fixedStart(window int) func(string, Anchor) (int, bool) {
	return func(_ string, anchor Anchor) (int, bool) {
		return max(anchor.Floor, anchor.Start-window), true
	}
}

func nextMatchupEnd(markup string, anchor Anchor) (int, bool) {
	rest := markup[anchor.End:]
	loc := matchupPattern.FindStringIndex(rest)
	if loc == nil {
		return 0, false
	}
	return anchor.End + loc[0], true
}

func fixedEnd(window int) func(string, Anchor) (int, bool) {
	return func(markup string, anchor Anchor) (int, bool) {
		if anchor.Start+window >= len(markup) {
			return 0, false
		}
		return anchor.Start + window, true
	}
}

func pageEnd(markup string, _ Anchor) (int, bool) {
	return len(markup), true
}
