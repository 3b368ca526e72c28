package team

import (
	"fmt"
	"sort"
	"strings"
)

// Team is one league franchise, keyed by its standard three-letter code.
type Team struct {
	Abbr    string
	StatsID int64
	Name    string
}

func (t Team) Validate() error {
	if len(t.Abbr) != 3 {
		return fmt.Errorf("team abbreviation must be three letters, got %q", t.Abbr)
	}
	if t.StatsID <= 0 {
		return fmt.Errorf("team %s stats id is required", t.Abbr)
	}
	return nil
}

var league = []Team{
	{Abbr: "ATL", StatsID: 1610612737, Name: "Atlanta Hawks"},
	{Abbr: "BOS", StatsID: 1610612738, Name: "Boston Celtics"},
	{Abbr: "BKN", StatsID: 1610612751, Name: "Brooklyn Nets"},
	{Abbr: "CHA", StatsID: 1610612766, Name: "Charlotte Hornets"},
	{Abbr: "CHI", StatsID: 1610612741, Name: "Chicago Bulls"},
	{Abbr: "CLE", StatsID: 1610612739, Name: "Cleveland Cavaliers"},
	{Abbr: "DAL", StatsID: 1610612742, Name: "Dallas Mavericks"},
	{Abbr: "DEN", StatsID: 1610612743, Name: "Denver Nuggets"},
	{Abbr: "DET", StatsID: 1610612765, Name: "Detroit Pistons"},
	{Abbr: "GSW", StatsID: 1610612744, Name: "Golden State Warriors"},
	{Abbr: "HOU", StatsID: 1610612745, Name: "Houston Rockets"},
	{Abbr: "IND", StatsID: 1610612754, Name: "Indiana Pacers"},
	{Abbr: "LAC", StatsID: 1610612746, Name: "LA Clippers"},
	{Abbr: "LAL", StatsID: 1610612747, Name: "Los Angeles Lakers"},
	{Abbr: "MEM", StatsID: 1610612763, Name: "Memphis Grizzlies"},
	{Abbr: "MIA", StatsID: 1610612748, Name: "Miami Heat"},
	{Abbr: "MIL", StatsID: 1610612749, Name: "Milwaukee Bucks"},
	{Abbr: "MIN", StatsID: 1610612750, Name: "Minnesota Timberwolves"},
	{Abbr: "NOP", StatsID: 1610612740, Name: "New Orleans Pelicans"},
	{Abbr: "NYK", StatsID: 1610612752, Name: "New York Knicks"},
	{Abbr: "OKC", StatsID: 1610612760, Name: "Oklahoma City Thunder"},
	{Abbr: "ORL", StatsID: 1610612753, Name: "Orlando Magic"},
	{Abbr: "PHI", StatsID: 1610612755, Name: "Philadelphia 76ers"},
	{Abbr: "PHX", StatsID: 1610612756, Name: "Phoenix Suns"},
	{Abbr: "POR", StatsID: 1610612757, Name: "Portland Trail Blazers"},
	{Abbr: "SAC", StatsID: 1610612758, Name: "Sacramento Kings"},
	{Abbr: "SAS", StatsID: 1610612759, Name: "San Antonio Spurs"},
	{Abbr: "TOR", StatsID: 1610612761, Name: "Toronto Raptors"},
	{Abbr: "UTA", StatsID: 1610612762, Name: "Utah Jazz"},
	{Abbr: "WAS", StatsID: 1610612764, Name: "Washington Wizards"},
}

var (
	byAbbr    = make(map[string]Team, len(league))
	byStatsID = make(map[int64]Team, len(league))
)

func init() {
	for _, t := range league {
		byAbbr[t.Abbr] = t
		byStatsID[t.StatsID] = t
	}
}

// Normalize upper-cases and trims a team code.
func Normalize(abbr string) string {
	return strings.ToUpper(strings.TrimSpace(abbr))
}

func Lookup(abbr string) (Team, bool) {
	t, ok := byAbbr[Normalize(abbr)]
	return t, ok
}

func LookupStatsID(id int64) (Team, bool) {
	t, ok := byStatsID[id]
	return t, ok
}

func IsLeagueTeam(abbr string) bool {
	_, ok := Lookup(abbr)
	return ok
}

// All returns the league teams sorted by abbreviation.
func All() []Team {
	out := append([]Team(nil), league...)
	sort.Slice(out, func(i, j int) bool { return out[i].Abbr < out[j].Abbr })
	return out
}
