package rotowire

import "github.com/riskibarqy/nba-lineups/internal/domain/team"

// siteToLeague maps the page's non-standard codes to league codes.
var siteToLeague = map[string]string{
	"GS":   "GSW",
	"NY":   "NYK",
	"SA":   "SAS",
	"NO":   "NOP",
	"PHO":  "PHX",
	"UTAH": "UTA",
	"WSH":  "WAS",
}

var leagueToSite = func() map[string]string {
	out := make(map[string]string, len(siteToLeague))
	for site, league := range siteToLeague {
		out[league] = site
	}
	return out
}()

// ToLeague translates a page code to a league code. Codes that are neither
// mapped nor league teams are rejected.
func ToLeague(code string) (string, bool) {
	code = team.Normalize(code)
	if mapped, ok := siteToLeague[code]; ok {
		return mapped, true
	}
	if team.IsLeagueTeam(code) {
		return code, true
	}
	return "", false
}

// ToSite returns the code the page uses for a league team.
func ToSite(abbr string) string {
	abbr = team.Normalize(abbr)
	if site, ok := leagueToSite[abbr]; ok {
		return site
	}
	return abbr
}
