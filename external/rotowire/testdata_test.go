package rotowire

import (
	"fmt"
	"strings"
)

type testGame struct {
	away, home string
	status     string
	rows       [][3]string
}

func gameHTML(g testGame) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="lineup is-nba"><div class="lineup__matchup"><span class="lineup__abbr">%s</span> @ <span class="lineup__abbr">%s</span></div>`, g.away, g.home)
	if g.status != "" {
		fmt.Fprintf(&b, `<div class="lineup__status %s">%s Lineup</div>`, g.status, strings.TrimPrefix(g.status, "is-"))
	}
	b.WriteString(`<table class="lineup__table"><tbody>`)
	for _, row := range g.rows {
		fmt.Fprintf(&b, `<tr><td class="lineup__pos">%s</td><td><a title="%s" href="#">%s</a></td><td><a title="%s" href="#">%s</a></td></tr>`,
			row[0], row[1], shortName(row[1]), row[2], shortName(row[2]))
	}
	b.WriteString(`</tbody></table></div>`)
	return b.String()
}

func shortName(full string) string {
	fields := strings.Fields(full)
	if len(fields) < 2 {
		return full
	}
	return fields[0][:1] + ". " + strings.Join(fields[1:], " ")
}

func pageHTML(games ...testGame) string {
	var b strings.Builder
	b.WriteString(`<html><head><title>NBA Lineups</title></head><body><main class="lineups">`)
	for _, g := range games {
		b.WriteString(gameHTML(g))
	}
	b.WriteString(`</main></body></html>`)
	return b.String()
}

var bucksAtHeat = testGame{
	away:   "MIL",
	home:   "MIA",
	status: "is-confirmed",
	rows: [][3]string{
		{"PG", "Damian Lillard", "Tyler Herro"},
		{"SG", "Gary Trent Jr.", "Terry Rozier"},
		{"SF", "Khris Middleton", "Jimmy Butler"},
		{"PF", "Giannis Antetokounmpo", "Nikola Jovic"},
		{"C", "Brook Lopez", "Bam Adebayo"},
	},
}

var celticsAtKnicks = testGame{
	away:   "BOS",
	home:   "NY",
	status: "is-expected",
	rows: [][3]string{
		{"PG", "Jrue Holiday", "Jalen Brunson"},
		{"SG", "Derrick White", "Mikal Bridges"},
		{"SF", "Jaylen Brown", "Josh Hart"},
		{"PF", "Jayson Tatum", "OG Anunoby"},
		{"C", "Kristaps Porzingis", "Karl-Anthony Towns"},
	},
}
