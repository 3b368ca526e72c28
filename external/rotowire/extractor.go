package rotowire

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/net/html"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
)

const StageExtract = "extract"

const statusWindow = 2000

var (
	ErrNoLineupBlock = crerr.New("no lineup block in game box")
	ErrNoLineupRows  = crerr.New("no labelled lineup rows in game box")
)

// Markers are whole words. Class tokens such as "is-confirmed" split into
// words, so "unconfirmed" or "unexpected" never match.
var (
	verifiedMarkers  = map[string]struct{}{"confirmed": {}, "verified": {}}
	projectedMarkers = map[string]struct{}{"expected": {}, "projected": {}, "predicted": {}}
)

// blockSelectors are tried in order; the first selector with a match is the table-like block.
var blockSelectors = []string{"table", `[class*="lineup__list"]`, "ul"}

// rowSelectors are tried in order inside the block.
var rowSelectors = []string{"tr", "li"}

// Extract parses the game box and returns every labelled row. The first row
// per position is the candidate; later duplicates stay in Rows for recovery.
func (p *Parser) Extract(markup string, box lineup.GameBox, trail *lineup.Trail) (lineup.Extraction, error) {
	start, end := clampBox(markup, box)
	fragment := markup[start:end]

	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return lineup.Extraction{}, crerr.Wrap(err, "parse game box")
	}
	doc := goquery.NewDocumentFromNode(root)

	block, blockSelector := firstMatch(doc.Selection, blockSelectors)
	if block == nil {
		trail.Add(StageExtract, "no table-like block found")
		return lineup.Extraction{}, ErrNoLineupBlock
	}
	rows, rowSelector := firstMatch(block, rowSelectors)
	if rows == nil {
		trail.Add(StageExtract, "no rows in block", "block", blockSelector)
		return lineup.Extraction{}, ErrNoLineupRows
	}

	ext := lineup.Extraction{Candidates: make(map[lineup.Position]lineup.Candidate, lineup.LineupSize)}
	skipped := 0
	rows.Each(func(_ int, row *goquery.Selection) {
		pos, ok := rowPosition(row)
		if !ok {
			skipped++
			return
		}
		a, b := rowNames(row)
		cand := lineup.Candidate{Position: pos, A: a, B: b, Hint: markerStatus(classText(row))}
		ext.Rows = append(ext.Rows, cand)

		if _, dup := ext.Candidates[pos]; dup {
			trail.Add(StageExtract, "duplicate position row discarded", "position", string(pos), "a", a, "b", b)
			return
		}
		ext.Candidates[pos] = cand
	})

	if len(ext.Rows) == 0 {
		trail.Add(StageExtract, "no labelled rows", "block", blockSelector, "rows", rowSelector, "skipped", skipped)
		return lineup.Extraction{}, ErrNoLineupRows
	}

	ext.Status = boxStatus(markup, start, end)
	if ext.Status == lineup.StatusUnknown {
		trail.Add(StageExtract, "lineup status unknown, treating as projected")
	}

	trail.Add(StageExtract, "rows extracted",
		"block", blockSelector,
		"rows", rowSelector,
		"labelled", len(ext.Rows),
		"positions", len(ext.Candidates),
		"skipped", skipped,
		"status", string(ext.Status),
	)
	return ext, nil
}

func clampBox(markup string, box lineup.GameBox) (int, int) {
	start := min(max(box.Start, 0), len(markup))
	end := box.End
	if end <= start || end > len(markup) {
		end = len(markup)
	}
	return start, end
}

func firstMatch(sel *goquery.Selection, selectors []string) (*goquery.Selection, string) {
	for _, selector := range selectors {
		found := sel.Find(selector)
		if found.Length() == 0 {
			continue
		}
		if selector == "tr" || selector == "li" {
			return found, selector
		}
		return found.First(), selector
	}
	return nil, ""
}

func rowPosition(row *goquery.Selection) (lineup.Position, bool) {
	var pos lineup.Position
	found := false
	row.Find(`[class*="pos"]`).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		pos, found = lineup.ParsePosition(el.Text())
		return !found
	})
	if found {
		return pos, true
	}

	cells := row.Find("td, th, span, div")
	cells.EachWithBreak(func(_ int, el *goquery.Selection) bool {
		pos, found = lineup.ParsePosition(ownText(el))
		return !found
	})
	if found {
		return pos, true
	}

	for _, token := range strings.FieldsFunc(ownText(row), func(r rune) bool {
		return unicode.IsSpace(r) || r == '|' || r == ','
	}) {
		if pos, ok := lineup.ParsePosition(token); ok {
			return pos, true
		}
	}
	return "", false
}

func rowNames(row *goquery.Selection) (string, string) {
	names := make([]string, 0, 2)
	row.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		name, ok := a.Attr("title")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			name = collapseSpace(a.Text())
		}
		names = append(names, name)
		return len(names) < 2
	})

	for len(names) < 2 {
		names = append(names, "")
	}
	return names[0], names[1]
}

// ownText returns only the direct text children of the selection's first node.
func ownText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for child := sel.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			b.WriteString(child.Data)
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

// classText joins the class attributes of the row and its descendants.
func classText(row *goquery.Selection) string {
	var b strings.Builder
	if class, ok := row.Attr("class"); ok {
		b.WriteString(class)
	}
	row.Find("[class]").Each(func(_ int, el *goquery.Selection) {
		class, _ := el.Attr("class")
		b.WriteByte(' ')
		b.WriteString(class)
	})
	return b.String()
}

// boxStatus checks the box first, then the window before it, then the window
// after it. A box carrying both kinds of marker is unknown; its neighbours
// belong to other games and must not decide it.
func boxStatus(markup string, start, end int) lineup.Status {
	verified, projected := markerSignals(markup[start:end])
	if verified || projected {
		return statusFromSignals(verified, projected)
	}

	for _, window := range []string{
		markup[max(0, start-statusWindow):start],
		markup[end:min(len(markup), end+statusWindow)],
	} {
		if status := markerStatus(window); status != lineup.StatusUnknown {
			return status
		}
	}
	return lineup.StatusUnknown
}

// markerStatus is unknown when both or neither kind of marker is present.
func markerStatus(text string) lineup.Status {
	return statusFromSignals(markerSignals(text))
}

func markerSignals(text string) (verified, projected bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, word := range words {
		if _, ok := verifiedMarkers[word]; ok {
			verified = true
		}
		if _, ok := projectedMarkers[word]; ok {
			projected = true
		}
	}
	return verified, projected
}

func statusFromSignals(verified, projected bool) lineup.Status {
	switch {
	case verified && !projected:
		return lineup.StatusVerified
	case projected && !verified:
		return lineup.StatusProjected
	default:
		return lineup.StatusUnknown
	}
}

func collapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
