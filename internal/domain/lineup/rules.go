package lineup

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	StageDisambiguate = "disambiguate"
	StageAssemble     = "assemble"
	StageValidate     = "validate"
)

const (
	minRosterMatches       = 2
	confidentRosterMatches = 4
)

// ColumnVote is the outcome of roster-membership voting over both columns.
type ColumnVote struct {
	Column   Column
	VotesA   int
	VotesB   int
	TieBreak bool
}

// ChooseColumn decides once per request which column holds the requested
// team. The column with strictly more roster matches wins; ties (including an
// empty roster) fall back to the home/away convention.
func ChooseColumn(candidates map[Position]Candidate, roster *RosterSet, targetIsHome bool, trail *Trail) ColumnVote {
	vote := ColumnVote{}
	for _, pos := range RequiredPositions {
		cand, ok := candidates[pos]
		if !ok {
			continue
		}
		if IsPlausibleName(cand.A) && roster.Contains(cand.A) {
			vote.VotesA++
		}
		if IsPlausibleName(cand.B) && roster.Contains(cand.B) {
			vote.VotesB++
		}
	}

	switch {
	case vote.VotesA > vote.VotesB:
		vote.Column = ColumnA
	case vote.VotesB > vote.VotesA:
		vote.Column = ColumnB
	default:
		vote.Column = ConventionColumn(targetIsHome)
		vote.TieBreak = true
	}

	if vote.TieBreak {
		trail.Add(StageDisambiguate, "roster vote tied, using home/away convention",
			"votes_a", vote.VotesA, "votes_b", vote.VotesB, "target_is_home", targetIsHome, "column", vote.Column.String())
	} else {
		trail.Add(StageDisambiguate, "column chosen by roster vote",
			"votes_a", vote.VotesA, "votes_b", vote.VotesB, "column", vote.Column.String())
	}
	return vote
}

// IsPlausibleName rejects empty fragments and strings without any letter.
func IsPlausibleName(name string) bool {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Assemble builds the lineup from the chosen column with two recovery passes
// for positions the chosen column cannot fill. Missing positions are omitted,
// never synthesized.
func Assemble(ext Extraction, col Column, roster *RosterSet, targetIsHome bool, trail *Trail) Lineup {
	out := make(Lineup, 0, LineupSize)
	for _, pos := range RequiredPositions {
		entry, ok := assemblePosition(ext, pos, col, roster, targetIsHome, trail)
		if !ok {
			trail.Add(StageAssemble, "position unrecoverable", "position", string(pos))
			continue
		}
		out = append(out, entry)
	}

	if len(out) > LineupSize {
		trail.Add(StageAssemble, "truncating surplus positions", "count", len(out))
		out = out[:LineupSize]
	}
	return out
}

func assemblePosition(ext Extraction, pos Position, col Column, roster *RosterSet, targetIsHome bool, trail *Trail) (Entry, bool) {
	if cand, ok := ext.Candidates[pos]; ok {
		if name := strings.TrimSpace(cand.Name(col)); IsPlausibleName(name) {
			confidence := ConfidenceMedium
			if roster.Contains(name) {
				confidence = ConfidenceHigh
			}
			return newEntry(name, pos, resolveStatus(cand.Hint, ext.Status), confidence), true
		}

		if name := strings.TrimSpace(cand.Name(col.Other())); IsPlausibleName(name) {
			trail.Add(StageAssemble, "not using preferred column",
				"position", string(pos), "preferred", col.String(), "used", col.Other().String(), "name", name)
			confidence := ConfidenceLow
			if roster.Contains(name) {
				confidence = ConfidenceMedium
			}
			return newEntry(name, pos, resolveStatus(cand.Hint, ext.Status), confidence), true
		}
	}

	return recoverPosition(ext, pos, roster, targetIsHome, trail)
}

// recoverPosition re-scans every labelled row, duplicates included, for a
// position the first pass could not fill.
func recoverPosition(ext Extraction, pos Position, roster *RosterSet, targetIsHome bool, trail *Trail) (Entry, bool) {
	for _, row := range ext.Rows {
		if row.Position != pos {
			continue
		}
		for _, col := range []Column{ColumnA, ColumnB} {
			name := strings.TrimSpace(row.Name(col))
			if IsPlausibleName(name) && roster.Contains(name) {
				trail.Add(StageAssemble, "recovered roster-verified candidate",
					"position", string(pos), "column", col.String(), "name", name)
				return newEntry(name, pos, resolveStatus(row.Hint, ext.Status), ConfidenceLow), true
			}
		}
	}

	convention := ConventionColumn(targetIsHome)
	for _, row := range ext.Rows {
		if row.Position != pos {
			continue
		}
		if name := strings.TrimSpace(row.Name(convention)); IsPlausibleName(name) {
			trail.Add(StageAssemble, "recovered convention-column candidate",
				"position", string(pos), "column", convention.String(), "name", name)
			return newEntry(name, pos, resolveStatus(row.Hint, ext.Status), ConfidenceLow), true
		}
	}

	return Entry{}, false
}

func resolveStatus(rowHint, boxStatus Status) Status {
	if rowHint != StatusUnknown {
		return rowHint
	}
	if boxStatus != StatusUnknown {
		return boxStatus
	}
	return StatusProjected
}

func newEntry(name string, pos Position, status Status, confidence Confidence) Entry {
	verified := status == StatusVerified
	return Entry{
		Name:        name,
		Position:    pos,
		IsVerified:  verified,
		IsProjected: !verified,
		Confidence:  confidence,
	}
}

// Verdict is the roster validator's decision on an assembled lineup.
type Verdict struct {
	Accepted bool
	Skipped  bool
	Matches  int
	Reason   string
}

// Validate gates a five-entry lineup against the roster before it may be cached.
func Validate(l Lineup, roster *RosterSet, trail *Trail) Verdict {
	if !l.Complete() {
		v := Verdict{Reason: fmt.Sprintf("lineup has %d entries, expected %d distinct positions", len(l), LineupSize)}
		trail.Add(StageValidate, "incomplete lineup", "entries", len(l))
		return v
	}

	if roster.Len() == 0 {
		trail.Add(StageValidate, "roster unavailable, validation skipped")
		return Verdict{Accepted: true, Skipped: true, Reason: "roster unavailable"}
	}

	matches := 0
	for _, entry := range l {
		if roster.Contains(entry.Name) {
			matches++
		}
	}

	switch {
	case matches < minRosterMatches:
		trail.Add(StageValidate, "lineup rejected, too few roster matches", "matches", matches)
		return Verdict{Matches: matches, Reason: fmt.Sprintf("only %d of %d names match the roster", matches, LineupSize)}
	case matches < confidentRosterMatches:
		trail.Add(StageValidate, "lineup accepted with weak roster agreement", "matches", matches)
		return Verdict{Accepted: true, Matches: matches, Reason: "weak roster agreement"}
	default:
		trail.Add(StageValidate, "lineup accepted", "matches", matches)
		return Verdict{Accepted: true, Matches: matches}
	}
}
