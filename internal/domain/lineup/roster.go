package lineup

import (
	"strings"
	"unicode"
)

var nameSuffixes = map[string]struct{}{
	"jr":  {},
	"sr":  {},
	"ii":  {},
	"iii": {},
	"iv":  {},
}

// NormalizeName lowercases, strips everything that is not a letter, digit or
// space, drops generational suffixes and collapses whitespace.
func NormalizeName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, field := range fields {
		if _, suffix := nameSuffixes[field]; suffix && len(out) > 0 {
			continue
		}
		out = append(out, field)
	}
	return strings.Join(out, " ")
}

// LastName returns the final token of a normalized name.
func LastName(normalized string) string {
	if idx := strings.LastIndexByte(normalized, ' '); idx >= 0 {
		return normalized[idx+1:]
	}
	return normalized
}

// Player is one roster row from the stats provider.
type Player struct {
	FirstName string
	LastName  string
}

func (p Player) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// RosterSet is a membership-only set of normalized name variants for one team and season.
type RosterSet struct {
	names map[string]struct{}
}

func NewRosterSet(players []Player) *RosterSet {
	set := &RosterSet{names: make(map[string]struct{}, len(players)*4)}
	for _, p := range players {
		set.AddPlayer(p)
	}
	return set
}

// AddPlayer inserts the full name, "F. Last", "F Last", last name and the
// punctuation-stripped full name.
func (s *RosterSet) AddPlayer(p Player) {
	if s.names == nil {
		s.names = make(map[string]struct{})
	}

	first := strings.TrimSpace(p.FirstName)
	last := strings.TrimSpace(p.LastName)
	full := p.FullName()
	if full == "" {
		return
	}

	variants := []string{full, last, stripPunctuation(full)}
	if initial := firstRune(first); initial != "" && last != "" {
		variants = append(variants, initial+". "+last, initial+" "+last)
	}
	for _, variant := range variants {
		if normalized := NormalizeName(variant); normalized != "" {
			s.names[normalized] = struct{}{}
		}
	}
}

// Contains reports whether a scraped name matches the roster, either on the
// normalized full string or on the last name alone.
func (s *RosterSet) Contains(name string) bool {
	if s.Len() == 0 {
		return false
	}
	normalized := NormalizeName(name)
	if normalized == "" {
		return false
	}
	if _, ok := s.names[normalized]; ok {
		return true
	}
	_, ok := s.names[LastName(normalized)]
	return ok
}

func (s *RosterSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

func stripPunctuation(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, value)
}

func firstRune(value string) string {
	for _, r := range value {
		return string(r)
	}
	return ""
}
