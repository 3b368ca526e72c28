package app

import (
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	tracedWhitespace    = regexp.MustCompile(`\s+`)
	tracedStringLiteral = regexp.MustCompile(`'(?:[^']|'')*'`)
)

// traceLineupQuery collapses whitespace and masks inlined string literals so
// cache keys do not end up as span attributes.
func traceLineupQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	query = tracedStringLiteral.ReplaceAllString(query, "'?'")
	query = tracedWhitespace.ReplaceAllString(query, " ")
	if len(query) <= maxTracedQueryLength {
		return query
	}
	cut := maxTracedQueryLength
	for cut > 0 && !isRuneStart(query[cut]) {
		cut--
	}
	return query[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
