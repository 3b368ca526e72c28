package nbastats

import (
	"math"
	"strconv"
	"strings"
)

// envelope is the common stats.nba.com response shape: named result sets,
// each a header row plus positional value rows.
type envelope struct {
	Resource   string      `json:"resource"`
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

func (e envelope) set(name string) (resultSet, bool) {
	for _, rs := range e.ResultSets {
		if strings.EqualFold(rs.Name, name) {
			return rs, true
		}
	}
	return resultSet{}, false
}

// column returns the index of the first header matching any of names,
// case-insensitively, or -1.
func (rs resultSet) column(names ...string) int {
	for _, name := range names {
		for i, header := range rs.Headers {
			if strings.EqualFold(strings.TrimSpace(header), name) {
				return i
			}
		}
	}
	return -1
}

func cellString(row []any, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func cellInt64(row []any, idx int) int64 {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return 0
	}
	switch v := row[idx].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(v)
	case int64:
		return v
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// splitPlayerName splits the roster PLAYER column into first name and the
// remainder, so "Gary Trent Jr." becomes ("Gary", "Trent Jr.").
func splitPlayerName(full string) (string, string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
