package lineup

import (
	"fmt"
	"time"
)

// SeasonStartYear maps a date to the calendar year its season began in.
// October through December belong to the season starting that year.
func SeasonStartYear(date time.Time) int {
	if date.Month() >= time.October {
		return date.Year()
	}
	return date.Year() - 1
}

// SeasonLabel formats a season start year the way the stats provider expects, e.g. "2025-26".
func SeasonLabel(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}
