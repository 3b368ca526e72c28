package app

import (
	"net/url"
	"strings"
)

const dbApplicationName = "nba-lineups"

// LineupCacheDSN fills in connection defaults for the lineup cache database.
// The API and the migration command share it.
// Explicit query values in raw always win.
func LineupCacheDSN(raw string, disablePreparedBinary bool) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" {
		// key=value DSNs are passed through untouched.
		return raw
	}

	query := parsed.Query()
	defaults := map[string]string{"application_name": dbApplicationName}
	if disablePreparedBinary {
		defaults["disable_prepared_binary_result"] = "yes"
	}
	changed := false
	for key, value := range defaults {
		if query.Get(key) != "" {
			continue
		}
		query.Set(key, value)
		changed = true
	}
	if !changed {
		return raw
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// dbNameFromDSN accepts both URL and key=value forms.
func dbNameFromDSN(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Scheme != "" {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}

	for _, token := range strings.Fields(trimmed) {
		if name, ok := strings.CutPrefix(token, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}
