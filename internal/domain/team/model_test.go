package team

import "testing"

func TestLeagueTable(t *testing.T) {
	t.Parallel()

	all := All()
	if len(all) != 30 {
		t.Fatalf("expected 30 teams, got %d", len(all))
	}
	for _, item := range all {
		if err := item.Validate(); err != nil {
			t.Fatalf("invalid team row: %v", err)
		}
		back, ok := LookupStatsID(item.StatsID)
		if !ok || back.Abbr != item.Abbr {
			t.Fatalf("stats id %d does not map back to %s", item.StatsID, item.Abbr)
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	got, ok := Lookup(" mia ")
	if !ok || got.StatsID != 1610612748 {
		t.Fatalf("unexpected lookup result: %+v ok=%v", got, ok)
	}
	if IsLeagueTeam("GS") || IsLeagueTeam("") {
		t.Fatalf("site codes are not league teams")
	}
	if _, ok := LookupStatsID(42); ok {
		t.Fatalf("unexpected team for unknown id")
	}
}
