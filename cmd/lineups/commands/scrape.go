package commands

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
)

var scrapeFlags struct {
	team        string
	date        string
	opponent    string
	bypassCache bool
	trail       bool
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeFlags.team, "team", "", "Team abbreviation, e.g. MIA.")
	scrapeCmd.Flags().StringVar(&scrapeFlags.date, "date", "", "Game date as YYYY-MM-DD. Defaults to today in LINEUP_TIMEZONE.")
	scrapeCmd.Flags().StringVar(&scrapeFlags.opponent, "opponent", "", "Opponent abbreviation; skips the schedule lookup.")
	scrapeCmd.Flags().BoolVar(&scrapeFlags.bypassCache, "bypass-cache", false, "Ignore any cached lineup and scrape again.")
	scrapeCmd.Flags().BoolVar(&scrapeFlags.trail, "trail", false, "Include the decision trail in the output.")
	_ = scrapeCmd.MarkFlagRequired("team")
	rootCmd.AddCommand(scrapeCmd)
}

type scrapeOutput struct {
	Team    string              `json:"team"`
	Date    string              `json:"date"`
	Outcome lineup.Outcome      `json:"outcome"`
	Reason  string              `json:"reason,omitempty"`
	Lineup  lineup.Lineup       `json:"lineup"`
	Trail   []lineup.TrailEvent `json:"trail,omitempty"`
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape --team <ABBR> [--date YYYY-MM-DD] [--bypass-cache]",
	Short: "Extracts the starting lineup of one team for one date.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		date, err := parseDateFlag(scrapeFlags.date, s.cfg.LineupLocation)
		if err != nil {
			return err
		}

		started := time.Now()
		res, err := s.app.Scraper().Scrape(cmd.Context(), lineup.Request{
			Date:        date,
			Team:        strings.ToUpper(strings.TrimSpace(scrapeFlags.team)),
			Opponent:    strings.ToUpper(strings.TrimSpace(scrapeFlags.opponent)),
			BypassCache: scrapeFlags.bypassCache,
		})
		if err != nil {
			return err
		}
		s.logger.Info("scrape finished", "team", res.Team, "outcome", res.Outcome, "duration", time.Since(started))

		out := scrapeOutput{
			Team:    res.Team,
			Date:    res.Date.Format(time.DateOnly),
			Outcome: res.Outcome,
			Reason:  res.Reason,
			Lineup:  res.Lineup,
		}
		if out.Lineup == nil {
			out.Lineup = lineup.Lineup{}
		}
		if scrapeFlags.trail {
			out.Trail = res.Trail
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}
