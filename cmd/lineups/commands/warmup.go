package commands

import (
	"github.com/spf13/cobra"
)

var warmupDate string

func init() {
	warmupCmd.Flags().StringVar(&warmupDate, "date", "", "Slate date as YYYY-MM-DD. Defaults to today in LINEUP_TIMEZONE.")
	rootCmd.AddCommand(warmupCmd)
}

var warmupCmd = &cobra.Command{
	Use:   "warmup [--date YYYY-MM-DD]",
	Short: "Scrapes both teams of every scheduled game so the lineup cache is filled.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		date, err := parseDateFlag(warmupDate, s.cfg.LineupLocation)
		if err != nil {
			return err
		}

		report, err := s.app.Warmup().Warmup(cmd.Context(), date)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), report)
	},
}
