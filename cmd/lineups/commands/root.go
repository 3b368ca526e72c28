package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/nba-lineups/internal/app"
	"github.com/riskibarqy/nba-lineups/internal/config"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "lineups",
	Short:         "lineups extracts NBA starting lineups and manages the lineup cache.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading configuration.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type session struct {
	cfg    config.Config
	app    *app.App
	logger *logging.Logger
}

// openSession loads configuration and wires the lineup services. Logs go to
// stderr so command output on stdout stays machine readable.
func openSession(cmd *cobra.Command) (*session, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: logging.FormatConsole, Output: cmd.ErrOrStderr()})
	logging.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, app: a, logger: logger}, nil
}

func (s *session) Close() {
	if err := s.app.Close(); err != nil {
		s.logger.Warn("close app", "error", err)
	}
	_ = s.logger.Sync()
}

// parseDateFlag reads a YYYY-MM-DD flag; empty means today in loc.
func parseDateFlag(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		if loc == nil {
			loc = time.UTC
		}
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", raw)
	}
	return date, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
