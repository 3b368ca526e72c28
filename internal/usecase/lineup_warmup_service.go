package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/domain/team"
	idgen "github.com/riskibarqy/nba-lineups/internal/platform/id"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

// Scraper is the single-team pipeline driven by the warm-up service.
type Scraper interface {
	Scrape(ctx context.Context, req lineup.Request) (lineup.Result, error)
}

type WarmupTaskResult struct {
	Team       string         `json:"team"`
	Opponent   string         `json:"opponent"`
	Outcome    lineup.Outcome `json:"outcome"`
	Reason     string         `json:"reason,omitempty"`
	DurationMs int64          `json:"durationMs"`
}

type WarmupReport struct {
	RunID       string             `json:"runId"`
	Date        string             `json:"date"`
	Games       int                `json:"games"`
	CachedCount int                `json:"cachedCount"`
	FilledCount int                `json:"filledCount"`
	FailedCount int                `json:"failedCount"`
	Tasks       []WarmupTaskResult `json:"tasks"`
	DurationMs  int64              `json:"durationMs"`
}

// LineupWarmupService scrapes both teams of every game scheduled on a date so
// the cache is filled before clients ask.
type LineupWarmupService struct {
	schedule ScheduleProvider
	scraper  Scraper
	workers  int
	ids      idgen.Generator
	logger   *logging.Logger
}

func NewLineupWarmupService(schedule ScheduleProvider, scraper Scraper, workers int, logger *logging.Logger) *LineupWarmupService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	return &LineupWarmupService{
		schedule: schedule,
		scraper:  scraper,
		workers:  workers,
		ids:      idgen.NewRandomGenerator("warmup"),
		logger:   logger.Named("warmup"),
	}
}

type warmupTask struct {
	team     string
	opponent string
}

func (s *LineupWarmupService) Warmup(ctx context.Context, date time.Time) (WarmupReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupWarmupService.Warmup", requestAttributes("*", date)...)
	defer span.End()

	if date.IsZero() {
		return WarmupReport{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if s.schedule == nil {
		return WarmupReport{}, fmt.Errorf("%w: schedule provider not configured", ErrDependencyUnavailable)
	}

	start := time.Now()
	report := WarmupReport{Date: date.Format(time.DateOnly)}
	logger := s.logger
	if runID, err := s.ids.NewID(); err == nil {
		report.RunID = runID
		logger = logger.With("run_id", runID)
	}

	games, err := s.schedule.FetchGames(ctx, date)
	if err != nil {
		return WarmupReport{}, fmt.Errorf("%w: fetch schedule: %v", ErrDependencyUnavailable, err)
	}

	tasks := make([]warmupTask, 0, len(games)*2)
	for _, game := range games {
		if !team.IsLeagueTeam(game.HomeTeam) || !team.IsLeagueTeam(game.AwayTeam) {
			logger.WarnContext(ctx, "skipping game with unknown team", "game_id", game.GameID,
				"home", game.HomeTeam, "away", game.AwayTeam)
			continue
		}
		report.Games++
		tasks = append(tasks,
			warmupTask{team: game.AwayTeam, opponent: game.HomeTeam},
			warmupTask{team: game.HomeTeam, opponent: game.AwayTeam},
		)
	}
	if len(tasks) == 0 {
		report.Tasks = []WarmupTaskResult{}
		report.DurationMs = time.Since(start).Milliseconds()
		return report, nil
	}

	results := make(chan WarmupTaskResult, len(tasks))
	var cachedCount, filledCount, failedCount atomic.Int32

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return WarmupReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		workers   sync.WaitGroup
		submitErr error
	)
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			taskStart := time.Now()
			row := WarmupTaskResult{Team: task.team, Opponent: task.opponent}
			res, err := s.scraper.Scrape(ctx, lineup.Request{Date: date, Team: task.team, Opponent: task.opponent})
			if err != nil {
				row.Outcome = lineup.OutcomeInternal
				row.Reason = err.Error()
			} else {
				row.Outcome = res.Outcome
				row.Reason = res.Reason
			}
			row.DurationMs = time.Since(taskStart).Milliseconds()

			switch row.Outcome {
			case lineup.OutcomeCached:
				cachedCount.Add(1)
			case lineup.OutcomeOK, lineup.OutcomeAmbiguous:
				filledCount.Add(1)
			default:
				failedCount.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			submitErr = fmt.Errorf("submit task to worker pool: %w", err)
			break
		}
	}

	workers.Wait()
	close(results)
	if submitErr != nil {
		return WarmupReport{}, submitErr
	}

	for row := range results {
		report.Tasks = append(report.Tasks, row)
	}
	sort.SliceStable(report.Tasks, func(i, j int) bool {
		return report.Tasks[i].Team < report.Tasks[j].Team
	})

	report.CachedCount = int(cachedCount.Load())
	report.FilledCount = int(filledCount.Load())
	report.FailedCount = int(failedCount.Load())
	report.DurationMs = time.Since(start).Milliseconds()

	logger.InfoContext(ctx, "lineup warmup finished",
		"date", report.Date,
		"games", report.Games,
		"filled", report.FilledCount,
		"cached", report.CachedCount,
		"failed", report.FailedCount,
	)
	return report, nil
}
