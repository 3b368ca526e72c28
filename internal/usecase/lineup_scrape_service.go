package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/domain/team"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

const (
	StageCache    = "cache"
	StagePipeline = "pipeline"
)

// CacheKey is lineup:<TEAM>:<YYYY-MM-DD>:<source>.
func CacheKey(teamAbbr string, date time.Time, source string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("lineup:")
	_, _ = buf.WriteString(team.Normalize(teamAbbr))
	_ = buf.WriteByte(':')
	buf.B = date.AppendFormat(buf.B, time.DateOnly)
	_ = buf.WriteByte(':')
	_, _ = buf.WriteString(source)
	return buf.String()
}

type LineupScrapeService struct {
	cache     lineup.Repository
	rosters   *RosterResolver
	opponents *OpponentResolver
	fetcher   PageFetcher
	parser    LineupPageParser
	cacheTTL  time.Duration
	logger    *logging.Logger
}

func NewLineupScrapeService(
	cache lineup.Repository,
	rosters *RosterResolver,
	opponents *OpponentResolver,
	fetcher PageFetcher,
	parser LineupPageParser,
	cacheTTL time.Duration,
	logger *logging.Logger,
) *LineupScrapeService {
	if logger == nil {
		logger = logging.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = lineup.CacheTTL
	}
	return &LineupScrapeService{
		cache:     cache,
		rosters:   rosters,
		opponents: opponents,
		fetcher:   fetcher,
		parser:    parser,
		cacheTTL:  cacheTTL,
		logger:    logger.Named("scrape"),
	}
}

// Scrape runs the extraction pipeline for one team and date. Only invalid
// input is returned as an error; every other failure is a typed Result with
// an empty lineup and the decision trail.
func (s *LineupScrapeService) Scrape(ctx context.Context, req lineup.Request) (result lineup.Result, err error) {
	t, ok := team.Lookup(req.Team)
	if !ok {
		return lineup.Result{}, fmt.Errorf("%w: unknown team %q", ErrInvalidInput, req.Team)
	}
	if req.Date.IsZero() {
		return lineup.Result{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	req.Team = t.Abbr
	req.Opponent = team.Normalize(req.Opponent)
	day := req.Date.Format(time.DateOnly)

	ctx, span := startUsecaseSpan(ctx, "usecase.LineupScrapeService.Scrape", requestAttributes(req.Team, req.Date)...)

	trail := lineup.NewTrail()
	logger := s.logger.With("team", req.Team, "date", day)
	trail.Observe(func(event lineup.TrailEvent) {
		logger.DebugContext(ctx, event.Message, "stage", event.Stage, "fields", event.Fields)
	})

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorContext(ctx, "lineup pipeline panicked", "panic", fmt.Sprint(recovered), "stack", string(debug.Stack()))
			trail.Add(StagePipeline, "internal failure", "panic", fmt.Sprint(recovered))
			result = s.finish(req, lineup.OutcomeInternal, "internal failure", trail)
			err = nil
		}
		endWithOutcome(span, result)
	}()

	return s.run(ctx, req, trail, logger), nil
}

func (s *LineupScrapeService) run(ctx context.Context, req lineup.Request, trail *lineup.Trail, logger *logging.Logger) lineup.Result {
	key := CacheKey(req.Team, req.Date, s.fetcher.Source())

	if !req.BypassCache {
		cached, hit, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.WarnContext(ctx, "lineup cache read failed, treating as miss", "key", key, "error", err)
			trail.Add(StageCache, "cache read failed", "error", err.Error())
		case hit && cached.Complete():
			trail.Add(StageCache, "cache hit", "key", key)
			res := s.finish(req, lineup.OutcomeCached, "", trail)
			res.Lineup = cached
			return res
		default:
			trail.Add(StageCache, "cache miss", "key", key)
		}
	} else {
		trail.Add(StageCache, "cache bypassed", "key", key)
	}

	if !s.fetcher.Serves(req.Date) {
		trail.Add(StagePipeline, "date outside fetch policy, skipping lookups")
		return s.finish(req, lineup.OutcomeSkipped, "date not served by fetch policy", trail)
	}

	roster, matchup := s.resolveContext(ctx, req, trail)
	opponent := req.Opponent
	if opponent == "" {
		opponent = matchup.Opponent
	}

	markup, err := s.fetcher.Fetch(ctx, req.Date, req.Team, trail)
	switch {
	case errors.Is(err, ErrOutsideFetchPolicy):
		return s.finish(req, lineup.OutcomeSkipped, "date not served by fetch policy", trail)
	case err != nil:
		logger.WarnContext(ctx, "lineup page fetch failed", "error", err)
		return s.finish(req, lineup.OutcomeUpstreamUnavailable, err.Error(), trail)
	case strings.TrimSpace(markup) == "":
		return s.finish(req, lineup.OutcomeUpstreamUnavailable, "no usable page snapshot", trail)
	}

	box, found := s.parser.Locate(markup, req.Team, opponent, trail)
	if !found {
		return s.finish(req, lineup.OutcomeNotFound, "no matchup for team on page", trail)
	}

	ext, err := s.parser.Extract(markup, box, trail)
	if err != nil {
		res := s.finish(req, lineup.OutcomeNotFound, err.Error(), trail)
		res.Box = &box
		return res
	}

	vote := lineup.ChooseColumn(ext.Candidates, roster, box.TargetIsHome, trail)
	assembled := lineup.Assemble(ext, vote.Column, roster, box.TargetIsHome, trail)

	res := lineup.Result{Box: &box, Column: &vote.Column}
	if !assembled.Complete() {
		res = s.fill(res, req, lineup.OutcomeNotFound, fmt.Sprintf("only %d of %d positions recovered", len(assembled), lineup.LineupSize), trail)
		return res
	}

	verdict := lineup.Validate(assembled, roster, trail)
	res.MatchCount = verdict.Matches
	if !verdict.Accepted {
		logger.WarnContext(ctx, "lineup rejected by roster validation", "matches", verdict.Matches, "matchup", box.Matchup)
		return s.fill(res, req, lineup.OutcomeRejected, verdict.Reason, trail)
	}

	outcome := lineup.OutcomeOK
	switch {
	case verdict.Skipped:
		logger.WarnContext(ctx, "lineup cached without roster validation", "matchup", box.Matchup)
		outcome = lineup.OutcomeAmbiguous
	case verdict.Reason != "":
		logger.WarnContext(ctx, "lineup accepted with weak roster agreement", "matches", verdict.Matches, "matchup", box.Matchup)
		outcome = lineup.OutcomeAmbiguous
	}

	if err := s.cache.Set(ctx, key, lineup.CacheKind, assembled, s.cacheTTL); err != nil {
		logger.WarnContext(ctx, "lineup cache write failed", "key", key, "error", err)
		trail.Add(StageCache, "cache write failed", "error", err.Error())
	} else {
		trail.Add(StageCache, "lineup cached", "key", key, "ttl", s.cacheTTL.String())
	}

	res = s.fill(res, req, outcome, verdict.Reason, trail)
	res.Lineup = assembled
	return res
}

// resolveContext fetches the roster and the opponent concurrently, skipping
// whichever the request already carries.
func (s *LineupScrapeService) resolveContext(ctx context.Context, req lineup.Request, trail *lineup.Trail) (*lineup.RosterSet, lineup.Matchup) {
	roster := req.Roster
	var matchup lineup.Matchup

	var wg conc.WaitGroup
	if roster == nil {
		wg.Go(func() {
			roster = s.rosters.Resolve(ctx, req.Team, lineup.SeasonStartYear(req.Date), trail)
		})
	} else {
		trail.Add(StageRoster, "using roster from request", "variants", roster.Len())
	}
	if req.Opponent == "" {
		wg.Go(func() {
			matchup = s.opponents.Resolve(ctx, req.Date, req.Team, trail)
		})
	} else {
		trail.Add(StageOpponent, "using opponent from request", "opponent", req.Opponent)
	}
	wg.Wait()

	return roster, matchup
}

func (s *LineupScrapeService) finish(req lineup.Request, outcome lineup.Outcome, reason string, trail *lineup.Trail) lineup.Result {
	return s.fill(lineup.Result{}, req, outcome, reason, trail)
}

func (s *LineupScrapeService) fill(res lineup.Result, req lineup.Request, outcome lineup.Outcome, reason string, trail *lineup.Trail) lineup.Result {
	res.Team = req.Team
	res.Date = req.Date
	res.Outcome = outcome
	res.Reason = reason
	if res.Lineup == nil {
		res.Lineup = lineup.Lineup{}
	}
	trail.Add(StagePipeline, "scrape finished", "outcome", string(outcome), "reason", reason)
	res.Trail = trail.Events()
	return res
}
