package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
	"github.com/riskibarqy/nba-lineups/internal/usecase"
)

// WarmupRunner fills the lineup cache for every game on a date.
type WarmupRunner interface {
	Warmup(ctx context.Context, date time.Time) (usecase.WarmupReport, error)
}

type Handler struct {
	scraper   usecase.Scraper
	warmup    WarmupRunner
	location  *time.Location
	now       func() time.Time
	logger    *logging.Logger
	validator *validator.Validate
}

// NewHandler builds the lineup handler. location decides which calendar day
// "today" is when a request omits the date.
func NewHandler(scraper usecase.Scraper, warmup WarmupRunner, location *time.Location, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}

	return &Handler{
		scraper:   scraper,
		warmup:    warmup,
		location:  location,
		now:       time.Now,
		logger:    logger.Named("httpapi"),
		validator: validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetStartingLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStartingLineup")
	defer span.End()

	if h.scraper == nil {
		writeError(ctx, w, fmt.Errorf("%w: lineup scraper is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	query := r.URL.Query()
	req := lineupQuery{
		Team:     strings.ToUpper(strings.TrimSpace(r.PathValue("team"))),
		Date:     strings.TrimSpace(query.Get("date")),
		Opponent: strings.ToUpper(strings.TrimSpace(query.Get("opponent"))),
	}
	var err error
	if req.BypassCache, err = parseBoolQuery(query.Get("bypass_cache")); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: bypass_cache: %v", usecase.ErrInvalidInput, err))
		return
	}
	if req.Debug, err = parseBoolQuery(query.Get("debug")); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: debug: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	date, err := h.resolveDate(req.Date)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scraper.Scrape(ctx, lineup.Request{
		Date:        date,
		Team:        req.Team,
		BypassCache: req.BypassCache,
		Opponent:    req.Opponent,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "scrape lineup failed", "team", req.Team, "date", date.Format(time.DateOnly), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(result, req.Debug))
}

func (h *Handler) RunWarmup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWarmup")
	defer span.End()

	if h.warmup == nil {
		writeError(ctx, w, fmt.Errorf("%w: warmup service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req := warmupQuery{Date: strings.TrimSpace(r.URL.Query().Get("date"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	date, err := h.resolveDate(req.Date)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.warmup.Warmup(ctx, date)
	if err != nil {
		h.logger.WarnContext(ctx, "lineup warmup failed", "date", date.Format(time.DateOnly), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

// resolveDate returns the civil day named by raw, or today in the handler's
// location when raw is empty.
func (h *Handler) resolveDate(raw string) (time.Time, error) {
	if raw == "" {
		now := h.now().In(h.location)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", usecase.ErrInvalidInput)
	}
	return date, nil
}

func parseBoolQuery(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
