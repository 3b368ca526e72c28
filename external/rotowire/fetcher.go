package rotowire

import (
	"context"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/domain/team"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
	"github.com/riskibarqy/nba-lineups/internal/platform/resilience"
	"github.com/riskibarqy/nba-lineups/internal/usecase"
)

const (
	StageFetch = "fetch"
	SourceName = "rotowire"

	DefaultPageURL          = "https://www.rotowire.com/basketball/nba-lineups.php"
	DefaultUserAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultMinSnapshotBytes = 5000
	maxPageBytes            = 8 << 20
)

// Policy decides which dates the fetcher serves.
type Policy string

const (
	// PolicyCurrent fetches only today's page.
	PolicyCurrent Policy = "current"
	// PolicyHistorical also serves past dates, navigating back with a browser.
	PolicyHistorical Policy = "historical"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyCurrent:
		return PolicyCurrent, nil
	case PolicyHistorical:
		return PolicyHistorical, nil
	default:
		return "", fmt.Errorf("unknown fetch policy %q", raw)
	}
}

var (
	errPageTransient   = crerr.New("lineup page transient failure")
	errInvalidSnapshot = crerr.New("lineup page snapshot failed validation")
)

// Navigator produces a rendered page after stepping back daysBack days.
type Navigator interface {
	Snapshot(ctx context.Context, pageURL string, daysBack int) (string, error)
}

type FetcherConfig struct {
	PageURL          string
	Policy           Policy
	Location         *time.Location
	Timeout          time.Duration
	MinInterval      time.Duration
	RecentWindow     int
	MinSnapshotBytes int
	UserAgent        string
	Retry            resilience.RetryConfig
	CircuitBreaker   resilience.CircuitBreakerConfig
	HTTPClient       *fasthttp.Client
	Navigator        Navigator
	Logger           *logging.Logger
}

// Fetcher obtains the lineup page. All attempts, direct or browser, share
// one limiter so consecutive requests are spaced out.
type Fetcher struct {
	pageURL      string
	policy       Policy
	location     *time.Location
	timeout      time.Duration
	recentWindow int
	minBytes     int
	userAgent    string
	retry        resilience.RetryConfig
	client       *fasthttp.Client
	navigator    Navigator
	limiter      *rate.Limiter
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight
	logger       *logging.Logger
	now          func() time.Time
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	pageURL := strings.TrimSpace(cfg.PageURL)
	if pageURL == "" {
		pageURL = DefaultPageURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	minBytes := cfg.MinSnapshotBytes
	if minBytes <= 0 {
		minBytes = DefaultMinSnapshotBytes
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	retry := cfg.Retry
	if retry.Attempts < 1 {
		retry = resilience.RetryConfig{Attempts: 3, Backoff: []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second}}
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &fasthttp.Client{
			Name:                     userAgent,
			MaxResponseBodySize:      maxPageBytes,
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			NoDefaultUserAgentHeader: true,
		}
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	policy := cfg.Policy
	if policy == "" {
		policy = PolicyCurrent
	}

	return &Fetcher{
		pageURL:      pageURL,
		policy:       policy,
		location:     location,
		timeout:      timeout,
		recentWindow: max(cfg.RecentWindow, 0),
		minBytes:     minBytes,
		userAgent:    userAgent,
		retry:        retry,
		client:       client,
		navigator:    cfg.Navigator,
		limiter:      rate.NewLimiter(limit, 1),
		breaker:      resilience.NewCircuitBreakerFromConfig("lineup-page", cfg.CircuitBreaker),
		logger:       logger.Named("fetcher"),
		now:          time.Now,
	}
}

func (f *Fetcher) Source() string {
	return SourceName
}

// DaysBack is the number of whole calendar days between today and date in
// the fetcher's timezone. Future dates are negative.
func (f *Fetcher) DaysBack(date time.Time) int {
	today := civilDay(f.now().In(f.location))
	target := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(target).Hours() / 24)
}

// Serves reports whether the policy covers date. It never touches the network.
func (f *Fetcher) Serves(date time.Time) bool {
	return f.policyRefusal(f.DaysBack(date)) == ""
}

func (f *Fetcher) policyRefusal(daysBack int) string {
	switch f.policy {
	case PolicyHistorical:
		if daysBack < 0 {
			return "future date not served"
		}
	default:
		if daysBack != 0 {
			return "only today's page is served"
		}
	}
	return ""
}

func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Fetch returns page markup for date. An empty string with a nil error means
// no usable snapshot was obtained.
func (f *Fetcher) Fetch(ctx context.Context, date time.Time, teamAbbr string, trail *lineup.Trail) (string, error) {
	daysBack := f.DaysBack(date)
	day := date.Format(time.DateOnly)

	if refusal := f.policyRefusal(daysBack); refusal != "" {
		trail.Add(StageFetch, refusal, "policy", string(f.policy), "days_back", daysBack)
		return "", fmt.Errorf("%w: %s: %s", usecase.ErrOutsideFetchPolicy, day, refusal)
	}

	if daysBack <= f.recentWindow {
		markup, err := f.fetchDirect(ctx, day)
		if err != nil {
			trail.Add(StageFetch, "direct request failed", "error", err.Error())
			f.logger.WarnContext(ctx, "direct lineup page request failed", "date", day, "error", err)
		} else if reason := f.rejectReason(markup, teamAbbr); reason == "" {
			trail.Add(StageFetch, "direct snapshot accepted", "bytes", len(markup))
			return markup, nil
		} else {
			trail.Add(StageFetch, "direct snapshot rejected", "reason", reason, "bytes", len(markup))
		}
		if f.policy != PolicyHistorical {
			return "", nil
		}
	}

	return f.fetchWithBrowser(ctx, day, daysBack, teamAbbr, trail), nil
}

func (f *Fetcher) fetchDirect(ctx context.Context, day string) (string, error) {
	out, err, shared := f.flight.DoContext(ctx, "direct:"+day, func() (any, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", err
		}
		var body string
		err := f.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = f.get(ctx)
			return reqErr
		}, isPageCircuitFailure)
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			return "", fmt.Errorf("%w: lineup page is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return body, err
	})
	if err != nil {
		return "", err
	}
	if shared {
		f.logger.DebugContext(ctx, "shared in-flight lineup page request", "date", day)
	}
	markup, _ := out.(string)
	return markup, nil
}

func (f *Fetcher) get(ctx context.Context) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.pageURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	deadline := time.Now().Add(f.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		return "", crerr.Wrapf(errPageTransient, "send request: %v", err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return string(resp.Body()), nil
	case status == fasthttp.StatusTooManyRequests || status >= 500:
		return "", crerr.Wrapf(errPageTransient, "page status=%d", status)
	default:
		return "", crerr.Newf("page status=%d", status)
	}
}

func (f *Fetcher) fetchWithBrowser(ctx context.Context, day string, daysBack int, teamAbbr string, trail *lineup.Trail) string {
	if f.navigator == nil {
		trail.Add(StageFetch, "browser navigation unavailable", "days_back", daysBack)
		return ""
	}

	var markup string
	err := resilience.Retry(ctx, f.retry, func(ctx context.Context, attempt int) error {
		if err := f.limiter.Wait(ctx); err != nil {
			return resilience.Permanent(err)
		}
		snapshot, err := f.navigator.Snapshot(ctx, f.pageURL, daysBack)
		if err != nil {
			trail.Add(StageFetch, "browser attempt failed", "attempt", attempt+1, "error", err.Error())
			return err
		}
		if reason := f.rejectReason(snapshot, teamAbbr); reason != "" {
			trail.Add(StageFetch, "browser snapshot rejected", "attempt", attempt+1, "reason", reason, "bytes", len(snapshot))
			return crerr.Wrap(errInvalidSnapshot, reason)
		}
		markup = snapshot
		trail.Add(StageFetch, "browser snapshot accepted", "attempt", attempt+1, "bytes", len(snapshot), "days_back", daysBack)
		return nil
	})
	if err != nil {
		f.logger.WarnContext(ctx, "historical lineup page unavailable", "date", day, "days_back", daysBack, "error", err)
		trail.Add(StageFetch, "no usable snapshot", "date", day)
		return ""
	}
	return markup
}

// rejectReason is empty when the snapshot is long enough and mentions the team.
func (f *Fetcher) rejectReason(markup, teamAbbr string) string {
	if len(markup) < f.minBytes {
		return fmt.Sprintf("snapshot shorter than %d bytes", f.minBytes)
	}
	abbr := team.Normalize(teamAbbr)
	if !strings.Contains(markup, abbr) && !strings.Contains(markup, ToSite(abbr)) {
		return "snapshot does not mention " + abbr
	}
	return ""
}

func isPageCircuitFailure(err error) bool {
	return crerr.Is(err, errPageTransient)
}
