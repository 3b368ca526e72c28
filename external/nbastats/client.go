package nbastats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/domain/team"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
	"github.com/riskibarqy/nba-lineups/internal/platform/resilience"
	"github.com/riskibarqy/nba-lineups/internal/usecase"
)

const (
	defaultBaseURL  = "https://stats.nba.com/stats"
	defaultLeagueID = "00"
	maxResponseSize = 6 << 20
)

var errStatsTransient = crerr.New("nba stats transient failure")

// requestHeaders mimic a browser on nba.com; the stats host drops requests
// without them.
var requestHeaders = map[string]string{
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Origin":             "https://www.nba.com",
	"Referer":            "https://www.nba.com/stats/",
	"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Cache-Control":      "no-cache",
	"Pragma":             "no-cache",
	"x-nba-stats-origin": "stats",
	"x-nba-stats-token":  "true",
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	LeagueID       string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads roster and scoreboard metadata from stats.nba.com.
type Client struct {
	httpClient *http.Client
	baseURL    string
	leagueID   string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
}

// instrumentedClient copies base so the caller's client is left untouched,
// then wraps its transport in otelhttp unless it already is.
func instrumentedClient(base *http.Client, timeout time.Duration) *http.Client {
	client := &http.Client{Timeout: timeout}
	if base != nil {
		copied := *base
		client = &copied
	}
	if client.Timeout <= 0 {
		client.Timeout = 15 * time.Second
	}

	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if _, ok := transport.(*otelhttp.Transport); !ok {
		transport = otelhttp.NewTransport(transport)
	}
	client.Transport = transport
	return client
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := instrumentedClient(cfg.HTTPClient, cfg.Timeout)

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	leagueID := strings.TrimSpace(cfg.LeagueID)
	if leagueID == "" {
		leagueID = defaultLeagueID
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		leagueID:   leagueID,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger.Named("nbastats"),
		breaker:    resilience.NewCircuitBreakerFromConfig("nbastats", cfg.CircuitBreaker),
	}
}

// FetchTeamRoster returns the players listed for a team in the given season.
func (c *Client) FetchTeamRoster(ctx context.Context, teamAbbr string, seasonStartYear int) ([]lineup.Player, error) {
	t, ok := team.Lookup(teamAbbr)
	if !ok {
		return nil, fmt.Errorf("%w: unknown team %q", usecase.ErrInvalidInput, teamAbbr)
	}

	query := url.Values{}
	query.Set("LeagueID", c.leagueID)
	query.Set("Season", lineup.SeasonLabel(seasonStartYear))
	query.Set("TeamID", strconv.FormatInt(t.StatsID, 10))

	var payload envelope
	if err := c.doJSON(ctx, "/commonteamroster", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch roster team=%s season=%d: %w", t.Abbr, seasonStartYear, err)
	}

	rs, ok := payload.set("CommonTeamRoster")
	if !ok {
		if len(payload.ResultSets) == 0 {
			return nil, nil
		}
		rs = payload.ResultSets[0]
	}

	playerIdx := rs.column("PLAYER")
	firstIdx := rs.column("PLAYER_FIRST_NAME", "FIRST_NAME")
	lastIdx := rs.column("PLAYER_LAST_NAME", "LAST_NAME")
	if playerIdx < 0 && lastIdx < 0 {
		return nil, crerr.Newf("roster result set has no player column: headers=%v", rs.Headers)
	}

	players := make([]lineup.Player, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		var p lineup.Player
		if lastIdx >= 0 {
			p = lineup.Player{FirstName: cellString(row, firstIdx), LastName: cellString(row, lastIdx)}
		}
		if p.LastName == "" {
			first, last := splitPlayerName(cellString(row, playerIdx))
			p = lineup.Player{FirstName: first, LastName: last}
		}
		if p.FullName() == "" {
			continue
		}
		players = append(players, p)
	}
	return players, nil
}

// FetchGames returns the games scheduled on date from the scoreboard GameHeader set.
func (c *Client) FetchGames(ctx context.Context, date time.Time) ([]usecase.ExternalGame, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("GameDate", date.Format(time.DateOnly))
	query.Set("LeagueID", c.leagueID)
	query.Set("DayOffset", "0")

	var payload envelope
	if err := c.doJSON(ctx, "/scoreboardv2", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch scoreboard date=%s: %w", date.Format(time.DateOnly), err)
	}

	rs, ok := payload.set("GameHeader")
	if !ok {
		return nil, nil
	}

	gameIdx := rs.column("GAME_ID")
	statusIdx := rs.column("GAME_STATUS_TEXT")
	homeIdx := rs.column("HOME_TEAM_ID")
	awayIdx := rs.column("VISITOR_TEAM_ID")
	if homeIdx < 0 || awayIdx < 0 {
		return nil, crerr.Newf("scoreboard game header missing team columns: headers=%v", rs.Headers)
	}

	games := make([]usecase.ExternalGame, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		home, homeOK := team.LookupStatsID(cellInt64(row, homeIdx))
		away, awayOK := team.LookupStatsID(cellInt64(row, awayIdx))
		if !homeOK || !awayOK {
			c.logger.DebugContext(ctx, "skip scoreboard row with non-league team",
				"game_id", cellString(row, gameIdx),
				"home_team_id", cellInt64(row, homeIdx),
				"visitor_team_id", cellInt64(row, awayIdx),
			)
			continue
		}
		games = append(games, usecase.ExternalGame{
			GameID:   cellString(row, gameIdx),
			Date:     date,
			HomeTeam: home.Abbr,
			AwayTeam: away.Abbr,
			Status:   cellString(row, statusIdx),
		})
	}
	return games, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.DoContext(ctx, fullURL, func() (any, error) {
		var raw []byte
		breakerErr := c.breaker.Execute(func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isStatsCircuitFailure)
		if crerr.Is(breakerErr, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "nba stats circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: stats provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return raw, breakerErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode stats payload")
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		for key, value := range requestHeaders {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Wrapf(errStatsTransient, "send request: %v", err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(errStatsTransient, "read response body: %v", readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Wrapf(errStatsTransient, "provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("provider request failed")
	}
	c.logger.WarnContext(ctx, "nba stats request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isStatsCircuitFailure(err error) bool {
	return crerr.Is(err, errStatsTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
