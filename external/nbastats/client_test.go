package nbastats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/platform/resilience"
	"github.com/riskibarqy/nba-lineups/internal/usecase"
)

const rosterPayload = `{
  "resource": "commonteamroster",
  "resultSets": [
    {
      "name": "CommonTeamRoster",
      "headers": ["TeamID", "SEASON", "PLAYER", "NUM", "POSITION", "PLAYER_ID"],
      "rowSet": [
        [1610612749, "2024", "Damian Lillard", "0", "G", 203081],
        [1610612749, "2024", "Gary Trent Jr.", "5", "G", 1629018],
        [1610612749, "2024", "Giannis Antetokounmpo", "34", "F", 203507],
        [1610612749, "2024", null, "", "", 0]
      ]
    },
    {"name": "Coaches", "headers": ["COACH_NAME"], "rowSet": [["Doc Rivers"]]}
  ]
}`

const scoreboardPayload = `{
  "resource": "scoreboard",
  "resultSets": [
    {
      "name": "GameHeader",
      "headers": ["GAME_DATE_EST", "GAME_ID", "GAME_STATUS_TEXT", "HOME_TEAM_ID", "VISITOR_TEAM_ID"],
      "rowSet": [
        ["2025-01-15T00:00:00", "0022400567", "7:30 pm ET", 1610612748, 1610612749],
        ["2025-01-15T00:00:00", "0022400568", "8:00 pm ET", 1610612752, 1610612738],
        ["2025-01-15T00:00:00", "0012400001", "Final", 1610612748, 15019]
      ]
    },
    {"name": "LineScore", "headers": [], "rowSet": []}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		MaxRetries: retries,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
}

func TestClient_FetchTeamRoster(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/commonteamroster", r.URL.Path)
		require.Equal(t, "1610612749", r.URL.Query().Get("TeamID"))
		require.Equal(t, "2024-25", r.URL.Query().Get("Season"))
		require.Equal(t, "00", r.URL.Query().Get("LeagueID"))
		require.Equal(t, "https://www.nba.com/stats/", r.Header.Get("Referer"))
		require.Equal(t, "stats", r.Header.Get("x-nba-stats-origin"))
		_, _ = w.Write([]byte(rosterPayload))
	}, 0)

	players, err := client.FetchTeamRoster(context.Background(), "mil", 2024)
	require.NoError(t, err)
	require.Equal(t, []lineup.Player{
		{FirstName: "Damian", LastName: "Lillard"},
		{FirstName: "Gary", LastName: "Trent Jr."},
		{FirstName: "Giannis", LastName: "Antetokounmpo"},
	}, players)

	roster := lineup.NewRosterSet(players)
	require.True(t, roster.Contains("G. Trent Jr."))
}

func TestClient_FetchTeamRoster_UnknownTeam(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatalf("no request expected")
	}, 0)

	_, err := client.FetchTeamRoster(context.Background(), "GS", 2024)
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}

func TestClient_FetchGames(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/scoreboardv2", r.URL.Path)
		require.Equal(t, "2025-01-15", r.URL.Query().Get("GameDate"))
		_, _ = w.Write([]byte(scoreboardPayload))
	}, 0)

	games, err := client.FetchGames(context.Background(), time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, games, 2)
	require.Equal(t, "MIA", games[0].HomeTeam)
	require.Equal(t, "MIL", games[0].AwayTeam)
	require.Equal(t, "0022400567", games[0].GameID)
	require.Equal(t, "NYK", games[1].HomeTeam)
	require.Equal(t, "BOS", games[1].AwayTeam)
}

func TestClient_RetriesTransientStatusThenOpensBreaker(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, 1)

	ctx := context.Background()
	_, err := client.FetchGames(ctx, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	require.True(t, isStatsCircuitFailure(err))
	require.EqualValues(t, 2, calls.Load())

	_, err = client.FetchGames(ctx, time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC))
	require.True(t, errors.Is(err, usecase.ErrDependencyUnavailable))
	require.EqualValues(t, 2, calls.Load())
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad season"}`))
	}, 3)

	_, err := client.FetchTeamRoster(context.Background(), "MIA", 2024)
	require.Error(t, err)
	require.False(t, isStatsCircuitFailure(err))
	require.EqualValues(t, 1, calls.Load())
	require.Equal(t, resilience.CircuitStateClosed, client.breaker.State())
}

func TestSplitPlayerName(t *testing.T) {
	first, last := splitPlayerName("  Karl-Anthony   Towns ")
	require.Equal(t, "Karl-Anthony", first)
	require.Equal(t, "Towns", last)

	first, last = splitPlayerName("Nene")
	require.Empty(t, first)
	require.Equal(t, "Nene", last)
}

func TestNewClient_InstrumentsTransport(t *testing.T) {
	t.Run("default client", func(t *testing.T) {
		c := NewClient(ClientConfig{Timeout: 3 * time.Second})
		require.IsType(t, &otelhttp.Transport{}, c.httpClient.Transport)
		require.Equal(t, 3*time.Second, c.httpClient.Timeout)
	})

	t.Run("supplied client is wrapped, not mutated", func(t *testing.T) {
		base := &http.Client{Timeout: time.Second}
		c := NewClient(ClientConfig{HTTPClient: base})
		require.IsType(t, &otelhttp.Transport{}, c.httpClient.Transport)
		require.Nil(t, base.Transport)
		require.Equal(t, time.Second, c.httpClient.Timeout)
	})

	t.Run("already instrumented is kept", func(t *testing.T) {
		transport := otelhttp.NewTransport(http.DefaultTransport)
		c := NewClient(ClientConfig{HTTPClient: &http.Client{Transport: transport}})
		require.Same(t, transport, c.httpClient.Transport)
	})
}
