package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-finder/internal/config"
	"github.com/yourusername/value-finder/internal/models"
)

const oddsPayload = `[
  {
    "id": "ev1",
    "sport_key": "soccer_spain_la_liga",
    "commence_time": "2025-03-01T20:00:00Z",
    "home_team": "Atletico Madrid",
    "away_team": "Sevilla",
    "bookmakers": [
      {
        "key": "pinnacle",
        "title": "Pinnacle",
        "last_update": "2025-02-28T10:00:00Z",
        "markets": [
          {"key": "h2h", "outcomes": [
            {"name": "Atletico Madrid", "price": 1.8},
            {"name": "Sevilla", "price": 4.6},
            {"name": "Draw", "price": 3.5}
          ]},
          {"key": "totals", "outcomes": [
            {"name": "Over", "price": 2.1, "point": 2.5},
            {"name": "Under", "price": 1.75, "point": 2.5}
          ]}
        ]
      }
    ]
  }
]`

const footballDataPayload = `{
  "matches": [
    {"id": 1, "utcDate": "2024-08-15T17:00:00Z", "status": "FINISHED",
     "homeTeam": {"id": 78, "name": "Club Atlético de Madrid"}, "awayTeam": {"id": 559, "name": "Sevilla FC"},
     "score": {"fullTime": {"home": 2, "away": 1}}},
    {"id": 2, "utcDate": "2024-08-22T17:00:00Z", "status": "SCHEDULED",
     "homeTeam": {"id": 559, "name": "Sevilla FC"}, "awayTeam": {"id": 78, "name": "Club Atlético de Madrid"},
     "score": {"fullTime": {"home": null, "away": null}}}
  ]
}`

func fastClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 2 * time.Millisecond
	cfg.MaxRetries = 1
	cfg.RateLimit = 0
	return NewRateLimitedHTTPClient(cfg, nil)
}

func TestOddsAPIClientFetchOdds(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports/soccer_spain_la_liga/odds/", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(oddsPayload))
	}))
	defer server.Close()

	client := NewOddsAPIClient(fastClient(), OddsAPIConfig{
		BaseURL:    server.URL,
		APIKey:     "secret",
		Sport:      "soccer_spain_la_liga",
		Regions:    "eu",
		Markets:    []string{"h2h", "totals"},
		Bookmakers: []string{"pinnacle", "bet365"},
	}, nil)

	snapshot, err := client.FetchOdds(context.Background())
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "apiKey=secret")
	assert.Contains(t, gotQuery, "markets=h2h%2Ctotals")
	assert.Contains(t, gotQuery, "bookmakers=pinnacle%2Cbet365")

	require.Len(t, snapshot.Quotes, 5)
	first := snapshot.Quotes[0]
	assert.Equal(t, "ev1", first.MatchID)
	assert.Equal(t, "pinnacle", first.Bookmaker)
	assert.Equal(t, models.MarketH2H, first.MarketKey)
	assert.Equal(t, 1.8, first.Price)

	over := snapshot.Quotes[3]
	require.NotNil(t, over.Point)
	assert.Equal(t, 2.5, *over.Point)
	assert.Equal(t, "Over", over.Selection)
}

func TestOddsAPIClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"unauthorized", http.StatusUnauthorized, ErrCodeAuthenticationFailed},
		{"not found", http.StatusNotFound, ErrCodeNotFound},
		{"bad request", http.StatusBadRequest, ErrCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewOddsAPIClient(fastClient(), OddsAPIConfig{BaseURL: server.URL, APIKey: "k", Sport: "s", Regions: "eu"}, nil)
			_, err := client.FetchOdds(context.Background())
			require.Error(t, err)
			assert.True(t, IsDataSourceError(err, tt.code), err.Error())
		})
	}

	client := NewOddsAPIClient(fastClient(), OddsAPIConfig{Sport: "s"}, nil)
	_, err := client.FetchOdds(context.Background())
	assert.True(t, errors.Is(err, ErrAuthenticationFailed))
}

func TestRateLimitedHTTPClientRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := fastClient().Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRateLimitedHTTPClientCircuitBreaker(t *testing.T) {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 0
	cfg.CircuitBreakerMax = 2
	cfg.Timeout = 200 * time.Millisecond
	client := NewRateLimitedHTTPClient(cfg, nil)

	// nothing listens on this port
	url := "http://127.0.0.1:1/unreachable"
	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), url)
		require.Error(t, err)
	}
	assert.True(t, client.IsOpen())

	_, err := client.Get(context.Background(), url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}

func TestFootballDataClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token", r.Header.Get("X-Auth-Token"))
		assert.Equal(t, "/competitions/PD/matches", r.URL.Path)
		assert.Equal(t, "2024", r.URL.Query().Get("season"))
		_, _ = w.Write([]byte(footballDataPayload))
	}))
	defer server.Close()

	client := NewFootballDataClient(fastClient(), FootballDataConfig{
		BaseURL: server.URL, APIKey: "token", League: "PD", Season: 2024,
	}, nil)

	results, err := client.FetchResults(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1, "only finished matches are kept")
	assert.Equal(t, "Club Atlético de Madrid", results[0].HomeTeam)
	assert.Equal(t, 2, *results[0].HomeGoals)
	assert.Equal(t, 1, *results[0].AwayGoals)
}

func TestReadResultsCSV(t *testing.T) {
	input := strings.Join([]string{
		"date,home_team,away_team,home_score,away_score",
		"2024-08-15 17:00:00+00:00,Athletic Club,Getafe CF,1,1",
		"2024-08-16,Real Betis,Girona FC,1.0,1.0",
		"2024-08-17T19:30:00Z,Sevilla FC,Valencia CF,,",
		"not-a-date,Sevilla FC,Valencia CF,1,0",
		"2024-08-18,Sevilla FC,Sevilla FC,1,0",
		"2024-08-19,Sevilla FC,Valencia CF,1.5,0",
	}, "\n")

	results, rowErrs, err := ReadResultsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Len(t, rowErrs, 3)

	assert.Equal(t, time.Date(2024, 8, 15, 17, 0, 0, 0, time.UTC), results[0].Date)
	assert.Equal(t, 1, *results[1].HomeGoals)
	assert.False(t, results[2].Played())
}

func TestReadResultsCSVMissingColumn(t *testing.T) {
	_, _, err := ReadResultsCSV(strings.NewReader("date,home_team,away_team\n"))
	assert.Error(t, err)
}

func TestWriteThenReadResultsCSV(t *testing.T) {
	in := []models.MatchResult{
		models.NewMatchResult(time.Date(2024, 9, 1, 18, 0, 0, 0, time.UTC), "Getafe CF", "Sevilla FC", 2, 1),
	}
	var sb strings.Builder
	require.NoError(t, WriteResultsCSV(&sb, in))

	out, rowErrs, err := ReadResultsCSV(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	assert.Equal(t, in, out)
}

type countingSource struct {
	calls int
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) FetchResults(ctx context.Context) ([]models.MatchResult, error) {
	c.calls++
	return []models.MatchResult{models.NewMatchResult(time.Now(), "A", "B", 1, 0)}, nil
}

func TestCachedHistorySource(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedHistorySource(inner, time.Minute)

	for i := 0; i < 3; i++ {
		results, err := cached.FetchResults(context.Background())
		require.NoError(t, err)
		assert.Len(t, results, 1)
	}
	assert.Equal(t, 1, inner.calls)

	cached.(*CachedHistorySource).Invalidate()
	_, _ = cached.FetchResults(context.Background())
	assert.Equal(t, 2, inner.calls)

	assert.Same(t, inner, NewCachedHistorySource(inner, 0))
}

func TestOddsFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odds.json")
	require.NoError(t, os.WriteFile(path, []byte(oddsPayload), 0o644))

	snapshot, err := NewOddsFileSource(path).FetchOdds(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Matches(), 1)

	_, err = NewOddsFileSource(filepath.Join(t.TempDir(), "missing.json")).FetchOdds(context.Background())
	assert.True(t, IsDataSourceError(err, ErrCodeNotFound))
}

func TestWriteOddsFileRoundTrip(t *testing.T) {
	events, err := DecodeOddsEvents(strings.NewReader(oddsPayload))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "odds.json")
	require.NoError(t, WriteOddsFile(path, events))

	snapshot, err := NewOddsFileSource(path).FetchOdds(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Quotes, 5)
}

func TestFactory(t *testing.T) {
	cfg := config.Default()

	cfg.Odds.Source = OddsSourceFile
	cfg.Odds.FilePath = "odds.json"
	odds, err := NewFactory(cfg, nil).NewOddsSource()
	require.NoError(t, err)
	assert.Equal(t, "odds_file", odds.Name())

	cfg.History.Source = HistorySourceCSV
	cfg.History.FilePath = "history.csv"
	cfg.History.CacheTTLMinutes = 0
	hist, err := NewFactory(cfg, nil).NewHistorySource(nil)
	require.NoError(t, err)
	assert.Equal(t, "csv", hist.Name())

	cfg.History.Source = HistorySourcePostgres
	_, err = NewFactory(cfg, nil).NewHistorySource(nil)
	assert.Error(t, err)

	cfg.Odds.Source = "carrier_pigeon"
	_, err = NewFactory(cfg, nil).NewOddsSource()
	assert.Error(t, err)
}
