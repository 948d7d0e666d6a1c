package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-finder/internal/metrics"
	"github.com/yourusername/value-finder/internal/models"
)

const (
	oddsAPISourceName     = "odds_api"
	oddsFileSourceName    = "odds_file"
	defaultOddsAPIBaseURL = "https://api.the-odds-api.com/v4"
)

// OddsEvent is one fixture as returned by the-odds-api v4 /odds endpoint
type OddsEvent struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	SportTitle   string          `json:"sport_title,omitempty"`
	CommenceTime time.Time       `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   []OddsBookmaker `json:"bookmakers"`
}

// OddsBookmaker is one bookmaker's markets for an event
type OddsBookmaker struct {
	Key        string       `json:"key"`
	Title      string       `json:"title"`
	LastUpdate time.Time    `json:"last_update"`
	Markets    []OddsMarket `json:"markets"`
}

// OddsMarket is one priced market
type OddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []OddsOutcome `json:"outcomes"`
}

// OddsOutcome is one priced selection. Point is set for totals lines.
type OddsOutcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// OddsAPIConfig configures the-odds-api client
type OddsAPIConfig struct {
	BaseURL    string
	APIKey     string
	Sport      string
	Regions    string
	Markets    []string
	Bookmakers []string
}

// OddsAPIClient implements OddsSource for the-odds-api v4
type OddsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	cfg        OddsAPIConfig
	logger     *logrus.Logger
	now        func() time.Time
}

// NewOddsAPIClient creates a new odds API client
func NewOddsAPIClient(httpClient *RateLimitedHTTPClient, cfg OddsAPIConfig, logger *logrus.Logger) *OddsAPIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOddsAPIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OddsAPIClient{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Name returns the data source name
func (c *OddsAPIClient) Name() string {
	return oddsAPISourceName
}

// FetchEvents retrieves the raw events for the configured sport
func (c *OddsAPIClient) FetchEvents(ctx context.Context) ([]OddsEvent, error) {
	if c.cfg.APIKey == "" {
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeAuthenticationFailed, "API key is required", ErrAuthenticationFailed)
	}

	resp, err := c.httpClient.Get(ctx, c.eventsURL())
	if err != nil {
		metrics.RecordSourceRequest(oddsAPISourceName, "error")
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeNetworkError, "failed to fetch odds", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordSourceRequest(oddsAPISourceName, "error")
		return nil, statusError(oddsAPISourceName, resp)
	}
	metrics.RecordSourceRequest(oddsAPISourceName, "success")

	if remaining := resp.Header.Get("x-requests-remaining"); remaining != "" && c.logger != nil {
		c.logger.WithField("requests_remaining", remaining).Debug("Odds API quota")
	}

	events, err := DecodeOddsEvents(resp.Body)
	if err != nil {
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return events, nil
}

// FetchOdds retrieves the snapshot of every quote currently offered
func (c *OddsAPIClient) FetchOdds(ctx context.Context) (models.OddsSnapshot, error) {
	events, err := c.FetchEvents(ctx)
	if err != nil {
		return models.OddsSnapshot{}, err
	}
	return SnapshotFromEvents(events, c.now()), nil
}

func (c *OddsAPIClient) eventsURL() string {
	q := url.Values{}
	q.Set("apiKey", c.cfg.APIKey)
	q.Set("regions", c.cfg.Regions)
	q.Set("oddsFormat", "decimal")
	q.Set("dateFormat", "iso")
	if len(c.cfg.Markets) > 0 {
		q.Set("markets", strings.Join(c.cfg.Markets, ","))
	}
	if len(c.cfg.Bookmakers) > 0 {
		q.Set("bookmakers", strings.Join(c.cfg.Bookmakers, ","))
	}
	return fmt.Sprintf("%s/sports/%s/odds/?%s", c.cfg.BaseURL, url.PathEscape(c.cfg.Sport), q.Encode())
}

// DecodeOddsEvents parses a the-odds-api JSON array
func DecodeOddsEvents(r io.Reader) ([]OddsEvent, error) {
	var events []OddsEvent
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, err
	}
	return events, nil
}

// SnapshotFromEvents flattens events into one quote per (bookmaker, market, outcome)
func SnapshotFromEvents(events []OddsEvent, fetchedAt time.Time) models.OddsSnapshot {
	snapshot := models.OddsSnapshot{FetchedAt: fetchedAt}
	for _, ev := range events {
		for _, bm := range ev.Bookmakers {
			for _, market := range bm.Markets {
				for _, outcome := range market.Outcomes {
					snapshot.Quotes = append(snapshot.Quotes, models.OddsQuote{
						MatchID:      ev.ID,
						HomeTeam:     ev.HomeTeam,
						AwayTeam:     ev.AwayTeam,
						CommenceTime: ev.CommenceTime,
						Bookmaker:    bm.Key,
						MarketKey:    market.Key,
						Selection:    outcome.Name,
						Point:        outcome.Point,
						Price:        outcome.Price,
					})
				}
			}
		}
	}
	return snapshot
}

// WriteOddsFile saves events in the same format FetchEvents reads
func WriteOddsFile(path string, events []OddsEvent) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode odds: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write odds file: %w", err)
	}
	return nil
}

// OddsFileSource implements OddsSource over a saved the-odds-api response
type OddsFileSource struct {
	path string
}

// NewOddsFileSource creates a file-backed odds source
func NewOddsFileSource(path string) *OddsFileSource {
	return &OddsFileSource{path: path}
}

// Name returns the data source name
func (s *OddsFileSource) Name() string {
	return oddsFileSourceName
}

// FetchOdds reads the file. FetchedAt is the file modification time.
func (s *OddsFileSource) FetchOdds(ctx context.Context) (models.OddsSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.OddsSnapshot{}, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return models.OddsSnapshot{}, NewDataSourceError(oddsFileSourceName, ErrCodeNotFound, s.path, err)
	}
	defer f.Close()

	events, err := DecodeOddsEvents(f)
	if err != nil {
		return models.OddsSnapshot{}, NewDataSourceError(oddsFileSourceName, ErrCodeInvalidData, "failed to parse "+s.path, err)
	}

	fetchedAt := time.Now()
	if info, err := f.Stat(); err == nil {
		fetchedAt = info.ModTime()
	}
	return SnapshotFromEvents(events, fetchedAt), nil
}
