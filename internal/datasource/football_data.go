package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-finder/internal/metrics"
	"github.com/yourusername/value-finder/internal/models"
)

const (
	footballDataSourceName     = "football_data"
	defaultFootballDataBaseURL = "https://api.football-data.org/v4"
	footballDataFinished       = "FINISHED"
)

// FootballDataMatch is one match of the football-data.org v4 matches endpoint
type FootballDataMatch struct {
	ID       int              `json:"id"`
	UTCDate  time.Time        `json:"utcDate"`
	Status   string           `json:"status"`
	HomeTeam FootballDataTeam `json:"homeTeam"`
	AwayTeam FootballDataTeam `json:"awayTeam"`
	Score    struct {
		FullTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"fullTime"`
	} `json:"score"`
}

// FootballDataTeam is a team reference
type FootballDataTeam struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type footballDataResponse struct {
	Matches []FootballDataMatch `json:"matches"`
}

// FootballDataConfig configures the football-data.org client
type FootballDataConfig struct {
	BaseURL string
	APIKey  string
	League  string
	Season  int
}

// FootballDataClient implements HistorySource for football-data.org v4
type FootballDataClient struct {
	httpClient *RateLimitedHTTPClient
	cfg        FootballDataConfig
	logger     *logrus.Logger
}

// NewFootballDataClient creates a new football-data.org client
func NewFootballDataClient(httpClient *RateLimitedHTTPClient, cfg FootballDataConfig, logger *logrus.Logger) *FootballDataClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultFootballDataBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &FootballDataClient{httpClient: httpClient, cfg: cfg, logger: logger}
}

// Name returns the data source name
func (c *FootballDataClient) Name() string {
	return footballDataSourceName
}

// FetchResults retrieves the finished matches of the configured competition and season
func (c *FootballDataClient) FetchResults(ctx context.Context) ([]models.MatchResult, error) {
	if c.cfg.APIKey == "" {
		return nil, NewDataSourceError(footballDataSourceName, ErrCodeAuthenticationFailed, "API key is required", ErrAuthenticationFailed)
	}

	endpoint := fmt.Sprintf("%s/competitions/%s/matches?season=%d", c.cfg.BaseURL, c.cfg.League, c.cfg.Season)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(footballDataSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("X-Auth-Token", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.RecordSourceRequest(footballDataSourceName, "error")
		return nil, NewDataSourceError(footballDataSourceName, ErrCodeNetworkError, "failed to fetch matches", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordSourceRequest(footballDataSourceName, "error")
		return nil, statusError(footballDataSourceName, resp)
	}
	metrics.RecordSourceRequest(footballDataSourceName, "success")

	var body footballDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, NewDataSourceError(footballDataSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	results := ConvertFootballDataMatches(body.Matches)
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"league":   c.cfg.League,
			"season":   c.cfg.Season,
			"received": len(body.Matches),
			"finished": len(results),
		}).Info("Fetched historical matches")
	}
	return results, nil
}

// ConvertFootballDataMatches keeps finished matches with a full-time score
func ConvertFootballDataMatches(matches []FootballDataMatch) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(matches))
	for _, m := range matches {
		if m.Status != footballDataFinished {
			continue
		}
		ft := m.Score.FullTime
		if ft.Home == nil || ft.Away == nil {
			continue
		}
		results = append(results, models.NewMatchResult(m.UTCDate, m.HomeTeam.Name, m.AwayTeam.Name, *ft.Home, *ft.Away))
	}
	return results
}
