package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-finder/internal/config"
)

// Source names accepted in configuration
const (
	OddsSourceAPI         = "odds_api"
	OddsSourceFile        = "file"
	HistorySourceAPI      = "football_data"
	HistorySourceCSV      = "csv"
	HistorySourcePostgres = "postgres"
)

// Factory creates odds and history sources based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewOddsSource creates the configured odds source
func (f *Factory) NewOddsSource() (OddsSource, error) {
	cfg := f.config.Odds
	switch cfg.Source {
	case OddsSourceAPI:
		httpCfg := DefaultHTTPClientConfig().WithOverrides(cfg.TimeoutSeconds, cfg.RateLimit, cfg.MaxRetries)
		client := NewRateLimitedHTTPClient(httpCfg, f.logger)
		return NewOddsAPIClient(client, OddsAPIConfig{
			BaseURL:    cfg.APIURL,
			APIKey:     cfg.APIKey,
			Sport:      cfg.Sport,
			Regions:    cfg.Regions,
			Markets:    cfg.Markets,
			Bookmakers: f.config.Detection.Bookmakers,
		}, f.logger), nil
	case OddsSourceFile:
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("odds file path is required")
		}
		return NewOddsFileSource(cfg.FilePath), nil
	default:
		return nil, fmt.Errorf("unknown odds source: %s", cfg.Source)
	}
}

// NewHistorySource creates the configured history source. store backs the
// postgres source and may be nil otherwise. Results are cached when
// history.cache_ttl_minutes is set.
func (f *Factory) NewHistorySource(store HistorySource) (HistorySource, error) {
	cfg := f.config.History
	var source HistorySource
	switch cfg.Source {
	case HistorySourceAPI:
		httpCfg := DefaultHTTPClientConfig().WithOverrides(cfg.TimeoutSeconds, cfg.RateLimit, cfg.MaxRetries)
		client := NewRateLimitedHTTPClient(httpCfg, f.logger)
		source = NewFootballDataClient(client, FootballDataConfig{
			BaseURL: cfg.APIURL,
			APIKey:  cfg.APIKey,
			League:  cfg.League,
			Season:  cfg.Season,
		}, f.logger)
	case HistorySourceCSV:
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("history file path is required")
		}
		source = NewCSVHistorySource(cfg.FilePath, f.logger)
	case HistorySourcePostgres:
		if store == nil {
			return nil, fmt.Errorf("postgres history source requires a database store")
		}
		source = store
	default:
		return nil, fmt.Errorf("unknown history source: %s", cfg.Source)
	}

	if f.logger != nil {
		f.logger.WithField("source", source.Name()).Debug("Created history source")
	}
	return NewCachedHistorySource(source, time.Duration(cfg.CacheTTLMinutes)*time.Minute), nil
}
