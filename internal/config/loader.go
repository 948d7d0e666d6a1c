package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "VALUE_FINDER"
	defaultConfigPath = "config/config.yaml"
)

// DefaultBookmakers is the bookmaker allow-list used when none is configured
var DefaultBookmakers = []string{
	"bet365", "betfair", "betway", "pinnacle", "williamhill", "bwin",
	"unibet", "ladbrokes", "888sport", "skybet", "marathonbet", "betsson",
}

// Load reads and parses the configuration from file and environment variables.
// Placeholders like ${VAR_NAME} in the YAML file are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for every field.
// A missing file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// Default returns the built-in configuration without reading any file
func Default() *Config {
	v := newViper()
	setDefaults(v)
	cfg, err := unmarshal(v)
	if err != nil {
		// defaults are static, a decode failure is a programming error
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "value-finder")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("odds.source", "odds_api")
	v.SetDefault("odds.api_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds.sport", "soccer_spain_la_liga")
	v.SetDefault("odds.regions", "eu,uk")
	v.SetDefault("odds.markets", []string{"h2h", "totals"})
	v.SetDefault("odds.timeout_seconds", 30)
	v.SetDefault("odds.rate_limit", 1.0)
	v.SetDefault("odds.max_retries", 3)

	v.SetDefault("history.source", "football_data")
	v.SetDefault("history.api_url", "https://api.football-data.org/v4")
	v.SetDefault("history.league", "PD")
	v.SetDefault("history.season", 2024)
	v.SetDefault("history.window_days", 180)
	v.SetDefault("history.anchor", "latest_result")
	v.SetDefault("history.cache_ttl_minutes", 60)
	v.SetDefault("history.timeout_seconds", 30)
	v.SetDefault("history.rate_limit", 0.15)
	v.SetDefault("history.max_retries", 3)

	v.SetDefault("model.model_1x2", "strength")
	v.SetDefault("model.totals_model", "poisson")
	v.SetDefault("model.home_advantage", 1.3)
	v.SetDefault("model.draw_fraction", 0.3)
	v.SetDefault("model.regression_weight", 0.7)
	v.SetDefault("model.totals_factor", 0.95)
	v.SetDefault("model.h2h_clamp_min", 0.15)
	v.SetDefault("model.h2h_clamp_max", 0.85)
	v.SetDefault("model.clamp_min", 0.05)
	v.SetDefault("model.clamp_max", 0.90)
	v.SetDefault("model.simulations", 10000)
	v.SetDefault("model.seed", 42)
	v.SetDefault("model.max_goals", 10)
	v.SetDefault("model.sample_size", 10)

	v.SetDefault("confidence.sample_size", 5)
	v.SetDefault("confidence.min_matches", 3)
	v.SetDefault("confidence.base", 0.4)
	v.SetDefault("confidence.floor", 0.3)
	v.SetDefault("confidence.ceiling", 0.9)
	v.SetDefault("confidence.performance_weight", 0.15)
	v.SetDefault("confidence.draw_performance_weight", 0.1)
	v.SetDefault("confidence.consistency_weight", 0.3)
	v.SetDefault("confidence.draw_consistency", 0.3)
	v.SetDefault("confidence.draw_consistency_weight", 0.2)
	v.SetDefault("confidence.form_weight", 0.1)

	v.SetDefault("detection.profile", "balanced")
	v.SetDefault("detection.bookmakers", DefaultBookmakers)
	v.SetDefault("detection.markets", []string{"h2h", "totals", "btts"})

	v.SetDefault("output.format", "json")
	v.SetDefault("output.path", "value_bets.json")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 5)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.stream", "value_bets")
	v.SetDefault("schedule.cron", "0 */6 * * *")
	v.SetDefault("schedule.timeout_minutes", 10)
	v.SetDefault("schedule.health_port", "8080")
}
