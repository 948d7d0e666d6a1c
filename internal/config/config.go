// Package config provides configuration management for the value finder.
package config

import "fmt"

// Config represents the complete application configuration
type Config struct {
	App        AppConfig         `mapstructure:"app" validate:"required"`
	Odds       OddsSourceConfig  `mapstructure:"odds" validate:"required"`
	History    HistoryConfig     `mapstructure:"history" validate:"required"`
	Model      ModelConfig       `mapstructure:"model" validate:"required"`
	Confidence ConfidenceConfig  `mapstructure:"confidence" validate:"required"`
	Detection  DetectionConfig   `mapstructure:"detection" validate:"required"`
	Teams      []TeamAliasConfig `mapstructure:"teams" validate:"dive"`
	Output     OutputConfig      `mapstructure:"output" validate:"required"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
	Database   DatabaseConfig    `mapstructure:"database"`
	Redis      RedisConfig       `mapstructure:"redis"`
	Schedule   ScheduleConfig    `mapstructure:"schedule"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// OddsSourceConfig configures where the odds snapshot comes from
type OddsSourceConfig struct {
	Source         string   `mapstructure:"source" validate:"required,oneof=odds_api file"`
	APIURL         string   `mapstructure:"api_url" validate:"omitempty,url"`
	APIKey         string   `mapstructure:"api_key"`
	Sport          string   `mapstructure:"sport" validate:"required"`
	Regions        string   `mapstructure:"regions" validate:"required"`
	Markets        []string `mapstructure:"markets" validate:"required,min=1"`
	FilePath       string   `mapstructure:"file_path"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" validate:"gte=0"`
	RateLimit      float64  `mapstructure:"rate_limit" validate:"gte=0"`
	MaxRetries     int      `mapstructure:"max_retries" validate:"gte=0"`
}

// HistoryConfig configures the historical results source and recency window
type HistoryConfig struct {
	Source          string  `mapstructure:"source" validate:"required,oneof=football_data csv postgres"`
	APIURL          string  `mapstructure:"api_url" validate:"omitempty,url"`
	APIKey          string  `mapstructure:"api_key"`
	League          string  `mapstructure:"league" validate:"required"`
	Season          int     `mapstructure:"season" validate:"required,gt=1900"`
	FilePath        string  `mapstructure:"file_path"`
	WindowDays      int     `mapstructure:"window_days" validate:"required,gt=0"`
	Anchor          string  `mapstructure:"anchor" validate:"required,oneof=latest_result kickoff"`
	CacheTTLMinutes int     `mapstructure:"cache_ttl_minutes" validate:"gte=0"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"gte=0"`
	MaxRetries      int     `mapstructure:"max_retries" validate:"gte=0"`
}

// ModelConfig holds the probability estimator parameters
type ModelConfig struct {
	Model1X2         string  `mapstructure:"model_1x2" validate:"required,oneof=strength montecarlo poisson"`
	TotalsModel      string  `mapstructure:"totals_model" validate:"required,oneof=poisson montecarlo"`
	HomeAdvantage    float64 `mapstructure:"home_advantage" validate:"gt=0"`
	DrawFraction     float64 `mapstructure:"draw_fraction" validate:"gte=0,lt=1"`
	RegressionWeight float64 `mapstructure:"regression_weight" validate:"gte=0,lte=1"`
	TotalsFactor     float64 `mapstructure:"totals_factor" validate:"gt=0"`
	H2HClampMin      float64 `mapstructure:"h2h_clamp_min" validate:"gte=0,lt=1"`
	H2HClampMax      float64 `mapstructure:"h2h_clamp_max" validate:"gt=0,lte=1"`
	ClampMin         float64 `mapstructure:"clamp_min" validate:"gte=0,lt=1"`
	ClampMax         float64 `mapstructure:"clamp_max" validate:"gt=0,lte=1"`
	Simulations      int     `mapstructure:"simulations" validate:"gt=0"`
	Seed             int64   `mapstructure:"seed"`
	MaxGoals         int     `mapstructure:"max_goals" validate:"gt=0"`
	SampleSize       int     `mapstructure:"sample_size" validate:"gte=0"`
}

// ConfidenceConfig holds the confidence scorer weights
type ConfidenceConfig struct {
	SampleSize            int     `mapstructure:"sample_size" validate:"gt=0"`
	MinMatches            int     `mapstructure:"min_matches" validate:"gt=0"`
	Base                  float64 `mapstructure:"base" validate:"gte=0,lte=1"`
	Floor                 float64 `mapstructure:"floor" validate:"gte=0,lte=1"`
	Ceiling               float64 `mapstructure:"ceiling" validate:"gt=0,lte=1"`
	PerformanceWeight     float64 `mapstructure:"performance_weight" validate:"gte=0"`
	DrawPerformanceWeight float64 `mapstructure:"draw_performance_weight" validate:"gte=0"`
	ConsistencyWeight     float64 `mapstructure:"consistency_weight" validate:"gte=0"`
	DrawConsistency       float64 `mapstructure:"draw_consistency" validate:"gte=0,lte=1"`
	DrawConsistencyWeight float64 `mapstructure:"draw_consistency_weight" validate:"gte=0"`
	FormWeight            float64 `mapstructure:"form_weight" validate:"gte=0"`
}

// DetectionConfig selects the filter profile and the quotes considered
type DetectionConfig struct {
	Profile        string   `mapstructure:"profile" validate:"required,profile"`
	Bookmakers     []string `mapstructure:"bookmakers" validate:"required,min=1"`
	Markets        []string `mapstructure:"markets" validate:"required,min=1,markets"`
	MinEdge        *float64 `mapstructure:"min_edge" validate:"omitempty,gte=0,lt=1"`
	MaxOdds        *float64 `mapstructure:"max_odds" validate:"omitempty,gt=1"`
	MinProbability *float64 `mapstructure:"min_probability" validate:"omitempty,gte=0,lte=1"`
	MinConfidence  *float64 `mapstructure:"min_confidence" validate:"omitempty,gte=0,lte=1"`
}

// TeamAliasConfig maps alternative spellings onto one canonical team name
type TeamAliasConfig struct {
	Canonical string   `mapstructure:"canonical" validate:"required"`
	Aliases   []string `mapstructure:"aliases"`
}

// OutputConfig controls where the ranked value bets are written
type OutputConfig struct {
	Format string `mapstructure:"format" validate:"required,oneof=json csv"`
	Path   string `mapstructure:"path" validate:"required"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// DatabaseConfig represents the optional PostgreSQL store
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// RedisConfig represents the optional Redis stream publisher
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Stream   string `mapstructure:"stream"`
}

// ScheduleConfig represents the cron schedule of repeated runs
type ScheduleConfig struct {
	Cron           string `mapstructure:"cron"`
	TimeoutMinutes int    `mapstructure:"timeout_minutes" validate:"gte=0"`
	HealthPort     string `mapstructure:"health_port"`
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
