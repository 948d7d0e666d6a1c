package estimator

import (
	"github.com/yourusername/value-finder/internal/config"
)

// Model names accepted by Config
const (
	ModelStrength   = "strength"
	ModelMonteCarlo = "montecarlo"
	ModelPoisson    = "poisson"
)

// Config holds the estimator parameters
type Config struct {
	Model1X2         string
	TotalsModel      string
	HomeAdvantage    float64
	DrawFraction     float64
	RegressionWeight float64
	TotalsFactor     float64
	H2HClampMin      float64
	H2HClampMax      float64
	ClampMin         float64
	ClampMax         float64
	Simulations      int
	Seed             int64
	MaxGoals         int
	SampleSize       int
}

// DefaultConfig returns the empirically tuned defaults
func DefaultConfig() Config {
	return Config{
		Model1X2:         ModelStrength,
		TotalsModel:      ModelPoisson,
		HomeAdvantage:    1.3,
		DrawFraction:     0.3,
		RegressionWeight: 0.7,
		TotalsFactor:     0.95,
		H2HClampMin:      0.15,
		H2HClampMax:      0.85,
		ClampMin:         0.05,
		ClampMax:         0.90,
		Simulations:      10000,
		Seed:             42,
		MaxGoals:         10,
		SampleSize:       10,
	}
}

// FromConfig builds an estimator config from application configuration
func FromConfig(cfg config.ModelConfig) Config {
	return Config{
		Model1X2:         cfg.Model1X2,
		TotalsModel:      cfg.TotalsModel,
		HomeAdvantage:    cfg.HomeAdvantage,
		DrawFraction:     cfg.DrawFraction,
		RegressionWeight: cfg.RegressionWeight,
		TotalsFactor:     cfg.TotalsFactor,
		H2HClampMin:      cfg.H2HClampMin,
		H2HClampMax:      cfg.H2HClampMax,
		ClampMin:         cfg.ClampMin,
		ClampMax:         cfg.ClampMax,
		Simulations:      cfg.Simulations,
		Seed:             cfg.Seed,
		MaxGoals:         cfg.MaxGoals,
		SampleSize:       cfg.SampleSize,
	}
}
