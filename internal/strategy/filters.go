package strategy

import (
	"fmt"

	"github.com/yourusername/value-finder/internal/config"
	"github.com/yourusername/value-finder/internal/models"
)

// Profile names, from most to least selective
const (
	ProfileConservative = "conservative"
	ProfileBalanced     = "balanced"
	ProfileAggressive   = "aggressive"
)

// Filters are the four thresholds a candidate must pass
type Filters struct {
	MinEdge        float64 `json:"min_edge"`
	MaxOdds        float64 `json:"max_odds"`
	MinProbability float64 `json:"min_probability"`
	MinConfidence  float64 `json:"min_confidence"`
}

var profiles = map[string]Filters{
	ProfileConservative: {MinEdge: 0.05, MaxOdds: 4.0, MinProbability: 0.35, MinConfidence: 0.45},
	ProfileBalanced:     {MinEdge: 0.03, MaxOdds: 5.0, MinProbability: 0.30, MinConfidence: 0.35},
	ProfileAggressive:   {MinEdge: 0.02, MaxOdds: 6.0, MinProbability: 0.25, MinConfidence: 0.30},
}

// ProfileTiers returns the profile names in scan order
func ProfileTiers() []string {
	return []string{ProfileConservative, ProfileBalanced, ProfileAggressive}
}

// ProfileFilters returns the thresholds of a named profile
func ProfileFilters(name string) (Filters, error) {
	f, ok := profiles[name]
	if !ok {
		return Filters{}, fmt.Errorf("unknown filter profile %q", name)
	}
	return f, nil
}

// Override records one threshold replaced by configuration
type Override struct {
	Parameter    string
	ProfileValue float64
	Value        float64
}

// FromConfig resolves the configured profile and applies explicit overrides
func FromConfig(cfg config.DetectionConfig) (Filters, []Override, error) {
	f, err := ProfileFilters(cfg.Profile)
	if err != nil {
		return Filters{}, nil, err
	}
	f, overrides := f.WithOverrides(cfg)
	return f, overrides, nil
}

// WithOverrides replaces every threshold set in cfg
func (f Filters) WithOverrides(cfg config.DetectionConfig) (Filters, []Override) {
	var overrides []Override
	apply := func(name string, target *float64, value *float64) {
		if value == nil || *value == *target {
			return
		}
		overrides = append(overrides, Override{Parameter: name, ProfileValue: *target, Value: *value})
		*target = *value
	}
	apply("min_edge", &f.MinEdge, cfg.MinEdge)
	apply("max_odds", &f.MaxOdds, cfg.MaxOdds)
	apply("min_probability", &f.MinProbability, cfg.MinProbability)
	apply("min_confidence", &f.MinConfidence, cfg.MinConfidence)
	return f, overrides
}

// Check returns the first threshold c fails, or "" when it passes all four
func (f Filters) Check(c models.ValueBetCandidate) string {
	switch {
	case c.Edge < f.MinEdge:
		return RejectEdge
	case c.RealProbability < f.MinProbability:
		return RejectProbability
	case f.MaxOdds > 0 && c.Odds > f.MaxOdds:
		return RejectOdds
	case c.Confidence < f.MinConfidence:
		return RejectConfidence
	default:
		return ""
	}
}
