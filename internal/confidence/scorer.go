// Package confidence scores how much a probability estimate can be trusted,
// from the sample size, recent form and result consistency of both sides.
package confidence

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/value-finder/internal/config"
	"github.com/yourusername/value-finder/internal/history"
	"github.com/yourusername/value-finder/internal/models"
)

// Config holds the scorer weights
type Config struct {
	SampleSize            int
	MinMatches            int
	Base                  float64
	Floor                 float64
	Ceiling               float64
	PerformanceWeight     float64
	DrawPerformanceWeight float64
	ConsistencyWeight     float64
	DrawConsistency       float64
	DrawConsistencyWeight float64
	FormWeight            float64
}

// DefaultConfig returns the standard weights
func DefaultConfig() Config {
	return Config{
		SampleSize:            5,
		MinMatches:            3,
		Base:                  0.4,
		Floor:                 0.3,
		Ceiling:               0.9,
		PerformanceWeight:     0.15,
		DrawPerformanceWeight: 0.1,
		ConsistencyWeight:     0.3,
		DrawConsistency:       0.3,
		DrawConsistencyWeight: 0.2,
		FormWeight:            0.1,
	}
}

// FromConfig builds scorer weights from application configuration
func FromConfig(cfg config.ConfidenceConfig) Config {
	return Config{
		SampleSize:            cfg.SampleSize,
		MinMatches:            cfg.MinMatches,
		Base:                  cfg.Base,
		Floor:                 cfg.Floor,
		Ceiling:               cfg.Ceiling,
		PerformanceWeight:     cfg.PerformanceWeight,
		DrawPerformanceWeight: cfg.DrawPerformanceWeight,
		ConsistencyWeight:     cfg.ConsistencyWeight,
		DrawConsistency:       cfg.DrawConsistency,
		DrawConsistencyWeight: cfg.DrawConsistencyWeight,
		FormWeight:            cfg.FormWeight,
	}
}

// Source is the read side of the historical repository used by the scorer
type Source interface {
	RequireMatches(team string, role models.Role, asOf time.Time, n, need int) ([]models.MatchResult, error)
	LeagueAverages() history.LeagueAverages
}

// Scorer computes confidence in [Floor, Ceiling]
type Scorer struct {
	src Source
	cfg Config
}

// NewScorer creates a scorer over src
func NewScorer(src Source, cfg Config) *Scorer {
	return &Scorer{src: src, cfg: cfg}
}

// sideSample summarises the recent games of one side in its fixture role
type sideSample struct {
	matches []models.MatchResult
	role    models.Role
}

func (s sideSample) performance() float64 {
	diff := 0
	for _, m := range s.matches {
		diff += m.GoalsFor(s.role) - m.GoalsAgainst(s.role)
	}
	return float64(diff) / float64(len(s.matches))
}

func (s sideSample) share(pred func(models.MatchResult) bool) float64 {
	hits := 0
	for _, m := range s.matches {
		if pred(m) {
			hits++
		}
	}
	return float64(hits) / float64(len(s.matches))
}

func (s sideSample) form(leagueAvg float64) float64 {
	if leagueAvg <= 0 {
		return 0
	}
	scored := 0
	for _, m := range s.matches {
		scored += m.GoalsFor(s.role)
	}
	return float64(scored) / float64(len(s.matches)) / leagueAvg
}

// Score returns the confidence for one selection of a fixture. Team names must be
// normalized. Either side having fewer than MinMatches recent games yields Floor.
func (s *Scorer) Score(home, away, market, selection string, asOf time.Time) float64 {
	need := s.cfg.MinMatches
	if need < 1 {
		need = 1
	}
	homeGames, err := s.src.RequireMatches(home, models.RoleHome, asOf, s.cfg.SampleSize, need)
	if err != nil {
		return s.cfg.Floor
	}
	awayGames, err := s.src.RequireMatches(away, models.RoleAway, asOf, s.cfg.SampleSize, need)
	if err != nil {
		return s.cfg.Floor
	}
	h := sideSample{matches: homeGames, role: models.RoleHome}
	a := sideSample{matches: awayGames, role: models.RoleAway}

	league := s.src.LeagueAverages()
	var score float64
	switch market {
	case models.MarketH2H:
		switch selection {
		case home:
			score = s.cfg.Base +
				h.performance()*s.cfg.PerformanceWeight +
				h.share(isOutcome(models.OutcomeHome))*s.cfg.ConsistencyWeight +
				h.form(league.HomeGoals)*s.cfg.FormWeight
		case away:
			score = s.cfg.Base +
				a.performance()*s.cfg.PerformanceWeight +
				a.share(isOutcome(models.OutcomeAway))*s.cfg.ConsistencyWeight +
				a.form(league.AwayGoals)*s.cfg.FormWeight
		case models.SelectionDraw:
			score = s.cfg.Base -
				math.Abs(h.performance()-a.performance())*s.cfg.DrawPerformanceWeight +
				s.cfg.DrawConsistency*s.cfg.DrawConsistencyWeight
		default:
			return s.cfg.Floor
		}
	case models.MarketTotals, models.MarketBTTS:
		event, ok := eventFor(market, selection)
		if !ok {
			return s.cfg.Floor
		}
		consistency := (h.share(event) + a.share(event)) / 2
		form := (h.form(league.HomeGoals) + a.form(league.AwayGoals)) / 2
		score = s.cfg.Base + consistency*s.cfg.ConsistencyWeight + form*s.cfg.FormWeight
	default:
		return s.cfg.Floor
	}

	return math.Max(s.cfg.Floor, math.Min(s.cfg.Ceiling, score))
}

func isOutcome(o models.Outcome) func(models.MatchResult) bool {
	return func(m models.MatchResult) bool { return m.Outcome() == o }
}

// eventFor maps a totals or btts selection to the match event it backs
func eventFor(market, selection string) (func(models.MatchResult) bool, bool) {
	if market == models.MarketBTTS {
		switch selection {
		case models.SelectionYes:
			return models.MatchResult.BothScored, true
		case models.SelectionNo:
			return func(m models.MatchResult) bool { return !m.BothScored() }, true
		}
		return nil, false
	}

	side, raw, found := strings.Cut(selection, "_")
	if !found {
		return nil, false
	}
	line, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	switch side {
	case models.SelectionOver:
		return func(m models.MatchResult) bool { return float64(m.TotalGoals()) > line }, true
	case models.SelectionUnder:
		return func(m models.MatchResult) bool { return float64(m.TotalGoals()) < line }, true
	}
	return nil, false
}
