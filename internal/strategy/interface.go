package strategy

import (
	"github.com/yourusername/value-finder/internal/models"
)

// Rejection reasons counted by DetectStats
const (
	RejectBookmaker   = "bookmaker"
	RejectMarket      = "market"
	RejectInvalidOdds = "invalid_odds"
	RejectUnmatched   = "unmatched_selection"
	RejectEdge        = "edge"
	RejectProbability = "probability"
	RejectOdds        = "max_odds"
	RejectConfidence  = "confidence"
)

// ConfidenceFunc scores one selection of the match being evaluated
type ConfidenceFunc func(market, selection string) float64

// MatchContext is everything a detector needs to evaluate one fixture
type MatchContext struct {
	Quotes     []models.OddsQuote
	Estimates  models.MatchEstimates
	Confidence ConfidenceFunc
}

// Detector turns priced quotes into value bet candidates
type Detector interface {
	Name() string
	Detect(match MatchContext) ([]models.ValueBetCandidate, DetectStats)
	GetParameters() map[string]interface{}
}

// DetectStats counts what happened to the quotes of one Detect call
type DetectStats struct {
	Evaluated int
	Rejected  map[string]int
	Errors    []error
}

func (s *DetectStats) reject(reason string) {
	if s.Rejected == nil {
		s.Rejected = make(map[string]int)
	}
	s.Rejected[reason]++
}

// Merge adds other into s
func (s *DetectStats) Merge(other DetectStats) {
	s.Evaluated += other.Evaluated
	for reason, n := range other.Rejected {
		if s.Rejected == nil {
			s.Rejected = make(map[string]int)
		}
		s.Rejected[reason] += n
	}
	s.Errors = append(s.Errors, other.Errors...)
}
