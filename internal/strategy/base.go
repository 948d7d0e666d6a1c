package strategy

import (
	"math"

	"github.com/yourusername/value-finder/internal/models"
)

// BaseStrategy provides the pricing helpers shared by detectors
type BaseStrategy struct {
	MaxOdds       float64
	KellyFraction float64
}

// ValidateOdds rejects prices that cannot be turned into a probability
func (b *BaseStrategy) ValidateOdds(quote models.OddsQuote) error {
	reason := ""
	switch {
	case math.IsNaN(quote.Price) || math.IsInf(quote.Price, 0):
		reason = "price is not a number"
	case quote.Price <= 1.0:
		reason = "price must be greater than 1.0"
	case quote.Selection == "":
		reason = "missing selection name"
	case quote.MatchID == "" || quote.HomeTeam == "" || quote.AwayTeam == "":
		reason = "missing match fields"
	}
	if reason == "" {
		return nil
	}
	return &models.InvalidOddsError{
		MatchID:   quote.MatchID,
		Bookmaker: quote.Bookmaker,
		Selection: quote.Selection,
		Price:     quote.Price,
		Reason:    reason,
	}
}

// ImpliedProbability returns 1/odds for valid odds, otherwise 0
func (b *BaseStrategy) ImpliedProbability(odds float64) float64 {
	if odds <= 1.0 {
		return 0
	}
	return 1.0 / odds
}

// CalculateExpectedValue returns the expected profit per unit staked
func (b *BaseStrategy) CalculateExpectedValue(probability, odds float64) float64 {
	if odds <= 1.0 {
		return 0
	}
	return odds*probability - 1.0
}

// ApplyKellyCriterion calculates stake based on the Kelly criterion
func (b *BaseStrategy) ApplyKellyCriterion(probability, odds, bankroll float64) float64 {
	if probability <= 0 || odds <= 1 || bankroll <= 0 {
		return 0
	}
	p := probability
	q := 1.0 - p
	bOdds := odds - 1.0
	kelly := (bOdds*p - q) / bOdds
	if kelly <= 0 {
		return 0
	}
	fraction := b.KellyFraction
	if fraction <= 0 {
		fraction = 0.5
	}
	return bankroll * kelly * fraction
}

// NormalizeProbability ensures probability in [0,1]
func (b *BaseStrategy) NormalizeProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
