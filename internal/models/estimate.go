package models

import "sort"

// ProbabilityEstimate maps selection names of one market to probabilities
type ProbabilityEstimate struct {
	MarketKey     string             `json:"market_key"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// Get returns the probability of a selection
func (p ProbabilityEstimate) Get(selection string) (float64, bool) {
	v, ok := p.Probabilities[selection]
	return v, ok
}

// Sum returns the total probability mass
func (p ProbabilityEstimate) Sum() float64 {
	total := 0.0
	for _, v := range p.Probabilities {
		total += v
	}
	return total
}

// Selections returns selection names in sorted order
func (p ProbabilityEstimate) Selections() []string {
	names := make([]string, 0, len(p.Probabilities))
	for name := range p.Probabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MatchEstimates holds every market estimate computed for one fixture
type MatchEstimates struct {
	MatchID  string
	HomeTeam string
	AwayTeam string
	Markets  map[string][]ProbabilityEstimate
}

// Lookup finds the probability of a selection across the market's estimates.
// Totals produce one estimate per line, so several estimates may share a market key.
func (m MatchEstimates) Lookup(market, selection string) (float64, bool) {
	for _, est := range m.Markets[market] {
		if p, ok := est.Get(selection); ok {
			return p, true
		}
	}
	return 0, false
}
