package models

import (
	"time"

	"github.com/google/uuid"
)

// ValueBetCandidate is a priced selection whose real probability beats the bookmaker
type ValueBetCandidate struct {
	MatchID            string    `json:"match_id"`
	Match              string    `json:"match"`
	CommenceTime       time.Time `json:"commence_time"`
	MarketKey          string    `json:"market"`
	Selection          string    `json:"selection"`
	Bookmaker          string    `json:"bookmaker"`
	Odds               float64   `json:"odds"`
	ImpliedProbability float64   `json:"implied_probability"`
	RealProbability    float64   `json:"real_probability"`
	Edge               float64   `json:"edge"`
	ExpectedValue      float64   `json:"expected_value"`
	Confidence         float64   `json:"confidence"`
}

// NewValueBetCandidate derives implied probability, edge and expected value from a quote
func NewValueBetCandidate(quote OddsQuote, selection string, realProbability, confidence float64) ValueBetCandidate {
	implied := quote.ImpliedProbability()
	return ValueBetCandidate{
		MatchID:            quote.MatchID,
		Match:              quote.MatchLabel(),
		CommenceTime:       quote.CommenceTime,
		MarketKey:          quote.MarketKey,
		Selection:          selection,
		Bookmaker:          quote.Bookmaker,
		Odds:               quote.Price,
		ImpliedProbability: implied,
		RealProbability:    realProbability,
		Edge:               realProbability - implied,
		ExpectedValue:      quote.Price*realProbability - 1,
		Confidence:         confidence,
	}
}

// Key identifies the (match, selection) pair used for deduplication
func (c ValueBetCandidate) Key() string {
	return c.MatchID + "|" + c.MarketKey + "|" + c.Selection
}

// RunStats summarises the decisions taken during a pipeline run
type RunStats struct {
	MatchesSeen       int                `json:"matches_seen"`
	MatchesSkipped    int                `json:"matches_skipped"`
	QuotesEvaluated   int                `json:"quotes_evaluated"`
	QuotesRejected    map[string]int     `json:"quotes_rejected"`
	CandidatesFound   int                `json:"candidates_found"`
	ValueBets         int                `json:"value_bets"`
	UnmappedTeams     []string           `json:"unmapped_teams,omitempty"`
	AverageOdds       float64            `json:"average_odds"`
	AverageEdge       float64            `json:"average_edge"`
	AverageConfidence float64            `json:"average_confidence"`
	MarketShare       map[string]float64 `json:"market_share,omitempty"`
}

// ValueBetReport is the final output of one run
type ValueBetReport struct {
	RunID       uuid.UUID           `json:"run_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Profile     string              `json:"profile"`
	Bets        []ValueBetCandidate `json:"bets"`
	Stats       RunStats            `json:"stats"`
}

// Summarize fills the aggregate fields of the stats from the final bets
func (r *ValueBetReport) Summarize() {
	r.Stats.ValueBets = len(r.Bets)
	if len(r.Bets) == 0 {
		return
	}
	var odds, edge, conf float64
	counts := make(map[string]int)
	for _, b := range r.Bets {
		odds += b.Odds
		edge += b.Edge
		conf += b.Confidence
		counts[b.MarketKey]++
	}
	n := float64(len(r.Bets))
	r.Stats.AverageOdds = odds / n
	r.Stats.AverageEdge = edge / n
	r.Stats.AverageConfidence = conf / n
	r.Stats.MarketShare = make(map[string]float64, len(counts))
	for market, c := range counts {
		r.Stats.MarketShare[market] = float64(c) / n
	}
}
