package models

import (
	"fmt"
	"strconv"
	"time"
)

// Supported market keys
const (
	MarketH2H    = "h2h"
	MarketTotals = "totals"
	MarketBTTS   = "btts"
)

// Canonical selection names
const (
	SelectionDraw  = "draw"
	SelectionOver  = "over"
	SelectionUnder = "under"
	SelectionYes   = "yes"
	SelectionNo    = "no"
)

// TotalsSelection names one side of a totals line, e.g. "over_2.5"
func TotalsSelection(side string, line float64) string {
	return side + "_" + strconv.FormatFloat(line, 'f', -1, 64)
}

// SupportedMarkets lists the markets the estimator can price
func SupportedMarkets() []string {
	return []string{MarketH2H, MarketTotals, MarketBTTS}
}

// IsSupportedMarket reports whether key is a priced market
func IsSupportedMarket(key string) bool {
	switch key {
	case MarketH2H, MarketTotals, MarketBTTS:
		return true
	default:
		return false
	}
}

// OddsQuote is a single bookmaker price for one selection of one market
type OddsQuote struct {
	MatchID      string    `json:"match_id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
	Bookmaker    string    `json:"bookmaker"`
	MarketKey    string    `json:"market_key"`
	Selection    string    `json:"selection"`
	Point        *float64  `json:"point,omitempty"`
	Price        float64   `json:"price"`
}

// ImpliedProbability returns 1/price, or 0 for an invalid price
func (q OddsQuote) ImpliedProbability() float64 {
	if q.Price <= 1 {
		return 0
	}
	return 1.0 / q.Price
}

// MatchLabel returns the "Home vs Away" label used in reports
func (q OddsQuote) MatchLabel() string {
	return fmt.Sprintf("%s vs %s", q.HomeTeam, q.AwayTeam)
}

// OddsSnapshot is the static set of quotes processed by one run
type OddsSnapshot struct {
	FetchedAt time.Time   `json:"fetched_at"`
	Quotes    []OddsQuote `json:"quotes"`
}

// MatchQuotes groups the quotes belonging to one fixture
type MatchQuotes struct {
	MatchID      string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	Quotes       []OddsQuote
}

// Matches groups quotes by match id, preserving first-seen order
func (s OddsSnapshot) Matches() []MatchQuotes {
	index := make(map[string]int)
	var matches []MatchQuotes
	for _, q := range s.Quotes {
		i, ok := index[q.MatchID]
		if !ok {
			i = len(matches)
			index[q.MatchID] = i
			matches = append(matches, MatchQuotes{
				MatchID:      q.MatchID,
				HomeTeam:     q.HomeTeam,
				AwayTeam:     q.AwayTeam,
				CommenceTime: q.CommenceTime,
			})
		}
		matches[i].Quotes = append(matches[i].Quotes, q)
	}
	return matches
}

// TotalsLines returns the distinct totals lines quoted for the match
func (m MatchQuotes) TotalsLines() []float64 {
	seen := make(map[float64]bool)
	var lines []float64
	for _, q := range m.Quotes {
		if q.MarketKey != MarketTotals || q.Point == nil {
			continue
		}
		if !seen[*q.Point] {
			seen[*q.Point] = true
			lines = append(lines, *q.Point)
		}
	}
	return lines
}
