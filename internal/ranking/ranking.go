// Package ranking collapses duplicate value bets and orders the survivors.
package ranking

import (
	"fmt"
	"sort"

	"github.com/yourusername/value-finder/internal/models"
)

// Order names a presentation order
type Order string

const (
	// OrderEdge sorts by edge, then confidence, then expected value
	OrderEdge Order = "edge"
	// OrderConfidence sorts by confidence, then real probability, then expected value
	OrderConfidence Order = "confidence"
)

// ParseOrder validates an order name
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case OrderEdge, "":
		return OrderEdge, nil
	case OrderConfidence:
		return OrderConfidence, nil
	default:
		return "", fmt.Errorf("unknown ranking order %q", s)
	}
}

// Rank keeps one candidate per (match, selection) and orders by edge
func Rank(candidates []models.ValueBetCandidate) []models.ValueBetCandidate {
	return RankBy(candidates, OrderEdge)
}

// RankBy keeps the highest-edge candidate per (match, selection) and sorts the result.
// The input slice is not modified.
func RankBy(candidates []models.ValueBetCandidate, order Order) []models.ValueBetCandidate {
	best := make(map[string]int)
	var out []models.ValueBetCandidate
	for _, c := range candidates {
		i, ok := best[c.Key()]
		if !ok {
			best[c.Key()] = len(out)
			out = append(out, c)
			continue
		}
		if better(c, out[i]) {
			out[i] = c
		}
	}

	less := byEdge
	if order == OrderConfidence {
		less = byConfidence
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// better reports whether a should replace b as the representative of a key
func better(a, b models.ValueBetCandidate) bool {
	if a.Edge != b.Edge {
		return a.Edge > b.Edge
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.ExpectedValue != b.ExpectedValue {
		return a.ExpectedValue > b.ExpectedValue
	}
	return a.Bookmaker < b.Bookmaker
}

func byEdge(a, b models.ValueBetCandidate) bool {
	if a.Edge != b.Edge {
		return a.Edge > b.Edge
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.ExpectedValue != b.ExpectedValue {
		return a.ExpectedValue > b.ExpectedValue
	}
	return tieBreak(a, b)
}

func byConfidence(a, b models.ValueBetCandidate) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.RealProbability != b.RealProbability {
		return a.RealProbability > b.RealProbability
	}
	if a.ExpectedValue != b.ExpectedValue {
		return a.ExpectedValue > b.ExpectedValue
	}
	return tieBreak(a, b)
}

func tieBreak(a, b models.ValueBetCandidate) bool {
	if a.Match != b.Match {
		return a.Match < b.Match
	}
	if a.Selection != b.Selection {
		return a.Selection < b.Selection
	}
	return a.Bookmaker < b.Bookmaker
}
