package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-finder/internal/models"
)

func candidate(match, selection, bookmaker string, edge, confidence, ev float64) models.ValueBetCandidate {
	return models.ValueBetCandidate{
		MatchID:         match,
		Match:           match,
		MarketKey:       models.MarketH2H,
		Selection:       selection,
		Bookmaker:       bookmaker,
		Edge:            edge,
		Confidence:      confidence,
		ExpectedValue:   ev,
		RealProbability: 0.4 + edge,
	}
}

func TestRankKeepsMaxEdgePerKey(t *testing.T) {
	in := []models.ValueBetCandidate{
		candidate("m1", "home", "a", 0.04, 0.5, 0.1),
		candidate("m1", "home", "b", 0.09, 0.4, 0.2),
		candidate("m1", "home", "c", 0.06, 0.9, 0.3),
		candidate("m1", "away", "a", 0.05, 0.5, 0.1),
	}

	out := Rank(in)

	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Bookmaker)
	assert.Equal(t, 0.09, out[0].Edge)
	assert.Equal(t, "away", out[1].Selection)
	assert.Equal(t, "a", in[0].Bookmaker, "input must not be reordered")
}

func TestRankEdgeTiesBrokenByConfidenceThenEV(t *testing.T) {
	in := []models.ValueBetCandidate{
		candidate("m1", "home", "a", 0.05, 0.5, 0.1),
		candidate("m1", "home", "b", 0.05, 0.7, 0.1),
		candidate("m1", "home", "c", 0.05, 0.7, 0.3),
	}

	out := Rank(in)
	require.Len(t, out, 1)
	assert.Equal(t, "c", out[0].Bookmaker)
}

func TestRankOrdering(t *testing.T) {
	in := []models.ValueBetCandidate{
		candidate("m1", "x", "a", 0.03, 0.9, 0.1),
		candidate("m2", "x", "a", 0.08, 0.4, 0.1),
		candidate("m3", "x", "a", 0.08, 0.6, 0.1),
		candidate("m4", "x", "a", 0.08, 0.6, 0.2),
	}

	out := Rank(in)
	var matches []string
	for _, c := range out {
		matches = append(matches, c.MatchID)
	}
	assert.Equal(t, []string{"m4", "m3", "m2", "m1"}, matches)

	byConf := RankBy(in, OrderConfidence)
	assert.Equal(t, "m1", byConf[0].MatchID)
	assert.Equal(t, "m2", byConf[len(byConf)-1].MatchID)
}

func TestRankDeterministic(t *testing.T) {
	in := []models.ValueBetCandidate{
		candidate("m2", "x", "a", 0.05, 0.5, 0.1),
		candidate("m1", "y", "a", 0.05, 0.5, 0.1),
		candidate("m1", "x", "a", 0.05, 0.5, 0.1),
	}

	first := Rank(in)
	second := Rank([]models.ValueBetCandidate{in[2], in[0], in[1]})
	assert.Equal(t, first, second)
	assert.Equal(t, "m1", first[0].MatchID)
	assert.Equal(t, "x", first[0].Selection)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, OrderEdge, o)

	o, err = ParseOrder("confidence")
	require.NoError(t, err)
	assert.Equal(t, OrderConfidence, o)

	_, err = ParseOrder("kelly")
	assert.Error(t, err)
}
