package strategy

import (
	"strings"

	"github.com/yourusername/value-finder/internal/models"
)

// NameNormalizer canonicalises team names
type NameNormalizer interface {
	Normalize(raw string) string
}

// DetectorConfig selects which quotes a detector looks at
type DetectorConfig struct {
	Filters    Filters
	Bookmakers []string
	Markets    []string
}

// ValueDetector emits a candidate for every quote whose estimated probability
// beats the bookmaker price by the configured thresholds
type ValueDetector struct {
	BaseStrategy
	NameValue  string
	filters    Filters
	bookmakers map[string]bool
	markets    map[string]bool
	names      NameNormalizer
}

// NewValueDetector creates a detector. An empty bookmaker list accepts every bookmaker;
// an empty market list accepts every supported market.
func NewValueDetector(cfg DetectorConfig, names NameNormalizer) *ValueDetector {
	d := &ValueDetector{
		BaseStrategy: BaseStrategy{MaxOdds: cfg.Filters.MaxOdds, KellyFraction: 0.5},
		NameValue:    "value_detector",
		filters:      cfg.Filters,
		bookmakers:   make(map[string]bool, len(cfg.Bookmakers)),
		markets:      make(map[string]bool),
		names:        names,
	}
	for _, b := range cfg.Bookmakers {
		d.bookmakers[strings.ToLower(b)] = true
	}
	markets := cfg.Markets
	if len(markets) == 0 {
		markets = models.SupportedMarkets()
	}
	for _, m := range markets {
		if models.IsSupportedMarket(m) {
			d.markets[m] = true
		}
	}
	return d
}

// Name returns detector name
func (d *ValueDetector) Name() string {
	return d.NameValue
}

// Filters returns the active thresholds
func (d *ValueDetector) Filters() Filters {
	return d.filters
}

// GetParameters returns the detector parameters for reporting
func (d *ValueDetector) GetParameters() map[string]interface{} {
	markets := make([]string, 0, len(d.markets))
	for _, m := range models.SupportedMarkets() {
		if d.markets[m] {
			markets = append(markets, m)
		}
	}
	return map[string]interface{}{
		"min_edge":        d.filters.MinEdge,
		"max_odds":        d.filters.MaxOdds,
		"min_probability": d.filters.MinProbability,
		"min_confidence":  d.filters.MinConfidence,
		"markets":         markets,
		"bookmakers":      len(d.bookmakers),
	}
}

// Detect evaluates every quote of one match. Per-quote problems are counted and
// collected in the stats, never returned as a failure.
func (d *ValueDetector) Detect(match MatchContext) ([]models.ValueBetCandidate, DetectStats) {
	var stats DetectStats
	var candidates []models.ValueBetCandidate
	confidence := make(map[string]float64)

	for _, quote := range match.Quotes {
		stats.Evaluated++

		if len(d.bookmakers) > 0 && !d.bookmakers[strings.ToLower(quote.Bookmaker)] {
			stats.reject(RejectBookmaker)
			continue
		}
		if !d.markets[quote.MarketKey] {
			stats.reject(RejectMarket)
			continue
		}
		if err := d.ValidateOdds(quote); err != nil {
			stats.reject(RejectInvalidOdds)
			stats.Errors = append(stats.Errors, err)
			continue
		}

		selection := d.CanonicalSelection(quote)
		prob, ok := match.Estimates.Lookup(quote.MarketKey, selection)
		if !ok {
			stats.reject(RejectUnmatched)
			stats.Errors = append(stats.Errors, &models.UnmatchedSelectionError{
				MatchID:   quote.MatchID,
				MarketKey: quote.MarketKey,
				Selection: selection,
			})
			continue
		}
		prob = d.NormalizeProbability(prob)

		key := quote.MarketKey + "|" + selection
		conf, seen := confidence[key]
		if !seen {
			conf = 0
			if match.Confidence != nil {
				conf = match.Confidence(quote.MarketKey, selection)
			}
			confidence[key] = conf
		}

		candidate := models.NewValueBetCandidate(quote, selection, prob, conf)
		if reason := d.filters.Check(candidate); reason != "" {
			stats.reject(reason)
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates, stats
}

// CanonicalSelection maps a quote's outcome name onto the estimator's selection key.
// h2h names go through the team normalizer; totals are lower-cased with spaces
// turned into underscores and the line appended when the name lacks one.
func (d *ValueDetector) CanonicalSelection(quote models.OddsQuote) string {
	raw := strings.TrimSpace(quote.Selection)
	switch quote.MarketKey {
	case models.MarketH2H:
		if strings.EqualFold(raw, models.SelectionDraw) {
			return models.SelectionDraw
		}
		return d.names.Normalize(raw)
	case models.MarketTotals:
		s := strings.Join(strings.Fields(strings.ToLower(raw)), "_")
		if quote.Point != nil && !strings.Contains(s, "_") {
			s = models.TotalsSelection(s, *quote.Point)
		}
		return s
	default:
		return strings.ToLower(raw)
	}
}

// SuggestStake returns a fractional Kelly stake for the candidate
func (d *ValueDetector) SuggestStake(c models.ValueBetCandidate, bankroll float64) float64 {
	return d.ApplyKellyCriterion(c.RealProbability, c.Odds, bankroll)
}
