// Package estimator computes outcome probabilities for the h2h, totals and btts
// markets from historical goal averages.
package estimator

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/value-finder/internal/history"
	"github.com/yourusername/value-finder/internal/models"
)

// expected goals never drop below this floor
const minLambda = 0.05

// Stats is the read side of the historical repository used by the estimator
type Stats interface {
	TeamAverages(team string, role models.Role, asOf time.Time, limit int) history.TeamAverages
	LeagueAverages() history.LeagueAverages
	BTTSRate(team string, asOf time.Time) (float64, bool)
}

// ExpectedGoals holds the Poisson rates of one fixture
type ExpectedGoals struct {
	Home float64
	Away float64
}

// Total returns the combined rate
func (xg ExpectedGoals) Total() float64 {
	return xg.Home + xg.Away
}

// Estimator prices markets for a fixture with a pluggable 1X2 model
type Estimator struct {
	stats   Stats
	cfg     Config
	outcome OutcomeModel
	totals  TotalsModel
}

// New creates an estimator; unknown model names are rejected here
func New(stats Stats, cfg Config) (*Estimator, error) {
	outcome, err := newOutcomeModel(cfg)
	if err != nil {
		return nil, err
	}
	totals, err := newTotalsModel(cfg)
	if err != nil {
		return nil, err
	}
	return &Estimator{stats: stats, cfg: cfg, outcome: outcome, totals: totals}, nil
}

// WithOutcomeModel returns a copy of the estimator using model for the 1X2 market
func (e *Estimator) WithOutcomeModel(model OutcomeModel) *Estimator {
	cp := *e
	cp.outcome = model
	return &cp
}

// OutcomeModel returns the active 1X2 model
func (e *Estimator) OutcomeModel() OutcomeModel {
	return e.outcome
}

// ExpectedGoals computes the home and away Poisson rates. Team averages are
// blended toward the league mean by RegressionWeight; a team with no matches in
// the window uses the league mean outright.
func (e *Estimator) ExpectedGoals(home, away string, asOf time.Time) (ExpectedGoals, error) {
	league := e.stats.LeagueAverages()
	if !usable(league.HomeGoals) || !usable(league.AwayGoals) {
		return ExpectedGoals{}, &models.InsufficientDataError{Have: league.Matches, Need: 1}
	}

	h := e.stats.TeamAverages(home, models.RoleHome, asOf, e.cfg.SampleSize)
	a := e.stats.TeamAverages(away, models.RoleAway, asOf, e.cfg.SampleSize)

	homeAttack := e.blend(h.Scored, league.HomeGoals, h.Fallback)
	homeDefense := e.blend(h.Conceded, league.AwayGoals, h.Fallback)
	awayAttack := e.blend(a.Scored, league.AwayGoals, a.Fallback)
	awayDefense := e.blend(a.Conceded, league.HomeGoals, a.Fallback)

	lambdaHome := e.cfg.HomeAdvantage *
		(homeAttack / league.HomeGoals) * (awayDefense / league.HomeGoals) * league.HomeGoals
	lambdaAway := (awayAttack / league.AwayGoals) * (homeDefense / league.AwayGoals) * league.AwayGoals

	return ExpectedGoals{
		Home: math.Max(lambdaHome, minLambda),
		Away: math.Max(lambdaAway, minLambda),
	}, nil
}

func (e *Estimator) blend(value, leagueAvg float64, fallback bool) float64 {
	if fallback || math.IsNaN(value) {
		return leagueAvg
	}
	w := e.cfg.RegressionWeight
	return value*w + leagueAvg*(1-w)
}

func usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// H2H returns home/draw/away probabilities keyed by team name and "draw"
func (e *Estimator) H2H(home, away string, xg ExpectedGoals) models.ProbabilityEstimate {
	pHome, pDraw, pAway := e.outcome.Outcomes(xg.Home, xg.Away)
	probs := ClampDistribution(map[string]float64{
		home:                 pHome,
		models.SelectionDraw: pDraw,
		away:                 pAway,
	}, e.cfg.H2HClampMin, e.cfg.H2HClampMax)
	return models.ProbabilityEstimate{MarketKey: models.MarketH2H, Probabilities: probs}
}

// Totals returns over/under probabilities for one goal line
func (e *Estimator) Totals(xg ExpectedGoals, line float64) models.ProbabilityEstimate {
	over := e.totals.Over(e.cfg.TotalsFactor*xg.Total(), line)
	probs := ClampDistribution(map[string]float64{
		models.TotalsSelection(models.SelectionOver, line):  over,
		models.TotalsSelection(models.SelectionUnder, line): 1 - over,
	}, e.cfg.ClampMin, e.cfg.ClampMax)
	return models.ProbabilityEstimate{MarketKey: models.MarketTotals, Probabilities: probs}
}

// BTTS returns yes/no probabilities from each side's both-scored frequency
func (e *Estimator) BTTS(home, away string, asOf time.Time) models.ProbabilityEstimate {
	leagueRate := e.stats.LeagueAverages().BTTSRate
	homeRate, ok := e.stats.BTTSRate(home, asOf)
	if !ok {
		homeRate = leagueRate
	}
	awayRate, ok := e.stats.BTTSRate(away, asOf)
	if !ok {
		awayRate = leagueRate
	}

	yes := (homeRate + awayRate) / 2
	probs := ClampDistribution(map[string]float64{
		models.SelectionYes: yes,
		models.SelectionNo:  1 - yes,
	}, e.cfg.ClampMin, e.cfg.ClampMax)
	return models.ProbabilityEstimate{MarketKey: models.MarketBTTS, Probabilities: probs}
}

// Request describes one fixture to price
type Request struct {
	MatchID     string
	HomeTeam    string
	AwayTeam    string
	AsOf        time.Time
	Markets     []string
	TotalsLines []float64
}

// DefaultTotalsLine is priced when a totals market is requested without lines
const DefaultTotalsLine = 2.5

// Estimate prices every requested market for a fixture. Team names must already
// be normalized. Unsupported markets are ignored, but a request naming none of the
// supported ones fails with ErrUnsupportedMarket.
func (e *Estimator) Estimate(req Request) (models.MatchEstimates, error) {
	out := models.MatchEstimates{
		MatchID:  req.MatchID,
		HomeTeam: req.HomeTeam,
		AwayTeam: req.AwayTeam,
		Markets:  make(map[string][]models.ProbabilityEstimate),
	}

	supported := false
	for _, m := range req.Markets {
		if models.IsSupportedMarket(m) {
			supported = true
			break
		}
	}
	if !supported {
		return out, fmt.Errorf("markets %v: %w", req.Markets, models.ErrUnsupportedMarket)
	}

	var xg ExpectedGoals
	needXG := false
	for _, m := range req.Markets {
		if m == models.MarketH2H || m == models.MarketTotals {
			needXG = true
		}
	}
	if needXG {
		var err error
		xg, err = e.ExpectedGoals(req.HomeTeam, req.AwayTeam, req.AsOf)
		if err != nil {
			return out, err
		}
	}

	for _, market := range req.Markets {
		if _, done := out.Markets[market]; done {
			continue
		}
		switch market {
		case models.MarketH2H:
			out.Markets[market] = []models.ProbabilityEstimate{e.H2H(req.HomeTeam, req.AwayTeam, xg)}
		case models.MarketTotals:
			lines := req.TotalsLines
			if len(lines) == 0 {
				lines = []float64{DefaultTotalsLine}
			}
			for _, line := range lines {
				out.Markets[market] = append(out.Markets[market], e.Totals(xg, line))
			}
		case models.MarketBTTS:
			out.Markets[market] = []models.ProbabilityEstimate{e.BTTS(req.HomeTeam, req.AwayTeam, req.AsOf)}
		}
	}

	return out, nil
}
