package estimator

import (
	"fmt"
	"math/rand"
)

// OutcomeModel turns expected goals into home/draw/away probabilities
type OutcomeModel interface {
	Name() string
	Outcomes(lambdaHome, lambdaAway float64) (home, draw, away float64)
}

// TotalsModel prices the over side of a total goals line
type TotalsModel interface {
	Name() string
	Over(lambdaTotal, line float64) float64
}

// StrengthModel treats the draw as a fixed fraction of the combined strength mass
type StrengthModel struct {
	DrawFraction float64
}

func (m StrengthModel) Name() string { return ModelStrength }

func (m StrengthModel) Outcomes(lambdaHome, lambdaAway float64) (float64, float64, float64) {
	mass := lambdaHome + lambdaAway
	drawMass := m.DrawFraction * mass
	total := mass + drawMass
	if total <= 0 {
		return 1.0 / 3, 1.0 / 3, 1.0 / 3
	}
	return lambdaHome / total, drawMass / total, lambdaAway / total
}

// MonteCarloModel samples independent Poisson goal counts for both sides.
// Each call reseeds so a fixture always gets the same draws.
type MonteCarloModel struct {
	Simulations int
	Seed        int64
}

func (m MonteCarloModel) Name() string { return ModelMonteCarlo }

func (m MonteCarloModel) Outcomes(lambdaHome, lambdaAway float64) (float64, float64, float64) {
	rng := rand.New(rand.NewSource(m.Seed))
	var home, draw, away int
	for i := 0; i < m.Simulations; i++ {
		h := samplePoisson(rng, lambdaHome)
		a := samplePoisson(rng, lambdaAway)
		switch {
		case h > a:
			home++
		case h < a:
			away++
		default:
			draw++
		}
	}
	n := float64(m.Simulations)
	return float64(home) / n, float64(draw) / n, float64(away) / n
}

func (m MonteCarloModel) Over(lambdaTotal, line float64) float64 {
	rng := rand.New(rand.NewSource(m.Seed))
	over := 0
	for i := 0; i < m.Simulations; i++ {
		if float64(samplePoisson(rng, lambdaTotal)) > line {
			over++
		}
	}
	return float64(over) / float64(m.Simulations)
}

// PoissonModel sums the exact independent-Poisson score grid up to MaxGoals per side
type PoissonModel struct {
	MaxGoals int
}

func (m PoissonModel) Name() string { return ModelPoisson }

func (m PoissonModel) Outcomes(lambdaHome, lambdaAway float64) (float64, float64, float64) {
	homePMF := make([]float64, m.MaxGoals+1)
	awayPMF := make([]float64, m.MaxGoals+1)
	for k := 0; k <= m.MaxGoals; k++ {
		homePMF[k] = poissonPMF(k, lambdaHome)
		awayPMF[k] = poissonPMF(k, lambdaAway)
	}

	var home, draw, away float64
	for h, ph := range homePMF {
		for a, pa := range awayPMF {
			p := ph * pa
			switch {
			case h > a:
				home += p
			case h < a:
				away += p
			default:
				draw += p
			}
		}
	}
	return home, draw, away
}

func (m PoissonModel) Over(lambdaTotal, line float64) float64 {
	return overProbability(line, lambdaTotal)
}

func newOutcomeModel(cfg Config) (OutcomeModel, error) {
	switch cfg.Model1X2 {
	case ModelStrength, "":
		return StrengthModel{DrawFraction: cfg.DrawFraction}, nil
	case ModelMonteCarlo:
		if cfg.Simulations <= 0 {
			return nil, fmt.Errorf("montecarlo model needs a positive simulation count, got %d", cfg.Simulations)
		}
		return MonteCarloModel{Simulations: cfg.Simulations, Seed: cfg.Seed}, nil
	case ModelPoisson:
		if cfg.MaxGoals <= 0 {
			return nil, fmt.Errorf("poisson model needs a positive goal cap, got %d", cfg.MaxGoals)
		}
		return PoissonModel{MaxGoals: cfg.MaxGoals}, nil
	default:
		return nil, fmt.Errorf("unknown 1x2 model %q", cfg.Model1X2)
	}
}

func newTotalsModel(cfg Config) (TotalsModel, error) {
	switch cfg.TotalsModel {
	case ModelPoisson, "":
		return PoissonModel{MaxGoals: cfg.MaxGoals}, nil
	case ModelMonteCarlo:
		if cfg.Simulations <= 0 {
			return nil, fmt.Errorf("montecarlo model needs a positive simulation count, got %d", cfg.Simulations)
		}
		return MonteCarloModel{Simulations: cfg.Simulations, Seed: cfg.Seed}, nil
	default:
		return nil, fmt.Errorf("unknown totals model %q", cfg.TotalsModel)
	}
}
