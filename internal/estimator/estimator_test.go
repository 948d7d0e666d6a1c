package estimator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-finder/internal/history"
	"github.com/yourusername/value-finder/internal/models"
	"github.com/yourusername/value-finder/internal/normalize"
)

var start = time.Date(2024, 9, 1, 18, 0, 0, 0, time.UTC)

func results() []models.MatchResult {
	return []models.MatchResult{
		models.NewMatchResult(start, "Getafe", "Sevilla", 2, 1),
		models.NewMatchResult(start.AddDate(0, 0, 7), "Sevilla", "Getafe", 1, 1),
		models.NewMatchResult(start.AddDate(0, 0, 14), "Getafe", "Valencia", 1, 0),
		models.NewMatchResult(start.AddDate(0, 0, 21), "Valencia", "Sevilla", 2, 1),
	}
}

func newRepo(t *testing.T, res []models.MatchResult) *history.Repository {
	t.Helper()
	return history.NewRepository(res, normalize.Default(nil), history.Config{WindowDays: 180, Anchor: history.AnchorLatestResult})
}

func newEstimator(t *testing.T, repo *history.Repository, mutate func(*Config)) *Estimator {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(repo, cfg)
	require.NoError(t, err)
	return e
}

func assertSumsToOne(t *testing.T, est models.ProbabilityEstimate) {
	t.Helper()
	assert.InDelta(t, 1.0, est.Sum(), 1e-6, "market %s", est.MarketKey)
}

func TestExpectedGoalsBlend(t *testing.T) {
	repo := newRepo(t, results())
	e := newEstimator(t, repo, nil)

	xg, err := e.ExpectedGoals("Getafe CF", "Sevilla FC", repo.AsOf(time.Time{}))
	require.NoError(t, err)

	// league: 1.5 home, 0.75 away goals per match
	homeAttack := 1.5*0.7 + 1.5*0.3
	awayDefense := 2.0*0.7 + 1.5*0.3
	awayAttack := 1.0*0.7 + 0.75*0.3
	homeDefense := 0.5*0.7 + 0.75*0.3

	assert.InDelta(t, 1.3*(homeAttack/1.5)*(awayDefense/1.5)*1.5, xg.Home, 1e-9)
	assert.InDelta(t, (awayAttack/0.75)*(homeDefense/0.75)*0.75, xg.Away, 1e-9)
}

func TestExpectedGoalsNoRegression(t *testing.T) {
	repo := newRepo(t, results())
	e := newEstimator(t, repo, func(c *Config) { c.RegressionWeight = 1.0 })

	xg, err := e.ExpectedGoals("Getafe CF", "Sevilla FC", repo.AsOf(time.Time{}))
	require.NoError(t, err)
	assert.InDelta(t, 1.3*1.5*(2.0/1.5), xg.Home, 1e-9)
	assert.InDelta(t, 1.0*(0.5/0.75), xg.Away, 1e-9)
}

func TestZeroHistoryTeamFallsBackToLeague(t *testing.T) {
	repo := newRepo(t, results())
	e := newEstimator(t, repo, nil)
	asOf := repo.AsOf(time.Time{})

	xg, err := e.ExpectedGoals("Real Madrid CF", "Sevilla FC", asOf)
	require.NoError(t, err)
	assert.Greater(t, xg.Home, 0.0)

	est, err := e.Estimate(Request{
		MatchID:  "m1",
		HomeTeam: "Real Madrid CF",
		AwayTeam: "Sevilla FC",
		AsOf:     asOf,
		Markets:  models.SupportedMarkets(),
	})
	require.NoError(t, err)
	for _, market := range models.SupportedMarkets() {
		require.NotEmpty(t, est.Markets[market], market)
		for _, pe := range est.Markets[market] {
			assertSumsToOne(t, pe)
		}
	}
}

func TestExpectedGoalsFailsWithoutLeagueData(t *testing.T) {
	goalless := []models.MatchResult{
		models.NewMatchResult(start, "Getafe", "Sevilla", 0, 0),
	}
	repo := newRepo(t, goalless)
	e := newEstimator(t, repo, nil)

	_, err := e.Estimate(Request{HomeTeam: "Getafe CF", AwayTeam: "Sevilla FC", Markets: []string{models.MarketH2H}})
	require.Error(t, err)

	var insufficient *models.InsufficientDataError
	assert.True(t, errors.As(err, &insufficient))
	assert.True(t, models.IsRecoverable(err))

	empty := newEstimator(t, newRepo(t, nil), nil)
	_, err = empty.ExpectedGoals("Getafe CF", "Sevilla FC", time.Now())
	assert.True(t, errors.As(err, &insufficient))
}

func TestEstimateRejectsUnsupportedMarkets(t *testing.T) {
	repo := newRepo(t, results())
	e := newEstimator(t, repo, nil)

	_, err := e.Estimate(Request{HomeTeam: "Getafe CF", AwayTeam: "Sevilla FC", Markets: []string{"spreads"}})
	assert.ErrorIs(t, err, models.ErrUnsupportedMarket)

	_, err = e.Estimate(Request{HomeTeam: "Getafe CF", AwayTeam: "Sevilla FC"})
	assert.ErrorIs(t, err, models.ErrUnsupportedMarket)

	est, err := e.Estimate(Request{
		HomeTeam: "Getafe CF",
		AwayTeam: "Sevilla FC",
		AsOf:     repo.AsOf(time.Time{}),
		Markets:  []string{"spreads", models.MarketBTTS},
	})
	require.NoError(t, err)
	assert.Len(t, est.Markets, 1)
}

func TestEstimateEveryModelSumsToOne(t *testing.T) {
	repo := newRepo(t, results())
	asOf := repo.AsOf(time.Time{})

	for _, model := range []string{ModelStrength, ModelMonteCarlo, ModelPoisson} {
		for _, totals := range []string{ModelPoisson, ModelMonteCarlo} {
			t.Run(model+"/"+totals, func(t *testing.T) {
				e := newEstimator(t, repo, func(c *Config) {
					c.Model1X2 = model
					c.TotalsModel = totals
				})

				est, err := e.Estimate(Request{
					MatchID:     "m1",
					HomeTeam:    "Getafe CF",
					AwayTeam:    "Valencia CF",
					AsOf:        asOf,
					Markets:     models.SupportedMarkets(),
					TotalsLines: []float64{1.5, 2.5, 3.5},
				})
				require.NoError(t, err)

				require.Len(t, est.Markets[models.MarketTotals], 3)
				for _, estimates := range est.Markets {
					for _, pe := range estimates {
						assertSumsToOne(t, pe)
					}
				}

				h2h := est.Markets[models.MarketH2H][0]
				assert.ElementsMatch(t, []string{"Getafe CF", "Valencia CF", "draw"}, h2h.Selections())
				for _, p := range h2h.Probabilities {
					assert.GreaterOrEqual(t, p, 0.15-1e-9)
					assert.LessOrEqual(t, p, 0.85+1e-9)
				}

				p, ok := est.Lookup(models.MarketTotals, "over_3.5")
				require.True(t, ok)
				assert.Greater(t, p, 0.0)
			})
		}
	}
}

func TestStrengthModel(t *testing.T) {
	home, draw, away := StrengthModel{DrawFraction: 0.3}.Outcomes(2, 1)

	assert.InDelta(t, 2/3.9, home, 1e-12)
	assert.InDelta(t, 0.9/3.9, draw, 1e-12)
	assert.InDelta(t, 1/3.9, away, 1e-12)

	h, d, a := StrengthModel{DrawFraction: 0.3}.Outcomes(0, 0)
	assert.InDelta(t, 1.0, h+d+a, 1e-12)
}

func TestMonteCarloIsSeeded(t *testing.T) {
	m := MonteCarloModel{Simulations: 10000, Seed: 42}

	h1, d1, a1 := m.Outcomes(1.6, 1.1)
	h2, d2, a2 := m.Outcomes(1.6, 1.1)
	assert.Equal(t, []float64{h1, d1, a1}, []float64{h2, d2, a2})
	assert.InDelta(t, 1.0, h1+d1+a1, 1e-9)

	exactH, exactD, exactA := PoissonModel{MaxGoals: 12}.Outcomes(1.6, 1.1)
	assert.InDelta(t, exactH, h1, 0.03)
	assert.InDelta(t, exactD, d1, 0.03)
	assert.InDelta(t, exactA, a1, 0.03)

	other := MonteCarloModel{Simulations: 10000, Seed: 7}
	h3, _, _ := other.Outcomes(1.6, 1.1)
	assert.NotEqual(t, h1, h3)
}

func TestPoissonOver(t *testing.T) {
	want := 1 - math.Exp(-2.5)*(1+2.5+2.5*2.5/2)
	assert.InDelta(t, want, overProbability(2.5, 2.5), 1e-12)
	assert.InDelta(t, want, PoissonModel{}.Over(2.5, 2.5), 1e-12)
	assert.InDelta(t, 1-math.Exp(-2.5), overProbability(0.5, 2.5), 1e-12)
	assert.InDelta(t, 1.0, poissonCDF(40, 2.5), 1e-12)
}

func TestClampDistribution(t *testing.T) {
	tests := []struct {
		name   string
		in     map[string]float64
		lo, hi float64
		want   map[string]float64
	}{
		{
			name: "within bounds is only renormalised",
			in:   map[string]float64{"a": 2, "b": 1, "c": 1},
			lo:   0.15, hi: 0.85,
			want: map[string]float64{"a": 0.5, "b": 0.25, "c": 0.25},
		},
		{
			name: "dominant outcome pulled down",
			in:   map[string]float64{"a": 0.9, "b": 0.05, "c": 0.05},
			lo:   0.15, hi: 0.85,
			want: map[string]float64{"a": 0.7, "b": 0.15, "c": 0.15},
		},
		{
			name: "binary capped",
			in:   map[string]float64{"yes": 0.97, "no": 0.03},
			lo:   0.05, hi: 0.90,
			want: map[string]float64{"yes": 0.90, "no": 0.10},
		},
		{
			name: "infeasible bounds leave the renormalised distribution",
			in:   map[string]float64{"a": 3, "b": 1},
			lo:   0.6, hi: 0.9,
			want: map[string]float64{"a": 0.75, "b": 0.25},
		},
		{
			name: "zero mass becomes uniform",
			in:   map[string]float64{"a": 0, "b": 0},
			lo:   0.05, hi: 0.9,
			want: map[string]float64{"a": 0.5, "b": 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampDistribution(tt.in, tt.lo, tt.hi)
			require.Len(t, got, len(tt.want))
			sum := 0.0
			for k, v := range tt.want {
				assert.InDelta(t, v, got[k], 1e-9, k)
				sum += got[k]
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestClampDistributionKeepsBoundsExact(t *testing.T) {
	got := ClampDistribution(map[string]float64{"over": 0.99, "under": 0.01}, 0.05, 0.90)

	assert.LessOrEqual(t, got["over"], 0.90)
	assert.Equal(t, 0.90, got["over"])
	assert.InDelta(t, 0.10, got["under"], 1e-12)
	assert.InDelta(t, 1.0, got["over"]+got["under"], 1e-12)

	three := ClampDistribution(map[string]float64{"a": 0.96, "b": 0.03, "c": 0.01}, 0.02, 0.85)
	assert.Equal(t, 0.85, three["a"])
	assert.GreaterOrEqual(t, three["c"], 0.02)
	assert.InDelta(t, 1.0, three["a"]+three["b"]+three["c"], 1e-12)
}

func TestNewRejectsUnknownModel(t *testing.T) {
	repo := newRepo(t, results())

	cfg := DefaultConfig()
	cfg.Model1X2 = "elo"
	_, err := New(repo, cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.TotalsModel = "negative-binomial"
	_, err = New(repo, cfg)
	assert.Error(t, err)
}

func TestWithOutcomeModel(t *testing.T) {
	repo := newRepo(t, results())
	e := newEstimator(t, repo, nil)

	swapped := e.WithOutcomeModel(PoissonModel{MaxGoals: 8})
	assert.Equal(t, ModelPoisson, swapped.OutcomeModel().Name())
	assert.Equal(t, ModelStrength, e.OutcomeModel().Name())
}

func TestBTTSUsesTeamFrequencies(t *testing.T) {
	repo := newRepo(t, results())
	e := newEstimator(t, repo, nil)
	asOf := repo.AsOf(time.Time{})

	// Getafe: 2 of 3 matches with both scoring; Valencia: 1 of 2
	est := e.BTTS("Getafe CF", "Valencia CF", asOf)
	yes, ok := est.Get(models.SelectionYes)
	require.True(t, ok)
	assert.InDelta(t, (2.0/3.0+0.5)/2, yes, 1e-9)
	assertSumsToOne(t, est)
}
