package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-finder/internal/config"
	"github.com/yourusername/value-finder/internal/metrics"
	"github.com/yourusername/value-finder/internal/models"
	"github.com/yourusername/value-finder/internal/normalize"
	"github.com/yourusername/value-finder/internal/strategy"
)

// MockOddsSource mocks an odds source
type MockOddsSource struct {
	mock.Mock
}

func (m *MockOddsSource) Name() string { return "mock_odds" }

func (m *MockOddsSource) FetchOdds(ctx context.Context) (models.OddsSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.OddsSnapshot), args.Error(1)
}

// MockHistorySource mocks a history source
type MockHistorySource struct {
	mock.Mock
}

func (m *MockHistorySource) Name() string { return "mock_history" }

func (m *MockHistorySource) FetchResults(ctx context.Context) ([]models.MatchResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MatchResult), args.Error(1)
}

var seasonStart = time.Date(2024, 9, 1, 18, 0, 0, 0, time.UTC)

func seasonResults() []models.MatchResult {
	var out []models.MatchResult
	for i := 0; i < 6; i++ {
		d := seasonStart.AddDate(0, 0, 7*i)
		out = append(out,
			models.NewMatchResult(d, "Getafe CF", "Sevilla FC", 3, 0),
			models.NewMatchResult(d.Add(time.Hour), "Valencia CF", "Getafe CF", 1, 1),
			models.NewMatchResult(d.Add(2*time.Hour), "Sevilla FC", "Valencia CF", 0, 2),
		)
	}
	return out
}

func h2hQuote(matchID, home, away, bookmaker, selection string, price float64) models.OddsQuote {
	return models.OddsQuote{
		MatchID:      matchID,
		HomeTeam:     home,
		AwayTeam:     away,
		CommenceTime: seasonStart.AddDate(0, 2, 0),
		Bookmaker:    bookmaker,
		MarketKey:    models.MarketH2H,
		Selection:    selection,
		Price:        price,
	}
}

func snapshot() models.OddsSnapshot {
	return models.OddsSnapshot{
		FetchedAt: seasonStart.AddDate(0, 2, 0),
		Quotes: []models.OddsQuote{
			h2hQuote("m1", "Getafe", "Sevilla", "pinnacle", "Getafe", 4.0),
			h2hQuote("m1", "Getafe", "Sevilla", "bet365", "Getafe", 3.0),
			h2hQuote("m1", "Getafe", "Sevilla", "pinnacle", "Draw", 1.2),
			h2hQuote("m1", "Getafe", "Sevilla", "shadybook", "Getafe", 9.0),
			h2hQuote("m2", "", "Valencia", "pinnacle", "Valencia", 2.0),
		},
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	minConfidence := 0.3
	cfg.Detection.MinConfidence = &minConfidence
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config) (*ValueBetService, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return NewValueBetService(cfg, normalize.Default(nil), nil, nil, log), &buf
}

func TestRunFindsAndDeduplicatesValueBets(t *testing.T) {
	svc, buf := newTestService(t, testConfig())

	report, err := svc.Run(context.Background(), RunInput{Snapshot: snapshot(), History: seasonResults()})
	require.NoError(t, err)

	assert.Equal(t, "balanced", report.Profile)
	assert.NotEmpty(t, report.RunID.String())

	require.Len(t, report.Bets, 1)
	bet := report.Bets[0]
	assert.Equal(t, "pinnacle", bet.Bookmaker, "the highest edge quote survives")
	assert.Equal(t, "Getafe CF", bet.Selection)
	assert.Equal(t, "Getafe CF vs Sevilla FC", bet.Match)
	assert.InDelta(t, bet.RealProbability-0.25, bet.Edge, 1e-12)
	assert.LessOrEqual(t, bet.RealProbability, 0.85)

	stats := report.Stats
	assert.Equal(t, 2, stats.MatchesSeen)
	assert.Equal(t, 1, stats.MatchesSkipped)
	assert.Equal(t, 4, stats.QuotesEvaluated)
	assert.Equal(t, 2, stats.CandidatesFound)
	assert.Equal(t, 1, stats.ValueBets)
	assert.Equal(t, 1, stats.QuotesRejected[strategy.RejectEdge])
	assert.Equal(t, 1, stats.QuotesRejected[strategy.RejectBookmaker])
	assert.Equal(t, 4.0, stats.AverageOdds)
	assert.Equal(t, map[string]float64{models.MarketH2H: 1}, stats.MarketShare)

	assert.Contains(t, buf.String(), "Match skipped")
	assert.Contains(t, buf.String(), "Value bet run completed")
}

func TestRunFatalInputs(t *testing.T) {
	svc, _ := newTestService(t, testConfig())

	_, err := svc.Run(context.Background(), RunInput{Snapshot: snapshot()})
	assert.True(t, errors.Is(err, models.ErrNoHistoricalData))

	unplayed := []models.MatchResult{{Date: seasonStart, HomeTeam: "Getafe CF", AwayTeam: "Sevilla FC"}}
	_, err = svc.Run(context.Background(), RunInput{Snapshot: snapshot(), History: unplayed})
	assert.True(t, errors.Is(err, models.ErrNoHistoricalData))

	_, err = svc.Run(context.Background(), RunInput{History: seasonResults()})
	assert.True(t, errors.Is(err, models.ErrNoOddsData))

	_, err = svc.Run(context.Background(), RunInput{Snapshot: snapshot(), History: seasonResults(), Profile: "reckless"})
	assert.Error(t, err)
}

func TestRunUnsupportedMarketsIsFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Detection.Markets = []string{"spreads"}
	svc, _ := newTestService(t, cfg)

	report, err := svc.Run(context.Background(), RunInput{Snapshot: snapshot(), History: seasonResults()})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, models.ErrUnsupportedMarket)
	assert.False(t, models.IsRecoverable(err))
}

func TestRunLogsDetectorParameters(t *testing.T) {
	svc, buf := newTestService(t, testConfig())

	_, err := svc.Run(context.Background(), RunInput{Snapshot: snapshot(), History: seasonResults()})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Detector parameters")
	assert.Contains(t, buf.String(), `"min_edge"`)
}

func TestRunUnknownTeamUsesLeagueAverages(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	snap := models.OddsSnapshot{Quotes: []models.OddsQuote{
		h2hQuote("m3", "Racing de Ferrol", "Sevilla", "pinnacle", "Racing de Ferrol", 5.0),
	}}

	report, err := svc.Run(context.Background(), RunInput{Snapshot: snap, History: seasonResults()})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Stats.MatchesSkipped)
	assert.Equal(t, 1, report.Stats.QuotesEvaluated)
	assert.Contains(t, report.Stats.UnmappedTeams, "Racing de Ferrol")
}

func TestRunUnmappedTeamsArePerRun(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	withElche := models.OddsSnapshot{Quotes: []models.OddsQuote{
		h2hQuote("m4", "Elche CF", "Sevilla", "pinnacle", "Elche CF", 5.0),
	}}

	first, err := svc.Run(context.Background(), RunInput{Snapshot: withElche, History: seasonResults()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Elche CF"}, first.Stats.UnmappedTeams)

	second, err := svc.Run(context.Background(), RunInput{Snapshot: snapshot(), History: seasonResults()})
	require.NoError(t, err)
	assert.Empty(t, second.Stats.UnmappedTeams)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.UnmappedTeams))
}

func TestRunCancelled(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, RunInput{Snapshot: snapshot(), History: seasonResults()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyResultIsNotNil(t *testing.T) {
	cfg := testConfig()
	minEdge := 0.9
	cfg.Detection.MinEdge = &minEdge
	svc, _ := newTestService(t, cfg)

	report, err := svc.Run(context.Background(), RunInput{Snapshot: snapshot(), History: seasonResults()})
	require.NoError(t, err)
	assert.NotNil(t, report.Bets)
	assert.Empty(t, report.Bets)
}

func TestRunProfiles(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	input := RunInput{Snapshot: snapshot(), History: seasonResults()}

	reports, err := svc.RunProfiles(context.Background(), input, nil, false)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "conservative", reports[0].Profile)
	assert.Equal(t, "aggressive", reports[2].Profile)

	reports, err = svc.RunProfiles(context.Background(), input, nil, true)
	require.NoError(t, err)
	assert.Len(t, reports, 1, "conservative already finds the bet")
}

func TestCollect(t *testing.T) {
	odds := &MockOddsSource{}
	hist := &MockHistorySource{}
	odds.On("FetchOdds", mock.Anything).Return(snapshot(), nil)
	hist.On("FetchResults", mock.Anything).Return(seasonResults(), nil)

	svc := NewValueBetService(testConfig(), normalize.Default(nil), odds, hist, logrus.New())
	input, err := svc.Collect(context.Background())
	require.NoError(t, err)

	assert.Len(t, input.Snapshot.Quotes, 5)
	assert.Len(t, input.History, 18)
	odds.AssertExpectations(t)
	hist.AssertExpectations(t)
}

func TestCollectPropagatesErrors(t *testing.T) {
	odds := &MockOddsSource{}
	hist := &MockHistorySource{}
	odds.On("FetchOdds", mock.Anything).Return(snapshot(), nil)
	hist.On("FetchResults", mock.Anything).Return(nil, errors.New("boom"))

	svc := NewValueBetService(testConfig(), normalize.Default(nil), odds, hist, logrus.New())
	_, err := svc.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mock_history")

	_, err = NewValueBetService(testConfig(), normalize.Default(nil), nil, nil, logrus.New()).Collect(context.Background())
	assert.Error(t, err)
}

type recordingSink struct {
	name string
	err  error
	got  []*models.ValueBetReport
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Deliver(ctx context.Context, report *models.ValueBetReport) error {
	r.got = append(r.got, report)
	return r.err
}

func TestDispatcherContinuesAfterFailure(t *testing.T) {
	failing := &recordingSink{name: "redis", err: errors.New("connection refused")}
	ok := &recordingSink{name: "file"}
	d := NewDispatcher(logrus.New(), failing)
	d.Add(ok)

	err := d.Deliver(context.Background(), &models.ValueBetReport{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
	assert.Len(t, ok.got, 1)
}
