// Package service runs the value-bet pipeline over one odds snapshot and one history.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-finder/internal/confidence"
	"github.com/yourusername/value-finder/internal/config"
	"github.com/yourusername/value-finder/internal/datasource"
	"github.com/yourusername/value-finder/internal/estimator"
	"github.com/yourusername/value-finder/internal/history"
	"github.com/yourusername/value-finder/internal/logger"
	"github.com/yourusername/value-finder/internal/metrics"
	"github.com/yourusername/value-finder/internal/models"
	"github.com/yourusername/value-finder/internal/normalize"
	"github.com/yourusername/value-finder/internal/ranking"
	"github.com/yourusername/value-finder/internal/strategy"
)

// Skip reasons recorded in metrics
const (
	skipInsufficientData = "insufficient_data"
	skipEstimateError    = "estimate_error"
	skipMissingTeams     = "missing_teams"
)

// RunInput is the static data one run works on
type RunInput struct {
	Snapshot models.OddsSnapshot
	History  []models.MatchResult
	// Profile overrides detection.profile when set
	Profile string
	// Order selects the ranking order; empty means edge
	Order string
}

// ValueBetService wires the normalizer, stats repository, estimator, confidence
// scorer, detector and ranker for each run
type ValueBetService struct {
	cfg     *config.Config
	names   *normalize.Normalizer
	odds    datasource.OddsSource
	history datasource.HistorySource
	log     *logger.PipelineLogger
	audit   *logger.AuditLogger
	now     func() time.Time
}

// NewValueBetService creates the service. The sources are only needed by Collect
// and may be nil when inputs are supplied directly to Run.
func NewValueBetService(
	cfg *config.Config,
	names *normalize.Normalizer,
	odds datasource.OddsSource,
	hist datasource.HistorySource,
	baseLogger *logrus.Logger,
) *ValueBetService {
	return &ValueBetService{
		cfg:     cfg,
		names:   names,
		odds:    odds,
		history: hist,
		log:     logger.NewPipelineLogger(baseLogger),
		audit:   logger.NewAuditLogger(baseLogger),
		now:     time.Now,
	}
}

// Collect fetches the odds snapshot and the match history from the configured sources
func (s *ValueBetService) Collect(ctx context.Context) (RunInput, error) {
	if s.odds == nil || s.history == nil {
		return RunInput{}, errors.New("odds and history sources are required")
	}
	snapshot, err := s.odds.FetchOdds(ctx)
	if err != nil {
		return RunInput{}, fmt.Errorf("failed to fetch odds from %s: %w", s.odds.Name(), err)
	}
	results, err := s.history.FetchResults(ctx)
	if err != nil {
		return RunInput{}, fmt.Errorf("failed to fetch history from %s: %w", s.history.Name(), err)
	}
	return RunInput{Snapshot: snapshot, History: results}, nil
}

// Run executes the pipeline once. An empty history or snapshot is fatal; every
// other problem only drops the affected match or quote.
func (s *ValueBetService) Run(ctx context.Context, input RunInput) (*models.ValueBetReport, error) {
	start := s.now()
	profile := input.Profile
	if profile == "" {
		profile = s.cfg.Detection.Profile
	}

	report, err := s.run(ctx, input, profile)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	finished := s.now()
	metrics.RecordRun(profile, outcome, finished.Sub(start).Seconds(), float64(finished.Unix()))
	if err != nil {
		return nil, err
	}

	s.log.LogRunCompleted(report.RunID.String(), profile, len(report.Bets), report.Stats.MatchesSkipped, finished.Sub(start))
	return report, nil
}

func (s *ValueBetService) run(ctx context.Context, input RunInput, profile string) (*models.ValueBetReport, error) {
	if len(input.History) == 0 {
		return nil, fmt.Errorf("history is empty: %w", models.ErrNoHistoricalData)
	}
	if len(input.Snapshot.Quotes) == 0 {
		return nil, fmt.Errorf("odds snapshot is empty: %w", models.ErrNoOddsData)
	}
	order, err := ranking.ParseOrder(input.Order)
	if err != nil {
		return nil, err
	}

	names := s.names.Scope()
	repo := history.NewRepository(input.History, names, history.FromConfig(s.cfg.History))
	if repo.Len() == 0 {
		return nil, fmt.Errorf("no played matches in %d results: %w", len(input.History), models.ErrNoHistoricalData)
	}

	est, err := estimator.New(repo, estimator.FromConfig(s.cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("failed to build estimator: %w", err)
	}
	scorer := confidence.NewScorer(repo, confidence.FromConfig(s.cfg.Confidence))
	detector, err := s.newDetector(profile, names)
	if err != nil {
		return nil, err
	}

	report := &models.ValueBetReport{
		RunID:       uuid.New(),
		GeneratedAt: s.now(),
		Profile:     profile,
		Stats:       models.RunStats{QuotesRejected: make(map[string]int)},
	}

	matches := input.Snapshot.Matches()
	s.log.LogRunStarted(report.RunID.String(), profile, len(matches), repo.Len())
	s.log.WithFields(logrus.Fields(detector.GetParameters())).Debug("Detector parameters")

	var candidates []models.ValueBetCandidate
	var detectStats strategy.DetectStats
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Stats.MatchesSeen++

		found, stats, err := s.evaluateMatch(match, names, repo, est, scorer, detector)
		if errors.Is(err, models.ErrUnsupportedMarket) {
			return nil, err
		}
		if err != nil {
			report.Stats.MatchesSkipped++
			metrics.RecordMatchSkipped(skipReason(err))
			s.log.LogMatchSkipped(match.MatchID, match.HomeTeam+" vs "+match.AwayTeam, err)
			continue
		}
		metrics.RecordMatchEvaluated()
		s.log.LogMatchEvaluated(match.MatchID, match.HomeTeam+" vs "+match.AwayTeam, stats.Evaluated, len(found))
		detectStats.Merge(stats)
		candidates = append(candidates, found...)
	}

	for _, err := range detectStats.Errors {
		s.log.WithError(err).Debug("Quote rejected")
	}
	metrics.RecordQuotesRejected(detectStats.Rejected)

	report.Bets = ranking.RankBy(candidates, order)
	if report.Bets == nil {
		report.Bets = []models.ValueBetCandidate{}
	}
	report.Stats.QuotesEvaluated = detectStats.Evaluated
	for reason, n := range detectStats.Rejected {
		report.Stats.QuotesRejected[reason] = n
	}
	report.Stats.CandidatesFound = len(candidates)
	report.Stats.UnmappedTeams = names.Unmapped()
	report.Summarize()

	metrics.UpdateUnmappedTeams(len(report.Stats.UnmappedTeams))
	for _, bet := range report.Bets {
		metrics.RecordValueBet(bet.MarketKey, bet.Edge, bet.Confidence)
		s.log.LogValueBetFound(bet.Match, bet.MarketKey, bet.Selection, bet.Bookmaker,
			bet.Odds, bet.RealProbability, bet.Edge, bet.Confidence)
	}
	return report, nil
}

func (s *ValueBetService) newDetector(profile string, names strategy.NameNormalizer) (*strategy.ValueDetector, error) {
	detection := s.cfg.Detection
	detection.Profile = profile
	filters, overrides, err := strategy.FromConfig(detection)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		s.audit.LogFilterOverride(profile, o.Parameter, o.ProfileValue, o.Value)
	}
	return strategy.NewValueDetector(strategy.DetectorConfig{
		Filters:    filters,
		Bookmakers: detection.Bookmakers,
		Markets:    detection.Markets,
	}, names), nil
}

// evaluateMatch estimates and scans one fixture. Quote team names are replaced
// by their canonical form so reports and estimates agree.
func (s *ValueBetService) evaluateMatch(
	match models.MatchQuotes,
	names *normalize.Scope,
	repo *history.Repository,
	est *estimator.Estimator,
	scorer *confidence.Scorer,
	detector strategy.Detector,
) ([]models.ValueBetCandidate, strategy.DetectStats, error) {
	home := names.Normalize(match.HomeTeam)
	away := names.Normalize(match.AwayTeam)
	if home == "" || away == "" {
		return nil, strategy.DetectStats{}, fmt.Errorf("match %s: %w", match.MatchID, errMissingTeams)
	}

	asOf := repo.AsOf(match.CommenceTime)
	estimates, err := est.Estimate(estimator.Request{
		MatchID:     match.MatchID,
		HomeTeam:    home,
		AwayTeam:    away,
		AsOf:        asOf,
		Markets:     s.cfg.Detection.Markets,
		TotalsLines: match.TotalsLines(),
	})
	if err != nil {
		return nil, strategy.DetectStats{}, err
	}

	quotes := make([]models.OddsQuote, len(match.Quotes))
	for i, q := range match.Quotes {
		q.HomeTeam = home
		q.AwayTeam = away
		quotes[i] = q
	}

	candidates, stats := detector.Detect(strategy.MatchContext{
		Quotes:    quotes,
		Estimates: estimates,
		Confidence: func(market, selection string) float64 {
			return scorer.Score(home, away, market, selection, asOf)
		},
	})
	return candidates, stats, nil
}

var errMissingTeams = errors.New("home or away team missing")

func skipReason(err error) string {
	var insufficient *models.InsufficientDataError
	switch {
	case errors.As(err, &insufficient):
		return skipInsufficientData
	case errors.Is(err, errMissingTeams):
		return skipMissingTeams
	default:
		return skipEstimateError
	}
}

// RunProfiles runs each profile in order over the same inputs. With stopAtFirst the
// scan ends at the first profile that reports any bet.
func (s *ValueBetService) RunProfiles(ctx context.Context, input RunInput, profiles []string, stopAtFirst bool) ([]*models.ValueBetReport, error) {
	if len(profiles) == 0 {
		profiles = strategy.ProfileTiers()
	}
	reports := make([]*models.ValueBetReport, 0, len(profiles))
	for _, profile := range profiles {
		in := input
		in.Profile = profile
		report, err := s.Run(ctx, in)
		if err != nil {
			return reports, fmt.Errorf("profile %s: %w", profile, err)
		}
		reports = append(reports, report)
		if stopAtFirst && len(report.Bets) > 0 {
			break
		}
	}
	return reports, nil
}
