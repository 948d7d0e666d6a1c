package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for value-bet runs.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogRunStarted logs the start of a run.
func (pl *PipelineLogger) LogRunStarted(runID, profile string, matches, historicalMatches int) {
	pl.WithFields(logrus.Fields{
		"run_id":             runID,
		"profile":            profile,
		"matches":            matches,
		"historical_matches": historicalMatches,
	}).Info("Value bet run started")
}

// LogMatchEvaluated logs the outcome of evaluating one match.
func (pl *PipelineLogger) LogMatchEvaluated(matchID, match string, quotesEvaluated, candidates int) {
	pl.WithFields(logrus.Fields{
		"match_id":         matchID,
		"match":            match,
		"quotes_evaluated": quotesEvaluated,
		"candidates":       candidates,
	}).Debug("Match evaluated")
}

// LogMatchSkipped logs a match excluded from the run.
func (pl *PipelineLogger) LogMatchSkipped(matchID, match string, err error) {
	pl.WithFields(logrus.Fields{
		"match_id": matchID,
		"match":    match,
		"reason":   err.Error(),
	}).Warn("Match skipped")
}

// LogValueBetFound logs a candidate that passed every filter.
func (pl *PipelineLogger) LogValueBetFound(match, market, selection, bookmaker string, odds, probability, edge, confidence float64) {
	pl.WithFields(logrus.Fields{
		"match":       match,
		"market":      market,
		"selection":   selection,
		"bookmaker":   bookmaker,
		"odds":        odds,
		"probability": probability,
		"edge":        edge,
		"confidence":  confidence,
	}).Info("Value bet found")
}

// LogRunCompleted logs the summary of a finished run.
func (pl *PipelineLogger) LogRunCompleted(runID, profile string, valueBets, skipped int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"run_id":      runID,
		"profile":     profile,
		"value_bets":  valueBets,
		"skipped":     skipped,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}).Info("Value bet run completed")
}
