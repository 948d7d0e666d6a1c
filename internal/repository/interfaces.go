package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/value-finder/internal/models"
)

// ValueBetRepository stores finished reports
type ValueBetRepository interface {
	SaveReport(ctx context.Context, report *models.ValueBetReport) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]models.ValueBetCandidate, error)
	ListRuns(ctx context.Context, since time.Time) ([]RunSummary, error)
}

// MatchResultRepository stores historical results for one league and season
type MatchResultRepository interface {
	UpsertBatch(ctx context.Context, results []models.MatchResult) (int, error)
	FetchResults(ctx context.Context) ([]models.MatchResult, error)
	Name() string
}

// RunSummary is one stored run without its bets
type RunSummary struct {
	RunID       uuid.UUID
	GeneratedAt time.Time
	Profile     string
	ValueBets   int
}
