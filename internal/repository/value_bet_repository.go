package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/value-finder/internal/database"
	"github.com/yourusername/value-finder/internal/logger"
	"github.com/yourusername/value-finder/internal/models"
)

var valueBetColumns = []string{
	"run_id", "rank", "match_id", "match", "commence_time", "market", "selection", "bookmaker",
	"odds", "implied_probability", "real_probability", "edge", "expected_value", "confidence",
}

// PostgresValueBetRepository implements ValueBetRepository for PostgreSQL
type PostgresValueBetRepository struct {
	db    *database.DB
	audit *logger.AuditLogger
}

// NewPostgresValueBetRepository creates a new value bet repository. audit may be nil.
func NewPostgresValueBetRepository(db *database.DB, audit *logger.AuditLogger) *PostgresValueBetRepository {
	return &PostgresValueBetRepository{db: db, audit: audit}
}

// Name returns the sink name
func (r *PostgresValueBetRepository) Name() string {
	return "postgres"
}

// Deliver persists the report
func (r *PostgresValueBetRepository) Deliver(ctx context.Context, report *models.ValueBetReport) error {
	if err := r.SaveReport(ctx, report); err != nil {
		return err
	}
	if r.audit != nil {
		r.audit.LogReportPersisted(report.RunID.String(), len(report.Bets))
	}
	return nil
}

// SaveReport inserts the run and its bets in one transaction; bets go through COPY
func (r *PostgresValueBetRepository) SaveReport(ctx context.Context, report *models.ValueBetReport) error {
	stats, err := json.Marshal(report.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode run stats: %w", err)
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO value_bet_runs (run_id, generated_at, profile, stats) VALUES ($1, $2, $3, $4)`,
			report.RunID, report.GeneratedAt, report.Profile, stats,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		if len(report.Bets) == 0 {
			return nil
		}
		rows := valueBetRows(report)
		count, err := tx.CopyFrom(ctx, pgx.Identifier{"value_bets"}, valueBetColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to copy value bets: %w", err)
		}
		if count != int64(len(rows)) {
			return fmt.Errorf("inserted %d rows, expected %d", count, len(rows))
		}
		return nil
	})
}

// valueBetRows flattens bets in rank order, rounded to the four decimals of the columns
func valueBetRows(report *models.ValueBetReport) [][]interface{} {
	dec := func(v float64) float64 { return decimal.NewFromFloat(v).Round(4).InexactFloat64() }
	rows := make([][]interface{}, len(report.Bets))
	for i, b := range report.Bets {
		rows[i] = []interface{}{
			report.RunID, i + 1, b.MatchID, b.Match, b.CommenceTime, b.MarketKey, b.Selection, b.Bookmaker,
			dec(b.Odds), dec(b.ImpliedProbability), dec(b.RealProbability), dec(b.Edge), dec(b.ExpectedValue), dec(b.Confidence),
		}
	}
	return rows
}

// GetByRunID retrieves the bets of a run in rank order
func (r *PostgresValueBetRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]models.ValueBetCandidate, error) {
	query := `
		SELECT match_id, match, commence_time, market, selection, bookmaker,
		       odds, implied_probability, real_probability, edge, expected_value, confidence
		FROM value_bets
		WHERE run_id = $1
		ORDER BY rank ASC
	`

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query value bets: %w", err)
	}
	defer rows.Close()

	var bets []models.ValueBetCandidate
	for rows.Next() {
		var b models.ValueBetCandidate
		if err := rows.Scan(
			&b.MatchID, &b.Match, &b.CommenceTime, &b.MarketKey, &b.Selection, &b.Bookmaker,
			&b.Odds, &b.ImpliedProbability, &b.RealProbability, &b.Edge, &b.ExpectedValue, &b.Confidence,
		); err != nil {
			return nil, fmt.Errorf("failed to scan value bet: %w", err)
		}
		bets = append(bets, b)
	}

	return bets, rows.Err()
}

// ListRuns returns runs generated at or after since, newest first
func (r *PostgresValueBetRepository) ListRuns(ctx context.Context, since time.Time) ([]RunSummary, error) {
	query := `
		SELECT r.run_id, r.generated_at, r.profile, COUNT(b.rank)
		FROM value_bet_runs r
		LEFT JOIN value_bets b ON b.run_id = r.run_id
		WHERE r.generated_at >= $1
		GROUP BY r.run_id, r.generated_at, r.profile
		ORDER BY r.generated_at DESC
	`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.GeneratedAt, &s.Profile, &s.ValueBets); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, s)
	}

	return runs, rows.Err()
}
