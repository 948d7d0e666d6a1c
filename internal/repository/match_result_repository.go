package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/value-finder/internal/database"
	"github.com/yourusername/value-finder/internal/models"
)

const upsertMatchResultQuery = `
	INSERT INTO match_results (league, season, match_date, home_team, away_team, home_goals, away_goals, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	ON CONFLICT (league, season, match_date, home_team, away_team) DO UPDATE SET
		home_goals = EXCLUDED.home_goals,
		away_goals = EXCLUDED.away_goals,
		updated_at = NOW()
`

// PostgresMatchResultRepository implements MatchResultRepository for PostgreSQL.
// It also serves as a history source for the pipeline.
type PostgresMatchResultRepository struct {
	db     *database.DB
	league string
	season int
}

// NewPostgresMatchResultRepository creates a repository scoped to one league and season
func NewPostgresMatchResultRepository(db *database.DB, league string, season int) *PostgresMatchResultRepository {
	return &PostgresMatchResultRepository{db: db, league: league, season: season}
}

// Name returns the source name
func (r *PostgresMatchResultRepository) Name() string {
	return "postgres"
}

// UpsertBatch inserts or updates results in one batch and returns the number written
func (r *PostgresMatchResultRepository) UpsertBatch(ctx context.Context, results []models.MatchResult) (int, error) {
	if len(results) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, m := range results {
		batch.Queue(upsertMatchResultQuery, r.league, r.season, m.Date, m.HomeTeam, m.AwayTeam, m.HomeGoals, m.AwayGoals)
	}

	br := r.db.GetPool().SendBatch(ctx, batch)
	defer br.Close()

	for i := range results {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("failed to upsert result %s v %s: %w", results[i].HomeTeam, results[i].AwayTeam, err)
		}
	}

	return len(results), nil
}

// FetchResults returns every stored result of the league and season by date
func (r *PostgresMatchResultRepository) FetchResults(ctx context.Context) ([]models.MatchResult, error) {
	query := `
		SELECT match_date, home_team, away_team, home_goals, away_goals
		FROM match_results
		WHERE league = $1 AND season = $2
		ORDER BY match_date ASC, home_team ASC
	`

	rows, err := r.db.Query(ctx, query, r.league, r.season)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %w", err)
	}
	defer rows.Close()

	var results []models.MatchResult
	for rows.Next() {
		var m models.MatchResult
		if err := rows.Scan(&m.Date, &m.HomeTeam, &m.AwayTeam, &m.HomeGoals, &m.AwayGoals); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		results = append(results, m)
	}

	return results, rows.Err()
}
