package database

import (
	"context"
	"fmt"

	"github.com/yourusername/value-finder/internal/config"
)

// Schema creates the tables used by the repositories. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS match_results (
	league      TEXT        NOT NULL,
	season      INTEGER     NOT NULL,
	match_date  TIMESTAMPTZ NOT NULL,
	home_team   TEXT        NOT NULL,
	away_team   TEXT        NOT NULL,
	home_goals  INTEGER,
	away_goals  INTEGER,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (league, season, match_date, home_team, away_team)
);

CREATE TABLE IF NOT EXISTS value_bet_runs (
	run_id        UUID        PRIMARY KEY,
	generated_at  TIMESTAMPTZ NOT NULL,
	profile       TEXT        NOT NULL,
	stats         JSONB       NOT NULL
);

CREATE TABLE IF NOT EXISTS value_bets (
	run_id              UUID        NOT NULL REFERENCES value_bet_runs(run_id) ON DELETE CASCADE,
	rank                INTEGER     NOT NULL,
	match_id            TEXT        NOT NULL,
	match               TEXT        NOT NULL,
	commence_time       TIMESTAMPTZ NOT NULL,
	market              TEXT        NOT NULL,
	selection           TEXT        NOT NULL,
	bookmaker           TEXT        NOT NULL,
	odds                NUMERIC(10,4) NOT NULL,
	implied_probability NUMERIC(10,4) NOT NULL,
	real_probability    NUMERIC(10,4) NOT NULL,
	edge                NUMERIC(10,4) NOT NULL,
	expected_value      NUMERIC(10,4) NOT NULL,
	confidence          NUMERIC(10,4) NOT NULL,
	PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS value_bets_match_idx ON value_bets (match_id, market, selection);
`

// Initialize creates a connection pool and makes sure the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema applies Schema
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
