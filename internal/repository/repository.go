// Package repository provides PostgreSQL persistence for reports and match history.
package repository

import (
	"fmt"

	"github.com/yourusername/value-finder/internal/database"
	"github.com/yourusername/value-finder/internal/logger"
)

// Repositories holds all repository implementations
type Repositories struct {
	ValueBets    *PostgresValueBetRepository
	MatchResults *PostgresMatchResultRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB, league string, season int, audit *logger.AuditLogger) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		ValueBets:    NewPostgresValueBetRepository(db, audit),
		MatchResults: NewPostgresMatchResultRepository(db, league, season),
	}, nil
}
