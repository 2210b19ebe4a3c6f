package repository

import (
	"database/sql"
	"fmt"

	"github.com/yourusername/rugby-predictor/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	League LeagueRepository
	Team   TeamRepository
	Match  MatchRepository
}

// NewRepositories creates the Postgres-backed repositories
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		League: NewPostgresLeagueRepository(db),
		Team:   NewPostgresTeamRepository(db),
		Match:  NewPostgresMatchRepository(db),
	}, nil
}

// NewSQLiteRepositories creates repositories over the local fixture store
func NewSQLiteRepositories(db *sql.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite connection is required")
	}

	return &Repositories{
		League: &SQLiteLeagueRepository{db: db},
		Team:   &SQLiteTeamRepository{db: db},
		Match:  &SQLiteMatchRepository{db: db},
	}, nil
}
