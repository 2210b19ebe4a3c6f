package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/rugby-predictor/internal/database"
	"github.com/yourusername/rugby-predictor/internal/models"
)

// PostgresLeagueRepository implements LeagueRepository for PostgreSQL
type PostgresLeagueRepository struct {
	db *database.DB
}

// NewPostgresLeagueRepository creates a new league repository
func NewPostgresLeagueRepository(db *database.DB) LeagueRepository {
	return &PostgresLeagueRepository{db: db}
}

// GetByID retrieves a league by ID
func (r *PostgresLeagueRepository) GetByID(ctx context.Context, id int64) (*models.League, error) {
	league := &models.League{}
	err := r.db.GetPool().QueryRow(ctx, `SELECT id, name FROM leagues WHERE id = $1`, id).
		Scan(&league.ID, &league.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return league, nil
}

// List retrieves all leagues ordered by ID
func (r *PostgresLeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	rows, err := r.db.GetPool().Query(ctx, `SELECT id, name FROM leagues ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	var leagues []*models.League
	for rows.Next() {
		league := &models.League{}
		if err := rows.Scan(&league.ID, &league.Name); err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		leagues = append(leagues, league)
	}
	return leagues, rows.Err()
}

// Upsert inserts or renames a league
func (r *PostgresLeagueRepository) Upsert(ctx context.Context, league *models.League) error {
	_, err := r.db.GetPool().Exec(ctx, `
		INSERT INTO leagues (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, league.ID, league.Name)
	if err != nil {
		return fmt.Errorf("failed to upsert league: %w", err)
	}
	return nil
}
