package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/rugby-predictor/internal/database"
	"github.com/yourusername/rugby-predictor/internal/models"
)

const errScanTeam = "failed to scan team: %w"

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// GetByID retrieves a team by ID
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, `SELECT id, name, league_id FROM teams WHERE id = $1`, id).
		Scan(&team.ID, &team.Name, &team.LeagueID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// ListByLeague retrieves the teams of a league
func (r *PostgresTeamRepository) ListByLeague(ctx context.Context, leagueID int64) ([]*models.Team, error) {
	query := `
		SELECT id, name, league_id FROM teams
		WHERE league_id = $1
		   OR id IN (SELECT home_team_id FROM matches WHERE league_id = $1
		             UNION SELECT away_team_id FROM matches WHERE league_id = $1)
		ORDER BY id
	`

	rows, err := r.db.GetPool().Query(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.LeagueID); err != nil {
			return nil, fmt.Errorf(errScanTeam, err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// Upsert inserts or updates a team
func (r *PostgresTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	_, err := r.db.GetPool().Exec(ctx, `
		INSERT INTO teams (id, name, league_id) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, league_id = EXCLUDED.league_id
	`, team.ID, team.Name, team.LeagueID)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}
	return nil
}
