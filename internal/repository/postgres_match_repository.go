package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/rugby-predictor/internal/database"
	"github.com/yourusername/rugby-predictor/internal/models"
)

const (
	errScanMatch = "failed to scan match: %w"
	matchColumns = "id, league_id, home_team_id, away_team_id, date_event, home_score, away_score"
)

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

// ListCompletedByLeague retrieves scored matches of a league in chronological order
func (r *PostgresMatchRepository) ListCompletedByLeague(ctx context.Context, leagueID int64) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE league_id = $1 AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY date_event ASC, id ASC`

	rows, err := r.db.GetPool().Query(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed matches: %w", err)
	}
	return scanMatches(rows)
}

// ListUpcomingByLeague retrieves unscored matches of a league in chronological order
func (r *PostgresMatchRepository) ListUpcomingByLeague(ctx context.Context, leagueID int64) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE league_id = $1 AND (home_score IS NULL OR away_score IS NULL)
		ORDER BY date_event ASC, id ASC`

	rows, err := r.db.GetPool().Query(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming matches: %w", err)
	}
	return scanMatches(rows)
}

// Upsert inserts a fixture or records its result
func (r *PostgresMatchRepository) Upsert(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			date_event = EXCLUDED.date_event,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		match.ID, match.LeagueID, match.HomeTeamID, match.AwayTeamID,
		match.Date, match.HomeScore, match.AwayScore,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}
	return nil
}

func scanMatches(rows pgx.Rows) ([]*models.Match, error) {
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m := &models.Match{}
		if err := rows.Scan(
			&m.ID, &m.LeagueID, &m.HomeTeamID, &m.AwayTeamID,
			&m.Date, &m.HomeScore, &m.AwayScore,
		); err != nil {
			return nil, fmt.Errorf(errScanMatch, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
