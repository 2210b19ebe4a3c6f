package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/rugby-predictor/internal/models"
)

// SQLite stores dates as RFC 3339 text in UTC so lexical order is chronological.
const sqliteTimeLayout = time.RFC3339

// SQLiteLeagueRepository implements LeagueRepository over the local fixture store
type SQLiteLeagueRepository struct {
	db *sql.DB
}

// GetByID retrieves a league by ID
func (r *SQLiteLeagueRepository) GetByID(ctx context.Context, id int64) (*models.League, error) {
	league := &models.League{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM leagues WHERE id = ?`, id).
		Scan(&league.ID, &league.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return league, nil
}

// List retrieves all leagues ordered by ID
func (r *SQLiteLeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM leagues ORDER BY id`)
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
func (r *SQLiteLeagueRepository) Upsert(ctx context.Context, league *models.League) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leagues (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, league.ID, league.Name)
	if err != nil {
		return fmt.Errorf("failed to upsert league: %w", err)
	}
	return nil
}

// SQLiteTeamRepository implements TeamRepository over the local fixture store
type SQLiteTeamRepository struct {
	db *sql.DB
}

// GetByID retrieves a team by ID
func (r *SQLiteTeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, league_id FROM teams WHERE id = ?`, id)
	team, err := scanSQLiteTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// ListByLeague retrieves the teams of a league
func (r *SQLiteTeamRepository) ListByLeague(ctx context.Context, leagueID int64) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, league_id FROM teams
		WHERE league_id = ?1
		   OR id IN (SELECT home_team_id FROM matches WHERE league_id = ?1
		             UNION SELECT away_team_id FROM matches WHERE league_id = ?1)
		ORDER BY id
	`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team, err := scanSQLiteTeam(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanTeam, err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// Upsert inserts or updates a team
func (r *SQLiteTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, league_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, league_id = excluded.league_id
	`, team.ID, team.Name, team.LeagueID)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}
	return nil
}

// SQLiteMatchRepository implements MatchRepository over the local fixture store
type SQLiteMatchRepository struct {
	db *sql.DB
}

// ListCompletedByLeague retrieves scored matches of a league in chronological order
func (r *SQLiteMatchRepository) ListCompletedByLeague(ctx context.Context, leagueID int64) ([]*models.Match, error) {
	return r.list(ctx, `SELECT `+matchColumns+` FROM matches
		WHERE league_id = ? AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY date_event ASC, id ASC`, leagueID)
}

// ListUpcomingByLeague retrieves unscored matches of a league in chronological order
func (r *SQLiteMatchRepository) ListUpcomingByLeague(ctx context.Context, leagueID int64) ([]*models.Match, error) {
	return r.list(ctx, `SELECT `+matchColumns+` FROM matches
		WHERE league_id = ? AND (home_score IS NULL OR away_score IS NULL)
		ORDER BY date_event ASC, id ASC`, leagueID)
}

// Upsert inserts a fixture or records its result
func (r *SQLiteMatchRepository) Upsert(ctx context.Context, match *models.Match) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date_event = excluded.date_event,
			home_score = excluded.home_score,
			away_score = excluded.away_score
	`,
		match.ID, match.LeagueID, match.HomeTeamID, match.AwayTeamID,
		match.Date.UTC().Format(sqliteTimeLayout), nullableScore(match.HomeScore), nullableScore(match.AwayScore),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}
	return nil
}

func (r *SQLiteMatchRepository) list(ctx context.Context, query string, leagueID int64) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var (
			m          models.Match
			date       string
			home, away sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.LeagueID, &m.HomeTeamID, &m.AwayTeamID, &date, &home, &away); err != nil {
			return nil, fmt.Errorf(errScanMatch, err)
		}
		m.Date, err = time.Parse(sqliteTimeLayout, date)
		if err != nil {
			return nil, fmt.Errorf("match %d has malformed date %q: %w", m.ID, date, err)
		}
		m.HomeScore = scoreFromNull(home)
		m.AwayScore = scoreFromNull(away)
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTeam(row rowScanner) (*models.Team, error) {
	var (
		team     models.Team
		leagueID sql.NullInt64
	)
	if err := row.Scan(&team.ID, &team.Name, &leagueID); err != nil {
		return nil, err
	}
	if leagueID.Valid {
		id := leagueID.Int64
		team.LeagueID = &id
	}
	return &team, nil
}

func nullableScore(score *int) sql.NullInt64 {
	if score == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*score), Valid: true}
}

func scoreFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	score := int(v.Int64)
	return &score
}
