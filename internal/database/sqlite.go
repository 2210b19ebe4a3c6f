package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS leagues (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS teams (
	id        INTEGER PRIMARY KEY,
	name      TEXT NOT NULL,
	league_id INTEGER
);
CREATE INDEX IF NOT EXISTS idx_teams_league ON teams(league_id);
CREATE TABLE IF NOT EXISTS matches (
	id           INTEGER PRIMARY KEY,
	league_id    INTEGER NOT NULL,
	home_team_id INTEGER NOT NULL,
	away_team_id INTEGER NOT NULL,
	date_event   TEXT NOT NULL,
	home_score   INTEGER,
	away_score   INTEGER
);
CREATE INDEX IF NOT EXISTS idx_matches_league_date ON matches(league_id, date_event);
`

// OpenSQLite opens the local fixture store and creates its tables when missing.
// Pass ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	// a single connection keeps ":memory:" databases shared across queries
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	return db, nil
}
