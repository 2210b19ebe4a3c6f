package database

import (
	"context"
	"fmt"

	"github.com/yourusername/rugby-predictor/internal/config"
)

var requiredTables = []string{"leagues", "teams", "matches"}

// Initialize creates a database connection pool and verifies the fixture tables exist
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	for _, table := range requiredTables {
		var exists bool
		err := db.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table,
		).Scan(&exists)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to inspect schema: %w", err)
		}
		if !exists {
			db.Close()
			return nil, fmt.Errorf("table %q not found, run the fixture migrations before starting", table)
		}
	}

	return db, nil
}
