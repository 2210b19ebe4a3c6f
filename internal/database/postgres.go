package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourusername/rugby-predictor/internal/config"
	"github.com/yourusername/rugby-predictor/internal/models"
)

const (
	connLifetime      = 30 * time.Minute
	connIdleTime      = 5 * time.Minute
	poolCheckInterval = time.Minute
)

// DB is the postgres pool backing the league, team and match repositories
type DB struct {
	pool *pgxpool.Pool
}

// NewDB opens the pool described by cfg and waits for the first ping
func NewDB(ctx context.Context, cfg *config.Config) (*DB, error) {
	poolConfig, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &models.UpstreamServiceError{Source: "postgres", Code: "unreachable", Err: err}
	}
	return &DB{pool: pool}, nil
}

// PoolConfig maps the database section onto pgxpool settings. Idle
// connections are kept warm as the pool minimum.
func PoolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.Database.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.Database.MaxConnections)
	}
	if cfg.Database.MaxIdleConnections > 0 {
		poolConfig.MinConns = int32(cfg.Database.MaxIdleConnections)
	}
	poolConfig.MaxConnLifetime = connLifetime
	poolConfig.MaxConnIdleTime = connIdleTime
	poolConfig.HealthCheckPeriod = poolCheckInterval
	return poolConfig, nil
}

// Ping checks that the match table answers queries, which a bare connection
// ping would not catch after a dropped schema
func (db *DB) Ping(ctx context.Context) error {
	var one int
	err := db.pool.QueryRow(ctx, "SELECT 1 FROM matches LIMIT 1").Scan(&one)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return &models.UpstreamServiceError{Source: "postgres", Code: "query_failed", Err: err}
	}
	return nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// GetPool returns the underlying pool for the repositories
func (db *DB) GetPool() *pgxpool.Pool {
	return db.pool
}
