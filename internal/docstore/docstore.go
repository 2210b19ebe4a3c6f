// Package docstore persists JSON documents such as league metric documents
// and backtest results.
package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/rugby-predictor/internal/config"
)

// Store is a key/value store of JSON documents
type Store interface {
	// Put stores doc under key, replacing any previous document
	Put(ctx context.Context, key string, doc any) error
	// Get decodes the document under key into dest. A missing key returns a
	// models.NotFoundError.
	Get(ctx context.Context, key string, dest any) error
	// Keys lists stored keys starting with prefix, sorted
	Keys(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// LeagueMetricsKey is the key of a league's metric document
func LeagueMetricsKey(leagueID int64) string {
	return fmt.Sprintf("league_metrics:%d", leagueID)
}

// BacktestKey is the key of a stored backtest result
func BacktestKey(leagueID int64, year string) string {
	return fmt.Sprintf("backtest:%d:%s", leagueID, year)
}

// New opens the store selected by cfg.Driver
func New(ctx context.Context, cfg *config.DocStoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "redis":
		return NewRedisStore(ctx, cfg)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown docstore driver %q", cfg.Driver)
	}
}
