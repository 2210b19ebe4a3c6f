package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/rugby-predictor/internal/artifact"
	"github.com/yourusername/rugby-predictor/internal/config"
	"github.com/yourusername/rugby-predictor/internal/features"
)

// DefaultMinTrainGames is the training history a week needs to be evaluated
const DefaultMinTrainGames = 30

// BacktestConfig holds the engine settings
type BacktestConfig struct {
	MinTrainGames int
	MaxDuration   time.Duration
	CacheTTL      time.Duration
	Features      features.Config
	Training      artifact.Options
	OutputPath    string
}

// DefaultConfig returns the settings used when none are configured
func DefaultConfig() BacktestConfig {
	return BacktestConfig{
		MinTrainGames: DefaultMinTrainGames,
		MaxDuration:   14 * time.Minute,
		CacheTTL:      6 * time.Hour,
		Features:      features.DefaultConfig(),
		Training: artifact.Options{
			Seed:         42,
			Iterations:   500,
			LearningRate: 0.1,
			L2:           0.01,
		},
	}
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.Config) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, fmt.Errorf("config is required")
	}

	bt := BacktestConfig{
		MinTrainGames: cfg.Backtest.MinTrainGames,
		MaxDuration:   cfg.BacktestBudget(),
		CacheTTL:      time.Duration(cfg.Backtest.CacheTTLMinutes) * time.Minute,
		Features: features.Config{
			RatingK:       cfg.Features.RatingK,
			InitialRating: cfg.Features.InitialRating,
			HomeAdvantage: cfg.Features.HomeAdvantage,
			NeutralVenue:  cfg.Features.NeutralVenue,
			FormWindow:    cfg.Features.FormWindow,
		},
		Training: artifact.Options{
			Seed:         cfg.Training.Seed,
			Iterations:   cfg.Training.Iterations,
			LearningRate: cfg.Training.LearningRate,
			L2:           cfg.Training.L2,
		},
		OutputPath: cfg.Backtest.OutputPath,
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if b.MinTrainGames <= 0 {
		return fmt.Errorf("min train games must be positive")
	}
	if b.MaxDuration <= 0 {
		return fmt.Errorf("max duration must be positive")
	}
	if b.CacheTTL < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}
	if b.Training.Iterations <= 0 || b.Training.LearningRate <= 0 {
		return fmt.Errorf("training iterations and learning rate must be positive")
	}
	return nil
}
