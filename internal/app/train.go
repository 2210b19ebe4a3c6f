package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yourusername/rugby-predictor/internal/artifact"
	"github.com/yourusername/rugby-predictor/internal/docstore"
	"github.com/yourusername/rugby-predictor/internal/logger"
	"github.com/yourusername/rugby-predictor/internal/models"
	"github.com/yourusername/rugby-predictor/internal/registry"
)

// TrainResult describes a freshly trained league bundle
type TrainResult struct {
	Path    string               `json:"path"`
	Metrics models.LeagueMetrics `json:"metrics"`
}

// Train fits a bundle on every completed match of the league, writes it to
// the local model directory, records its metrics and swaps it into the registry
func (a *App) Train(ctx context.Context, leagueID int64) (*TrainResult, error) {
	if leagueID <= 0 {
		return nil, &models.ValidationError{Field: "league_id", Reason: "must be positive"}
	}

	start := time.Now()
	table, err := a.Features.Build(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, &models.NotFoundError{Kind: "matches", Name: fmt.Sprint(leagueID)}
	}

	name := ""
	if league, err := a.Directory.League(ctx, leagueID); err == nil {
		name = league.Name
	} else {
		var nf *models.NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	bundle, err := artifact.Train(table.Rows, table.Columns, artifact.Options{
		LeagueID:     leagueID,
		LeagueName:   name,
		Seed:         a.Config.Training.Seed,
		Iterations:   a.Config.Training.Iterations,
		LearningRate: a.Config.Training.LearningRate,
		L2:           a.Config.Training.L2,
		TrainedAt:    start.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to train league %d: %w", leagueID, err)
	}

	if err := os.MkdirAll(a.Config.Models.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}
	path := filepath.Join(a.Config.Models.LocalDir, fmt.Sprintf(registry.DefaultPatterns[0], leagueID))
	if err := artifact.Save(path, bundle); err != nil {
		return nil, err
	}

	summary := bundle.LeagueMetrics()
	if err := a.Documents.Put(ctx, docstore.LeagueMetricsKey(leagueID), summary); err != nil {
		return nil, fmt.Errorf("failed to store league metrics: %w", err)
	}

	a.Registry.Put(bundle, registry.Location{Source: "trained", Path: path, Origin: path})
	a.Backtests.Invalidate(leagueID)

	logger.NewModelLogger(a.Logger).LogModelTraining(leagueID, summary.TrainingGames,
		float64(time.Since(start).Milliseconds()), map[string]float64{
			"accuracy":        summary.Accuracy,
			"ai_rating":       summary.AIRating,
			"overall_mae":     summary.Performance.OverallMAE,
			"winner_accuracy": summary.Performance.WinnerAccuracy,
		})

	return &TrainResult{Path: path, Metrics: summary}, nil
}
