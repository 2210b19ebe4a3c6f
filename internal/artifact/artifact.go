// Package artifact holds trained league model bundles: one win classifier,
// two score regressors and the feature column order they were fitted on.
package artifact

import (
	"math"
	"time"

	"github.com/yourusername/rugby-predictor/internal/models"
)

// Bundle identification written into every encoded artifact
const (
	Format        = "rugby-predictor/model-bundle"
	SchemaVersion = 1
	ModelType     = "logistic-ols"
)

// Artifact is an immutable trained model for one league
type Artifact struct {
	Format         string             `json:"format"`
	SchemaVersion  int                `json:"schema_version"`
	LeagueID       int64              `json:"league_id"`
	LeagueName     string             `json:"league_name"`
	FeatureColumns []string           `json:"feature_columns"`
	Classifier     LogisticClassifier `json:"classifier"`
	RegHome        LinearRegressor    `json:"reg_home"`
	RegAway        LinearRegressor    `json:"reg_away"`
	Performance    Performance        `json:"performance"`
	TrainingGames  int                `json:"training_games"`
	TrainedAt      time.Time          `json:"trained_at"`
	Seed           int64              `json:"seed"`
}

// Performance is measured on the training rows at fit time
type Performance struct {
	WinnerAccuracy float64 `json:"winner_accuracy"`
	HomeMAE        float64 `json:"home_mae"`
	AwayMAE        float64 `json:"away_mae"`
	OverallMAE     float64 `json:"overall_mae"`
}

// Inference is the raw model output for one fixture
type Inference struct {
	HomeWinProb float64
	HomeScore   float64
	AwayScore   float64
}

// Vector orders values by FeatureColumns. Absent columns become 0.
func (a *Artifact) Vector(values map[string]float64) []float64 {
	x := make([]float64, len(a.FeatureColumns))
	for i, c := range a.FeatureColumns {
		x[i] = values[c]
	}
	return x
}

// Predict runs the classifier and both regressors. Scores are clamped at zero.
func (a *Artifact) Predict(values map[string]float64) Inference {
	x := a.Vector(values)
	return Inference{
		HomeWinProb: a.Classifier.PredictProba(x),
		HomeScore:   math.Max(0, a.RegHome.Predict(x)),
		AwayScore:   math.Max(0, a.RegAway.Predict(x)),
	}
}

// LeagueMetrics renders the registry metric document for this artifact
func (a *Artifact) LeagueMetrics() models.LeagueMetrics {
	return models.LeagueMetrics{
		LeagueID:      a.LeagueID,
		LeagueName:    a.LeagueName,
		Accuracy:      round(a.Performance.WinnerAccuracy*100, 2),
		TrainingGames: a.TrainingGames,
		AIRating:      round(a.Performance.WinnerAccuracy*10, 1),
		TrainedAt:     a.TrainedAt,
		ModelType:     ModelType,
		Performance: models.PerformanceSummary{
			OverallMAE:     round(a.Performance.OverallMAE, 3),
			WinnerAccuracy: round(a.Performance.WinnerAccuracy, 4),
		},
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
