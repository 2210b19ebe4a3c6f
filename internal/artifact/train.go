package artifact

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yourusername/rugby-predictor/internal/features"
	"github.com/yourusername/rugby-predictor/internal/models"
)

// ErrInsufficientData is returned when no decisive match is available to fit the classifier
var ErrInsufficientData = errors.New("insufficient training data")

// regressorExcluded columns are exact linear combinations of others or constant.
var regressorExcluded = map[string]bool{
	features.ColEloDiff:       true,
	features.ColHomeAdvantage: true,
}

// Options control a training run
type Options struct {
	LeagueID     int64
	LeagueName   string
	Seed         int64
	Iterations   int
	LearningRate float64
	L2           float64
	TrainedAt    time.Time
}

// Train fits a fresh artifact on rows. Draws train the regressors but not the classifier.
func Train(rows []features.Row, columns []string, opts Options) (*Artifact, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no completed matches", ErrInsufficientData)
	}
	if opts.Iterations <= 0 || opts.LearningRate <= 0 {
		return nil, &models.ValidationError{Field: "training", Reason: "iterations and learning_rate must be positive"}
	}

	x := make([][]float64, len(rows))
	homeY := make([]float64, len(rows))
	awayY := make([]float64, len(rows))
	var (
		clsX [][]float64
		clsY []float64
	)
	for i := range rows {
		x[i] = rows[i].Values
		homeY[i] = float64(rows[i].HomeScore)
		awayY[i] = float64(rows[i].AwayScore)
		switch rows[i].Outcome() {
		case models.OutcomeHome:
			clsX, clsY = append(clsX, x[i]), append(clsY, 1)
		case models.OutcomeAway:
			clsX, clsY = append(clsX, x[i]), append(clsY, 0)
		}
	}
	if len(clsX) == 0 {
		return nil, fmt.Errorf("%w: every training match was drawn", ErrInsufficientData)
	}

	candidates := make([]int, 0, len(columns))
	for i, c := range columns {
		if !regressorExcluded[c] {
			candidates = append(candidates, i)
		}
	}

	a := &Artifact{
		Format:         Format,
		SchemaVersion:  SchemaVersion,
		LeagueID:       opts.LeagueID,
		LeagueName:     opts.LeagueName,
		FeatureColumns: append([]string(nil), columns...),
		Classifier: trainClassifier(clsX, clsY, classifierParams{
			seed:         opts.Seed,
			iterations:   opts.Iterations,
			learningRate: opts.LearningRate,
			l2:           opts.L2,
		}),
		RegHome:       trainRegressor("home_score", columns, candidates, x, homeY),
		RegAway:       trainRegressor("away_score", columns, candidates, x, awayY),
		TrainingGames: len(rows),
		TrainedAt:     opts.TrainedAt,
		Seed:          opts.Seed,
	}
	a.Performance = evaluate(a, x, homeY, awayY)
	return a, nil
}

func evaluate(a *Artifact, x [][]float64, homeY, awayY []float64) Performance {
	var (
		correct, decisive int
		homeErr, awayErr  float64
	)
	for i, row := range x {
		prob := a.Classifier.PredictProba(row)
		homeErr += math.Abs(math.Max(0, a.RegHome.Predict(row)) - homeY[i])
		awayErr += math.Abs(math.Max(0, a.RegAway.Predict(row)) - awayY[i])

		if homeY[i] == awayY[i] {
			continue
		}
		decisive++
		if (prob > 0.5) == (homeY[i] > awayY[i]) {
			correct++
		}
	}

	n := float64(len(x))
	perf := Performance{HomeMAE: homeErr / n, AwayMAE: awayErr / n}
	perf.OverallMAE = (perf.HomeMAE + perf.AwayMAE) / 2
	if decisive > 0 {
		perf.WinnerAccuracy = float64(correct) / float64(decisive)
	}
	return perf
}
