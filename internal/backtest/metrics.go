package backtest

import (
	"math"

	"github.com/yourusername/rugby-predictor/internal/models"
)

// tally accumulates statistics in evaluation order so that repeated runs sum
// the same values in the same sequence.
type tally struct {
	total          int
	correct        int
	draws          int
	failed         int
	scoreError     float64
	marginError    float64
	weeksEvaluated int
	weeksSkipped   int
}

func (t *tally) add(m models.BacktestMatch) {
	t.total++
	t.scoreError += m.ScoreError
	t.marginError += m.MarginError
	if m.ActualWinner == models.OutcomeDraw {
		t.draws++
		return
	}
	if m.Correct {
		t.correct++
	}
}

func (t *tally) statistics(minTrainGames int) models.BacktestStatistics {
	stats := models.BacktestStatistics{
		TotalPredictions:   t.total,
		CorrectPredictions: t.correct,
		DrawsExcluded:      t.draws,
		FailedPredictions:  t.failed,
		WeeksEvaluated:     t.weeksEvaluated,
		WeeksSkipped:       t.weeksSkipped,
		MinTrainGames:      minTrainGames,
	}
	if decisive := t.total - t.draws; decisive > 0 {
		stats.AccuracyPercentage = round(float64(t.correct)/float64(decisive)*100, 2)
	}
	if t.total > 0 {
		stats.AverageScoreError = round(t.scoreError/float64(t.total), 2)
		stats.AverageMarginError = round(t.marginError/float64(t.total), 2)
	}
	return stats
}

// scoreMatch fills the error columns and correctness of an evaluated match
func scoreMatch(m *models.BacktestMatch) {
	predictedMargin := m.PredictedHomeScore - m.PredictedAwayScore
	actualMargin := float64(m.ActualHomeScore - m.ActualAwayScore)
	m.MarginError = math.Abs(predictedMargin - actualMargin)
	m.ScoreError = math.Abs(m.PredictedHomeScore-float64(m.ActualHomeScore)) +
		math.Abs(m.PredictedAwayScore-float64(m.ActualAwayScore))
	m.Correct = m.ActualWinner != models.OutcomeDraw && m.ActualWinner == m.PredictedWinner
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
