package logger

import (
	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for walk-forward runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogRunStarted logs the start of a run.
func (bl *BacktestLogger) LogRunStarted(runID string, leagueID int64, year string, weeks int) {
	bl.WithFields(logrus.Fields{
		"run_id":    runID,
		"league_id": leagueID,
		"year":      year,
		"weeks":     weeks,
	}).Info("Backtest run started")
}

// LogWeekEvaluated logs a completed week.
func (bl *BacktestLogger) LogWeekEvaluated(runID, week string, trainingGames, predictions, correct int) {
	bl.WithFields(logrus.Fields{
		"run_id":         runID,
		"week":           week,
		"training_games": trainingGames,
		"predictions":    predictions,
		"correct":        correct,
	}).Debug("Backtest week evaluated")
}

// LogWeekSkipped logs a week with too little training history.
func (bl *BacktestLogger) LogWeekSkipped(runID, week string, trainingGames, minimum int) {
	bl.WithFields(logrus.Fields{
		"run_id":         runID,
		"week":           week,
		"training_games": trainingGames,
		"minimum":        minimum,
	}).Debug("Backtest week skipped")
}

// LogRunCompleted logs the end of a run.
func (bl *BacktestLogger) LogRunCompleted(runID string, leagueID int64, total int, accuracy float64, durationMs float64, incomplete bool) {
	entry := bl.WithFields(logrus.Fields{
		"run_id":      runID,
		"league_id":   leagueID,
		"total":       total,
		"accuracy":    accuracy,
		"duration_ms": durationMs,
		"incomplete":  incomplete,
	})
	if incomplete {
		entry.Warn("Backtest run stopped early")
		return
	}
	entry.Info("Backtest run completed")
}

// LogCacheHit logs a result served from the backtest cache.
func (bl *BacktestLogger) LogCacheHit(leagueID int64, year string) {
	bl.WithFields(logrus.Fields{
		"league_id": leagueID,
		"year":      year,
	}).Debug("Backtest result served from cache")
}
