package logger

import (
	"github.com/sirupsen/logrus"
)

// ModelLogger provides dedicated logging for artifact resolution and training.
type ModelLogger struct {
	*logrus.Entry
}

// NewModelLogger creates a new model logger.
func NewModelLogger(baseLogger *logrus.Logger) *ModelLogger {
	return &ModelLogger{
		Entry: baseLogger.WithField("component", "registry"),
	}
}

// LogResolution logs where a league artifact was found.
func (ml *ModelLogger) LogResolution(leagueID int64, source, location string, cacheHit bool) {
	ml.WithFields(logrus.Fields{
		"league_id": leagueID,
		"source":    source,
		"location":  location,
		"cache_hit": cacheHit,
	}).Info("Model artifact resolved")
}

// LogResolutionMiss logs a failed lookup with every location tried.
func (ml *ModelLogger) LogResolutionMiss(leagueID int64, tried []string) {
	ml.WithFields(logrus.Fields{
		"league_id": leagueID,
		"tried":     tried,
	}).Warn("Model artifact not found")
}

// LogDownload logs a remote artifact download.
func (ml *ModelLogger) LogDownload(leagueID int64, url string, bytes int64, durationMs float64) {
	ml.WithFields(logrus.Fields{
		"league_id":   leagueID,
		"url":         url,
		"bytes":       bytes,
		"duration_ms": durationMs,
	}).Info("Model artifact downloaded")
}

// LogModelTraining logs model training events.
func (ml *ModelLogger) LogModelTraining(leagueID int64, trainingGames int, durationMs float64, metrics map[string]float64) {
	ml.WithFields(logrus.Fields{
		"league_id":      leagueID,
		"training_games": trainingGames,
		"duration_ms":    durationMs,
		"metrics":        metrics,
	}).Info("Model training completed")
}
