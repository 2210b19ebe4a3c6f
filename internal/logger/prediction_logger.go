package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for single-match predictions.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "predictor"),
	}
}

// LogPrediction logs a completed prediction.
func (pl *PredictionLogger) LogPrediction(leagueID int64, homeTeam, awayTeam, winner, method string, homeWinProb, confidence, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"league_id":     leagueID,
		"home_team":     homeTeam,
		"away_team":     awayTeam,
		"winner":        winner,
		"method":        method,
		"home_win_prob": homeWinProb,
		"confidence":    confidence,
		"latency_ms":    latencyMs,
	}).Info("Prediction completed")
}

// LogMarketFallback logs that the market signal was replaced by the placeholder.
func (pl *PredictionLogger) LogMarketFallback(leagueID int64, reason string) {
	pl.WithFields(logrus.Fields{
		"league_id": leagueID,
		"reason":    reason,
	}).Warn("Market signal unavailable, using placeholder")
}

// LogScoreAdjustment logs a score pair rewritten to agree with the winner.
func (pl *PredictionLogger) LogScoreAdjustment(leagueID int64, winner string, fromHome, fromAway, toHome, toAway int) {
	pl.WithFields(logrus.Fields{
		"league_id": leagueID,
		"winner":    winner,
		"from_home": fromHome,
		"from_away": fromAway,
		"to_home":   toHome,
		"to_away":   toAway,
	}).Debug("Adjusted scores to match predicted winner")
}

// LogPredictionError logs prediction failures.
func (pl *PredictionLogger) LogPredictionError(leagueID int64, kind string, err error) {
	pl.WithFields(logrus.Fields{
		"league_id":  leagueID,
		"error_kind": kind,
	}).WithError(err).Error("Prediction failed")
}
