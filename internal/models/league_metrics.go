package models

import "time"

// LeagueMetrics is the per-league registry document written after training
type LeagueMetrics struct {
	LeagueID      int64              `json:"league_id"`
	LeagueName    string             `json:"league_name"`
	Accuracy      float64            `json:"accuracy"`
	TrainingGames int                `json:"training_games"`
	AIRating      float64            `json:"ai_rating"`
	TrainedAt     time.Time          `json:"trained_at"`
	ModelType     string             `json:"model_type"`
	Performance   PerformanceSummary `json:"performance"`
}

// PerformanceSummary holds error metrics recorded at training time
type PerformanceSummary struct {
	OverallMAE     float64 `json:"overall_mae"`
	WinnerAccuracy float64 `json:"winner_accuracy"`
}
