package models

import (
	"time"

	"github.com/google/uuid"
)

// BacktestMatch is one evaluated fixture in a walk-forward run
type BacktestMatch struct {
	MatchID            int64   `json:"match_id"`
	Date               string  `json:"date"`
	HomeTeamID         int64   `json:"home_team_id"`
	AwayTeamID         int64   `json:"away_team_id"`
	HomeTeam           string  `json:"home_team,omitempty"`
	AwayTeam           string  `json:"away_team,omitempty"`
	PredictedWinner    Outcome `json:"predicted_winner"`
	PredictedHomeScore float64 `json:"predicted_home_score"`
	PredictedAwayScore float64 `json:"predicted_away_score"`
	HomeWinProb        float64 `json:"home_win_prob"`
	ActualHomeScore    int     `json:"actual_home_score"`
	ActualAwayScore    int     `json:"actual_away_score"`
	ActualWinner       Outcome `json:"actual_winner"`
	MarginError        float64 `json:"margin_error"`
	ScoreError         float64 `json:"score_error"`
	Correct            bool    `json:"correct"`
	TrainingGames      int     `json:"training_games"`
	TrainedThrough     string  `json:"trained_through"`
}

// BacktestStatistics aggregates a walk-forward run
type BacktestStatistics struct {
	TotalPredictions   int     `json:"total_predictions"`
	CorrectPredictions int     `json:"correct_predictions"`
	DrawsExcluded      int     `json:"draws_excluded"`
	FailedPredictions  int     `json:"failed_predictions"`
	AccuracyPercentage float64 `json:"accuracy_percentage"`
	AverageScoreError  float64 `json:"average_score_error"`
	AverageMarginError float64 `json:"average_margin_error"`
	WeeksEvaluated     int     `json:"weeks_evaluated"`
	WeeksSkipped       int     `json:"weeks_skipped"`
	MinTrainGames      int     `json:"min_train_games"`
	Incomplete         bool    `json:"incomplete"`
	IncompleteReason   string  `json:"incomplete_reason,omitempty"`
}

// BacktestResult is the full walk-forward output for one league and year
type BacktestResult struct {
	RunID             uuid.UUID                             `json:"run_id"`
	LeagueID          int64                                 `json:"league_id"`
	AvailableYears    []string                              `json:"available_years"`
	SelectedYear      string                                `json:"selected_year"`
	MatchesByYearWeek map[string]map[string][]BacktestMatch `json:"matches_by_year_week"`
	SkippedWeeks      []string                              `json:"skipped_weeks"`
	Statistics        BacktestStatistics                    `json:"statistics"`
	GeneratedAt       time.Time                             `json:"generated_at"`
	Cached            bool                                  `json:"cached"`
}

// Weeks returns the evaluated week buckets for the selected year
func (r *BacktestResult) Weeks() map[string][]BacktestMatch {
	if r.MatchesByYearWeek == nil {
		return nil
	}
	return r.MatchesByYearWeek[r.SelectedYear]
}
