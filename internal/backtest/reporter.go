package backtest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/yourusername/rugby-predictor/internal/models"
)

// SortedWeeks returns the evaluated week keys of the selected year in order
func SortedWeeks(result *models.BacktestResult) []string {
	weeks := result.Weeks()
	keys := make([]string, 0, len(weeks))
	for k := range weeks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GenerateConsoleReport formats a backtest result for terminal output
func GenerateConsoleReport(result *models.BacktestResult) string {
	stats := result.Statistics
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("League: %d\n", result.LeagueID))
	builder.WriteString(fmt.Sprintf("Year: %s (available: %s)\n", result.SelectedYear, strings.Join(result.AvailableYears, ", ")))
	builder.WriteString(fmt.Sprintf("Accuracy: %.2f%%\n", stats.AccuracyPercentage))
	builder.WriteString(fmt.Sprintf("Predictions: %d (correct %d, draws excluded %d, failed %d)\n",
		stats.TotalPredictions, stats.CorrectPredictions, stats.DrawsExcluded, stats.FailedPredictions))
	builder.WriteString(fmt.Sprintf("Average Score Error: %.2f\n", stats.AverageScoreError))
	builder.WriteString(fmt.Sprintf("Average Margin Error: %.2f\n", stats.AverageMarginError))
	builder.WriteString(fmt.Sprintf("Weeks: %d evaluated, %d skipped (min train games %d)\n",
		stats.WeeksEvaluated, stats.WeeksSkipped, stats.MinTrainGames))
	if stats.Incomplete {
		builder.WriteString(fmt.Sprintf("INCOMPLETE: %s\n", stats.IncompleteReason))
	}

	weeks := result.Weeks()
	for _, key := range SortedWeeks(result) {
		matches := weeks[key]
		correct := 0
		for _, m := range matches {
			if m.Correct {
				correct++
			}
		}
		builder.WriteString(fmt.Sprintf("  %s: %d/%d correct\n", key, correct, len(matches)))
	}
	return builder.String()
}

// GenerateCSVExport writes one row per evaluated match
func GenerateCSVExport(result *models.BacktestResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"week", "date", "match_id", "home_team", "away_team",
		"predicted_winner", "predicted_home_score", "predicted_away_score", "home_win_prob",
		"actual_home_score", "actual_away_score", "actual_winner",
		"correct", "margin_error", "score_error", "training_games",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	weeks := result.Weeks()
	for _, key := range SortedWeeks(result) {
		for _, m := range weeks[key] {
			record := []string{
				key,
				m.Date,
				strconv.FormatInt(m.MatchID, 10),
				teamLabel(m.HomeTeam, m.HomeTeamID),
				teamLabel(m.AwayTeam, m.AwayTeamID),
				string(m.PredictedWinner),
				formatFloat(m.PredictedHomeScore),
				formatFloat(m.PredictedAwayScore),
				strconv.FormatFloat(m.HomeWinProb, 'f', 4, 64),
				strconv.Itoa(m.ActualHomeScore),
				strconv.Itoa(m.ActualAwayScore),
				string(m.ActualWinner),
				strconv.FormatBool(m.Correct),
				formatFloat(m.MarginError),
				formatFloat(m.ScoreError),
				strconv.Itoa(m.TrainingGames),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func teamLabel(name string, id int64) string {
	if name != "" {
		return name
	}
	return strconv.FormatInt(id, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
