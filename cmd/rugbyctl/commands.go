package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/rugby-predictor/internal/backtest"
	"github.com/yourusername/rugby-predictor/internal/docstore"
	"github.com/yourusername/rugby-predictor/internal/models"
	"github.com/yourusername/rugby-predictor/internal/predictor"
)

var (
	leagueID      int64
	homeTeam      string
	awayTeam      string
	matchDate     string
	year          string
	minTrainGames int
	refresh       bool
	jsonOutput    bool
	csvPath       string
	datasetPath   string
	seasons       []string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the winner and score of a fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		if matchDate == "" {
			matchDate = time.Now().UTC().Format("2006-01-02")
		}
		pred, err := application.Predictions.Predict(cmd.Context(), predictor.Request{
			HomeTeam:  homeTeam,
			AwayTeam:  awayTeam,
			LeagueID:  leagueID,
			MatchDate: matchDate,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(pred)
		}
		fmt.Printf("%s vs %s (%s)\n", pred.HomeTeam, pred.AwayTeam, pred.MatchDate)
		fmt.Printf("  Winner:      %s\n", pred.PredictedWinner)
		fmt.Printf("  Score:       %.0f - %.0f\n", pred.PredictedHomeScore, pred.PredictedAwayScore)
		fmt.Printf("  Home win:    %.1f%%\n", pred.HomeWinProb*100)
		fmt.Printf("  Confidence:  %.1f%%\n", pred.Confidence*100)
		fmt.Printf("  Method:      %s\n", pred.Method)
		return nil
	},
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a walk-forward backtest for a league",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := application.Backtests.Backtest(cmd.Context(), backtest.Request{
			LeagueID:      leagueID,
			Year:          year,
			MinTrainGames: minTrainGames,
			Refresh:       refresh,
		})
		if err != nil {
			return err
		}
		if csvPath != "" {
			if err := backtest.GenerateCSVExport(result, csvPath); err != nil {
				return err
			}
		}
		if jsonOutput {
			return printJSON(result)
		}
		fmt.Print(backtest.GenerateConsoleReport(result))
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and install the model bundle of a league",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := application.Train(cmd.Context(), leagueID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(result)
		}
		fmt.Printf("Trained %s on %d games: accuracy %.1f%%, written to %s\n",
			result.Metrics.LeagueName, result.Metrics.TrainingGames, result.Metrics.Accuracy, result.Path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load leagues, teams and matches from a JSON dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(datasetPath)
		if err != nil {
			return fmt.Errorf("failed to open dataset: %w", err)
		}
		defer f.Close()

		summary, err := application.Import(cmd.Context(), f)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d leagues, %d teams, %d matches\n", summary.Leagues, summary.Teams, summary.Matches)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull league teams and fixtures from the fixtures provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := application.Sync(cmd.Context(), leagueID, seasons)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(summary)
		}
		fmt.Printf("Synced league %d seasons %v: %d teams, %d completed, %d upcoming, %d rejected, %d failed\n",
			summary.LeagueID, summary.Seasons, summary.Teams, summary.CompletedMatches,
			summary.UpcomingMatches, summary.ValidationErrors, summary.Errors)
		return nil
	},
}

type leagueRow struct {
	League  *models.League        `json:"league"`
	Metrics *models.LeagueMetrics `json:"metrics,omitempty"`
}

var leaguesCmd = &cobra.Command{
	Use:   "leagues",
	Short: "List known leagues with their latest training metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		leagues, err := application.Repos.League.List(ctx)
		if err != nil {
			return err
		}

		rows := make([]leagueRow, 0, len(leagues))
		for _, league := range leagues {
			row := leagueRow{League: league}
			var m models.LeagueMetrics
			err := application.Documents.Get(ctx, docstore.LeagueMetricsKey(league.ID), &m)
			var nf *models.NotFoundError
			switch {
			case err == nil:
				row.Metrics = &m
			case !errors.As(err, &nf):
				return err
			}
			rows = append(rows, row)
		}

		if jsonOutput {
			return printJSON(rows)
		}
		for _, row := range rows {
			if row.Metrics == nil {
				fmt.Printf("%6d  %-36s  untrained\n", row.League.ID, row.League.Name)
				continue
			}
			fmt.Printf("%6d  %-36s  %5.1f%%  %d games  trained %s\n", row.League.ID, row.League.Name,
				row.Metrics.Accuracy, row.Metrics.TrainingGames, row.Metrics.TrainedAt.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{predictCmd, backtestCmd, trainCmd, syncCmd} {
		cmd.Flags().Int64VarP(&leagueID, "league", "l", 0, "League id")
		_ = cmd.MarkFlagRequired("league")
	}
	for _, cmd := range []*cobra.Command{predictCmd, backtestCmd, trainCmd, syncCmd, leaguesCmd} {
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")
	}

	predictCmd.Flags().StringVar(&homeTeam, "home", "", "Home team name")
	predictCmd.Flags().StringVar(&awayTeam, "away", "", "Away team name")
	predictCmd.Flags().StringVar(&matchDate, "date", "", "Match date (YYYY-MM-DD), defaults to today")
	_ = predictCmd.MarkFlagRequired("home")
	_ = predictCmd.MarkFlagRequired("away")

	backtestCmd.Flags().StringVar(&year, "year", "", "Season year, defaults to the latest with results")
	backtestCmd.Flags().IntVar(&minTrainGames, "min-train-games", 0, "Minimum prior games before a week is evaluated")
	backtestCmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the result cache")
	backtestCmd.Flags().StringVar(&csvPath, "csv", "", "Also write per-match rows to this CSV file")

	syncCmd.Flags().StringSliceVar(&seasons, "season", nil, "Season to sync, e.g. 2024-2025 (repeatable)")

	importCmd.Flags().StringVarP(&datasetPath, "file", "f", "", "Dataset JSON file")
	_ = importCmd.MarkFlagRequired("file")
}
