// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/app"
	"github.com/yourusername/rugby-predictor/internal/backtest"
	"github.com/yourusername/rugby-predictor/internal/logger"
)

func main() {
	var (
		configPath    = flag.String("config", "config/config.yaml", "Path to config file")
		leagueID      = flag.Int64("league", 0, "League id to backtest")
		year          = flag.String("year", "", "Season year, defaults to the latest with results")
		minTrainGames = flag.Int("min-train-games", 0, "Minimum prior games before a week is evaluated")
		refresh       = flag.Bool("refresh", false, "Bypass the result cache")
		output        = flag.String("output", "", "Override output path for the JSON result")
		csvPath       = flag.String("csv", "", "Write per-match rows to this CSV file")
		jsonOnly      = flag.Bool("json", false, "Print the result as JSON instead of the console report")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(ctx, *configPath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	log := logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment, os.Stderr)

	if *leagueID <= 0 {
		log.Fatal("-league is required")
	}
	if *output != "" {
		cfg.Backtest.OutputPath = *output
	}

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	log.WithFields(logrus.Fields{"league_id": *leagueID, "year": *year}).Info("Starting backtest")
	result, err := application.Backtests.Backtest(ctx, backtest.Request{
		LeagueID:      *leagueID,
		Year:          *year,
		MinTrainGames: *minTrainGames,
		Refresh:       *refresh,
	})
	if err != nil {
		log.Fatalf("Backtest failed: %v", err)
	}

	if *jsonOnly {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("Failed to print result: %v", err)
		}
	} else {
		fmt.Print(backtest.GenerateConsoleReport(result))
	}

	if cfg.Backtest.OutputPath != "" {
		if err := backtest.ExportToJSON(result, cfg.Backtest.OutputPath); err != nil {
			log.Fatalf("Failed to export JSON: %v", err)
		}
		log.WithField("path", cfg.Backtest.OutputPath).Info("Backtest result exported")
	}
	if *csvPath != "" {
		if err := backtest.GenerateCSVExport(result, *csvPath); err != nil {
			log.Fatalf("Failed to export CSV: %v", err)
		}
		log.WithField("path", *csvPath).Info("Backtest rows exported")
	}

	if result.Statistics.Incomplete {
		log.WithField("reason", result.Statistics.IncompleteReason).Warn("Backtest did not cover every week")
		application.Close()
		stop()
		os.Exit(2)
	}
}
