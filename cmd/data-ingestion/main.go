// Package main provides the entry point for the fixture ingestion job.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/app"
	"github.com/yourusername/rugby-predictor/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		leagues    = flag.String("leagues", "", "Comma-separated league ids, defaults to ingestion.leagues")
		seasons    = flag.String("seasons", "", "Comma-separated seasons, defaults to ingestion.seasons")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(ctx, *configPath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	log := logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment, os.Stderr)

	if !cfg.Ingestion.Enabled {
		log.Fatal("Ingestion is disabled in configuration")
	}

	leagueIDs := cfg.Ingestion.Leagues
	if *leagues != "" {
		leagueIDs, err = parseIDs(*leagues)
		if err != nil {
			log.Fatalf("Invalid -leagues: %v", err)
		}
	}
	if len(leagueIDs) == 0 {
		log.Fatal("No leagues to ingest")
	}
	if *seasons != "" {
		cfg.Ingestion.Seasons = strings.Split(*seasons, ",")
	}

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	log.WithFields(logrus.Fields{
		"leagues": leagueIDs,
		"seasons": cfg.Ingestion.Seasons,
	}).Info("Rugby fixture ingestion starting")

	if err := application.SyncLeagues(ctx, leagueIDs); err != nil {
		log.WithError(err).Error("Ingestion finished with errors")
		application.Close()
		stop()
		os.Exit(1)
	}
	log.Info("Ingestion complete")
}

func parseIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
