package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/rugby-predictor/internal/api"
	"github.com/yourusername/rugby-predictor/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run scheduled sync and refresh jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := application.Config

		server := api.NewServer(cfg, api.Dependencies{
			Predictor:  application.Predictions,
			Backtester: application.Backtests,
			Documents:  application.Documents,
			Health:     application.Health,
			Logger:     appLog,
		})

		sched, err := startScheduler()
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		var serveErr error
		select {
		case sig := <-sigChan:
			appLog.WithField("signal", sig).Info("Shutdown signal received")
		case serveErr = <-errCh:
			appLog.WithError(serveErr).Error("API server stopped")
		}

		if sched != nil {
			sched.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			appLog.WithError(err).Error("Error during API server shutdown")
		}

		appLog.Info("Rugby predictor shut down")
		return serveErr
	},
}

// startScheduler returns nil when no job is configured
func startScheduler() (*scheduler.Scheduler, error) {
	cfg := application.Config
	sched := scheduler.NewScheduler(application.Backtests, cfg.BacktestBudget(), appLog)
	jobs := 0

	if application.Ingestion != nil && cfg.Ingestion.SyncCron != "" && len(cfg.Ingestion.Leagues) > 0 {
		if err := sched.ScheduleFixtureSync(cfg.Ingestion.SyncCron, cfg.Ingestion.Leagues, application); err != nil {
			return nil, err
		}
		jobs++
	}
	if cfg.Backtest.RefreshCron != "" && len(cfg.Backtest.Leagues) > 0 {
		if err := sched.ScheduleBacktestRefresh(cfg.Backtest.RefreshCron, cfg.Backtest.Leagues); err != nil {
			return nil, err
		}
		jobs++
	}
	if jobs == 0 {
		return nil, nil
	}

	if err := sched.Start(); err != nil {
		return nil, err
	}
	return sched, nil
}
