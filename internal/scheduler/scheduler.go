// Package scheduler runs fixture syncs and backtest refreshes on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/backtest"
	"github.com/yourusername/rugby-predictor/internal/models"
)

// Backtester runs a backtest request
type Backtester interface {
	Backtest(ctx context.Context, req backtest.Request) (*models.BacktestResult, error)
}

// FixtureSyncer pulls fresh fixtures for leagues
type FixtureSyncer interface {
	SyncLeagues(ctx context.Context, leagueIDs []int64) error
}

// Scheduler manages scheduled refresh jobs
type Scheduler struct {
	cron       *cron.Cron
	backtester Backtester
	logger     *logrus.Entry
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
	jobTimeout time.Duration
}

// NewScheduler creates a new scheduler. jobTimeout bounds each league refresh.
func NewScheduler(backtester Backtester, jobTimeout time.Duration, logger *logrus.Logger) *Scheduler {
	if jobTimeout <= 0 {
		jobTimeout = 15 * time.Minute
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		backtester: backtester,
		logger:     logger.WithField("component", "scheduler"),
		jobIDs:     make([]cron.EntryID, 0),
		jobTimeout: jobTimeout,
	}
}

// ScheduleBacktestRefresh schedules a refresh of the most recent year's
// backtest for each league
func (s *Scheduler) ScheduleBacktestRefresh(cronExpression string, leagueIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if len(leagueIDs) == 0 {
		return fmt.Errorf("no leagues to refresh")
	}

	leagues := append([]int64(nil), leagueIDs...)
	entryID, err := s.cron.AddFunc(cronExpression, func() {
		s.RefreshLeagues(context.Background(), leagues)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":    cronExpression,
		"leagues": leagues,
	}).Info("Scheduled backtest refresh job")

	return nil
}

// ScheduleFixtureSync schedules a fixture sync of the given leagues. Sync
// jobs share the per-job timeout with backtest refreshes.
func (s *Scheduler) ScheduleFixtureSync(cronExpression string, leagueIDs []int64, syncer FixtureSyncer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if len(leagueIDs) == 0 {
		return fmt.Errorf("no leagues to sync")
	}

	leagues := append([]int64(nil), leagueIDs...)
	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		if err := syncer.SyncLeagues(ctx, leagues); err != nil {
			s.logger.WithError(err).Error("Scheduled fixture sync failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":    cronExpression,
		"leagues": leagues,
	}).Info("Scheduled fixture sync job")

	return nil
}

// RefreshLeagues refreshes each league in turn and returns how many succeeded.
// A failing league is logged and does not stop the others.
func (s *Scheduler) RefreshLeagues(ctx context.Context, leagueIDs []int64) int {
	refreshed := 0
	for _, leagueID := range leagueIDs {
		if ctx.Err() != nil {
			break
		}
		jobCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
		result, err := s.backtester.Backtest(jobCtx, backtest.Request{LeagueID: leagueID, Refresh: true})
		cancel()

		entry := s.logger.WithField("league_id", leagueID)
		if err != nil {
			entry.WithError(err).Error("Scheduled backtest refresh failed")
			continue
		}
		if result.Statistics.Incomplete {
			entry.WithField("reason", result.Statistics.IncompleteReason).Warn("Scheduled backtest refresh incomplete")
			continue
		}
		refreshed++
		entry.WithFields(logrus.Fields{
			"year":     result.SelectedYear,
			"accuracy": result.Statistics.AccuracyPercentage,
		}).Info("Scheduled backtest refresh completed")
	}
	return refreshed
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
