// Package backtest estimates model accuracy by retraining week by week on
// strictly earlier results and predicting the following week.
package backtest

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/artifact"
	"github.com/yourusername/rugby-predictor/internal/features"
	"github.com/yourusername/rugby-predictor/internal/logger"
	"github.com/yourusername/rugby-predictor/internal/metrics"
	"github.com/yourusername/rugby-predictor/internal/models"
	"github.com/yourusername/rugby-predictor/internal/predictor"
	"github.com/yourusername/rugby-predictor/internal/repository"
)

// Reasons recorded on incomplete runs
const (
	ReasonCancelled      = "cancelled"
	ReasonBudgetExceeded = "time budget exceeded"
)

// Engine orchestrates backtesting runs
type Engine struct {
	config  BacktestConfig
	matches repository.MatchRepository
	teams   repository.TeamRepository
	log     *logger.BacktestLogger
	now     func() time.Time
}

// NewEngine creates a new backtesting engine. teams may be nil, in which case
// results carry team ids only.
func NewEngine(cfg BacktestConfig, matches repository.MatchRepository, teams repository.TeamRepository, log *logrus.Logger) (*Engine, error) {
	if matches == nil {
		return nil, fmt.Errorf("match repository is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}

	return &Engine{
		config:  cfg,
		matches: matches,
		teams:   teams,
		log:     logger.NewBacktestLogger(log),
		now:     time.Now,
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() BacktestConfig {
	return e.config
}

// History loads every completed match of the league sorted by date
func (e *Engine) History(ctx context.Context, leagueID int64) ([]*models.Match, error) {
	matches, err := e.matches.ListCompletedByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches for league %d: %w", leagueID, err)
	}
	history := sortHistory(matches)
	if len(history) == 0 {
		return nil, &models.NotFoundError{Kind: "completed matches", Name: fmt.Sprintf("league %d", leagueID)}
	}
	return history, nil
}

// Run backtests one league and year. An empty year selects the most recent
// year with completed matches and minTrainGames <= 0 uses the configured value.
func (e *Engine) Run(ctx context.Context, leagueID int64, year string, minTrainGames int) (*models.BacktestResult, error) {
	history, err := e.History(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(ctx, leagueID, history, year, minTrainGames)
}

// Evaluate runs the walk-forward loop over history, which must be sorted by
// date. Cancellation and the time budget are checked between weeks; either
// stops the run and returns the weeks done so far flagged incomplete.
func (e *Engine) Evaluate(ctx context.Context, leagueID int64, history []*models.Match, year string, minTrainGames int) (*models.BacktestResult, error) {
	years := AvailableYears(history)
	if year == "" && len(years) > 0 {
		year = years[len(years)-1]
	}
	y, err := parseYear(year)
	if err != nil {
		return nil, err
	}
	if minTrainGames <= 0 {
		minTrainGames = e.config.MinTrainGames
	}

	start := e.now()
	deadline := start.Add(e.config.MaxDuration)
	runID := uuid.New()
	weeks := GroupByWeek(InYear(history, y))
	names := e.teamNames(ctx, leagueID)

	e.log.LogRunStarted(runID.String(), leagueID, year, len(weeks))

	result := &models.BacktestResult{
		RunID:             runID,
		LeagueID:          leagueID,
		AvailableYears:    years,
		SelectedYear:      year,
		MatchesByYearWeek: map[string]map[string][]models.BacktestMatch{year: {}},
		SkippedWeeks:      []string{},
	}

	var (
		t      tally
		reason string
	)
	for _, week := range weeks {
		if ctx.Err() != nil {
			reason = ReasonCancelled
			break
		}
		if e.now().After(deadline) {
			reason = ReasonBudgetExceeded
			break
		}

		training := TrainingSet(history, week.Start)
		if len(training) < minTrainGames {
			t.weeksSkipped++
			result.SkippedWeeks = append(result.SkippedWeeks, week.Key)
			metrics.RecordBacktestWeek("skipped")
			e.log.LogWeekSkipped(runID.String(), week.Key, len(training), minTrainGames)
			continue
		}

		evaluated, failed, err := e.evaluateWeek(leagueID, training, week, names)
		if err != nil {
			t.weeksSkipped++
			t.failed += len(week.Matches)
			result.SkippedWeeks = append(result.SkippedWeeks, week.Key)
			metrics.RecordBacktestWeek("skipped")
			e.log.WithError(err).WithFields(logrus.Fields{
				"run_id":  runID.String(),
				"week":    week.Key,
				"matches": len(week.Matches),
			}).Warn("Week training failed, skipping its matches")
			continue
		}
		t.weeksEvaluated++
		t.failed += failed
		correct := 0
		for _, m := range evaluated {
			t.add(m)
			if m.Correct {
				correct++
			}
		}
		result.MatchesByYearWeek[year][week.Key] = evaluated

		metrics.RecordBacktestWeek("evaluated")
		e.log.LogWeekEvaluated(runID.String(), week.Key, len(training), len(evaluated), correct)
	}

	stats := t.statistics(minTrainGames)
	stats.Incomplete, stats.IncompleteReason = reason != "", reason
	result.Statistics = stats
	result.GeneratedAt = e.now().UTC()

	elapsed := e.now().Sub(start)
	status := "complete"
	if stats.Incomplete {
		status = "incomplete"
	}
	metrics.RecordBacktestRun(status, elapsed.Seconds())
	metrics.UpdateBacktestAccuracy(strconv.FormatInt(leagueID, 10), year, stats.AccuracyPercentage)
	e.log.LogRunCompleted(runID.String(), leagueID, stats.TotalPredictions, stats.AccuracyPercentage,
		float64(elapsed.Milliseconds()), stats.Incomplete)

	return result, nil
}

// evaluateWeek trains a fresh artifact on training and predicts every match
// of the week. A training failure fails the whole week.
func (e *Engine) evaluateWeek(leagueID int64, training []*models.Match, week Week, names map[int64]string) ([]models.BacktestMatch, int, error) {
	opts := e.config.Training
	opts.LeagueID = leagueID
	opts.TrainedAt = week.Start

	table := features.BuildFromMatches(training, e.config.Features)
	a, err := artifact.Train(table.Rows, table.Columns, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("training for week %s failed: %w", week.Key, err)
	}

	trainedThrough := training[len(training)-1].Date.Format("2006-01-02")
	rows := features.RowsForFixtures(training, week.Matches, e.config.Features)

	evaluated := make([]models.BacktestMatch, 0, len(week.Matches))
	failed := 0
	for i, m := range week.Matches {
		inference := a.Predict(rows[i].Map())
		if math.IsNaN(inference.HomeWinProb) || math.IsNaN(inference.HomeScore) || math.IsNaN(inference.AwayScore) {
			failed++
			continue
		}

		winner := models.OutcomeAway
		if inference.HomeWinProb > 0.5 {
			winner = models.OutcomeHome
		}
		home, away, _ := predictor.ConsistentScores(inference.HomeScore, inference.AwayScore, winner)
		actual, _ := m.Outcome()

		bm := models.BacktestMatch{
			MatchID:            m.ID,
			Date:               m.Date.Format("2006-01-02"),
			HomeTeamID:         m.HomeTeamID,
			AwayTeamID:         m.AwayTeamID,
			HomeTeam:           names[m.HomeTeamID],
			AwayTeam:           names[m.AwayTeamID],
			PredictedWinner:    winner,
			PredictedHomeScore: home,
			PredictedAwayScore: away,
			HomeWinProb:        inference.HomeWinProb,
			ActualHomeScore:    *m.HomeScore,
			ActualAwayScore:    *m.AwayScore,
			ActualWinner:       actual,
			TrainingGames:      len(training),
			TrainedThrough:     trainedThrough,
		}
		scoreMatch(&bm)
		evaluated = append(evaluated, bm)
	}
	return evaluated, failed, nil
}

func (e *Engine) teamNames(ctx context.Context, leagueID int64) map[int64]string {
	names := make(map[int64]string)
	if e.teams == nil {
		return names
	}
	teams, err := e.teams.ListByLeague(ctx, leagueID)
	if err != nil {
		e.log.WithError(err).WithField("league_id", leagueID).Warn("Team names unavailable for backtest")
		return names
	}
	for _, team := range teams {
		names[team.ID] = team.Name
	}
	return names
}
