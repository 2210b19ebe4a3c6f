package backtest

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/docstore"
	"github.com/yourusername/rugby-predictor/internal/logger"
	"github.com/yourusername/rugby-predictor/internal/models"
)

// Request is a backtest request
type Request struct {
	LeagueID      int64  `json:"league_id" validate:"required,gt=0"`
	Year          string `json:"year,omitempty" validate:"omitempty,len=4,numeric"`
	MinTrainGames int    `json:"min_train_games,omitempty" validate:"gte=0"`
	Refresh       bool   `json:"refresh,omitempty"`
}

// Service runs backtests behind the result cache and persists complete runs
type Service struct {
	engine *Engine
	cache  *ResultCache
	store  docstore.Store
	log    *logger.BacktestLogger
}

// NewService creates a backtest service. store may be nil.
func NewService(engine *Engine, cache *ResultCache, store docstore.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		engine: engine,
		cache:  cache,
		store:  store,
		log:    logger.NewBacktestLogger(log),
	}
}

// Backtest returns the cached result for the request unless Refresh is set,
// otherwise runs the engine. Incomplete results are neither cached nor stored.
func (s *Service) Backtest(ctx context.Context, req Request) (*models.BacktestResult, error) {
	history, err := s.engine.History(ctx, req.LeagueID)
	if err != nil {
		return nil, err
	}

	year := req.Year
	if year == "" {
		years := AvailableYears(history)
		year = years[len(years)-1]
	}
	minTrain := req.MinTrainGames
	if minTrain <= 0 {
		minTrain = s.engine.Config().MinTrainGames
	}
	key := CacheKey{LeagueID: req.LeagueID, Year: year, MinTrainGames: minTrain}

	if !req.Refresh {
		if cached, ok := s.cache.Get(key); ok {
			s.log.LogCacheHit(req.LeagueID, year)
			return cached, nil
		}
	}

	result, err := s.engine.Evaluate(ctx, req.LeagueID, history, year, minTrain)
	if err != nil {
		return nil, err
	}
	if result.Statistics.Incomplete {
		return result, nil
	}

	s.cache.Set(key, result)
	s.persist(ctx, result)
	return result, nil
}

// Invalidate drops cached results of a league, e.g. after retraining
func (s *Service) Invalidate(leagueID int64) {
	s.cache.Invalidate(leagueID)
}

// Stored returns the last persisted result of a league and year
func (s *Service) Stored(ctx context.Context, leagueID int64, year string) (*models.BacktestResult, error) {
	if s.store == nil {
		return nil, &models.NotFoundError{Kind: "stored backtest", Name: docstore.BacktestKey(leagueID, year)}
	}
	var result models.BacktestResult
	if err := s.store.Get(ctx, docstore.BacktestKey(leagueID, year), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) persist(ctx context.Context, result *models.BacktestResult) {
	if s.store == nil {
		return
	}
	key := docstore.BacktestKey(result.LeagueID, result.SelectedYear)
	if err := s.store.Put(ctx, key, result); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to persist backtest result")
	}
}
