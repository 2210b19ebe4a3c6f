package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/datasource"
	"github.com/yourusername/rugby-predictor/internal/metrics"
	"github.com/yourusername/rugby-predictor/internal/repository"
)

// IngestionService syncs a provider's leagues, teams and fixtures into the
// history store. Upserts make repeated syncs idempotent.
type IngestionService struct {
	source     datasource.FixtureSource
	repos      *repository.Repositories
	validator  *DataValidator
	normalizer *DataNormalizer
	logger     *logrus.Entry
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	source datasource.FixtureSource,
	repos *repository.Repositories,
	validator *DataValidator,
	normalizer *DataNormalizer,
	logger *logrus.Logger,
) *IngestionService {
	if validator == nil {
		validator = NewDataValidator()
	}
	if normalizer == nil {
		normalizer = NewDataNormalizer(nil)
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &IngestionService{
		source:     source,
		repos:      repos,
		validator:  validator,
		normalizer: normalizer,
		logger:     logger.WithFields(logrus.Fields{"component": "ingestion", "source": source.Name()}),
	}
}

// SyncLeague stores the league, its teams and every fixture of the given
// seasons. With no seasons the provider's current season is used. Bad
// fixtures are counted and skipped; provider or store failures abort the run.
func (s *IngestionService) SyncLeague(ctx context.Context, leagueID int64, seasons []string) (*IngestionSummary, error) {
	tracker := NewIngestionMetrics(s.source.Name(), leagueID)

	summary, err := s.syncLeague(ctx, leagueID, seasons, tracker)
	if err != nil {
		metrics.RecordIngestionRun(s.source.Name(), "failure")
		s.logger.WithError(err).WithField("league_id", leagueID).Error("Fixture sync failed")
		return nil, err
	}

	metrics.RecordIngestionRun(s.source.Name(), "success")
	s.logger.WithFields(logrus.Fields{
		"league_id":         leagueID,
		"seasons":           strings.Join(summary.Seasons, ","),
		"teams":             summary.Teams,
		"completed_matches": summary.CompletedMatches,
		"upcoming_matches":  summary.UpcomingMatches,
		"validation_errors": summary.ValidationErrors,
		"errors":            summary.Errors,
		"duration_ms":       summary.Duration.Milliseconds(),
	}).Info("Fixture sync complete")
	return summary, nil
}

func (s *IngestionService) syncLeague(ctx context.Context, leagueID int64, seasons []string, tracker *IngestionMetrics) (*IngestionSummary, error) {
	src, err := s.source.FetchLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch league %d: %w", leagueID, err)
	}
	league, err := s.normalizer.NormalizeLeague(leagueID, src)
	if err != nil {
		return nil, err
	}
	if err := s.repos.League.Upsert(ctx, league); err != nil {
		return nil, err
	}

	if len(seasons) == 0 {
		if src.CurrentSeason == "" {
			return nil, fmt.Errorf("league %d reports no current season", leagueID)
		}
		seasons = []string{src.CurrentSeason}
	}

	teams, err := s.source.FetchTeams(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams of league %d: %w", leagueID, err)
	}
	for i := range teams {
		team, err := s.normalizer.NormalizeTeam(leagueID, &teams[i])
		if err != nil {
			tracker.RecordValidationError()
			s.logger.WithError(err).Warn("Skipping invalid team")
			continue
		}
		if err := s.repos.Team.Upsert(ctx, team); err != nil {
			return nil, err
		}
		tracker.RecordTeam()
	}

	for _, season := range seasons {
		events, err := s.source.FetchSeason(ctx, leagueID, season)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch season %s of league %d: %w", season, leagueID, err)
		}
		tracker.RecordSeason(season, len(events))

		for i := range events {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s.processEvent(ctx, leagueID, &events[i], tracker)
		}
	}

	return tracker.Finish(), nil
}

// processEvent normalizes, validates and stores one fixture
func (s *IngestionService) processEvent(ctx context.Context, leagueID int64, event *datasource.EventData, tracker *IngestionMetrics) {
	entry := s.logger.WithField("event_id", event.SourceID)

	match, err := s.normalizer.NormalizeEvent(leagueID, event)
	if err != nil {
		tracker.RecordValidationError()
		entry.WithError(err).Warn("Skipping unreadable fixture")
		return
	}
	if problems := s.validator.ValidateMatch(match); len(problems) > 0 {
		tracker.RecordValidationError()
		entry.WithField("problems", problems).Warn("Skipping invalid fixture")
		return
	}

	if err := s.repos.Match.Upsert(ctx, match); err != nil {
		tracker.RecordError()
		entry.WithError(err).Error("Failed to store fixture")
		return
	}
	tracker.RecordMatch(match.IsCompleted())
}
