package repository

import (
	"context"

	"github.com/yourusername/rugby-predictor/internal/models"
)

// LeagueRepository defines the interface for league data access
type LeagueRepository interface {
	GetByID(ctx context.Context, id int64) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
	Upsert(ctx context.Context, league *models.League) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Team, error)
	// ListByLeague returns teams registered to the league or appearing in any of its fixtures
	ListByLeague(ctx context.Context, leagueID int64) ([]*models.Team, error)
	Upsert(ctx context.Context, team *models.Team) error
}

// MatchRepository defines the interface for fixture data access
type MatchRepository interface {
	// ListCompletedByLeague returns scored matches ordered by date then id
	ListCompletedByLeague(ctx context.Context, leagueID int64) ([]*models.Match, error)
	ListUpcomingByLeague(ctx context.Context, leagueID int64) ([]*models.Match, error)
	Upsert(ctx context.Context, match *models.Match) error
}
