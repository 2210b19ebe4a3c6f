// Package directory resolves team names within a league.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/rugby-predictor/internal/models"
	"github.com/yourusername/rugby-predictor/internal/repository"
)

// Directory looks teams up by name and league membership
type Directory struct {
	teams   repository.TeamRepository
	leagues repository.LeagueRepository
}

// New creates a directory over the given repositories
func New(teams repository.TeamRepository, leagues repository.LeagueRepository) *Directory {
	return &Directory{teams: teams, leagues: leagues}
}

// FindTeam returns the league team whose name matches exactly, ignoring case.
func (d *Directory) FindTeam(ctx context.Context, leagueID int64, name string) (*models.Team, error) {
	teams, err := d.teams.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for league %d: %w", leagueID, err)
	}
	return Match(teams, name)
}

// Teams returns every team of a league
func (d *Directory) Teams(ctx context.Context, leagueID int64) ([]*models.Team, error) {
	return d.teams.ListByLeague(ctx, leagueID)
}

// League returns league metadata, or a NotFoundError
func (d *Directory) League(ctx context.Context, leagueID int64) (*models.League, error) {
	league, err := d.leagues.GetByID(ctx, leagueID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &models.NotFoundError{Kind: "league", Name: fmt.Sprint(leagueID)}
	}
	return league, err
}

// Match picks the team named name from teams
func Match(teams []*models.Team, name string) (*models.Team, error) {
	for _, team := range teams {
		if team.MatchesName(name) {
			return team, nil
		}
	}
	return nil, &models.NotFoundError{Kind: "team", Name: name}
}
