package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/rugby-predictor/internal/models"
)

type fakeTeams struct {
	teams []*models.Team
	err   error
}

func (f *fakeTeams) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	for _, t := range f.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeTeams) ListByLeague(ctx context.Context, leagueID int64) ([]*models.Team, error) {
	return f.teams, f.err
}

func (f *fakeTeams) Upsert(ctx context.Context, team *models.Team) error { return nil }

type fakeLeagues struct{}

func (fakeLeagues) GetByID(ctx context.Context, id int64) (*models.League, error) {
	if id == 4414 {
		return &models.League{ID: 4414, Name: "English Premiership Rugby"}, nil
	}
	return nil, models.ErrNotFound
}

func (fakeLeagues) List(ctx context.Context) ([]*models.League, error) { return nil, nil }

func (fakeLeagues) Upsert(ctx context.Context, league *models.League) error { return nil }

func TestFindTeam(t *testing.T) {
	d := New(&fakeTeams{teams: []*models.Team{
		{ID: 1, Name: "Leicester Tigers"},
		{ID: 2, Name: "Bath Rugby"},
	}}, fakeLeagues{})

	tests := []struct {
		name   string
		lookup string
		wantID int64
	}{
		{name: "exact", lookup: "Bath Rugby", wantID: 2},
		{name: "case insensitive", lookup: "leicester TIGERS", wantID: 1},
		{name: "surrounding whitespace", lookup: "  Bath Rugby ", wantID: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team, err := d.FindTeam(context.Background(), 4414, tt.lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, team.ID)
		})
	}
}

func TestFindTeamMissingNamesTheTeam(t *testing.T) {
	d := New(&fakeTeams{teams: []*models.Team{{ID: 1, Name: "Leicester Tigers"}}}, fakeLeagues{})

	_, err := d.FindTeam(context.Background(), 4414, "Leicester")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "Leicester")
}

func TestFindTeamRepositoryFailure(t *testing.T) {
	d := New(&fakeTeams{err: errors.New("connection refused")}, fakeLeagues{})

	_, err := d.FindTeam(context.Background(), 4414, "Bath Rugby")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestLeague(t *testing.T) {
	d := New(&fakeTeams{}, fakeLeagues{})

	league, err := d.League(context.Background(), 4414)
	require.NoError(t, err)
	assert.Equal(t, "English Premiership Rugby", league.Name)

	_, err = d.League(context.Background(), 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
