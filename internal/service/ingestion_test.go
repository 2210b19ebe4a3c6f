package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/rugby-predictor/internal/database"
	"github.com/yourusername/rugby-predictor/internal/datasource"
	"github.com/yourusername/rugby-predictor/internal/models"
	"github.com/yourusername/rugby-predictor/internal/repository"
)

const premiership int64 = 4414

func intPtr(v int) *int { return &v }

type fakeSource struct {
	league    *datasource.LeagueData
	teams     []datasource.TeamData
	seasons   map[string][]datasource.EventData
	seasonErr error
	fetched   []string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchLeague(ctx context.Context, leagueID int64) (*datasource.LeagueData, error) {
	if f.league == nil {
		return nil, &models.UpstreamServiceError{Source: "fake", Code: datasource.ErrCodeNotFound}
	}
	return f.league, nil
}

func (f *fakeSource) FetchTeams(ctx context.Context, leagueID int64) ([]datasource.TeamData, error) {
	return f.teams, nil
}

func (f *fakeSource) FetchSeason(ctx context.Context, leagueID int64, season string) ([]datasource.EventData, error) {
	f.fetched = append(f.fetched, season)
	if f.seasonErr != nil {
		return nil, f.seasonErr
	}
	return f.seasons[season], nil
}

func newSource() *fakeSource {
	kickoff := time.Date(2024, 9, 21, 14, 0, 0, 0, time.UTC)
	return &fakeSource{
		league: &datasource.LeagueData{SourceID: "4414", Name: "English Premiership Rugby", CurrentSeason: "2024-2025"},
		teams: []datasource.TeamData{
			{SourceID: "135", Name: " Bath ", LeagueSourceID: "4414"},
			{SourceID: "136", Name: "Saracens", LeagueSourceID: "4414"},
			{SourceID: "bad", Name: "Nobody"},
		},
		seasons: map[string][]datasource.EventData{
			"2024-2025": {
				{SourceID: "2001", HomeSourceID: "135", AwaySourceID: "136", HomeScore: intPtr(31), AwayScore: intPtr(24), StartTime: kickoff},
				{SourceID: "2002", HomeSourceID: "136", AwaySourceID: "135", StartTime: time.Now().Add(72 * time.Hour)},
				{SourceID: "2003", HomeSourceID: "136", AwaySourceID: "136", StartTime: kickoff},
				{SourceID: "x", HomeSourceID: "136", AwaySourceID: "135", StartTime: kickoff},
			},
			"2023-2024": {
				{SourceID: "1001", HomeSourceID: "136", AwaySourceID: "135", HomeScore: intPtr(18), AwayScore: intPtr(20), StartTime: kickoff.AddDate(-1, 0, 0)},
			},
		},
	}
}

func newService(t *testing.T, source datasource.FixtureSource) (*IngestionService, *repository.Repositories) {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repos, err := repository.NewSQLiteRepositories(db)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewIngestionService(source, repos, nil, NewDataNormalizer(map[string]string{"Bath": "Bath Rugby"}), log)
	return svc, repos
}

func TestSyncLeagueCurrentSeason(t *testing.T) {
	source := newSource()
	svc, repos := newService(t, source)
	ctx := context.Background()

	summary, err := svc.SyncLeague(ctx, premiership, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-2025"}, source.fetched)
	assert.Equal(t, []string{"2024-2025"}, summary.Seasons)
	assert.Equal(t, 2, summary.Teams)
	assert.Equal(t, 4, summary.TotalEvents)
	assert.Equal(t, 1, summary.CompletedMatches)
	assert.Equal(t, 1, summary.UpcomingMatches)
	assert.Equal(t, 3, summary.ValidationErrors) // bad team id, same-team fixture, bad event id

	league, err := repos.League.GetByID(ctx, premiership)
	require.NoError(t, err)
	assert.Equal(t, "English Premiership Rugby", league.Name)

	team, err := repos.Team.GetByID(ctx, 135)
	require.NoError(t, err)
	assert.Equal(t, "Bath Rugby", team.Name)

	completed, err := repos.Match.ListCompletedByLeague(ctx, premiership)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, int64(2001), completed[0].ID)

	upcoming, err := repos.Match.ListUpcomingByLeague(ctx, premiership)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
}

func TestSyncLeagueIsIdempotent(t *testing.T) {
	source := newSource()
	svc, repos := newService(t, source)
	ctx := context.Background()

	_, err := svc.SyncLeague(ctx, premiership, []string{"2023-2024", "2024-2025"})
	require.NoError(t, err)
	_, err = svc.SyncLeague(ctx, premiership, []string{"2023-2024", "2024-2025"})
	require.NoError(t, err)

	completed, err := repos.Match.ListCompletedByLeague(ctx, premiership)
	require.NoError(t, err)
	assert.Len(t, completed, 2)
}

func TestSyncLeagueFailures(t *testing.T) {
	t.Run("unknown league", func(t *testing.T) {
		source := newSource()
		source.league = nil
		svc, _ := newService(t, source)

		_, err := svc.SyncLeague(context.Background(), premiership, nil)
		assert.ErrorIs(t, err, models.ErrUpstream)
	})

	t.Run("no current season", func(t *testing.T) {
		source := newSource()
		source.league.CurrentSeason = ""
		svc, _ := newService(t, source)

		_, err := svc.SyncLeague(context.Background(), premiership, nil)
		assert.Error(t, err)
		assert.Empty(t, source.fetched)
	})

	t.Run("season fetch fails", func(t *testing.T) {
		source := newSource()
		source.seasonErr = errors.New("connection reset")
		svc, _ := newService(t, source)

		_, err := svc.SyncLeague(context.Background(), premiership, nil)
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestValidateMatch(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	v := NewDataValidator()
	v.now = func() time.Time { return now }

	valid := &models.Match{ID: 1, LeagueID: premiership, HomeTeamID: 1, AwayTeamID: 2, Date: now.AddDate(0, 0, -7), HomeScore: intPtr(20), AwayScore: intPtr(13)}
	assert.Empty(t, v.ValidateMatch(valid))

	tests := []struct {
		name   string
		mutate func(m *models.Match)
	}{
		{"same teams", func(m *models.Match) { m.AwayTeamID = m.HomeTeamID }},
		{"no date", func(m *models.Match) { m.Date = time.Time{} }},
		{"far future", func(m *models.Match) { m.Date = now.AddDate(5, 0, 0); m.HomeScore, m.AwayScore = nil, nil }},
		{"one score", func(m *models.Match) { m.AwayScore = nil }},
		{"negative score", func(m *models.Match) { m.HomeScore = intPtr(-3) }},
		{"absurd score", func(m *models.Match) { m.AwayScore = intPtr(250) }},
		{"future result", func(m *models.Match) { m.Date = now.AddDate(0, 0, 7) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := *valid
			tt.mutate(&m)
			assert.NotEmpty(t, v.ValidateMatch(&m))
		})
	}
}
