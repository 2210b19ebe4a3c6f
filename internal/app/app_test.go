package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/rugby-predictor/internal/backtest"
	"github.com/yourusername/rugby-predictor/internal/config"
	"github.com/yourusername/rugby-predictor/internal/docstore"
	"github.com/yourusername/rugby-predictor/internal/models"
	"github.com/yourusername/rugby-predictor/internal/predictor"
	"github.com/yourusername/rugby-predictor/internal/registry"
)

const premiership int64 = 4414

func score(v int) *int { return &v }

func testDataset() Dataset {
	leagueID := premiership
	data := Dataset{
		Leagues: []*models.League{{ID: premiership, Name: "English Premiership Rugby"}},
		Teams: []*models.Team{
			{ID: 1, Name: "Leicester Tigers", LeagueID: &leagueID},
			{ID: 2, Name: "Bath Rugby", LeagueID: &leagueID},
			{ID: 3, Name: "Saracens", LeagueID: &leagueID},
			{ID: 4, Name: "Sale Sharks", LeagueID: &leagueID},
		},
	}

	strength := map[int64]int{1: 12, 2: 6, 3: 3, 4: 0}
	pairs := [][2]int64{{1, 2}, {3, 4}, {2, 3}, {4, 1}, {1, 3}, {2, 4}}
	start := time.Date(2024, 9, 7, 15, 0, 0, 0, time.UTC)
	id := int64(1)
	for w := 0; w < 12; w++ {
		for k, p := range pairs {
			home, away := p[0], p[1]
			if w%2 == 1 {
				home, away = away, home
			}
			data.Matches = append(data.Matches, &models.Match{
				ID:         id,
				LeagueID:   premiership,
				HomeTeamID: home,
				AwayTeamID: away,
				Date:       start.AddDate(0, 0, 7*w).Add(time.Duration(k) * time.Hour),
				HomeScore:  score(19 + strength[home] + (w+k)%5),
				AwayScore:  score(15 + strength[away] + (w*k)%6),
			})
			id++
		}
	}
	return data
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.LocalStore.Path = ":memory:"
	cfg.Models.LocalDir = t.TempDir()
	cfg.Backtest.MinTrainGames = 12
	cfg.Training.Iterations = 200
	return cfg
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	a, err := New(context.Background(), testConfig(t), log)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	body, err := json.Marshal(testDataset())
	require.NoError(t, err)
	summary, err := a.Import(context.Background(), bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, ImportSummary{Leagues: 1, Teams: 4, Matches: 72}, summary)
	return a
}

func TestTrainPredictAndBacktest(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	trained, err := a.Train(ctx, premiership)
	require.NoError(t, err)
	assert.FileExists(t, trained.Path)
	assert.Equal(t, "league_4414_model.json", filepath.Base(trained.Path))
	assert.Equal(t, 72, trained.Metrics.TrainingGames)
	assert.Equal(t, "English Premiership Rugby", trained.Metrics.LeagueName)

	var stored models.LeagueMetrics
	require.NoError(t, a.Documents.Get(ctx, docstore.LeagueMetricsKey(premiership), &stored))
	assert.Equal(t, trained.Metrics.TrainingGames, stored.TrainingGames)
	assert.Equal(t, 1, a.Registry.Len())

	pred, err := a.Predictions.Predict(ctx, predictor.Request{
		HomeTeam:  "leicester tigers",
		AwayTeam:  "Sale Sharks",
		LeagueID:  premiership,
		MatchDate: "2024-12-14",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeHome, pred.PredictedWinner)
	assert.Greater(t, pred.PredictedHomeScore, pred.PredictedAwayScore)
	assert.Equal(t, models.MethodModelOnly, pred.Method)

	result, err := a.Backtests.Backtest(ctx, backtest.Request{LeagueID: premiership})
	require.NoError(t, err)
	assert.Equal(t, "2024", result.SelectedYear)
	assert.False(t, result.Statistics.Incomplete)
	assert.Positive(t, result.Statistics.TotalPredictions)

	saved, err := a.Backtests.Stored(ctx, premiership, "2024")
	require.NoError(t, err)
	assert.Equal(t, result.RunID, saved.RunID)
}

func TestTrainWithoutHistory(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Train(context.Background(), 9999)
	var nf *models.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = a.Train(context.Background(), 0)
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestTrainedBundleSurvivesRestart(t *testing.T) {
	a := newTestApp(t)
	_, err := a.Train(context.Background(), premiership)
	require.NoError(t, err)

	restarted := registry.New(a.Logger, a.resolvers()...)
	bundle, err := restarted.Get(context.Background(), premiership)
	require.NoError(t, err)
	assert.Equal(t, premiership, bundle.LeagueID)
}

func TestImportRejectsBadRows(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	a, err := New(context.Background(), testConfig(t), log)
	require.NoError(t, err)
	defer a.Close()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"league without name", `{"leagues":[{"id":1}]}`},
		{"team without name", `{"teams":[{"id":3}]}`},
		{"match without date", `{"matches":[{"id":1,"league_id":1,"home_team_id":1,"away_team_id":2}]}`},
		{"team playing itself", `{"matches":[{"id":1,"league_id":1,"home_team_id":1,"away_team_id":1,"date":"2023-01-07T15:00:00Z"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Import(context.Background(), strings.NewReader(tt.body))
			var ve *models.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestLoadConfigRequiresAWSSettings(t *testing.T) {
	t.Setenv("AWS_SECRETS_ENABLED", "true")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_SECRET_NAME", "")

	_, err := LoadConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AWS_REGION")
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  name: test-predictor\n  history_source: sqlite\n"), 0o644))

	cfg, err := LoadConfig(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "test-predictor", cfg.App.Name)
	assert.Equal(t, 30, cfg.Backtest.MinTrainGames)
}

func TestSync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/key/lookupleague.php":
			w.Write([]byte(`{"leagues":[{"idLeague":"4430","strLeague":"French Top 14","strCurrentSeason":"2024-2025"}]}`))
		case "/key/lookup_all_teams.php":
			w.Write([]byte(`{"teams":[{"idTeam":"201","strTeam":"Toulouse","idLeague":"4430"},{"idTeam":"202","strTeam":"La Rochelle","idLeague":"4430"}]}`))
		case "/key/eventsseason.php":
			assert.Equal(t, "2023-2024", r.URL.Query().Get("s"))
			w.Write([]byte(`{"events":[{"idEvent":"9001","idLeague":"4430","strSeason":"2023-2024","idHomeTeam":"201","idAwayTeam":"202","strHomeTeam":"Toulouse","strAwayTeam":"La Rochelle","intHomeScore":"26","intAwayScore":"19","dateEvent":"2024-01-06","strTime":"20:00:00","strTimestamp":"2024-01-06T20:00:00"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Ingestion.Enabled = true
	cfg.Ingestion.BaseURL = server.URL
	cfg.Ingestion.APIKey = "key"
	cfg.Ingestion.MaxRetries = 0
	cfg.Ingestion.RateLimit = 0
	cfg.Ingestion.Seasons = []string{"2023-2024"}

	log := logrus.New()
	log.SetOutput(io.Discard)
	a, err := New(context.Background(), cfg, log)
	require.NoError(t, err)
	defer a.Close()

	summary, err := a.Sync(context.Background(), 4430, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Teams)
	assert.Equal(t, 1, summary.CompletedMatches)

	teams, err := a.Directory.Teams(context.Background(), 4430)
	require.NoError(t, err)
	assert.Len(t, teams, 2)

	require.NoError(t, a.SyncLeagues(context.Background(), []int64{4430}))
}

func TestSyncDisabled(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	a, err := New(context.Background(), testConfig(t), log)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Sync(context.Background(), 4414, nil)
	assert.ErrorIs(t, err, ErrIngestionDisabled)
}
