package predictor

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/rugby-predictor/internal/artifact"
	"github.com/yourusername/rugby-predictor/internal/directory"
	"github.com/yourusername/rugby-predictor/internal/features"
	"github.com/yourusername/rugby-predictor/internal/market"
	"github.com/yourusername/rugby-predictor/internal/models"
)

const (
	premiership = int64(4414)
	urc         = int64(4446)
)

type fakeTeams struct {
	teams []*models.Team
}

func (f *fakeTeams) FindTeam(ctx context.Context, leagueID int64, name string) (*models.Team, error) {
	return directory.Match(f.teams, name)
}

type fakeFeatures struct {
	table *features.Table
	err   error
}

func (f *fakeFeatures) Build(ctx context.Context, leagueID int64) (*features.Table, error) {
	return f.table, f.err
}

type fakeMarket struct {
	signal market.Signal
	err    error
	calls  int
}

func (f *fakeMarket) Fetch(ctx context.Context, leagueID int64, home, away string, date time.Time) (market.Signal, error) {
	f.calls++
	return f.signal, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func premiershipTeams() *fakeTeams {
	return &fakeTeams{teams: []*models.Team{
		{ID: 1, Name: "Leicester Tigers"},
		{ID: 2, Name: "Bath Rugby"},
		{ID: 3, Name: "Saracens"},
	}}
}

// testArtifact favours the side with the higher rating. The home score
// follows the home rating and the away score is fixed at awayScore.
func testArtifact(leagueID int64, awayScore float64) *artifact.Artifact {
	return &artifact.Artifact{
		Format:         artifact.Format,
		SchemaVersion:  artifact.SchemaVersion,
		LeagueID:       leagueID,
		FeatureColumns: []string{features.ColHomeElo, features.ColAwayElo},
		Classifier: artifact.LogisticClassifier{
			Weights: []float64{1, -1},
			Means:   []float64{1500, 1500},
			Scales:  []float64{100, 100},
		},
		RegHome: artifact.LinearRegressor{Intercept: -130, Inputs: []int{0}, Coefficients: []float64{0.1}},
		RegAway: artifact.LinearRegressor{Intercept: awayScore, MeanOnly: true},
	}
}

func row(day int, home, away int64, homeElo, awayElo float64) features.Row {
	values := make([]float64, len(features.Columns))
	values[0], values[1] = homeElo, awayElo
	return features.Row{
		HomeTeamID: home,
		AwayTeamID: away,
		Date:       time.Date(2024, 1, day, 15, 0, 0, 0, time.UTC),
		Values:     values,
	}
}

func tableOf(rows ...features.Row) *fakeFeatures {
	return &fakeFeatures{table: &features.Table{Columns: features.Columns, Rows: rows}}
}

func request(home, away string, leagueID int64) Request {
	return Request{HomeTeam: home, AwayTeam: away, LeagueID: leagueID, MatchDate: "2024-03-02"}
}

func TestPredictModelOnlyScenario(t *testing.T) {
	p := New(premiershipTeams(), tableOf(row(6, 1, 2, 1600, 1450)), nil, DefaultConfig(), quietLogger())

	pred, err := p.Predict(context.Background(), testArtifact(premiership, 20), request("Leicester Tigers", "Bath Rugby", premiership))
	require.NoError(t, err)

	assert.Equal(t, models.MethodModelOnly, pred.Method)
	assert.Equal(t, models.OutcomeHome, pred.PredictedWinner)
	assert.InDelta(t, 1.0, pred.HomeWinProb+pred.AwayWinProb, 1e-12)
	assert.Greater(t, pred.PredictedHomeScore, pred.PredictedAwayScore)
	assert.Equal(t, 30.0, pred.PredictedHomeScore)
	assert.Equal(t, 20.0, pred.PredictedAwayScore)
	assert.Equal(t, 0.0, pred.Breakdown.MarketWeight)
	assert.Equal(t, 1.0, pred.Breakdown.ModelWeight)
	assert.Equal(t, 0, pred.Breakdown.MarketSampleSize)
	assert.Equal(t, market.SourcePlaceholder, pred.Breakdown.MarketSource)
	assert.False(t, pred.Breakdown.NeutralDefault)
}

func TestPredictLeagueMismatch(t *testing.T) {
	p := New(premiershipTeams(), tableOf(), nil, DefaultConfig(), quietLogger())

	_, err := p.Predict(context.Background(), testArtifact(premiership, 20), request("Leicester Tigers", "Bath Rugby", urc))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrLeagueMismatch)

	var mismatch *models.LeagueMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, urc, mismatch.Requested)
	assert.Equal(t, premiership, mismatch.Loaded)
}

func TestPredictUnknownTeam(t *testing.T) {
	p := New(premiershipTeams(), tableOf(), nil, DefaultConfig(), quietLogger())

	_, err := p.Predict(context.Background(), testArtifact(premiership, 20), request("Leicester Tigers", "Harlequins", premiership))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "Harlequins")
}

func TestPredictRejectsBadInput(t *testing.T) {
	p := New(premiershipTeams(), tableOf(), nil, DefaultConfig(), quietLogger())
	a := testArtifact(premiership, 20)

	req := request("Leicester Tigers", "Bath Rugby", premiership)
	req.MatchDate = "02/03/2024"
	_, err := p.Predict(context.Background(), a, req)
	assert.ErrorIs(t, err, models.ErrValidation)

	req = request("Leicester Tigers", "Bath Rugby", premiership)
	req.MarketSignal = &market.Signal{HomeProb: 1.5, Confidence: 0.5, SampleSize: 1}
	_, err = p.Predict(context.Background(), a, req)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestPredictEnforcesScoreConsistency(t *testing.T) {
	// classifier favours home strongly but the away regressor predicts 35
	p := New(premiershipTeams(), tableOf(row(6, 1, 2, 1600, 1450)), nil, DefaultConfig(), quietLogger())

	pred, err := p.Predict(context.Background(), testArtifact(premiership, 35), request("Leicester Tigers", "Bath Rugby", premiership))
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeHome, pred.PredictedWinner)
	assert.True(t, pred.Breakdown.ScoresAdjusted)
	assert.Equal(t, 65.0, pred.PredictedHomeScore+pred.PredictedAwayScore)
	assert.Equal(t, 33.0, pred.PredictedHomeScore)
	assert.Equal(t, 32.0, pred.PredictedAwayScore)
}

func TestPredictFeatureFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		source      *fakeFeatures
		wantNeutral bool
		wantProb    float64
	}{
		{
			name:     "home fixture against another opponent",
			source:   tableOf(row(6, 1, 3, 1500, 1500), row(13, 2, 1, 1700, 1300)),
			wantProb: 0.5,
		},
		{
			name:        "no history for the home side",
			source:      tableOf(row(6, 3, 1, 1600, 1400)),
			wantNeutral: true,
			wantProb:    0.5,
		},
		{
			name:        "feature store unavailable",
			source:      &fakeFeatures{err: &models.UpstreamServiceError{Source: "postgres", Code: "timeout"}},
			wantNeutral: true,
			wantProb:    0.5,
		},
		{
			name:        "history only after the match date",
			source:      tableOf(features.Row{HomeTeamID: 1, AwayTeamID: 2, Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Values: make([]float64, len(features.Columns))}),
			wantNeutral: true,
			wantProb:    0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(premiershipTeams(), tt.source, nil, DefaultConfig(), quietLogger())
			pred, err := p.Predict(context.Background(), testArtifact(premiership, 20), request("Leicester Tigers", "Bath Rugby", premiership))
			require.NoError(t, err)

			assert.Equal(t, tt.wantNeutral, pred.Breakdown.NeutralDefault)
			assert.InDelta(t, tt.wantProb, pred.Breakdown.ModelHomeWinProb, 1e-9)
			if tt.wantNeutral {
				assert.Equal(t, DefaultConfig().NeutralConfidence, pred.Confidence)
				assert.Equal(t, 0.5, pred.HomeWinProb)
				assert.Equal(t, models.OutcomeHome, pred.PredictedWinner)
				assert.Equal(t, DefaultConfig().DefaultHomeScore, pred.PredictedHomeScore)
				assert.Equal(t, DefaultConfig().DefaultAwayScore, pred.PredictedAwayScore)
				assert.False(t, pred.Breakdown.ScoresAdjusted)
			}
			assertConsistent(t, pred)
		})
	}
}

func TestPredictNeutralDefaultFollowsDefaultScores(t *testing.T) {
	tests := []struct {
		name       string
		home, away float64
		wantWinner models.Outcome
		wantHome   float64
		wantAway   float64
	}{
		{"defaults favour home", 24, 20, models.OutcomeHome, 24, 20},
		{"defaults favour away", 18, 22, models.OutcomeAway, 18, 22},
		{"level defaults go to home", 20, 20, models.OutcomeHome, 21, 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DefaultHomeScore, cfg.DefaultAwayScore = tt.home, tt.away
			p := New(premiershipTeams(), tableOf(), nil, cfg, quietLogger())

			pred, err := p.Predict(context.Background(), testArtifact(premiership, 20), request("Leicester Tigers", "Bath Rugby", premiership))
			require.NoError(t, err)

			assert.True(t, pred.Breakdown.NeutralDefault)
			assert.Equal(t, models.MethodModelOnly, pred.Method)
			assert.Equal(t, 0.5, pred.HomeWinProb)
			assert.Equal(t, tt.wantWinner, pred.PredictedWinner)
			assert.Equal(t, tt.wantHome, pred.PredictedHomeScore)
			assert.Equal(t, tt.wantAway, pred.PredictedAwayScore)
			assertConsistent(t, pred)
		})
	}
}

func TestPredictHybridWithSuppliedSignal(t *testing.T) {
	provider := &fakeMarket{}
	p := New(premiershipTeams(), tableOf(row(6, 1, 2, 1500, 1500)), provider, DefaultConfig(), quietLogger())

	req := request("Leicester Tigers", "Bath Rugby", premiership)
	req.MarketSignal = &market.Signal{HomeProb: 0.8, Confidence: 0.8, SampleSize: 3, Source: "client"}

	pred, err := p.Predict(context.Background(), testArtifact(premiership, 20), req)
	require.NoError(t, err)

	assert.Equal(t, 0, provider.calls, "a supplied signal skips the provider")
	assert.Equal(t, models.MethodHybrid, pred.Method)
	// agreement 0.7 selects the 0.4/0.6 split
	assert.InDelta(t, 0.4, pred.Breakdown.ModelWeight, 1e-12)
	assert.InDelta(t, 0.4*0.5+0.6*0.8, pred.HomeWinProb, 1e-12)
	assert.InDelta(t, 0.4*0.5+0.6*0.8, pred.Confidence, 1e-12)
	assert.Equal(t, models.OutcomeHome, pred.PredictedWinner)
	// hybrid scores are left as regressed even when level
	assert.Equal(t, 20.0, pred.PredictedHomeScore)
	assert.Equal(t, 20.0, pred.PredictedAwayScore)
	assert.False(t, pred.Breakdown.ScoresAdjusted)
}

func TestPredictProviderFailureFallsBackToPlaceholder(t *testing.T) {
	provider := &fakeMarket{err: &models.UpstreamServiceError{Source: "odds_api", Code: "http_503"}}
	p := New(premiershipTeams(), tableOf(row(6, 1, 2, 1450, 1600)), provider, DefaultConfig(), quietLogger())

	pred, err := p.Predict(context.Background(), testArtifact(premiership, 20), request("Leicester Tigers", "Bath Rugby", premiership))
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, models.MethodModelOnly, pred.Method)
	assert.Equal(t, models.OutcomeAway, pred.PredictedWinner)
	assertConsistent(t, pred)
}

func TestPredictUsesProviderSignal(t *testing.T) {
	provider := &fakeMarket{signal: market.Signal{HomeProb: 0.3, Confidence: 0.7, SampleSize: 8, Source: "odds_api"}}
	p := New(premiershipTeams(), tableOf(row(6, 1, 2, 1500, 1500)), provider, DefaultConfig(), quietLogger())

	pred, err := p.Predict(context.Background(), testArtifact(premiership, 20), request("Leicester Tigers", "Bath Rugby", premiership))
	require.NoError(t, err)

	// agreement 0.8 is not above 0.8, so 0.4/0.6 shifted by the large sample to 0.3/0.7
	assert.InDelta(t, 0.3, pred.Breakdown.ModelWeight, 1e-9)
	assert.InDelta(t, 0.7, pred.Breakdown.MarketWeight, 1e-9)
	assert.Equal(t, models.OutcomeAway, pred.PredictedWinner)
	assert.Equal(t, 20.0, pred.PredictedHomeScore)
	assert.Equal(t, 20.0, pred.PredictedAwayScore)
	assert.False(t, pred.Breakdown.ScoresAdjusted)
}

func TestModelOnlyWinnerMatchesScores(t *testing.T) {
	for homeElo := 1300.0; homeElo <= 1700; homeElo += 25 {
		for _, awayScore := range []float64{0, 10, 17, 25, 40} {
			p := New(premiershipTeams(), tableOf(row(6, 1, 2, homeElo, 1500)), nil, DefaultConfig(), quietLogger())
			pred, err := p.Predict(context.Background(), testArtifact(premiership, awayScore), request("Leicester Tigers", "Bath Rugby", premiership))
			require.NoError(t, err)

			assert.InDelta(t, 1.0, pred.HomeWinProb+pred.AwayWinProb, 1e-12)
			assertConsistent(t, pred)
		}
	}
}

func assertConsistent(t *testing.T, pred *models.Prediction) {
	t.Helper()
	assert.GreaterOrEqual(t, pred.PredictedHomeScore, 0.0)
	assert.GreaterOrEqual(t, pred.PredictedAwayScore, 0.0)
	if pred.PredictedWinner == models.OutcomeHome {
		assert.GreaterOrEqual(t, pred.PredictedHomeScore-pred.PredictedAwayScore, 1.0)
	} else {
		assert.GreaterOrEqual(t, pred.PredictedAwayScore-pred.PredictedHomeScore, 1.0)
	}
}

type fakeArtifacts struct {
	artifact *artifact.Artifact
	err      error
}

func (f *fakeArtifacts) Get(ctx context.Context, leagueID int64) (*artifact.Artifact, error) {
	return f.artifact, f.err
}

func TestServiceResolvesArtifact(t *testing.T) {
	p := New(premiershipTeams(), tableOf(row(6, 1, 2, 1600, 1450)), nil, DefaultConfig(), quietLogger())

	svc := NewService(&fakeArtifacts{artifact: testArtifact(premiership, 20)}, p)
	pred, err := svc.Predict(context.Background(), request("Leicester Tigers", "Bath Rugby", premiership))
	require.NoError(t, err)
	assert.Equal(t, premiership, pred.LeagueID)

	// a bundle filed under the wrong league is rejected rather than used
	_, err = svc.Predict(context.Background(), request("Leicester Tigers", "Bath Rugby", urc))
	assert.ErrorIs(t, err, models.ErrLeagueMismatch)

	missing := NewService(&fakeArtifacts{err: &models.NotFoundError{Kind: "model artifact", Name: "league 1"}}, p)
	_, err = missing.Predict(context.Background(), request("Leicester Tigers", "Bath Rugby", 1))
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
