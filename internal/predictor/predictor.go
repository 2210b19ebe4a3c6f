// Package predictor blends a league model with a market signal into a single
// match prediction.
package predictor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/artifact"
	"github.com/yourusername/rugby-predictor/internal/features"
	"github.com/yourusername/rugby-predictor/internal/logger"
	"github.com/yourusername/rugby-predictor/internal/market"
	"github.com/yourusername/rugby-predictor/internal/metrics"
	"github.com/yourusername/rugby-predictor/internal/models"
)

const dateLayout = "2006-01-02"

// Config holds the ensemble defaults
type Config struct {
	DefaultHomeScore  float64
	DefaultAwayScore  float64
	PlaceholderLean   float64
	NeutralConfidence float64
}

// DefaultConfig returns the defaults used when none are configured
func DefaultConfig() Config {
	return Config{
		DefaultHomeScore:  24,
		DefaultAwayScore:  20,
		PlaceholderLean:   0.05,
		NeutralConfidence: 0.5,
	}
}

// Request is a single-fixture prediction request
type Request struct {
	HomeTeam     string         `json:"home_team" validate:"required"`
	AwayTeam     string         `json:"away_team" validate:"required,nefield=HomeTeam"`
	LeagueID     int64          `json:"league_id" validate:"required,gt=0"`
	MatchDate    string         `json:"match_date" validate:"required,datetime=2006-01-02"`
	MarketSignal *market.Signal `json:"market_signal,omitempty"`
}

// TeamDirectory finds teams by name within a league
type TeamDirectory interface {
	FindTeam(ctx context.Context, leagueID int64, name string) (*models.Team, error)
}

// FeatureSource builds the feature table of a league
type FeatureSource interface {
	Build(ctx context.Context, leagueID int64) (*features.Table, error)
}

// Predictor runs the prediction pipeline. It holds no per-request state.
type Predictor struct {
	teams    TeamDirectory
	features FeatureSource
	market   market.Provider
	cfg      Config
	log      *logger.PredictionLogger
}

// New creates a predictor. provider may be nil, in which case requests without
// a market signal use the placeholder.
func New(teams TeamDirectory, source FeatureSource, provider market.Provider, cfg Config, log *logrus.Logger) *Predictor {
	return &Predictor{
		teams:    teams,
		features: source,
		market:   provider,
		cfg:      cfg,
		log:      logger.NewPredictionLogger(log),
	}
}

// Predict scores one fixture with the given league artifact
func (p *Predictor) Predict(ctx context.Context, a *artifact.Artifact, req Request) (*models.Prediction, error) {
	start := time.Now()
	prediction, err := p.predict(ctx, a, req)
	if err != nil {
		kind := models.Kind(err)
		metrics.RecordPrediction("none", kind, time.Since(start).Seconds())
		p.log.LogPredictionError(req.LeagueID, kind, err)
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordPrediction(string(prediction.Method), "success", elapsed.Seconds())
	p.log.LogPrediction(req.LeagueID, prediction.HomeTeam, prediction.AwayTeam, string(prediction.PredictedWinner),
		string(prediction.Method), prediction.HomeWinProb, prediction.Confidence, float64(elapsed.Microseconds())/1000)
	return prediction, nil
}

func (p *Predictor) predict(ctx context.Context, a *artifact.Artifact, req Request) (*models.Prediction, error) {
	matchDate, err := time.Parse(dateLayout, req.MatchDate)
	if err != nil {
		return nil, &models.ValidationError{Field: "match_date", Reason: "must be formatted YYYY-MM-DD"}
	}
	if req.MarketSignal != nil {
		if err := req.MarketSignal.Validate(); err != nil {
			return nil, err
		}
	}

	if req.LeagueID != a.LeagueID {
		return nil, &models.LeagueMismatchError{Requested: req.LeagueID, Loaded: a.LeagueID}
	}

	home, err := p.teams.FindTeam(ctx, req.LeagueID, req.HomeTeam)
	if err != nil {
		return nil, err
	}
	away, err := p.teams.FindTeam(ctx, req.LeagueID, req.AwayTeam)
	if err != nil {
		return nil, err
	}

	breakdown := models.Breakdown{}
	inference, ok := p.infer(ctx, a, home.ID, away.ID, matchDate)
	modelConfidence := models.Confidence(inference.HomeWinProb)
	if !ok {
		breakdown.NeutralDefault = true
		modelConfidence = p.cfg.NeutralConfidence
	}

	signal := p.marketSignal(ctx, req, matchDate)
	modelWeight, marketWeight, agreement := Weights(inference.HomeWinProb, signal)

	hybridProb := modelWeight*inference.HomeWinProb + marketWeight*signal.HomeProb
	confidence := modelWeight*modelConfidence + marketWeight*signal.Confidence

	method := models.MethodHybrid
	if marketWeight == 0 {
		method = models.MethodModelOnly
	}

	winner := models.OutcomeAway
	if hybridProb > 0.5 {
		winner = models.OutcomeHome
	}

	// hybrid scores stay as regressed; only model-only predictions must
	// agree with their winner
	homeScore, awayScore := inference.HomeScore, inference.AwayScore
	adjusted := false
	if method == models.MethodModelOnly {
		if breakdown.NeutralDefault {
			winner = p.neutralWinner()
		}
		homeScore, awayScore, adjusted = ConsistentScores(inference.HomeScore, inference.AwayScore, winner)
		if adjusted {
			metrics.RecordScoreAdjustment()
			p.log.LogScoreAdjustment(req.LeagueID, string(winner),
				int(inference.HomeScore), int(inference.AwayScore), int(homeScore), int(awayScore))
		}
	}

	breakdown.ModelHomeWinProb = inference.HomeWinProb
	breakdown.ModelConfidence = modelConfidence
	breakdown.MarketHomeWinProb = signal.HomeProb
	breakdown.MarketConfidence = signal.Confidence
	breakdown.MarketSampleSize = signal.SampleSize
	breakdown.MarketSource = signal.Source
	breakdown.Agreement = agreement
	breakdown.ModelWeight = modelWeight
	breakdown.MarketWeight = marketWeight
	breakdown.ScoresAdjusted = adjusted

	return &models.Prediction{
		HomeTeam:           home.Name,
		AwayTeam:           away.Name,
		LeagueID:           req.LeagueID,
		MatchDate:          req.MatchDate,
		PredictedWinner:    winner,
		PredictedHomeScore: homeScore,
		PredictedAwayScore: awayScore,
		HomeWinProb:        hybridProb,
		AwayWinProb:        1 - hybridProb,
		Confidence:         confidence,
		Method:             method,
		Breakdown:          breakdown,
	}, nil
}

// infer runs the artifact on the latest known features for the pairing. It
// reports false and returns the neutral default when no usable row exists or
// the feature table cannot be built.
func (p *Predictor) infer(ctx context.Context, a *artifact.Artifact, homeID, awayID int64, matchDate time.Time) (artifact.Inference, bool) {
	neutral := artifact.Inference{
		HomeWinProb: 0.5,
		HomeScore:   p.cfg.DefaultHomeScore,
		AwayScore:   p.cfg.DefaultAwayScore,
	}

	table, err := p.features.Build(ctx, a.LeagueID)
	if err != nil {
		p.log.WithError(err).WithField("league_id", a.LeagueID).Warn("Feature table unavailable, using neutral default")
		return neutral, false
	}

	history := &features.Table{Columns: table.Columns, Rows: table.Before(matchDate)}
	row, ok := history.LatestForPair(homeID, awayID)
	if !ok {
		row, ok = history.LatestHome(homeID)
	}
	if !ok {
		return neutral, false
	}
	return a.Predict(row.Map()), true
}

// neutralWinner settles the 0.5 tie of the neutral default in favour of the
// side the default scores favour, home when they are level
func (p *Predictor) neutralWinner() models.Outcome {
	if p.cfg.DefaultAwayScore > p.cfg.DefaultHomeScore {
		return models.OutcomeAway
	}
	return models.OutcomeHome
}

func (p *Predictor) marketSignal(ctx context.Context, req Request, matchDate time.Time) market.Signal {
	if req.MarketSignal != nil {
		return *req.MarketSignal
	}
	if p.market == nil {
		return market.Placeholder(p.cfg.PlaceholderLean)
	}

	signal, err := p.market.Fetch(ctx, req.LeagueID, req.HomeTeam, req.AwayTeam, matchDate)
	if err != nil {
		metrics.RecordMarketFallback()
		p.log.LogMarketFallback(req.LeagueID, err.Error())
		return market.Placeholder(p.cfg.PlaceholderLean)
	}
	return signal
}
