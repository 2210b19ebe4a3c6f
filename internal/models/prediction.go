package models

import "math"

// PredictionMethod records which signals produced a prediction
type PredictionMethod string

const (
	MethodModelOnly PredictionMethod = "model-only"
	MethodHybrid    PredictionMethod = "hybrid"
)

// Prediction is the ensemble output for a single fixture. Model-only scores
// always agree with PredictedWinner; hybrid scores are the regressor output.
type Prediction struct {
	HomeTeam           string           `json:"home_team"`
	AwayTeam           string           `json:"away_team"`
	LeagueID           int64            `json:"league_id"`
	MatchDate          string           `json:"match_date"`
	PredictedWinner    Outcome          `json:"predicted_winner"`
	PredictedHomeScore float64          `json:"predicted_home_score"`
	PredictedAwayScore float64          `json:"predicted_away_score"`
	HomeWinProb        float64          `json:"home_win_prob"`
	AwayWinProb        float64          `json:"away_win_prob"`
	Confidence         float64          `json:"confidence"`
	Method             PredictionMethod `json:"method"`
	Breakdown          Breakdown        `json:"breakdown"`
}

// Breakdown carries the per-source estimates and the weights applied to them
type Breakdown struct {
	ModelHomeWinProb  float64 `json:"model_home_win_prob"`
	ModelConfidence   float64 `json:"model_confidence"`
	MarketHomeWinProb float64 `json:"market_home_win_prob"`
	MarketConfidence  float64 `json:"market_confidence"`
	MarketSampleSize  int     `json:"market_sample_size"`
	MarketSource      string  `json:"market_source"`
	Agreement         float64 `json:"agreement"`
	ModelWeight       float64 `json:"model_weight"`
	MarketWeight      float64 `json:"market_weight"`
	ScoresAdjusted    bool    `json:"scores_adjusted"`
	NeutralDefault    bool    `json:"neutral_default"`
}

// PredictedMargin returns the predicted home minus away score
func (p *Prediction) PredictedMargin() float64 {
	return p.PredictedHomeScore - p.PredictedAwayScore
}

// ProbabilityOf returns the probability assigned to the given side
func (p *Prediction) ProbabilityOf(side Outcome) float64 {
	if side == OutcomeHome {
		return p.HomeWinProb
	}
	return p.AwayWinProb
}

// Confidence returns max(prob, 1-prob)
func Confidence(prob float64) float64 {
	return math.Max(prob, 1-prob)
}
