package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/rugby-predictor/internal/market"
	"github.com/yourusername/rugby-predictor/internal/models"
)

func TestWeightsTable(t *testing.T) {
	tests := []struct {
		name       string
		modelProb  float64
		marketProb float64
		sampleSize int
		wantModel  float64
		wantMarket float64
		wantAgree  float64
	}{
		{name: "high agreement", modelProb: 0.6, marketProb: 0.5, sampleSize: 3, wantModel: 0.5, wantMarket: 0.5, wantAgree: 0.9},
		{name: "medium agreement", modelProb: 0.8, marketProb: 0.5, sampleSize: 3, wantModel: 0.4, wantMarket: 0.6, wantAgree: 0.7},
		{name: "low agreement", modelProb: 0.9, marketProb: 0.3, sampleSize: 3, wantModel: 0.25, wantMarket: 0.75, wantAgree: 0.4},
		{name: "no samples", modelProb: 0.9, marketProb: 0.3, sampleSize: 0, wantModel: 1, wantMarket: 0, wantAgree: 0.4},
		{name: "large sample shifts", modelProb: 0.6, marketProb: 0.5, sampleSize: 6, wantModel: 0.4, wantMarket: 0.6, wantAgree: 0.9},
		{name: "large sample capped", modelProb: 0.9, marketProb: 0.3, sampleSize: 20, wantModel: 0.2, wantMarket: 0.8, wantAgree: 0.4},
		{name: "boundary sample size", modelProb: 0.6, marketProb: 0.5, sampleSize: 5, wantModel: 0.5, wantMarket: 0.5, wantAgree: 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wm, wk, agreement := Weights(tt.modelProb, market.Signal{HomeProb: tt.marketProb, SampleSize: tt.sampleSize})
			assert.InDelta(t, tt.wantModel, wm, 1e-9)
			assert.InDelta(t, tt.wantMarket, wk, 1e-9)
			assert.InDelta(t, tt.wantAgree, agreement, 1e-9)
			assert.InDelta(t, 1.0, wm+wk, 1e-9)
		})
	}
}

func TestConsistentScores(t *testing.T) {
	tests := []struct {
		name         string
		home, away   float64
		winner       models.Outcome
		wantHome     float64
		wantAway     float64
		wantAdjusted bool
	}{
		{name: "already consistent", home: 27.4, away: 18.2, winner: models.OutcomeHome, wantHome: 27, wantAway: 18},
		{name: "flip to home", home: 15, away: 20, winner: models.OutcomeHome, wantHome: 18, wantAway: 17, wantAdjusted: true},
		{name: "tie broken for away", home: 20, away: 20, winner: models.OutcomeAway, wantHome: 19, wantAway: 21, wantAdjusted: true},
		{name: "rounded tie", home: 20.4, away: 19.6, winner: models.OutcomeHome, wantHome: 21, wantAway: 19, wantAdjusted: true},
		{name: "scoreless", home: 0, away: 0, winner: models.OutcomeHome, wantHome: 1, wantAway: 0, wantAdjusted: true},
		{name: "negative clamped", home: -3, away: 12, winner: models.OutcomeAway, wantHome: 0, wantAway: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, a, adjusted := ConsistentScores(tt.home, tt.away, tt.winner)
			assert.Equal(t, tt.wantHome, h)
			assert.Equal(t, tt.wantAway, a)
			assert.Equal(t, tt.wantAdjusted, adjusted)
		})
	}
}
