// Package market derives a market-implied home win estimate from bookmaker odds.
package market

import (
	"fmt"

	"github.com/yourusername/rugby-predictor/internal/models"
)

// SourcePlaceholder marks a signal that carries no market information
const SourcePlaceholder = "placeholder"

// Signal is a market estimate of the home win probability.
// SampleSize counts the independent prices it was built from.
type Signal struct {
	HomeProb   float64 `json:"home_prob" validate:"gte=0,lte=1"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
	SampleSize int     `json:"sample_size" validate:"gte=0"`
	Source     string  `json:"source,omitempty"`
}

// Placeholder returns the deterministic stand-in used when no market data is
// available: a small home lean with a sample size of zero.
func Placeholder(lean float64) Signal {
	p := 0.5 + lean
	return Signal{
		HomeProb:   p,
		Confidence: models.Confidence(p),
		SampleSize: 0,
		Source:     SourcePlaceholder,
	}
}

// Validate checks the signal is a usable probability
func (s Signal) Validate() error {
	if s.HomeProb < 0 || s.HomeProb > 1 {
		return &models.ValidationError{Field: "market_signal.home_prob", Reason: fmt.Sprintf("must be within [0, 1], got %v", s.HomeProb)}
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return &models.ValidationError{Field: "market_signal.confidence", Reason: fmt.Sprintf("must be within [0, 1], got %v", s.Confidence)}
	}
	if s.SampleSize < 0 {
		return &models.ValidationError{Field: "market_signal.sample_size", Reason: "must not be negative"}
	}
	return nil
}
