package predictor

import (
	"math"

	"github.com/yourusername/rugby-predictor/internal/market"
)

const (
	largeSampleSize = 5
	sampleShift     = 0.1
	maxMarketWeight = 0.8
)

// Weights returns the model and market weights for blending, plus the
// agreement between the two estimates. A signal with no samples gets no weight.
func Weights(modelProb float64, signal market.Signal) (modelWeight, marketWeight, agreement float64) {
	agreement = 1 - math.Abs(modelProb-signal.HomeProb)
	if signal.SampleSize == 0 {
		return 1, 0, agreement
	}

	switch {
	case agreement > 0.8:
		modelWeight, marketWeight = 0.5, 0.5
	case agreement > 0.6:
		modelWeight, marketWeight = 0.4, 0.6
	default:
		modelWeight, marketWeight = 0.25, 0.75
	}

	if signal.SampleSize > largeSampleSize {
		shift := math.Min(sampleShift, maxMarketWeight-marketWeight)
		if shift > 0 {
			marketWeight += shift
			modelWeight -= shift
		}
	}
	return modelWeight, marketWeight, agreement
}
