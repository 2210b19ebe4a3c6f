package predictor

import (
	"math"

	"github.com/yourusername/rugby-predictor/internal/models"
)

// ConsistentScores rounds the scores and, when they disagree with winner,
// redistributes the same total so the winner leads. A 0-0 pair becomes 1-0.
func ConsistentScores(home, away float64, winner models.Outcome) (float64, float64, bool) {
	h := math.Max(0, math.Round(home))
	a := math.Max(0, math.Round(away))
	total := h + a

	switch {
	case winner == models.OutcomeHome && h <= a:
		h = math.Max(1, math.Ceil((total+1)/2))
		a = math.Max(0, total-h)
		return h, a, true
	case winner == models.OutcomeAway && a <= h:
		a = math.Max(1, math.Ceil((total+1)/2))
		h = math.Max(0, total-a)
		return h, a, true
	}
	return h, a, false
}
