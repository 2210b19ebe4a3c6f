package service

import (
	"fmt"
	"time"

	"github.com/yourusername/rugby-predictor/internal/models"
)

// maxScore is well above any professional rugby union score
const maxScore = 200

// DataValidator checks normalized matches before they are stored
type DataValidator struct {
	// MaxFuture bounds how far ahead a fixture may be scheduled
	MaxFuture time.Duration
	now       func() time.Time
}

// NewDataValidator creates a new data validator
func NewDataValidator() *DataValidator {
	return &DataValidator{MaxFuture: 2 * 365 * 24 * time.Hour, now: time.Now}
}

// ValidateMatch returns every problem found with m, or nil
func (v *DataValidator) ValidateMatch(m *models.Match) []string {
	var errors []string

	if m.HomeTeamID == m.AwayTeamID {
		errors = append(errors, fmt.Sprintf("home and away team are both %d", m.HomeTeamID))
	}
	if m.Date.IsZero() {
		errors = append(errors, "date is required")
	} else if m.Date.After(v.now().Add(v.MaxFuture)) {
		errors = append(errors, fmt.Sprintf("date %s is too far in the future", m.Date.Format("2006-01-02")))
	}

	if (m.HomeScore == nil) != (m.AwayScore == nil) {
		errors = append(errors, "only one score is set")
	}
	for side, score := range map[string]*int{"home": m.HomeScore, "away": m.AwayScore} {
		if score != nil && (*score < 0 || *score > maxScore) {
			errors = append(errors, fmt.Sprintf("%s score %d out of range", side, *score))
		}
	}
	if m.IsCompleted() && m.Date.After(v.now()) {
		errors = append(errors, "result reported for a future fixture")
	}

	return errors
}
