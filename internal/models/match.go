package models

import (
	"fmt"
	"time"
)

// Match represents a fixture. A nil score marks an upcoming match.
type Match struct {
	ID         int64     `db:"id" json:"id"`
	LeagueID   int64     `db:"league_id" json:"league_id"`
	HomeTeamID int64     `db:"home_team_id" json:"home_team_id"`
	AwayTeamID int64     `db:"away_team_id" json:"away_team_id"`
	Date       time.Time `db:"date_event" json:"date"`
	HomeScore  *int      `db:"home_score" json:"home_score,omitempty"`
	AwayScore  *int      `db:"away_score" json:"away_score,omitempty"`
}

// IsCompleted reports whether both scores are known
func (m *Match) IsCompleted() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// Outcome returns the actual result of a completed match
func (m *Match) Outcome() (Outcome, error) {
	if !m.IsCompleted() {
		return "", fmt.Errorf("match %d has no result", m.ID)
	}
	switch {
	case *m.HomeScore > *m.AwayScore:
		return OutcomeHome, nil
	case *m.HomeScore < *m.AwayScore:
		return OutcomeAway, nil
	default:
		return OutcomeDraw, nil
	}
}

// Margin returns home score minus away score for a completed match
func (m *Match) Margin() int {
	if !m.IsCompleted() {
		return 0
	}
	return *m.HomeScore - *m.AwayScore
}

// Outcome is the result of a match from the home side's perspective
type Outcome string

const (
	OutcomeHome Outcome = "Home"
	OutcomeAway Outcome = "Away"
	OutcomeDraw Outcome = "Draw"
)
