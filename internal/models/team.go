package models

import "strings"

// Team represents a rugby team as ingested from the fixtures provider
type Team struct {
	ID       int64  `db:"id" json:"id" validate:"required,gt=0"`
	Name     string `db:"name" json:"name" validate:"required"`
	LeagueID *int64 `db:"league_id" json:"league_id,omitempty"`
}

// MatchesName reports whether name refers to this team, ignoring case and surrounding whitespace
func (t *Team) MatchesName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(t.Name), strings.TrimSpace(name))
}

// League represents a competition that owns a trained model
type League struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
