// Package datasource fetches league, team and fixture data from external sports data providers.
package datasource

import (
	"context"
	"time"
)

// FixtureSource defines the interface for fetching fixtures from an external provider
type FixtureSource interface {
	// FetchLeague retrieves league metadata including its current season
	FetchLeague(ctx context.Context, leagueID int64) (*LeagueData, error)

	// FetchTeams retrieves every team registered to a league
	FetchTeams(ctx context.Context, leagueID int64) ([]TeamData, error)

	// FetchSeason retrieves every fixture of a league season, played or not
	FetchSeason(ctx context.Context, leagueID int64, season string) ([]EventData, error)

	// Name returns the name of the data source
	Name() string
}

// LeagueData represents normalized league metadata from any data source
type LeagueData struct {
	SourceID      string `json:"source_id"`
	Name          string `json:"name"`
	CurrentSeason string `json:"current_season"` // e.g. "2024-2025"
}

// TeamData represents normalized team data from any data source
type TeamData struct {
	SourceID       string `json:"source_id"`
	Name           string `json:"name"`
	LeagueSourceID string `json:"league_source_id"`
}

// EventData represents a fixture as reported by the provider. Scores are nil
// until the match has been played.
type EventData struct {
	SourceID       string    `json:"source_id"`
	LeagueSourceID string    `json:"league_source_id"`
	Season         string    `json:"season"`
	HomeSourceID   string    `json:"home_source_id"`
	AwaySourceID   string    `json:"away_source_id"`
	HomeTeam       string    `json:"home_team"`
	AwayTeam       string    `json:"away_team"`
	HomeScore      *int      `json:"home_score"`
	AwayScore      *int      `json:"away_score"`
	StartTime      time.Time `json:"start_time"` // UTC
}

// Common error codes reported in models.UpstreamServiceError
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)
