package service

import (
	"sync"
	"time"

	"github.com/yourusername/rugby-predictor/internal/metrics"
)

// IngestionSummary is a snapshot of one sync run
type IngestionSummary struct {
	Source           string        `json:"source"`
	LeagueID         int64         `json:"league_id"`
	Seasons          []string      `json:"seasons"`
	Teams            int           `json:"teams"`
	TotalEvents      int           `json:"total_events"`
	CompletedMatches int           `json:"completed_matches"`
	UpcomingMatches  int           `json:"upcoming_matches"`
	ValidationErrors int           `json:"validation_errors"`
	Errors           int           `json:"errors"`
	Duration         time.Duration `json:"duration"`
}

// IngestionMetrics tracks statistics about a sync run
type IngestionMetrics struct {
	mu      sync.Mutex
	start   time.Time
	summary IngestionSummary
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics(source string, leagueID int64) *IngestionMetrics {
	return &IngestionMetrics{
		start:   time.Now(),
		summary: IngestionSummary{Source: source, LeagueID: leagueID},
	}
}

// RecordSeason notes a season that was fetched
func (m *IngestionMetrics) RecordSeason(season string, events int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary.Seasons = append(m.summary.Seasons, season)
	m.summary.TotalEvents += events
}

// RecordTeam increments the stored team count
func (m *IngestionMetrics) RecordTeam() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary.Teams++
}

// RecordMatch increments the completed or upcoming match count
func (m *IngestionMetrics) RecordMatch(completed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if completed {
		m.summary.CompletedMatches++
	} else {
		m.summary.UpcomingMatches++
	}
}

// RecordValidationError increments the rejected record count
func (m *IngestionMetrics) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary.ValidationErrors++
}

// RecordError increments the failed record count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary.Errors++
}

// Finish stamps the duration, exports the counters to Prometheus and
// returns the final summary
func (m *IngestionMetrics) Finish() *IngestionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summary.Duration = time.Since(m.start)
	s := m.summary
	s.Seasons = append([]string(nil), m.summary.Seasons...)

	metrics.RecordIngestedRecords("team", "stored", s.Teams)
	metrics.RecordIngestedRecords("match", "stored", s.CompletedMatches+s.UpcomingMatches)
	metrics.RecordIngestedRecords("match", "invalid", s.ValidationErrors)
	metrics.RecordIngestedRecords("match", "error", s.Errors)
	return &s
}
