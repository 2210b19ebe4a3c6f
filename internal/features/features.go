// Package features turns fixture history into per-match numeric feature rows.
package features

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yourusername/rugby-predictor/internal/models"
	"github.com/yourusername/rugby-predictor/internal/repository"
)

// Column names in table order. Trained artifacts record the order they saw.
const (
	ColHomeElo         = "home_elo"
	ColAwayElo         = "away_elo"
	ColEloDiff         = "elo_diff"
	ColHomeFormPoints  = "home_form_points"
	ColAwayFormPoints  = "away_form_points"
	ColHomeAvgScored   = "home_avg_scored"
	ColHomeAvgConceded = "home_avg_conceded"
	ColAwayAvgScored   = "away_avg_scored"
	ColAwayAvgConceded = "away_avg_conceded"
	ColHomeAdvantage   = "home_advantage"
)

// Columns is the stable, ordered feature schema
var Columns = []string{
	ColHomeElo,
	ColAwayElo,
	ColEloDiff,
	ColHomeFormPoints,
	ColAwayFormPoints,
	ColHomeAvgScored,
	ColHomeAvgConceded,
	ColAwayAvgScored,
	ColAwayAvgConceded,
	ColHomeAdvantage,
}

// league table points for the form window
const (
	winPoints  = 4
	drawPoints = 2
)

// Config controls the rating and form columns
type Config struct {
	RatingK       float64
	InitialRating float64
	HomeAdvantage float64
	NeutralVenue  bool
	FormWindow    int
}

// DefaultConfig returns the settings used when none are configured
func DefaultConfig() Config {
	return Config{
		RatingK:       32,
		InitialRating: 1500,
		HomeAdvantage: 50,
		FormWindow:    5,
	}
}

// Row holds the pre-match feature values of one completed fixture
type Row struct {
	MatchID    int64
	LeagueID   int64
	HomeTeamID int64
	AwayTeamID int64
	Date       time.Time
	HomeScore  int
	AwayScore  int
	Values     []float64
}

// Value returns the named column, or false when the column is unknown
func (r *Row) Value(column string) (float64, bool) {
	for i, c := range Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return 0, false
}

// Map returns the row keyed by column name
func (r *Row) Map() map[string]float64 {
	out := make(map[string]float64, len(Columns))
	for i, c := range Columns {
		out[c] = r.Values[i]
	}
	return out
}

// Outcome returns the actual result of the row's match
func (r *Row) Outcome() models.Outcome {
	switch {
	case r.HomeScore > r.AwayScore:
		return models.OutcomeHome
	case r.HomeScore < r.AwayScore:
		return models.OutcomeAway
	default:
		return models.OutcomeDraw
	}
}

// Table is a chronologically ordered set of rows
type Table struct {
	Columns []string
	Rows    []Row
}

// LatestForPair returns the most recent row with the same home and away teams
func (t *Table) LatestForPair(homeID, awayID int64) (*Row, bool) {
	for i := len(t.Rows) - 1; i >= 0; i-- {
		if t.Rows[i].HomeTeamID == homeID && t.Rows[i].AwayTeamID == awayID {
			return &t.Rows[i], true
		}
	}
	return nil, false
}

// LatestHome returns the most recent row where the team played at home
func (t *Table) LatestHome(homeID int64) (*Row, bool) {
	for i := len(t.Rows) - 1; i >= 0; i-- {
		if t.Rows[i].HomeTeamID == homeID {
			return &t.Rows[i], true
		}
	}
	return nil, false
}

// Before returns the rows dated strictly before cutoff
func (t *Table) Before(cutoff time.Time) []Row {
	n := sort.Search(len(t.Rows), func(i int) bool { return !t.Rows[i].Date.Before(cutoff) })
	return t.Rows[:n]
}

// Producer builds feature tables from stored fixtures
type Producer struct {
	matches repository.MatchRepository
	cfg     Config
}

// NewProducer creates a producer reading from matches
func NewProducer(matches repository.MatchRepository, cfg Config) *Producer {
	return &Producer{matches: matches, cfg: cfg}
}

// Config returns the producer's settings
func (p *Producer) Config() Config {
	return p.cfg
}

// Build loads every completed match of the league and computes its table
func (p *Producer) Build(ctx context.Context, leagueID int64) (*Table, error) {
	matches, err := p.matches.ListCompletedByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches for league %d: %w", leagueID, err)
	}
	return BuildFromMatches(matches, p.cfg), nil
}

type teamState struct {
	rating float64
	recent []result
}

type result struct {
	scored, conceded int
	points           int
}

// builder walks matches chronologically, tracking each team's rating and form
type builder struct {
	cfg       Config
	window    int
	advantage float64
	states    map[int64]*teamState
}

func newBuilder(cfg Config) *builder {
	window := cfg.FormWindow
	if window <= 0 {
		window = 1
	}
	advantage := cfg.HomeAdvantage
	if cfg.NeutralVenue {
		advantage = 0
	}
	return &builder{cfg: cfg, window: window, advantage: advantage, states: make(map[int64]*teamState)}
}

func (b *builder) state(id int64) *teamState {
	s, ok := b.states[id]
	if !ok {
		s = &teamState{rating: b.cfg.InitialRating}
		b.states[id] = s
	}
	return s
}

// row returns the pre-match features of m from the current state
func (b *builder) row(m *models.Match) Row {
	home, away := b.state(m.HomeTeamID), b.state(m.AwayTeamID)
	homeScored, homeConceded := averages(home.recent)
	awayScored, awayConceded := averages(away.recent)

	r := Row{
		MatchID:    m.ID,
		LeagueID:   m.LeagueID,
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		Date:       m.Date,
		Values: []float64{
			home.rating,
			away.rating,
			home.rating - away.rating,
			float64(formPoints(home.recent)),
			float64(formPoints(away.recent)),
			homeScored,
			homeConceded,
			awayScored,
			awayConceded,
			b.advantage,
		},
	}
	if m.IsCompleted() {
		r.HomeScore, r.AwayScore = *m.HomeScore, *m.AwayScore
	}
	return r
}

// apply folds the result of a completed match into both teams' state
func (b *builder) apply(m *models.Match) {
	home, away := b.state(m.HomeTeamID), b.state(m.AwayTeamID)

	expected := 1 / (1 + math.Pow(10, (away.rating-home.rating-b.advantage)/400))
	actual := 0.5
	hp, ap := drawPoints, drawPoints
	switch {
	case *m.HomeScore > *m.AwayScore:
		actual, hp, ap = 1, winPoints, 0
	case *m.HomeScore < *m.AwayScore:
		actual, hp, ap = 0, 0, winPoints
	}
	delta := b.cfg.RatingK * (actual - expected)
	home.rating += delta
	away.rating -= delta

	home.recent = push(home.recent, result{scored: *m.HomeScore, conceded: *m.AwayScore, points: hp}, b.window)
	away.recent = push(away.recent, result{scored: *m.AwayScore, conceded: *m.HomeScore, points: ap}, b.window)
}

// BuildFromMatches computes rows for the completed matches given. Each row only
// reflects matches dated before it, so a table built from a prefix of history
// is identical to the same prefix of a table built from all of it.
func BuildFromMatches(matches []*models.Match, cfg Config) *Table {
	completed := sortedCompleted(matches)
	b := newBuilder(cfg)

	table := &Table{Columns: Columns, Rows: make([]Row, 0, len(completed))}
	for _, m := range completed {
		table.Rows = append(table.Rows, b.row(m))
		b.apply(m)
	}
	return table
}

// RowsForFixtures returns pre-match rows for fixtures using only the results in
// history. State is frozen at the end of history, so results among the fixtures
// never feed each other's features. Rows keep the order of fixtures.
func RowsForFixtures(history, fixtures []*models.Match, cfg Config) []Row {
	b := newBuilder(cfg)
	for _, m := range sortedCompleted(history) {
		b.apply(m)
	}

	rows := make([]Row, len(fixtures))
	for i, m := range fixtures {
		rows[i] = b.row(m)
	}
	return rows
}

func sortedCompleted(matches []*models.Match) []*models.Match {
	completed := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.IsCompleted() {
			completed = append(completed, m)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		if !completed[i].Date.Equal(completed[j].Date) {
			return completed[i].Date.Before(completed[j].Date)
		}
		return completed[i].ID < completed[j].ID
	})
	return completed
}

func push(recent []result, r result, window int) []result {
	recent = append(recent, r)
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	return recent
}

func formPoints(recent []result) int {
	total := 0
	for _, r := range recent {
		total += r.points
	}
	return total
}

func averages(recent []result) (scored, conceded float64) {
	if len(recent) == 0 {
		return 0, 0
	}
	for _, r := range recent {
		scored += float64(r.scored)
		conceded += float64(r.conceded)
	}
	n := float64(len(recent))
	return scored / n, conceded / n
}
