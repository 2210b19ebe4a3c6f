package backtest

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/yourusername/rugby-predictor/internal/models"
)

// Week is one ISO-calendar-week bucket of evaluation matches
type Week struct {
	Key     string
	Start   time.Time
	Matches []*models.Match
}

// WeekKey formats the ISO week of t as YYYY-Www
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// GroupByWeek buckets matches by ISO week. Buckets are ordered by their
// earliest match date and matches within a bucket keep their input order.
func GroupByWeek(matches []*models.Match) []Week {
	index := make(map[string]int)
	weeks := make([]Week, 0)
	for _, m := range matches {
		key := WeekKey(m.Date)
		i, ok := index[key]
		if !ok {
			i = len(weeks)
			index[key] = i
			weeks = append(weeks, Week{Key: key, Start: m.Date})
		}
		if m.Date.Before(weeks[i].Start) {
			weeks[i].Start = m.Date
		}
		weeks[i].Matches = append(weeks[i].Matches, m)
	}

	sort.SliceStable(weeks, func(i, j int) bool {
		return weeks[i].Start.Before(weeks[j].Start)
	})
	return weeks
}

// AvailableYears returns the distinct calendar years of matches, ascending
func AvailableYears(matches []*models.Match) []string {
	seen := make(map[int]bool)
	years := make([]int, 0)
	for _, m := range matches {
		y := m.Date.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)

	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}

// InYear returns the matches dated in the given calendar year
func InYear(matches []*models.Match, year int) []*models.Match {
	out := make([]*models.Match, 0)
	for _, m := range matches {
		if m.Date.Year() == year {
			out = append(out, m)
		}
	}
	return out
}

// TrainingSet returns the prefix of history dated strictly before cutoff.
// history must be sorted by date.
func TrainingSet(history []*models.Match, cutoff time.Time) []*models.Match {
	n := sort.Search(len(history), func(i int) bool { return !history[i].Date.Before(cutoff) })
	return history[:n]
}

// sortHistory returns the completed matches sorted by date then id
func sortHistory(matches []*models.Match) []*models.Match {
	history := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.IsCompleted() {
			history = append(history, m)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].Date.Equal(history[j].Date) {
			return history[i].Date.Before(history[j].Date)
		}
		return history[i].ID < history[j].ID
	})
	return history
}

func parseYear(year string) (int, error) {
	y, err := strconv.Atoi(year)
	if err != nil || len(year) != 4 {
		return 0, &models.ValidationError{Field: "year", Reason: "must be formatted YYYY"}
	}
	return y, nil
}
