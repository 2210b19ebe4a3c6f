// Package service syncs league, team and fixture data from external providers into the history store.
package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/rugby-predictor/internal/datasource"
	"github.com/yourusername/rugby-predictor/internal/models"
)

// DataNormalizer converts provider records into stored models
type DataNormalizer struct {
	teamNameMap map[string]string // provider spelling -> canonical name
}

// NewDataNormalizer creates a new data normalizer. aliases maps provider
// team names onto the names used in the store and may be nil.
func NewDataNormalizer(aliases map[string]string) *DataNormalizer {
	m := make(map[string]string, len(aliases))
	for from, to := range aliases {
		m[strings.ToLower(strings.TrimSpace(from))] = strings.TrimSpace(to)
	}
	return &DataNormalizer{teamNameMap: m}
}

// NormalizeLeague converts provider league metadata
func (n *DataNormalizer) NormalizeLeague(leagueID int64, src *datasource.LeagueData) (*models.League, error) {
	if src == nil {
		return nil, fmt.Errorf("source league is nil")
	}
	name := strings.TrimSpace(src.Name)
	if name == "" {
		return nil, fmt.Errorf("league %d has no name", leagueID)
	}
	return &models.League{ID: leagueID, Name: name}, nil
}

// NormalizeTeam converts a provider team and assigns it to leagueID
func (n *DataNormalizer) NormalizeTeam(leagueID int64, src *datasource.TeamData) (*models.Team, error) {
	id, err := parseID("team", src.SourceID)
	if err != nil {
		return nil, err
	}
	league := leagueID
	return &models.Team{ID: id, Name: n.teamName(src.Name), LeagueID: &league}, nil
}

// NormalizeEvent converts a provider fixture into a match of leagueID
func (n *DataNormalizer) NormalizeEvent(leagueID int64, src *datasource.EventData) (*models.Match, error) {
	id, err := parseID("event", src.SourceID)
	if err != nil {
		return nil, err
	}
	home, err := parseID("home team", src.HomeSourceID)
	if err != nil {
		return nil, err
	}
	away, err := parseID("away team", src.AwaySourceID)
	if err != nil {
		return nil, err
	}

	return &models.Match{
		ID:         id,
		LeagueID:   leagueID,
		HomeTeamID: home,
		AwayTeamID: away,
		Date:       src.StartTime.UTC(),
		HomeScore:  src.HomeScore,
		AwayScore:  src.AwayScore,
	}, nil
}

func (n *DataNormalizer) teamName(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := n.teamNameMap[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}
