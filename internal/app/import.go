package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/models"
	"github.com/yourusername/rugby-predictor/internal/service"
)

// Dataset is the fixture file accepted by Import
type Dataset struct {
	Leagues []*models.League `json:"leagues"`
	Teams   []*models.Team   `json:"teams"`
	Matches []*models.Match  `json:"matches"`
}

// ImportSummary counts the rows written by Import
type ImportSummary struct {
	Leagues int `json:"leagues"`
	Teams   int `json:"teams"`
	Matches int `json:"matches"`
}

var (
	datasetValidator = validator.New()
	matchValidator   = service.NewDataValidator()
)

// Import decodes a dataset and upserts it into the history store, leagues
// first so teams and matches always reference known rows
func (a *App) Import(ctx context.Context, r io.Reader) (ImportSummary, error) {
	var data Dataset
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return ImportSummary{}, &models.ValidationError{Field: "dataset", Reason: err.Error()}
	}

	var summary ImportSummary
	for _, league := range data.Leagues {
		if league.ID <= 0 || league.Name == "" {
			return summary, &models.ValidationError{Field: "leagues", Reason: fmt.Sprintf("league %d needs an id and a name", league.ID)}
		}
		if err := a.Repos.League.Upsert(ctx, league); err != nil {
			return summary, err
		}
		summary.Leagues++
	}

	for _, team := range data.Teams {
		if err := datasetValidator.Struct(team); err != nil {
			return summary, &models.ValidationError{Field: "teams", Reason: err.Error()}
		}
		if err := a.Repos.Team.Upsert(ctx, team); err != nil {
			return summary, err
		}
		summary.Teams++
	}

	touched := make(map[int64]bool)
	for _, match := range data.Matches {
		if match.ID <= 0 || match.LeagueID <= 0 || match.HomeTeamID <= 0 || match.AwayTeamID <= 0 {
			return summary, &models.ValidationError{Field: "matches", Reason: fmt.Sprintf("match %d has missing ids", match.ID)}
		}
		if problems := matchValidator.ValidateMatch(match); len(problems) > 0 {
			return summary, &models.ValidationError{Field: "matches", Reason: fmt.Sprintf("match %d: %s", match.ID, strings.Join(problems, "; "))}
		}
		if err := a.Repos.Match.Upsert(ctx, match); err != nil {
			return summary, err
		}
		touched[match.LeagueID] = true
		summary.Matches++
	}

	for leagueID := range touched {
		a.Backtests.Invalidate(leagueID)
	}

	a.Logger.WithFields(logrus.Fields{
		"leagues": summary.Leagues,
		"teams":   summary.Teams,
		"matches": summary.Matches,
	}).Info("Dataset imported")
	return summary, nil
}
