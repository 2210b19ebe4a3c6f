package app

import (
	"context"
	"errors"

	"github.com/yourusername/rugby-predictor/internal/service"
)

// ErrIngestionDisabled is returned by Sync when no fixtures provider is configured
var ErrIngestionDisabled = errors.New("fixture ingestion is disabled")

// Sync pulls a league's fixtures from the provider. seasons overrides the
// configured seasons; with neither, the provider's current season is used.
// Cached backtests of the league are dropped since their history changed.
func (a *App) Sync(ctx context.Context, leagueID int64, seasons []string) (*service.IngestionSummary, error) {
	if a.Ingestion == nil {
		return nil, ErrIngestionDisabled
	}
	if len(seasons) == 0 {
		seasons = a.Config.Ingestion.Seasons
	}

	summary, err := a.Ingestion.SyncLeague(ctx, leagueID, seasons)
	if err != nil {
		return nil, err
	}
	a.Backtests.Invalidate(leagueID)
	return summary, nil
}

// SyncLeagues syncs each league in turn for scheduled runs. A failing league
// is logged by the ingestion service and does not stop the others.
func (a *App) SyncLeagues(ctx context.Context, leagueIDs []int64) error {
	var errs []error
	for _, leagueID := range leagueIDs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := a.Sync(ctx, leagueID, nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
