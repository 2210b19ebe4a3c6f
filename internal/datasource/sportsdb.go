package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/httpclient"
	"github.com/yourusername/rugby-predictor/internal/models"
)

const sportsDBSource = "thesportsdb"

// SportsDBClient implements FixtureSource for the TheSportsDB v1 JSON API
type SportsDBClient struct {
	httpClient *httpclient.RateLimitedClient
	baseURL    string
	apiKey     string
	logger     logrus.FieldLogger
}

type sportsDBLeague struct {
	ID            string `json:"idLeague"`
	Name          string `json:"strLeague"`
	CurrentSeason string `json:"strCurrentSeason"`
}

type sportsDBTeam struct {
	ID       string `json:"idTeam"`
	Name     string `json:"strTeam"`
	LeagueID string `json:"idLeague"`
}

// the API sends numbers as strings and missing values as null
type sportsDBEvent struct {
	ID         string  `json:"idEvent"`
	LeagueID   string  `json:"idLeague"`
	Season     string  `json:"strSeason"`
	HomeTeamID string  `json:"idHomeTeam"`
	AwayTeamID string  `json:"idAwayTeam"`
	HomeTeam   string  `json:"strHomeTeam"`
	AwayTeam   string  `json:"strAwayTeam"`
	HomeScore  *string `json:"intHomeScore"`
	AwayScore  *string `json:"intAwayScore"`
	Date       string  `json:"dateEvent"`
	Time       *string `json:"strTime"`
	Timestamp  *string `json:"strTimestamp"`
}

// NewSportsDBClient creates a new TheSportsDB client. baseURL is the API root
// without the key, e.g. https://www.thesportsdb.com/api/v1/json.
func NewSportsDBClient(httpClient *httpclient.RateLimitedClient, baseURL, apiKey string, logger logrus.FieldLogger) *SportsDBClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &SportsDBClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Name returns the name of the data source
func (c *SportsDBClient) Name() string {
	return sportsDBSource
}

// FetchLeague retrieves league metadata
func (c *SportsDBClient) FetchLeague(ctx context.Context, leagueID int64) (*LeagueData, error) {
	var body struct {
		Leagues []sportsDBLeague `json:"leagues"`
	}
	if err := c.get(ctx, "lookupleague.php", url.Values{"id": {strconv.FormatInt(leagueID, 10)}}, &body); err != nil {
		return nil, err
	}
	if len(body.Leagues) == 0 {
		return nil, &models.UpstreamServiceError{Source: sportsDBSource, Code: ErrCodeNotFound, Err: fmt.Errorf("league %d not found", leagueID)}
	}

	l := body.Leagues[0]
	return &LeagueData{SourceID: l.ID, Name: l.Name, CurrentSeason: l.CurrentSeason}, nil
}

// FetchTeams retrieves every team of a league
func (c *SportsDBClient) FetchTeams(ctx context.Context, leagueID int64) ([]TeamData, error) {
	var body struct {
		Teams []sportsDBTeam `json:"teams"`
	}
	if err := c.get(ctx, "lookup_all_teams.php", url.Values{"id": {strconv.FormatInt(leagueID, 10)}}, &body); err != nil {
		return nil, err
	}

	teams := make([]TeamData, 0, len(body.Teams))
	for _, t := range body.Teams {
		teams = append(teams, TeamData{SourceID: t.ID, Name: t.Name, LeagueSourceID: t.LeagueID})
	}
	return teams, nil
}

// FetchSeason retrieves every fixture of a season. Events that cannot be
// converted are logged and skipped.
func (c *SportsDBClient) FetchSeason(ctx context.Context, leagueID int64, season string) ([]EventData, error) {
	var body struct {
		Events []sportsDBEvent `json:"events"`
	}
	q := url.Values{"id": {strconv.FormatInt(leagueID, 10)}, "s": {season}}
	if err := c.get(ctx, "eventsseason.php", q, &body); err != nil {
		return nil, err
	}

	events := make([]EventData, 0, len(body.Events))
	for i := range body.Events {
		event, err := convertEvent(&body.Events[i])
		if err != nil {
			c.logger.WithError(err).WithField("event_id", body.Events[i].ID).Warn("Skipping unreadable event")
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (c *SportsDBClient) get(ctx context.Context, endpoint string, q url.Values, dest any) error {
	u := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, url.PathEscape(c.apiKey), endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &models.UpstreamServiceError{Source: sportsDBSource, Code: ErrCodeNetworkError, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return &models.UpstreamServiceError{Source: sportsDBSource, Code: ErrCodeNetworkError, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &models.UpstreamServiceError{Source: sportsDBSource, Code: ErrCodeAuthenticationFailed}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &models.UpstreamServiceError{Source: sportsDBSource, Code: ErrCodeRateLimitExceeded}
	case resp.StatusCode == http.StatusNotFound:
		return &models.UpstreamServiceError{Source: sportsDBSource, Code: ErrCodeNotFound}
	case resp.StatusCode != http.StatusOK:
		return &models.UpstreamServiceError{Source: sportsDBSource, Code: ErrCodeServerError, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &models.UpstreamServiceError{Source: sportsDBSource, Code: ErrCodeInvalidData, Err: err}
	}
	return nil
}

func convertEvent(e *sportsDBEvent) (EventData, error) {
	start, err := eventTime(e)
	if err != nil {
		return EventData{}, err
	}
	home, err := parseScore(e.HomeScore)
	if err != nil {
		return EventData{}, err
	}
	away, err := parseScore(e.AwayScore)
	if err != nil {
		return EventData{}, err
	}
	// a half-reported result is treated as unplayed
	if home == nil || away == nil {
		home, away = nil, nil
	}

	return EventData{
		SourceID:       e.ID,
		LeagueSourceID: e.LeagueID,
		Season:         e.Season,
		HomeSourceID:   e.HomeTeamID,
		AwaySourceID:   e.AwayTeamID,
		HomeTeam:       e.HomeTeam,
		AwayTeam:       e.AwayTeam,
		HomeScore:      home,
		AwayScore:      away,
		StartTime:      start,
	}, nil
}

func eventTime(e *sportsDBEvent) (time.Time, error) {
	if e.Timestamp != nil && *e.Timestamp != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, *e.Timestamp); err == nil {
				return t.UTC(), nil
			}
		}
	}
	if e.Date == "" {
		return time.Time{}, fmt.Errorf("event %s has no date", e.ID)
	}
	if e.Time != nil && *e.Time != "" {
		if t, err := time.Parse("2006-01-02 15:04:05", e.Date+" "+strings.TrimSuffix(*e.Time, "Z")); err == nil {
			return t.UTC(), nil
		}
	}
	t, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("event %s has invalid date %q: %w", e.ID, e.Date, err)
	}
	return t, nil
}

func parseScore(s *string) (*int, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return nil, fmt.Errorf("invalid score %q: %w", *s, err)
	}
	return &v, nil
}
