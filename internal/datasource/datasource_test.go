package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/rugby-predictor/internal/httpclient"
	"github.com/yourusername/rugby-predictor/internal/models"
)

func testHTTP() *httpclient.RateLimitedClient {
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = time.Millisecond
	cfg.RateLimit = 0
	return httpclient.New(cfg, nil)
}

const seasonPayload = `{"events":[
	{"idEvent":"2001","idLeague":"4414","strSeason":"2024-2025","idHomeTeam":"135","idAwayTeam":"136",
	 "strHomeTeam":"Bath Rugby","strAwayTeam":"Saracens","intHomeScore":"31","intAwayScore":"24",
	 "dateEvent":"2024-09-21","strTime":"14:00:00","strTimestamp":"2024-09-21T14:00:00"},
	{"idEvent":"2002","idLeague":"4414","strSeason":"2024-2025","idHomeTeam":"137","idAwayTeam":"135",
	 "strHomeTeam":"Sale Sharks","strAwayTeam":"Bath Rugby","intHomeScore":null,"intAwayScore":null,
	 "dateEvent":"2025-05-10","strTime":"15:05:00","strTimestamp":null},
	{"idEvent":"2003","idLeague":"4414","strSeason":"2024-2025","idHomeTeam":"136","idAwayTeam":"137",
	 "strHomeTeam":"Saracens","strAwayTeam":"Sale Sharks","intHomeScore":"12","intAwayScore":null,
	 "dateEvent":"2025-05-11","strTime":null,"strTimestamp":null},
	{"idEvent":"2004","idLeague":"4414","strSeason":"2024-2025","idHomeTeam":"136","idAwayTeam":"137",
	 "strHomeTeam":"Saracens","strAwayTeam":"Sale Sharks","intHomeScore":null,"intAwayScore":null,
	 "dateEvent":"","strTime":null,"strTimestamp":null}
]}`

func TestSportsDBFetchSeason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/eventsseason.php", r.URL.Path)
		assert.Equal(t, "4414", r.URL.Query().Get("id"))
		assert.Equal(t, "2024-2025", r.URL.Query().Get("s"))
		w.Write([]byte(seasonPayload))
	}))
	defer server.Close()

	client := NewSportsDBClient(testHTTP(), server.URL+"/", "3", nil)
	events, err := client.FetchSeason(context.Background(), 4414, "2024-2025")
	require.NoError(t, err)
	require.Len(t, events, 3)

	played := events[0]
	assert.Equal(t, "2001", played.SourceID)
	assert.Equal(t, time.Date(2024, 9, 21, 14, 0, 0, 0, time.UTC), played.StartTime)
	require.NotNil(t, played.HomeScore)
	assert.Equal(t, 31, *played.HomeScore)
	assert.Equal(t, 24, *played.AwayScore)

	upcoming := events[1]
	assert.Nil(t, upcoming.HomeScore)
	assert.Equal(t, time.Date(2025, 5, 10, 15, 5, 0, 0, time.UTC), upcoming.StartTime)

	halfReported := events[2]
	assert.Nil(t, halfReported.HomeScore)
	assert.Nil(t, halfReported.AwayScore)
	assert.Equal(t, time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC), halfReported.StartTime)
}

func TestSportsDBFetchLeagueAndTeams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/3/lookupleague.php":
			w.Write([]byte(`{"leagues":[{"idLeague":"4414","strLeague":"English Premiership Rugby","strCurrentSeason":"2024-2025"}]}`))
		case "/3/lookup_all_teams.php":
			w.Write([]byte(`{"teams":[{"idTeam":"135","strTeam":"Bath Rugby","idLeague":"4414"},{"idTeam":"136","strTeam":"Saracens","idLeague":"4414"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewSportsDBClient(testHTTP(), server.URL, "3", nil)

	league, err := client.FetchLeague(context.Background(), 4414)
	require.NoError(t, err)
	assert.Equal(t, "English Premiership Rugby", league.Name)
	assert.Equal(t, "2024-2025", league.CurrentSeason)

	teams, err := client.FetchTeams(context.Background(), 4414)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, TeamData{SourceID: "136", Name: "Saracens", LeagueSourceID: "4414"}, teams[1])
}

func TestSportsDBErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    string
	}{
		{
			name:    "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			code:    ErrCodeRateLimitExceeded,
		},
		{
			name:    "bad key",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			code:    ErrCodeAuthenticationFailed,
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			code:    ErrCodeServerError,
		},
		{
			name:    "garbage",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>")) },
			code:    ErrCodeInvalidData,
		},
		{
			name:    "unknown league",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"leagues":null}`)) },
			code:    ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewSportsDBClient(testHTTP(), server.URL, "3", nil)
			_, err := client.FetchLeague(context.Background(), 4414)

			var upstream *models.UpstreamServiceError
			require.True(t, errors.As(err, &upstream), "got %v", err)
			assert.Equal(t, tt.code, upstream.Code)
			assert.Equal(t, "thesportsdb", upstream.Source)
		})
	}
}
