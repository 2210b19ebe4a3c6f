package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/rugby-predictor/internal/httpclient"
	"github.com/yourusername/rugby-predictor/internal/models"
)

const oddsSource = "odds_api"

// Provider supplies market signals for fixtures
type Provider interface {
	Fetch(ctx context.Context, leagueID int64, homeTeam, awayTeam string, date time.Time) (Signal, error)
}

// OddsClient fetches bookmaker quotes from an odds HTTP API
type OddsClient struct {
	http    *httpclient.RateLimitedClient
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewOddsClient creates an odds client
func NewOddsClient(httpClient *httpclient.RateLimitedClient, baseURL, apiKey string, timeout time.Duration) *OddsClient {
	return &OddsClient{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

type oddsResponse struct {
	Quotes []Quote `json:"quotes"`
}

// Fetch returns the consensus signal for a fixture. Every failure is reported
// as an UpstreamServiceError.
func (c *OddsClient) Fetch(ctx context.Context, leagueID int64, homeTeam, awayTeam string, date time.Time) (Signal, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	q := url.Values{}
	q.Set("league", strconv.FormatInt(leagueID, 10))
	q.Set("home", homeTeam)
	q.Set("away", awayTeam)
	q.Set("date", date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/odds?"+q.Encode(), nil)
	if err != nil {
		return Signal{}, &models.UpstreamServiceError{Source: oddsSource, Code: "bad_request", Err: err}
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return Signal{}, &models.UpstreamServiceError{Source: oddsSource, Code: "unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Signal{}, &models.UpstreamServiceError{Source: oddsSource, Code: fmt.Sprintf("http_%d", resp.StatusCode)}
	}

	var body oddsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Signal{}, &models.UpstreamServiceError{Source: oddsSource, Code: "bad_payload", Err: err}
	}

	signal, err := Consensus(body.Quotes, oddsSource)
	if err != nil {
		return Signal{}, &models.UpstreamServiceError{Source: oddsSource, Code: "no_market", Err: err}
	}
	return signal, nil
}
