package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	c := NewChecker(Config{ServiceName: "rugby-predictor", Version: "1.0.0"})

	rec := httptest.NewRecorder()
	c.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "rugby-predictor", body.Service)
	assert.Equal(t, "1.0.0", body.Version)
}

func TestHandleReady(t *testing.T) {
	c := NewChecker(Config{ServiceName: "rugby-predictor"})
	dbErr := errors.New("connection refused")
	var failing bool
	c.AddCheck("database", PingFunc(func(ctx context.Context) error {
		if failing {
			return dbErr
		}
		return nil
	}))

	ready := func() (int, ReadyResponse) {
		rec := httptest.NewRecorder()
		c.HandleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		var body ReadyResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		return rec.Code, body
	}

	code, body := ready()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", body.Checks["service"])

	c.SetReady(true)
	code, body = ready()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Checks["database"])

	failing = true
	code, body = ready()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "error: connection refused", body.Checks["database"])
}
