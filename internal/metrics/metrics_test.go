package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordPrediction(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues("hybrid", "success"))

	RecordPrediction("hybrid", "success", 0.02)

	after := testutil.ToFloat64(PredictionsTotal.WithLabelValues("hybrid", "success"))
	assert.Equal(t, before+1, after)
}

func TestRecordModelResolution(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name    string
		source  string
		outcome string
	}{
		{name: "cache hit", source: "cache", outcome: "hit"},
		{name: "local load", source: "local", outcome: "loaded"},
		{name: "miss", source: "all", outcome: "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := ModelResolutionsTotal.WithLabelValues(tt.source, tt.outcome)
			before := testutil.ToFloat64(counter)
			RecordModelResolution(tt.source, tt.outcome)
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestUpdateCachedArtifacts(t *testing.T) {
	InitRegistry()

	UpdateCachedArtifacts(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(CachedArtifacts))
}

func TestBacktestMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordBacktestRun("success", 12.5)
		RecordBacktestRun("cached", 0)
		RecordBacktestWeek("evaluated")
		RecordBacktestWeek("skipped")
	})

	UpdateBacktestAccuracy("4", "2023", 67.5)
	assert.Equal(t, 67.5, testutil.ToFloat64(BacktestAccuracy.WithLabelValues("4", "2023")))
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordMarketFallback()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "rugby_predictor_market_fallbacks_total"))
}
