// Package metrics provides centralized Prometheus metrics registry for the rugby predictor.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rugby_predictor"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of predictions by method and status",
	}, []string{"method", "status"})
	ModelResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_resolutions_total",
		Help:      "Total number of model artifact lookups by source and outcome",
	}, []string{"source", "outcome"})
	ModelDownloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_downloads_total",
		Help:      "Total number of remote artifact downloads by status",
	}, []string{"status"})
	MarketFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "market_fallbacks_total",
		Help:      "Total number of predictions that used the placeholder market signal",
	})
	ScoreAdjustmentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "score_adjustments_total",
		Help:      "Total number of score pairs rewritten to agree with the predicted winner",
	})
)

// Gauge metrics
var (
	CachedArtifacts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cached_artifacts",
		Help:      "Number of league artifacts held in the registry cache",
	})
)

// Histogram metrics
var (
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_latency_seconds",
		Help:      "Latency of single-match predictions in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	ModelLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_load_duration_seconds",
		Help:      "Duration of artifact resolution and deserialization in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(ModelResolutionsTotal)
		registry.MustRegister(ModelDownloadsTotal)
		registry.MustRegister(MarketFallbacksTotal)
		registry.MustRegister(ScoreAdjustmentsTotal)

		registry.MustRegister(CachedArtifacts)

		registry.MustRegister(PredictionLatency)
		registry.MustRegister(ModelLoadDuration)

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestWeeksTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(BacktestAccuracy)

		registry.MustRegister(IngestionRunsTotal)
		registry.MustRegister(IngestedRecordsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a prediction outcome and its latency.
// status should be "success" or an error kind.
func RecordPrediction(method, status string, durationSeconds float64) {
	PredictionsTotal.WithLabelValues(method, status).Inc()
	PredictionLatency.Observe(durationSeconds)
}

// RecordModelResolution records an artifact lookup.
// outcome should be one of: "hit", "loaded", "not_found", "error"
func RecordModelResolution(source, outcome string) {
	ModelResolutionsTotal.WithLabelValues(source, outcome).Inc()
}

// RecordModelLoad records the time spent loading an artifact.
func RecordModelLoad(durationSeconds float64) {
	ModelLoadDuration.Observe(durationSeconds)
}

// RecordModelDownload records a remote download attempt.
func RecordModelDownload(status string) {
	ModelDownloadsTotal.WithLabelValues(status).Inc()
}

// RecordMarketFallback records use of the placeholder market signal.
func RecordMarketFallback() {
	MarketFallbacksTotal.Inc()
}

// RecordScoreAdjustment records a consistency rewrite of predicted scores.
func RecordScoreAdjustment() {
	ScoreAdjustmentsTotal.Inc()
}

// UpdateCachedArtifacts updates the cached artifacts gauge.
func UpdateCachedArtifacts(count int) {
	CachedArtifacts.Set(float64(count))
}
