package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})
	BacktestWeeksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_weeks_total",
		Help:      "Total number of backtest weeks by outcome",
	}, []string{"outcome"})
)

// Backtest histograms
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 900},
	})
)

// Backtest gauge vectors
var (
	BacktestAccuracy = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_accuracy_percentage",
		Help:      "Winner accuracy of the latest backtest run per league and year",
	}, []string{"league_id", "year"})
)

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "incomplete", "failure", "cached"
func RecordBacktestRun(status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	if status != "cached" {
		BacktestDuration.Observe(durationSeconds)
	}
}

// RecordBacktestWeek records a week as "evaluated" or "skipped".
func RecordBacktestWeek(outcome string) {
	BacktestWeeksTotal.WithLabelValues(outcome).Inc()
}

// UpdateBacktestAccuracy sets the accuracy gauge for a league and year.
func UpdateBacktestAccuracy(leagueID, year string, accuracy float64) {
	BacktestAccuracy.WithLabelValues(leagueID, year).Set(accuracy)
}
