package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion counter vectors
var (
	IngestionRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingestion_runs_total",
		Help:      "Total number of fixture sync runs by source and status",
	}, []string{"source", "status"})
	IngestedRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingested_records_total",
		Help:      "Total number of provider records processed by kind and outcome",
	}, []string{"kind", "outcome"})
)

// RecordIngestionRun records a sync run. status is "success" or "failure".
func RecordIngestionRun(source, status string) {
	IngestionRunsTotal.WithLabelValues(source, status).Inc()
}

// RecordIngestedRecords adds n records of a kind ("team", "match") with an
// outcome of "stored", "invalid" or "error"
func RecordIngestedRecords(kind, outcome string, n int) {
	if n <= 0 {
		return
	}
	IngestedRecordsTotal.WithLabelValues(kind, outcome).Add(float64(n))
}
