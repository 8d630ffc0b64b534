package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/LavaJover/affiliate-aggregator/internal/domain"
)

// IngestionMetrics holds the counters and histograms for ingestion runs.
type IngestionMetrics struct {
	RunsTotal             *prometheus.CounterVec
	ProgramsUpsertedTotal *prometheus.CounterVec
	RunDuration           *prometheus.HistogramVec
	FailuresTotal         *prometheus.CounterVec
	RateLimitRetriesTotal *prometheus.CounterVec
}

// NewIngestionMetrics registers the ingestion metrics on reg.
func NewIngestionMetrics(reg prometheus.Registerer) *IngestionMetrics {
	factory := promauto.With(reg)
	return &IngestionMetrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_runs_total",
				Help: "Ingestion runs by network and result",
			},
			[]string{"network", "result"},
		),

		ProgramsUpsertedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_programs_upserted_total",
				Help: "Programs written to the store by successful runs",
			},
			[]string{"network"},
		),

		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ingestion_run_duration_seconds",
				Help:    "Wall time of one ingestion run",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"network"},
		),

		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_failures_total",
				Help: "Failed ingestion runs by error kind",
			},
			[]string{"network", "kind"},
		),

		RateLimitRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_rate_limit_retries_total",
				Help: "Backoffs caused by upstream rate limiting",
			},
			[]string{"network"},
		),
	}
}

// RecordRun records the outcome of one run.
func (m *IngestionMetrics) RecordRun(network string, outcome domain.IngestionOutcome, duration time.Duration) {
	result := "success"
	if !outcome.Success {
		result = "failure"
		m.FailuresTotal.WithLabelValues(network, string(outcome.ErrorKind())).Inc()
	} else {
		m.ProgramsUpsertedTotal.WithLabelValues(network).Add(float64(outcome.Count))
	}
	m.RunsTotal.WithLabelValues(network, result).Inc()
	m.RunDuration.WithLabelValues(network).Observe(duration.Seconds())
}

// RecordRateLimitRetry records one backoff before a retry.
func (m *IngestionMetrics) RecordRateLimitRetry(network string) {
	m.RateLimitRetriesTotal.WithLabelValues(network).Inc()
}
