// Package metrics provides Prometheus metrics for ranking runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rollrank"

// registry is a custom registry so the engine's metrics stay isolated from
// the default Go collectors.
var registry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry

var (
	eventsAnalyzed = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_analyzed_total",
		Help:      "Events analyzed, partitioned by outcome (skipped, cached, fetched).",
	}, []string{"outcome"})

	eventFailures = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_failures_total",
		Help:      "Events that failed analysis, partitioned by failure kind.",
	}, []string{"kind"})

	scoreRowsInserted = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "score_rows_inserted_total",
		Help:      "Freshly parsed score records persisted to the store.",
	})

	contributions = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contributions_total",
		Help:      "Weighted contributions delivered to the aggregator.",
	})

	reevaluated = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reevaluated_competitors_total",
		Help:      "Competitors recomputed by the overflow window cap.",
	})

	competitorsTotal = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "competitors_total",
		Help:      "Competitors carrying a non-zero aggregate in the last run.",
	})

	eventAnalysisSeconds = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_analysis_seconds",
		Help:      "Wall time spent analyzing a single event.",
		Buckets:   prometheus.DefBuckets,
	})

	runSeconds = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of a complete ranking run.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
	})
)

// RecordEventAnalyzed counts one analyzed event by outcome.
func RecordEventAnalyzed(outcome string) {
	eventsAnalyzed.WithLabelValues(outcome).Inc()
}

// RecordEventFailure counts one failed event by failure kind.
func RecordEventFailure(kind string) {
	eventFailures.WithLabelValues(kind).Inc()
}

// RecordScoreInserted counts one persisted score record.
func RecordScoreInserted() {
	scoreRowsInserted.Inc()
}

// RecordContribution counts one contribution handed to the aggregator.
func RecordContribution() {
	contributions.Inc()
}

// RecordReevaluated counts one window-capped recomputation.
func RecordReevaluated() {
	reevaluated.Inc()
}

// UpdateCompetitorTotal sets the competitor gauge.
func UpdateCompetitorTotal(n int) {
	competitorsTotal.Set(float64(n))
}

// ObserveEventAnalysis records the analysis latency of one event.
func ObserveEventAnalysis(seconds float64) {
	eventAnalysisSeconds.Observe(seconds)
}

// ObserveRunDuration records the wall time of a full run.
func ObserveRunDuration(seconds float64) {
	runSeconds.Observe(seconds)
}

// Registry exposes the engine's registry for serving /metrics.
func Registry() *prometheus.Registry {
	return registry
}
