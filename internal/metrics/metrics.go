// Package metrics provides Prometheus metrics for thirty-today.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequestsTotal counts outbound calls by upstream and outcome.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thirtytoday",
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream API requests",
		},
		[]string{"upstream", "outcome"},
	)

	// UpstreamRequestDuration measures outbound call latency.
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "thirtytoday",
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of upstream API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	// RecordsCollected counts records a source contributed to a run.
	RecordsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thirtytoday",
			Name:      "records_collected_total",
			Help:      "Total number of records collected per source",
		},
		[]string{"source"},
	)

	// RunsTotal counts aggregator runs by status.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thirtytoday",
			Name:      "aggregator_runs_total",
			Help:      "Total number of aggregator runs",
		},
		[]string{"status"},
	)

	// PageRendersTotal counts rendered pages by status.
	PageRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thirtytoday",
			Name:      "page_renders_total",
			Help:      "Total number of page renders",
		},
		[]string{"status"},
	)
)

// RecordRequest records one upstream call.
func RecordRequest(upstream, outcome string, duration float64) {
	UpstreamRequestsTotal.WithLabelValues(upstream, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(upstream).Observe(duration)
}

// RecordCollected records how many records a source returned.
func RecordCollected(source string, n int) {
	RecordsCollected.WithLabelValues(source).Add(float64(n))
}

// RecordRun records the end of an aggregator run.
func RecordRun(status string) {
	RunsTotal.WithLabelValues(status).Inc()
}

// RecordRender records a page render.
func RecordRender(status string) {
	PageRendersTotal.WithLabelValues(status).Inc()
}
