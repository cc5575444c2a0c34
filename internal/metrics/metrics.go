// Package metrics holds the Prometheus collectors shared by the engine,
// the registry and the ingestion path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "csvview"

var (
	DatasetsLoadedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dataset",
		Name:      "loads_total",
		Help:      "Total dataset loads, by status (ok, error or superseded).",
	}, []string{"status"})

	RowsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dataset",
		Name:      "rows_skipped_total",
		Help:      "Total rows dropped during ingestion for having the wrong field count.",
	})

	LoadDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "dataset",
		Name:      "load_duration_seconds",
		Help:      "Dataset load duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	DatasetsRegistered = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "datasets",
		Help:      "Number of datasets currently registered.",
	})

	RecomputesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "recomputes_total",
		Help:      "Total filter/sort recomputations run by the worker pool.",
	})

	RecomputeDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "recompute_duration_seconds",
		Help:      "Filter/sort recomputation duration in seconds.",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	StaleResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "stale_results_total",
		Help:      "Total recompute results dropped because the view changed while they ran.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "server",
		Name:      "requests_total",
		Help:      "Total API requests, by route and status code.",
	}, []string{"route", "code"})
)
