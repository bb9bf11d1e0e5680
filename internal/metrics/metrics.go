// Package metrics provides Prometheus metrics for archive operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rearchive_operations_in_flight",
			Help: "Archive reader operations currently holding an admission slot",
		},
	)

	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rearchive_operations_total",
			Help: "Total number of archive operations by outcome",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rearchive_operation_duration_seconds",
			Help:    "Time spent inside the archive reader",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	admissionWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rearchive_admission_wait_seconds",
			Help:    "Time spent waiting for an admission slot",
			Buckets: []float64{.001, .01, .1, .5, 1, 5, 30},
		},
		[]string{"operation"},
	)

	entriesListed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rearchive_entries_listed_total",
			Help: "Total number of archive entries listed",
		},
	)
)

// OperationAdmitted records an operation entering the archive reader
func OperationAdmitted(operation string, waited time.Duration) {
	admissionWait.WithLabelValues(operation).Observe(waited.Seconds())
	operationsInFlight.Inc()
}

// OperationFinished records an operation leaving the archive reader
func OperationFinished(operation string, took time.Duration, err error) {
	operationsInFlight.Dec()
	operationDuration.WithLabelValues(operation).Observe(took.Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	operationsTotal.WithLabelValues(operation, status).Inc()
}

// EntriesListed adds to the listed entries counter
func EntriesListed(n int) {
	entriesListed.Add(float64(n))
}

// WriteTextfile writes all registered metrics in the text exposition format,
// suitable for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
