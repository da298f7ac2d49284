// Package metrics holds the Prometheus collectors recorded during a
// validation run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "a2ui_conform"

// Metrics holds all collectors for a run.
type Metrics struct {
	ItemsTotal       *prometheus.CounterVec
	FindingsTotal    *prometheus.CounterVec
	ReportsWritten   prometheus.Counter
	ReportsFailed    prometheus.Counter
	ValidateDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ItemsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Batch items processed, by validation status",
		}, []string{"status"}),
		FindingsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Validation findings, by kind (schema or semantic)",
		}, []string{"kind"}),
		ReportsWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_written_total",
			Help:      "Failure documents persisted",
		}),
		ReportsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_failed_total",
			Help:      "Failure documents that could not be persisted",
		}),
		ValidateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "item_validate_seconds",
			Help:      "Time spent validating a single batch item",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		gatherer: reg,
	}
}

// WriteTextfile writes the current values in the node_exporter textfile
// collector format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
