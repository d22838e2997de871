// Package metrics tracks parsing, conversion and buffer activity using
// Prometheus metrics.
//
// All collectors are registered on Registry rather than the process-wide
// default registry, so embedding programs can expose or ignore them as
// they see fit.
//
//	metrics.RowsRead.Add(float64(doc.Len()))
//	timer := metrics.NewTimer("convert")
//	defer timer.Stop()
package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every libuseful collector.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// RowsRead counts data rows parsed from CSV input, header excluded.
	RowsRead = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "libuseful_csv_rows_read_total",
			Help: "Total number of CSV data rows parsed",
		},
	)

	// CellsRead counts cells parsed from CSV input, header included.
	CellsRead = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "libuseful_csv_cells_read_total",
			Help: "Total number of CSV cells parsed",
		},
	)

	// RowsWritten counts rows serialized as CSV, header included.
	RowsWritten = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "libuseful_csv_rows_written_total",
			Help: "Total number of CSV rows written",
		},
	)

	// ConversionErrors counts cells that were not complete numbers.
	// The source label is "dataframe" or "matrix".
	ConversionErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libuseful_numeric_conversion_errors_total",
			Help: "Total number of cells that failed numeric conversion",
		},
		[]string{"source"},
	)

	// BufferGrowths counts growable buffer reallocations.
	BufferGrowths = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "libuseful_buffer_growths_total",
			Help: "Total number of growable buffer reallocations",
		},
	)

	// BufferGrowthFailures counts growth attempts refused by a capacity limit.
	BufferGrowthFailures = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "libuseful_buffer_growth_failures_total",
			Help: "Total number of buffer growths refused by a capacity limit",
		},
	)

	// OperationDuration records how long top-level operations take.
	OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "libuseful_operation_duration_seconds",
			Help:    "Duration of top-level operations",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"operation"},
	)
)

// Timer measures an operation and records it in OperationDuration.
type Timer struct {
	name  string
	start time.Time
}

// NewTimer starts a timer for the named operation.
func NewTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop records the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	OperationDuration.WithLabelValues(t.name).Observe(d.Seconds())
	return d
}

// Snapshot returns the current value of every counter in Registry keyed by
// metric name, with label pairs appended in braces. Histograms report their
// sample count under name_count.
func Snapshot() (map[string]float64, error) {
	families, err := Registry.Gather()
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			if labels := m.GetLabel(); len(labels) > 0 {
				pairs := make([]string, 0, len(labels))
				for _, lp := range labels {
					pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
				}
				sort.Strings(pairs)
				key += "{" + strings.Join(pairs, ",") + "}"
			}

			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[key+"_count"] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out, nil
}
