package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Import outcomes used as the result label.
const (
	ResultStored      = "stored"
	ResultDryRun      = "dry_run"
	ResultDecodeError = "decode_error"
	ResultError       = "error"
)

// Metrics holds the import collectors. A nil *Metrics records nothing.
type Metrics struct {
	imports    *prometheus.CounterVec
	records    *prometheus.CounterVec
	duplicates prometheus.Counter
	duration   prometheus.Histogram
}

// New creates the import collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taod",
			Name:      "imports_total",
			Help:      "Import runs by result.",
		}, []string{"result"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taod",
			Name:      "records_decoded_total",
			Help:      "Records decoded by kind.",
		}, []string{"kind"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taod",
			Name:      "duplicate_keys_total",
			Help:      "Repeated accident natural keys seen in main files.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taod",
			Name:      "import_duration_seconds",
			Help:      "Wall time of import runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
	reg.MustRegister(m.imports, m.records, m.duplicates, m.duration)
	return m
}

// ObserveImport records the outcome of one import run.
func (m *Metrics) ObserveImport(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// AddDecoded records the records and duplicate keys of a decoded batch.
func (m *Metrics) AddDecoded(accidents, persons, duplicates int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues("accident").Add(float64(accidents))
	m.records.WithLabelValues("involved_person").Add(float64(persons))
	m.duplicates.Add(float64(duplicates))
}
