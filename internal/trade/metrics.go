package trade

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Operations      *prometheus.CounterVec
	Records         prometheus.Gauge
	ScannedRecords  prometheus.Counter
	MatchedRecords  prometheus.Counter
	LogEntriesTotal prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid global registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tcstore",
				Subsystem: "trade",
				Name:      "operations_total",
				Help:      "Service operations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		Records: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "tcstore",
			Subsystem: "store",
			Name:      "records",
			Help:      "Number of records currently held",
		}),
		ScannedRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tcstore",
			Subsystem: "filter",
			Name:      "scanned_records_total",
			Help:      "Records examined by filter queries",
		}),
		MatchedRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tcstore",
			Subsystem: "filter",
			Name:      "matched_records_total",
			Help:      "Records that satisfied a filter query",
		}),
		LogEntriesTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "tcstore",
			Subsystem: "store",
			Name:      "log_entries",
			Help:      "Length of the operation log",
		}),
	}
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(string(CodeOf(err)))
		if outcome == "" {
			outcome = "error"
		}
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) setSizes(records, logEntries int) {
	if m == nil {
		return
	}
	m.Records.Set(float64(records))
	m.LogEntriesTotal.Set(float64(logEntries))
}

func (m *Metrics) scanned(examined, matched int) {
	if m == nil {
		return
	}
	m.ScannedRecords.Add(float64(examined))
	m.MatchedRecords.Add(float64(matched))
}
