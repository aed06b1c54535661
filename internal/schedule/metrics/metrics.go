package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scheduler module.
type Metrics struct {
	// Full tick duration including every entry processed
	TickLatency prometheus.Histogram

	// Entries handled per tick by result
	Entries *prometheus.CounterVec

	// Entries found due at scan time, to watch backlog growth
	DueDepth prometheus.Gauge
}

// New creates a new Metrics instance with all scheduler metrics registered.
func New() *Metrics {
	return &Metrics{
		TickLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "complia_schedule_tick_duration_seconds",
			Help:    "Duration of scheduler ticks",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
		}),

		Entries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "complia_schedule_entries_total",
			Help: "Scheduled entries processed by result",
		}, []string{"result"}),

		DueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "complia_schedule_due_entries",
			Help: "Entries found due at the last scan",
		}),
	}
}

// ObserveTick records one tick duration.
func (m *Metrics) ObserveTick(d time.Duration) {
	if m != nil {
		m.TickLatency.Observe(d.Seconds())
	}
}

// IncrementEntry records one processed entry by result
// (success, failure, claim_lost).
func (m *Metrics) IncrementEntry(result string) {
	if m != nil {
		m.Entries.WithLabelValues(result).Inc()
	}
}

// SetDueDepth records the due-scan depth.
func (m *Metrics) SetDueDepth(n int) {
	if m != nil {
		m.DueDepth.Set(float64(n))
	}
}
