package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the validation module.
type Metrics struct {
	// Per-evaluator invocation latencies by regulation
	EvaluatorLatency *prometheus.HistogramVec

	// Result outcomes by regulation and outcome
	ResultOutcome *prometheus.CounterVec

	// Overall Validate latency including the fan-out join
	ValidateLatency prometheus.Histogram

	// Consolidated scores, to watch posture drift over time
	Score prometheus.Histogram
}

// New creates a new Metrics instance with all validation module metrics registered.
func New() *Metrics {
	return &Metrics{
		EvaluatorLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "complia_validation_evaluator_duration_seconds",
			Help:    "Duration of evaluator invocations by regulation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"regulation"}),

		ResultOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "complia_validation_results_total",
			Help: "Total per-regulation results by regulation and outcome",
		}, []string{"regulation", "outcome"}),

		ValidateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "complia_validation_validate_duration_seconds",
			Help:    "Duration of full validation runs including aggregation",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		Score: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "complia_validation_score",
			Help:    "Consolidated compliance scores",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 85, 95, 100},
		}),
	}
}

// ObserveEvaluatorLatency records the duration of one evaluator invocation.
func (m *Metrics) ObserveEvaluatorLatency(regulation string, d time.Duration) {
	if m != nil {
		m.EvaluatorLatency.WithLabelValues(regulation).Observe(d.Seconds())
	}
}

// IncrementResult records one per-regulation result.
func (m *Metrics) IncrementResult(regulation, outcome string) {
	if m != nil {
		m.ResultOutcome.WithLabelValues(regulation, outcome).Inc()
	}
}

// ObserveValidateLatency records the total run duration.
func (m *Metrics) ObserveValidateLatency(d time.Duration) {
	if m != nil {
		m.ValidateLatency.Observe(d.Seconds())
	}
}

// ObserveScore records a consolidated score.
func (m *Metrics) ObserveScore(score float64) {
	if m != nil {
		m.Score.Observe(score)
	}
}
