// Package metrics provides Prometheus metrics collection for the risk
// assessment tool. It covers scoring throughput, failure modes, latency,
// and the distribution of confidence scores, exposed via the Prometheus
// metrics endpoint when the host enables it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the assessment pipeline.
type Metrics struct {
	Assessments        prometheus.Counter   // Completed risk assessments
	ValidationFailures prometheus.Counter   // Samples rejected by input validation
	InferenceFailures  prometheus.Counter   // Classifier inference failures
	BatchRows          prometheus.Counter   // Rows processed in batch mode
	BatchErrors        prometheus.Counter   // Batch rows that failed
	ScoringLatency     prometheus.Histogram // End-to-end single-sample scoring latency
	Confidence         prometheus.Histogram // Distribution of predicted-class probabilities
	ModelAge           prometheus.Gauge     // Age of the loaded model artifact in seconds
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry, which keeps test
// runs isolated from the global Prometheus registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Assessments: factory.NewCounter(prometheus.CounterOpts{
			Name: "assessments_total",
			Help: "Total number of completed risk assessments",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of samples rejected by input validation",
		}),
		InferenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "inference_failures_total",
			Help: "Total number of classifier inference failures",
		}),
		BatchRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "batch_rows_total",
			Help: "Total number of rows processed in batch mode",
		}),
		BatchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "batch_row_errors_total",
			Help: "Total number of batch rows that failed",
		}),
		ScoringLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scoring_latency_seconds",
			Help:    "End-to-end single-sample scoring latency in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		Confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assessment_confidence",
			Help:    "Distribution of predicted-class probabilities",
			Buckets: prometheus.LinearBuckets(0.5, 0.05, 11),
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of the loaded model artifact in seconds",
		}),
	}
}

// The methods below satisfy the engine's narrow metrics interface so the
// scoring core never imports prometheus directly.

func (m *Metrics) AssessmentsInc()        { m.Assessments.Inc() }
func (m *Metrics) ValidationFailuresInc() { m.ValidationFailures.Inc() }
func (m *Metrics) InferenceFailuresInc()  { m.InferenceFailures.Inc() }

func (m *Metrics) ScoringLatencyObserve(seconds float64) { m.ScoringLatency.Observe(seconds) }
func (m *Metrics) ConfidenceObserve(p float64)           { m.Confidence.Observe(p) }

// ObserveBatch records per-batch row counts after a batch completes.
func (m *Metrics) ObserveBatch(rows, errors int) {
	m.BatchRows.Add(float64(rows))
	m.BatchErrors.Add(float64(errors))
}
