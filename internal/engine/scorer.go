package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// RiskLabel is the engine's verdict for one sample.
type RiskLabel string

const (
	LabelBenign    RiskLabel = "benign"
	LabelMalignant RiskLabel = "malignant"
)

// RiskResult is the complete outcome of scoring one sample. Plain data,
// suitable for direct rendering or serialization by the host.
type RiskResult struct {
	Label RiskLabel `json:"label"`

	// Confidence is the raw probability the model assigned to the
	// predicted class, in [0,1]. Uncalibrated; introducing a second,
	// unverified calibration model was rejected in favor of auditability.
	Confidence float64 `json:"confidence"`

	ContributingFeatures []Contribution `json:"contributing_features"`
}

// Metrics is the narrow instrumentation surface the scorer reports through.
// A nil Metrics disables instrumentation.
type Metrics interface {
	AssessmentsInc()
	ValidationFailuresInc()
	InferenceFailuresInc()
	ScoringLatencyObserve(float64)
	ConfidenceObserve(float64)
}

// Scorer orchestrates the pipeline for one sample: validation, inference,
// label and confidence derivation, and explanation. Stateless per call.
type Scorer struct {
	schema  *Schema
	adapter *Adapter
	metrics Metrics
}

// NewScorer binds a schema and classifier artifact into a scoring engine.
// Both are injected by the host, loaded once, and shared read-only across
// all calls.
func NewScorer(schema *Schema, clf Classifier, metrics Metrics) (*Scorer, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	adapter, err := NewAdapter(clf, schema)
	if err != nil {
		return nil, err
	}
	return &Scorer{schema: schema, adapter: adapter, metrics: metrics}, nil
}

// Schema returns the schema the scorer was constructed with.
func (s *Scorer) Schema() *Schema {
	return s.schema
}

// Score validates and scores a single sample. Validation and inference
// failures return typed errors; a label is never fabricated on failure.
func (s *Scorer) Score(sample Sample) (*RiskResult, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ScoringLatencyObserve(time.Since(start).Seconds())
		}
	}()

	vs, err := Validate(sample, s.schema)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ValidationFailuresInc()
		}
		return nil, err
	}

	class, probs, err := s.adapter.Predict(vs.Vector)
	if err != nil {
		if s.metrics != nil {
			s.metrics.InferenceFailuresInc()
		}
		return nil, err
	}

	label, err := classLabel(class)
	if err != nil {
		return nil, &InternalScoringError{Err: err}
	}

	result := &RiskResult{
		Label:                label,
		Confidence:           probs[class],
		ContributingFeatures: Explain(vs, s.schema, s.adapter.Importances()),
	}

	if s.metrics != nil {
		s.metrics.AssessmentsInc()
		s.metrics.ConfidenceObserve(result.Confidence)
	}

	log.Debug().
		Str("label", string(result.Label)).
		Float64("confidence", result.Confidence).
		Int("features", s.schema.Len()).
		Msg("sample scored")

	return result, nil
}

func classLabel(class int) (RiskLabel, error) {
	switch class {
	case ClassBenign:
		return LabelBenign, nil
	case ClassMalignant:
		return LabelMalignant, nil
	default:
		return "", fmt.Errorf("unknown class index %d", class)
	}
}
