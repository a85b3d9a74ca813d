package engine

import (
	"fmt"
	"math"
)

// Class indexes used by the trained artifact. Class 0 is benign, class 1 is
// malignant; the artifact must follow this convention.
const (
	ClassBenign    = 0
	ClassMalignant = 1
)

// probSumTolerance bounds how far class probabilities may drift from
// summing to one before the prediction is rejected as corrupt.
const probSumTolerance = 1e-6

// Classifier is the minimal capability interface the trained ensemble
// artifact must satisfy. Implementations are read-only after load and must
// be safe for unsynchronized concurrent calls. The vector argument is always
// in schema declaration order.
type Classifier interface {
	// Predict returns the predicted class index for the vector.
	Predict(vector []float64) (int, error)

	// PredictProba returns the probability assigned to each class,
	// indexed by class, summing to one.
	PredictProba(vector []float64) ([]float64, error)

	// Importances returns the model's global per-feature importance
	// weights in schema order.
	Importances() []float64
}

// Adapter wraps a Classifier behind a single predict call that enforces the
// schema contract and normalizes artifact failures into typed errors. It
// never mutates the artifact.
type Adapter struct {
	clf    Classifier
	schema *Schema
}

// NewAdapter binds a classifier artifact to a schema. The artifact's
// importance weights must cover every schema feature.
func NewAdapter(clf Classifier, schema *Schema) (*Adapter, error) {
	if clf == nil {
		return nil, fmt.Errorf("classifier artifact is nil")
	}
	if got := len(clf.Importances()); got != schema.Len() {
		return nil, &SchemaMismatchError{Want: schema.Len(), Got: got}
	}
	return &Adapter{clf: clf, schema: schema}, nil
}

// Predict runs the artifact over a schema-ordered vector and returns the
// predicted class with its class probabilities. Artifact panics and errors
// surface as ModelInferenceError, fatal for this prediction only.
func (a *Adapter) Predict(vector []float64) (label int, probs []float64, err error) {
	if len(vector) != a.schema.Len() {
		return 0, nil, &SchemaMismatchError{Want: a.schema.Len(), Got: len(vector)}
	}

	defer func() {
		if r := recover(); r != nil {
			label, probs = 0, nil
			err = &ModelInferenceError{Err: fmt.Errorf("artifact panic: %v", r)}
		}
	}()

	label, perr := a.clf.Predict(vector)
	if perr != nil {
		return 0, nil, &ModelInferenceError{Err: perr}
	}

	probs, perr = a.clf.PredictProba(vector)
	if perr != nil {
		return 0, nil, &ModelInferenceError{Err: perr}
	}

	if err := checkProbabilities(probs, label); err != nil {
		return 0, nil, &ModelInferenceError{Err: err}
	}

	return label, probs, nil
}

// Importances exposes the artifact's global feature importance weights.
func (a *Adapter) Importances() []float64 {
	return a.clf.Importances()
}

func checkProbabilities(probs []float64, label int) error {
	if len(probs) != 2 {
		return fmt.Errorf("expected 2 class probabilities, got %d", len(probs))
	}
	if label < 0 || label >= len(probs) {
		return fmt.Errorf("predicted class %d outside probability range", label)
	}

	sum := 0.0
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("invalid probability %v for class %d", p, i)
		}
		sum += p
	}
	if math.Abs(sum-1) > probSumTolerance {
		return fmt.Errorf("class probabilities sum to %v", sum)
	}
	return nil
}
