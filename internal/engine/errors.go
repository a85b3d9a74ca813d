package engine

import (
	"errors"
	"fmt"
)

// ErrNoSuccessfulRows is reported when a batch summary statistic is requested
// but every row in the batch failed. It exists so the host can distinguish
// "no data" from a legitimate zero.
var ErrNoSuccessfulRows = errors.New("no successful rows in batch")

// MissingFeatureError indicates a required schema feature was absent from
// the sample. The classifier is never invoked for such samples.
type MissingFeatureError struct {
	Feature string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing required feature %q", e.Feature)
}

// InvalidValueError indicates a feature value was NaN or infinite.
type InvalidValueError struct {
	Feature string
	Value   float64
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("feature %q has invalid value %v", e.Feature, e.Value)
}

// SchemaMismatchError indicates a feature vector whose length does not match
// the schema the classifier was trained on.
type SchemaMismatchError struct {
	Want int
	Got  int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature vector length %d does not match schema length %d", e.Got, e.Want)
}

// ModelInferenceError wraps a failure inside the classifier artifact.
// Fatal for the single prediction, never for the process.
type ModelInferenceError struct {
	Err error
}

func (e *ModelInferenceError) Error() string {
	return fmt.Sprintf("model inference failed: %v", e.Err)
}

func (e *ModelInferenceError) Unwrap() error {
	return e.Err
}

// InternalScoringError wraps a failure in a scoring step that should be
// unreachable given a correctly shaped vector. A label is never fabricated
// in its place.
type InternalScoringError struct {
	Err error
}

func (e *InternalScoringError) Error() string {
	return fmt.Sprintf("internal scoring error: %v", e.Err)
}

func (e *InternalScoringError) Unwrap() error {
	return e.Err
}
