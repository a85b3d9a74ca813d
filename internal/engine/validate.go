package engine

import "math"

// Sample maps feature names to measured values, as parsed by the host.
// Unknown names are ignored; the schema defines what is read.
type Sample map[string]float64

// ValidatedSample is a sample projected onto the schema order, with soft
// out-of-range flags per feature. Out-of-range values are not rejected:
// clinical measurements legitimately exceed the training population range,
// so the flag is carried forward for the explainer instead.
type ValidatedSample struct {
	Vector     []float64
	OutOfRange []bool
}

// Validate checks a sample against the schema and produces a schema-ordered
// feature vector. Missing required features and non-finite values abort
// scoring with a typed error; values outside the population range only set
// the corresponding OutOfRange flag.
func Validate(sample Sample, schema *Schema) (*ValidatedSample, error) {
	n := schema.Len()
	vs := &ValidatedSample{
		Vector:     make([]float64, n),
		OutOfRange: make([]bool, n),
	}

	for i := 0; i < n; i++ {
		f := schema.Feature(i)

		v, ok := sample[f.Name]
		if !ok {
			if f.Optional {
				// Midpoint imputation: zero deviation, zero contribution.
				vs.Vector[i] = f.Midpoint()
				continue
			}
			return nil, &MissingFeatureError{Feature: f.Name}
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &InvalidValueError{Feature: f.Name, Value: v}
		}

		vs.Vector[i] = v
		if v < f.Min || v > f.Max {
			vs.OutOfRange[i] = true
		}
	}

	return vs, nil
}
