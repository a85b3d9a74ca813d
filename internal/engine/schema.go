// Package engine implements the risk scoring pipeline for FNA biopsy
// measurements: input validation against a feature schema, inference through
// an injected classifier artifact, confidence derivation, and per-feature
// contribution ranking.
//
// The engine holds no mutable state. The schema and classifier are supplied
// by the host at construction, loaded once, and read concurrently by any
// number of scoring calls.
package engine

import "fmt"

// Feature describes one expected measurement: its name, the population range
// observed during training, and the unit it is reported in. Optional features
// may be absent from a sample; they are imputed at the range midpoint so they
// never dominate an explanation.
type Feature struct {
	Name     string  `yaml:"name" json:"name"`
	Min      float64 `yaml:"min" json:"min"`
	Max      float64 `yaml:"max" json:"max"`
	Unit     string  `yaml:"unit,omitempty" json:"unit,omitempty"`
	Optional bool    `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// Midpoint returns the center of the feature's population range.
func (f Feature) Midpoint() float64 {
	return (f.Min + f.Max) / 2
}

// Span returns the width of the population range. Always positive for
// features that passed schema construction.
func (f Feature) Span() float64 {
	return f.Max - f.Min
}

// Schema is the ordered set of features the classifier was trained on.
// Immutable after construction.
type Schema struct {
	features []Feature
	index    map[string]int
}

// NewSchema builds a schema from an ordered feature list. Names must be
// unique and every range must satisfy min < max.
func NewSchema(features []Feature) (*Schema, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("schema requires at least one feature")
	}

	index := make(map[string]int, len(features))
	for i, f := range features {
		if f.Name == "" {
			return nil, fmt.Errorf("feature %d has empty name", i)
		}
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate feature name %q", f.Name)
		}
		if f.Min >= f.Max {
			return nil, fmt.Errorf("feature %q: min %v must be below max %v", f.Name, f.Min, f.Max)
		}
		index[f.Name] = i
	}

	own := make([]Feature, len(features))
	copy(own, features)

	return &Schema{features: own, index: index}, nil
}

// Len returns the number of features.
func (s *Schema) Len() int {
	return len(s.features)
}

// Feature returns the feature at position i in declaration order.
func (s *Schema) Feature(i int) Feature {
	return s.features[i]
}

// Index returns the position of the named feature, or false if unknown.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Names returns the feature names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.features))
	for i, f := range s.features {
		names[i] = f.Name
	}
	return names
}
