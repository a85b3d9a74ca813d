package engine

import (
	"math"
	"sort"
)

// Direction reports which side of the population midpoint a feature value
// fell on, telling the reader which way the measurement pushed the result.
type Direction string

const (
	DirectionHigh Direction = "high"
	DirectionLow  Direction = "low"
)

// Contribution is one entry in the ranked explanation of a prediction.
type Contribution struct {
	Name       string    `json:"name"`
	Score      float64   `json:"score"`
	Direction  Direction `json:"direction"`
	OutOfRange bool      `json:"out_of_range,omitempty"`
}

// Explain ranks features by their contribution to this prediction.
//
// The contribution of a feature is its global importance weight scaled by
// how far the value sits from the population midpoint: a value at the
// midpoint contributes zero, a value at either range extreme contributes the
// full weight. This approximates a local attribution from global weights and
// deliberately ignores feature interactions; it is an acknowledged
// approximation, not a true local method.
//
// Features flagged out of range rank ahead of every in-range feature
// regardless of score, so safety-relevant outliers are never buried.
// Within each group, ordering is by descending score with ties broken by
// schema declaration order.
func Explain(vs *ValidatedSample, schema *Schema, importances []float64) []Contribution {
	n := schema.Len()
	out := make([]Contribution, n)
	order := make([]int, n)

	for i := 0; i < n; i++ {
		f := schema.Feature(i)
		v := vs.Vector[i]

		deviation := math.Abs(v-f.Midpoint()) / f.Span()

		dir := DirectionLow
		if v > f.Midpoint() {
			dir = DirectionHigh
		}

		out[i] = Contribution{
			Name:       f.Name,
			Score:      importances[i] * deviation,
			Direction:  dir,
			OutOfRange: vs.OutOfRange[i],
		}
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		ca, cb := out[order[a]], out[order[b]]
		if ca.OutOfRange != cb.OutOfRange {
			return ca.OutOfRange
		}
		if ca.Score != cb.Score {
			return ca.Score > cb.Score
		}
		return order[a] < order[b]
	})

	ranked := make([]Contribution, n)
	for i, idx := range order {
		ranked[i] = out[idx]
	}
	return ranked
}
