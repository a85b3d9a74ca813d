// Package model deserializes and runs the trained random-forest artifact.
// The forest is exported from the training pipeline as JSON (the engine
// never trains or mutates it) and satisfies the engine's classifier
// capability interface. All inference is read-only and safe for concurrent
// use once loaded.
package model

import (
	"fmt"
	"time"
)

// Node is one decision node in a tree. Leaf nodes have FeatureIndex -1 and
// carry per-class sample counts; split nodes route on value <= Threshold.
type Node struct {
	FeatureIndex int        `json:"feature"`
	Threshold    float64    `json:"threshold"`
	Left         int        `json:"left"`
	Right        int        `json:"right"`
	ClassCounts  [2]float64 `json:"class_counts"`
}

// Tree is a single decision tree, nodes indexed from the root at 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// TrainingMetrics records how the artifact performed at training time.
// Informational only; the engine never acts on these.
type TrainingMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	AUCScore  float64 `json:"auc_score"`
	F1Score   float64 `json:"f1_score"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	Samples   int     `json:"training_samples"`
}

// Metadata identifies the artifact version and provenance.
type Metadata struct {
	Version   string          `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Metrics   TrainingMetrics `json:"metrics"`
}

// Forest is the deserialized random-forest classifier artifact.
type Forest struct {
	Trees        []Tree    `json:"trees"`
	FeatureCount int       `json:"feature_count"`
	Importance   []float64 `json:"feature_importances"`
	Meta         Metadata  `json:"metadata"`
}

// Validate checks the structural integrity of a deserialized forest so a
// corrupt artifact is rejected at load time rather than mid-prediction.
func (f *Forest) Validate() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	if f.FeatureCount <= 0 {
		return fmt.Errorf("invalid feature count %d", f.FeatureCount)
	}
	if len(f.Importance) != f.FeatureCount {
		return fmt.Errorf("importance length %d does not match feature count %d", len(f.Importance), f.FeatureCount)
	}

	for ti, tree := range f.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range tree.Nodes {
			if n.FeatureIndex < 0 {
				continue // leaf
			}
			if n.FeatureIndex >= f.FeatureCount {
				return fmt.Errorf("tree %d node %d references feature %d beyond count %d", ti, ni, n.FeatureIndex, f.FeatureCount)
			}
			if n.Left < 0 || n.Left >= len(tree.Nodes) || n.Right < 0 || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d has child index out of range", ti, ni)
			}
		}
	}
	return nil
}

// Predict returns the class with the highest averaged probability.
func (f *Forest) Predict(vector []float64) (int, error) {
	probs, err := f.PredictProba(vector)
	if err != nil {
		return 0, err
	}
	if probs[1] > probs[0] {
		return 1, nil
	}
	return 0, nil
}

// PredictProba averages per-tree class probabilities across the forest.
func (f *Forest) PredictProba(vector []float64) ([]float64, error) {
	if len(vector) != f.FeatureCount {
		return nil, fmt.Errorf("expected %d features, got %d", f.FeatureCount, len(vector))
	}

	var sum [2]float64
	for ti := range f.Trees {
		p, err := f.Trees[ti].proba(vector)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti, err)
		}
		sum[0] += p[0]
		sum[1] += p[1]
	}

	n := float64(len(f.Trees))
	return []float64{sum[0] / n, sum[1] / n}, nil
}

// Importances returns the global feature importance weights in schema order.
func (f *Forest) Importances() []float64 {
	return f.Importance
}

func (t *Tree) proba(vector []float64) ([2]float64, error) {
	idx := 0
	// Bounded walk: a well-formed tree terminates well before len(Nodes)
	// steps; exceeding it means a cycle in a corrupt artifact.
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[idx]
		if n.FeatureIndex < 0 {
			total := n.ClassCounts[0] + n.ClassCounts[1]
			if total <= 0 {
				return [2]float64{}, fmt.Errorf("leaf %d has no samples", idx)
			}
			return [2]float64{n.ClassCounts[0] / total, n.ClassCounts[1] / total}, nil
		}
		if vector[n.FeatureIndex] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
	return [2]float64{}, fmt.Errorf("tree walk did not terminate")
}
