package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.AssessmentsInc()
	m.AssessmentsInc()
	m.ValidationFailuresInc()
	m.InferenceFailuresInc()
	m.ScoringLatencyObserve(0.002)
	m.ConfidenceObserve(0.91)
	m.ObserveBatch(10, 2)
	m.ModelAge.Set(3600)

	if got := testutil.ToFloat64(m.Assessments); got != 2 {
		t.Errorf("expected 2 assessments, got %v", got)
	}
	if got := testutil.ToFloat64(m.ValidationFailures); got != 1 {
		t.Errorf("expected 1 validation failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.BatchRows); got != 10 {
		t.Errorf("expected 10 batch rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.BatchErrors); got != 2 {
		t.Errorf("expected 2 batch errors, got %v", got)
	}
	if got := testutil.ToFloat64(m.ModelAge); got != 3600 {
		t.Errorf("expected model age 3600, got %v", got)
	}
}

func TestIsolatedRegistries(t *testing.T) {
	// Two registries must not collide on metric names.
	a := NewWithRegistry(prometheus.NewRegistry())
	b := NewWithRegistry(prometheus.NewRegistry())

	a.AssessmentsInc()
	if got := testutil.ToFloat64(b.Assessments); got != 0 {
		t.Errorf("registry b observed registry a's increment: %v", got)
	}
}
