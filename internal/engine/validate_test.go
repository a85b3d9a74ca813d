package engine

import (
	"errors"
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	schema, err := NewSchema([]Feature{
		{Name: "radius_mean", Min: 6.0, Max: 28.0},
		{Name: "texture_mean", Min: 9.0, Max: 40.0},
		{Name: "symmetry_se", Min: 0.0, Max: 0.08, Optional: true},
	})
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}

	tests := []struct {
		name           string
		sample         Sample
		wantErr        error
		wantOutOfRange []bool
		wantVector     []float64
	}{
		{
			name:           "all in range",
			sample:         Sample{"radius_mean": 14.0, "texture_mean": 20.0, "symmetry_se": 0.02},
			wantOutOfRange: []bool{false, false, false},
			wantVector:     []float64{14.0, 20.0, 0.02},
		},
		{
			name:           "out of range is a flag not an error",
			sample:         Sample{"radius_mean": 31.5, "texture_mean": 20.0, "symmetry_se": 0.02},
			wantOutOfRange: []bool{true, false, false},
			wantVector:     []float64{31.5, 20.0, 0.02},
		},
		{
			name:           "boundary values are in range",
			sample:         Sample{"radius_mean": 6.0, "texture_mean": 40.0, "symmetry_se": 0.0},
			wantOutOfRange: []bool{false, false, false},
			wantVector:     []float64{6.0, 40.0, 0.0},
		},
		{
			name:           "optional feature imputed at midpoint",
			sample:         Sample{"radius_mean": 14.0, "texture_mean": 20.0},
			wantOutOfRange: []bool{false, false, false},
			wantVector:     []float64{14.0, 20.0, 0.04},
		},
		{
			name:    "missing required feature",
			sample:  Sample{"radius_mean": 14.0, "symmetry_se": 0.02},
			wantErr: &MissingFeatureError{},
		},
		{
			name:    "NaN value",
			sample:  Sample{"radius_mean": 14.0, "texture_mean": math.NaN(), "symmetry_se": 0.02},
			wantErr: &InvalidValueError{},
		},
		{
			name:    "infinite value",
			sample:  Sample{"radius_mean": math.Inf(1), "texture_mean": 20.0, "symmetry_se": 0.02},
			wantErr: &InvalidValueError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs, err := Validate(tt.sample, schema)

			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				switch tt.wantErr.(type) {
				case *MissingFeatureError:
					var e *MissingFeatureError
					if !errors.As(err, &e) {
						t.Errorf("expected MissingFeatureError, got %T", err)
					}
				case *InvalidValueError:
					var e *InvalidValueError
					if !errors.As(err, &e) {
						t.Errorf("expected InvalidValueError, got %T", err)
					}
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, want := range tt.wantVector {
				if vs.Vector[i] != want {
					t.Errorf("vector[%d]: expected %v, got %v", i, want, vs.Vector[i])
				}
			}
			for i, want := range tt.wantOutOfRange {
				if vs.OutOfRange[i] != want {
					t.Errorf("outOfRange[%d]: expected %v, got %v", i, want, vs.OutOfRange[i])
				}
			}
		})
	}
}

func TestValidate_IgnoresUnknownFeatures(t *testing.T) {
	schema, err := NewSchema([]Feature{
		{Name: "radius_mean", Min: 6.0, Max: 28.0},
	})
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}

	vs, err := Validate(Sample{"radius_mean": 14.0, "patient_age": 52.0}, schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vs.Vector) != 1 {
		t.Errorf("expected single-element vector, got %d", len(vs.Vector))
	}
}
