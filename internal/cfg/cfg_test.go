package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.SchemaPath != "model/feature_schema.yaml" {
					t.Errorf("expected default schema path, got %s", settings.SchemaPath)
				}
				if settings.ModelPath != "model/random_forest.json" {
					t.Errorf("expected default model path, got %s", settings.ModelPath)
				}
				if settings.BatchWorkers != 4 {
					t.Errorf("expected default BatchWorkers 4, got %d", settings.BatchWorkers)
				}
				if settings.ReviewThreshold != 0.75 {
					t.Errorf("expected default ReviewThreshold 0.75, got %f", settings.ReviewThreshold)
				}
				if settings.BatchTimeout != 0 {
					t.Errorf("expected no default batch timeout, got %v", settings.BatchTimeout)
				}
			},
		},
		{
			name: "custom settings",
			envVars: map[string]string{
				"SCHEMA_PATH":      "custom/schema.yaml",
				"MODEL_PATH":       "custom/model.json",
				"BATCH_WORKERS":    "8",
				"BATCH_TIMEOUT":    "90s",
				"REVIEW_THRESHOLD": "0.9",
				"METRICS_PORT":     "9090",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.SchemaPath != "custom/schema.yaml" {
					t.Errorf("expected custom schema path, got %s", settings.SchemaPath)
				}
				if settings.BatchWorkers != 8 {
					t.Errorf("expected BatchWorkers 8, got %d", settings.BatchWorkers)
				}
				if settings.BatchTimeout != 90*time.Second {
					t.Errorf("expected BatchTimeout 90s, got %v", settings.BatchTimeout)
				}
				if settings.ReviewThreshold != 0.9 {
					t.Errorf("expected ReviewThreshold 0.9, got %f", settings.ReviewThreshold)
				}
				if settings.MetricsPort != 9090 {
					t.Errorf("expected MetricsPort 9090, got %d", settings.MetricsPort)
				}
			},
		},
		{
			name: "invalid review threshold",
			envVars: map[string]string{
				"REVIEW_THRESHOLD": "1.5",
			},
			wantErr: true,
		},
		{
			name: "zero workers rejected",
			envVars: map[string]string{
				"BATCH_WORKERS": "-1",
			},
			wantErr: true,
		},
		{
			name: "invalid metrics port",
			envVars: map[string]string{
				"METRICS_PORT": "99999",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			settings, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.validate(t, settings)
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	content := `
model:
  schemaPath: model/schema.yaml
  path: model/forest.json
  sha256: abc123
scoring:
  batchWorkers: 12
  batchTimeout: 2m
  reviewThreshold: 0.8
system:
  dataPath: /var/lib/fnarisk
  metricsPort: 8080
  logLevel: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	settings, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if settings.SchemaPath != "model/schema.yaml" {
		t.Errorf("unexpected schema path %s", settings.SchemaPath)
	}
	if settings.ModelSHA256 != "abc123" {
		t.Errorf("unexpected sha %s", settings.ModelSHA256)
	}
	if settings.BatchWorkers != 12 {
		t.Errorf("unexpected workers %d", settings.BatchWorkers)
	}
	if settings.BatchTimeout != 2*time.Minute {
		t.Errorf("unexpected timeout %v", settings.BatchTimeout)
	}
	if settings.DataPath != "/var/lib/fnarisk" {
		t.Errorf("unexpected data path %s", settings.DataPath)
	}
	if settings.LogLevel != "debug" {
		t.Errorf("unexpected log level %s", settings.LogLevel)
	}
}

func TestLoadFromYAML_EnvOverridesFile(t *testing.T) {
	content := `
scoring:
  batchWorkers: 2
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("BATCH_WORKERS", "16")

	settings, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.BatchWorkers != 16 {
		t.Errorf("expected env override 16, got %d", settings.BatchWorkers)
	}
}

func TestLoadFromYAML_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}
