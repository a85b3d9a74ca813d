package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fna-risk/internal/engine"
)

// schemaFile mirrors the on-disk YAML layout of the feature schema, as
// exported by the training pipeline alongside the model artifact.
type schemaFile struct {
	Features []engine.Feature `yaml:"features"`
}

// LoadSchema reads a feature schema from a YAML file and validates it.
func LoadSchema(path string) (*engine.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file %s: %w", path, err)
	}

	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse schema file: %w", err)
	}

	schema, err := engine.NewSchema(file.Features)
	if err != nil {
		return nil, fmt.Errorf("invalid schema in %s: %w", path, err)
	}
	return schema, nil
}
