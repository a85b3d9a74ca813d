// Package cfg loads host configuration for the risk assessment tool from a
// YAML file, with environment variables taking precedence over file values.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the resolved host configuration.
type Settings struct {
	SchemaPath      string
	ModelPath       string
	ModelSHA256     string
	DataPath        string
	MetricsPort     int
	BatchWorkers    int
	BatchTimeout    time.Duration
	ReviewThreshold float64
	LogLevel        string
}

// ConfigFile mirrors the on-disk YAML layout.
type ConfigFile struct {
	Model struct {
		SchemaPath string `yaml:"schemaPath"`
		Path       string `yaml:"path"`
		SHA256     string `yaml:"sha256"`
	} `yaml:"model"`

	Scoring struct {
		BatchWorkers    int     `yaml:"batchWorkers"`
		BatchTimeout    string  `yaml:"batchTimeout"`
		ReviewThreshold float64 `yaml:"reviewThreshold"`
	} `yaml:"scoring"`

	System struct {
		DataPath    string `yaml:"dataPath"`
		MetricsPort int    `yaml:"metricsPort"`
		LogLevel    string `yaml:"logLevel"`
	} `yaml:"system"`
}

// Load resolves settings from the file named by CONFIG_FILE when set,
// otherwise from environment variables alone.
func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	batchTimeout, err := time.ParseDuration(config.Scoring.BatchTimeout)
	if err != nil {
		batchTimeout = 0 // no timeout
	}

	settings := Settings{
		SchemaPath:      getEnvOrDefault("SCHEMA_PATH", config.Model.SchemaPath),
		ModelPath:       getEnvOrDefault("MODEL_PATH", config.Model.Path),
		ModelSHA256:     getEnvOrDefault("MODEL_SHA256", config.Model.SHA256),
		DataPath:        getEnvOrDefault("DATA_PATH", config.System.DataPath),
		MetricsPort:     getIntFromEnvOrConfig("METRICS_PORT", config.System.MetricsPort),
		BatchWorkers:    getIntFromEnvOrConfig("BATCH_WORKERS", config.Scoring.BatchWorkers),
		BatchTimeout:    getDurationOrDefault("BATCH_TIMEOUT", batchTimeout),
		ReviewThreshold: getFloatFromEnvOrConfig("REVIEW_THRESHOLD", config.Scoring.ReviewThreshold),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", config.System.LogLevel),
	}

	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		SchemaPath:      getEnvOrDefault("SCHEMA_PATH", "model/feature_schema.yaml"),
		ModelPath:       getEnvOrDefault("MODEL_PATH", "model/random_forest.json"),
		ModelSHA256:     os.Getenv("MODEL_SHA256"), // optional
		DataPath:        os.Getenv("DATA_PATH"),    // optional
		MetricsPort:     getIntOrDefault("METRICS_PORT", 0),
		BatchWorkers:    getIntOrDefault("BATCH_WORKERS", 4),
		BatchTimeout:    getDurationOrDefault("BATCH_TIMEOUT", 0),
		ReviewThreshold: getFloatOrDefault("REVIEW_THRESHOLD", 0.75),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func applyDefaults(s *Settings) {
	if s.SchemaPath == "" {
		s.SchemaPath = "model/feature_schema.yaml"
	}
	if s.ModelPath == "" {
		s.ModelPath = "model/random_forest.json"
	}
	if s.BatchWorkers == 0 {
		s.BatchWorkers = 4
	}
	if s.ReviewThreshold == 0 {
		s.ReviewThreshold = 0.75
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}

func validateSettings(s *Settings) error {
	if s.BatchWorkers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", s.BatchWorkers)
	}
	if s.BatchWorkers > 256 {
		return fmt.Errorf("batch workers %d is unreasonably large", s.BatchWorkers)
	}
	if s.BatchTimeout < 0 {
		return fmt.Errorf("batch timeout must not be negative, got %v", s.BatchTimeout)
	}
	if s.ReviewThreshold < 0 || s.ReviewThreshold > 1 {
		return fmt.Errorf("review threshold must be in [0,1], got %v", s.ReviewThreshold)
	}
	if s.MetricsPort < 0 || s.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port %d", s.MetricsPort)
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getIntFromEnvOrConfig(key string, configVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return configVal
}

func getFloatOrDefault(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getFloatFromEnvOrConfig(key string, configVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return configVal
}

func getDurationOrDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
