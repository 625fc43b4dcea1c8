// Package config handles configuration loading and validation for the
// bench binary. Precedence: defaults, then the optional YAML file, then
// CAPEVAL_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	capeval "github.com/jamesainslie/go-capeval"
)

// Config holds all bench binary configuration.
type Config struct {
	// DataRoot is the dataset catalog directory.
	DataRoot string `envconfig:"CAPEVAL_DATA_ROOT" yaml:"data_root"`

	// Workers bounds concurrent evaluations in a batch run.
	Workers int `envconfig:"CAPEVAL_WORKERS" yaml:"workers"`

	Eval EvalConfig `yaml:"eval"`
	Log  LogConfig  `yaml:"log"`
}

// EvalConfig holds the evaluation parameters shared by every run.
type EvalConfig struct {
	Collar      float64  `envconfig:"CAPEVAL_COLLAR" yaml:"collar"`
	SkipOverlap bool     `envconfig:"CAPEVAL_SKIP_OVERLAP" yaml:"skip_overlap"`
	SkipEvents  bool     `envconfig:"CAPEVAL_SKIP_EVENTS" yaml:"skip_events"`
	Language    string   `envconfig:"CAPEVAL_LANGUAGE" yaml:"language"`
	Metrics     []string `envconfig:"CAPEVAL_METRICS" yaml:"metrics"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"CAPEVAL_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"CAPEVAL_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the optional YAML file and environment.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.DataRoot = "data"
	cfg.Workers = 4

	metrics := make([]string, 0, len(capeval.AllMetrics()))
	for _, m := range capeval.AllMetrics() {
		metrics = append(metrics, string(m))
	}
	cfg.Eval = EvalConfig{
		Collar:   0,
		Language: "auto",
		Metrics:  metrics,
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "console",
	}
}

// Validate checks the configuration, collecting every failure.
func (c *Config) Validate() error {
	var errs []string

	if c.DataRoot == "" {
		errs = append(errs, "data_root must not be empty")
	}
	if c.Workers < 1 {
		errs = append(errs, "workers must be positive")
	}
	if c.Eval.Collar < 0 {
		errs = append(errs, "collar must not be negative")
	}
	if c.Eval.Language == "" {
		errs = append(errs, "language must not be empty")
	}
	if len(c.Eval.Metrics) == 0 {
		errs = append(errs, "metrics must name at least one metric")
	}
	for _, name := range c.Eval.Metrics {
		if _, err := capeval.ParseMetric(name); err != nil {
			errs = append(errs, fmt.Sprintf("invalid metric: %s", name))
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be console or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// MetricList returns the configured metrics as typed values. Call after
// Validate; unknown names are skipped.
func (c *Config) MetricList() []capeval.Metric {
	out := make([]capeval.Metric, 0, len(c.Eval.Metrics))
	for _, name := range c.Eval.Metrics {
		m, err := capeval.ParseMetric(name)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}
