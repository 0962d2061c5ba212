// Package config loads the reconciliation settings.
//
// Values are resolved in three layers: built-in defaults, then the optional YAML file, then
// RECON_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. RECON_DATA_DIR
	EnvPrefix = "RECON"

	// DefaultFile is read when present and no other file is requested
	DefaultFile = "reconcile.yaml"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the complete application configuration
type Config struct {
	DataDir   string          `yaml:"data_dir" envconfig:"DATA_DIR"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Tolerance ToleranceConfig `yaml:"tolerance" envconfig:"TOLERANCE"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Metrics   MetricsConfig   `yaml:"metrics" envconfig:"METRICS"`
	Pairs     []PairConfig    `yaml:"pairs" ignored:"true"`

	// File is the YAML file that was applied, empty when none was found
	File string `yaml:"-" ignored:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// ToleranceConfig holds the divergence band thresholds in percent
type ToleranceConfig struct {
	Minor float64 `yaml:"minor" envconfig:"MINOR"`
	Major float64 `yaml:"major" envconfig:"MAJOR"`
}

// ReportConfig controls report output
type ReportConfig struct {
	SampleSize int    `yaml:"sample_size" envconfig:"SAMPLE_SIZE"`
	Format     string `yaml:"format" envconfig:"FORMAT"`
	XLSXPath   string `yaml:"xlsx_path" envconfig:"XLSX_PATH"`
}

// MetricsConfig controls the metrics dump written after each run
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" envconfig:"TEXTFILE_PATH"`
}

// PairConfig names two sources compared under one analysis type
type PairConfig struct {
	Type string `yaml:"type"`
	A    string `yaml:"a"`
	B    string `yaml:"b"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		DataDir: "faturamentos",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tolerance: ToleranceConfig{
			Minor: 1,
			Major: 5,
		},
		Report: ReportConfig{
			SampleSize: 5,
			Format:     "table",
		},
	}
}

// Load resolves the configuration. An empty path reads DefaultFile when it exists;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	switch err := loadFromFile(path, &cfg); {
	case err == nil:
		cfg.File = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to load config from file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays the YAML file at path onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Validate checks the values that do not depend on the source registry
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is required", ErrInvalidConfig)
	}
	if c.Tolerance.Minor < 0 || c.Tolerance.Major < c.Tolerance.Minor {
		return fmt.Errorf("%w: tolerance minor %.2f, major %.2f", ErrInvalidConfig, c.Tolerance.Minor, c.Tolerance.Major)
	}
	if c.Report.SampleSize <= 0 {
		return fmt.Errorf("%w: report sample_size must be positive", ErrInvalidConfig)
	}
	switch c.Report.Format {
	case "table", "json":
	default:
		return fmt.Errorf("%w: report format %q", ErrInvalidConfig, c.Report.Format)
	}
	for i, p := range c.Pairs {
		if p.Type == "" || p.A == "" || p.B == "" {
			return fmt.Errorf("%w: pair %d needs type, a and b", ErrInvalidConfig, i)
		}
	}
	return nil
}
