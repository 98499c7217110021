// Package config loads process configuration with the precedence
// defaults → YAML file → environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Schema    SchemaConfig    `yaml:"schema"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Validator ValidatorConfig `yaml:"validator"`
	Log       LogConfig       `yaml:"log"`
}

// SchemaConfig locates the tenant schema registry.
type SchemaConfig struct {
	Path string `yaml:"path"`
}

// LedgerConfig contains run-ledger database settings.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// ValidatorConfig contains engine settings.
type ValidatorConfig struct {
	// Workers bounds the parallel row scan; 0 means one per CPU.
	Workers int `yaml:"workers"`
	// TwoDigitYearBase is the century added to two-digit years during
	// date normalization.
	TwoDigitYearBase int `yaml:"two_digit_year_base"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("GRANTGATE_CONFIG_PATH", "config/grantgate.yaml")

	// Load YAML file if it exists (missing file is not an error)
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Schema: SchemaConfig{
			Path: "config/tenants.json",
		},
		Ledger: LedgerConfig{
			Path: "data/grantgate.db",
		},
		Validator: ValidatorConfig{
			Workers:          0,
			TwoDigitYearBase: 2000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GRANTGATE_SCHEMA_PATH"); v != "" {
		cfg.Schema.Path = v
	}
	if v := os.Getenv("GRANTGATE_LEDGER_PATH"); v != "" {
		cfg.Ledger.Path = v
	}
	if v := os.Getenv("GRANTGATE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Validator.Workers = n
		}
	}
	if v := os.Getenv("GRANTGATE_TWO_DIGIT_YEAR_BASE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Validator.TwoDigitYearBase = n
		}
	}
	if v := os.Getenv("GRANTGATE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GRANTGATE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// validate checks that configuration values are usable.
func (c *Config) validate() error {
	if c.Schema.Path == "" {
		return fmt.Errorf("schema.path is required")
	}
	if c.Validator.Workers < 0 {
		return fmt.Errorf("validator.workers must not be negative")
	}
	if c.Validator.TwoDigitYearBase < 0 {
		return fmt.Errorf("validator.two_digit_year_base must not be negative")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
