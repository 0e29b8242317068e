// Package config loads service settings from an optional YAML file, then
// applies environment overrides. Every field has a working default, so the
// service runs with no file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/M00N69/NEOREVIEW/pkg/reftable"
)

// Duration wraps time.Duration so YAML and environment values accept the
// "10s" notation instead of raw nanoseconds.
type Duration time.Duration

// UnmarshalYAML decodes a duration string such as "500ms" or "1m30s".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the plain time.Duration value.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all service settings.
type Config struct {
	// ListenAddr is the HTTP listen address (default ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// RequirementTableURL is where the IFS requirement id table is
	// downloaded from. Defaults to the published CSV.
	RequirementTableURL string `yaml:"requirement_table_url"`

	// FetchTimeout bounds each requirement-table download (default 10s).
	FetchTimeout Duration `yaml:"fetch_timeout"`

	// LogLevel is the zap level name (default "info").
	LogLevel string `yaml:"log_level"`

	// Environment is "production" or "development"; development switches
	// the logger to console encoding (default "production").
	Environment string `yaml:"environment"`

	// ShutdownGrace is how long in-flight requests get to finish on
	// SIGINT/SIGTERM (default 10s).
	ShutdownGrace Duration `yaml:"shutdown_grace"`
}

// Development reports whether the service runs in development mode.
func (c Config) Development() bool { return c.Environment == "development" }

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.RequirementTableURL == "" {
		c.RequirementTableURL = reftable.DefaultURL
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = Duration(reftable.DefaultTimeout)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = Duration(10 * time.Second)
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("REQUIREMENT_TABLE_URL"); v != "" {
		c.RequirementTableURL = v
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FETCH_TIMEOUT %q: %w", v, err)
		}
		c.FetchTimeout = Duration(parsed)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	return nil
}

// Load reads a configuration YAML file, applies environment overrides, then
// fills the remaining defaults. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}
