package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Limits caps plan size and selector fan-out.
type Limits struct {
	MaxPlanSteps      int `toml:"max_plan_steps" env:"MAX_PLAN_STEPS"`
	MaxFindPatternLen int `toml:"max_find_pattern_len" env:"MAX_FIND_PATTERN_LEN"`
	MaxMatches        int `toml:"max_matches" env:"MAX_MATCHES"`
}

// Config holds the server settings.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `toml:"addr" env:"ADDR"`

	// LogLevel is a zerolog level name (trace..panic).
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`

	// LogPretty enables human-readable console output.
	LogPretty bool `toml:"log_pretty" env:"LOG_PRETTY"`

	Limits Limits `toml:"limits" envPrefix:"LIMITS_"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:     ":8420",
		LogLevel: "info",
		Limits: Limits{
			MaxPlanSteps:      64,
			MaxFindPatternLen: 1024,
			MaxMatches:        256,
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file, and
// SUPERDOC_-prefixed environment variables, in that order. An empty path
// skips the file layer; a named but missing file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "SUPERDOC_"}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as runtime
// failures deep in the engine.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalid)
	}
	if c.Limits.MaxPlanSteps < 1 {
		return fmt.Errorf("%w: limits.max_plan_steps must be positive", ErrInvalid)
	}
	if c.Limits.MaxFindPatternLen < 1 {
		return fmt.Errorf("%w: limits.max_find_pattern_len must be positive", ErrInvalid)
	}
	if c.Limits.MaxMatches < 1 {
		return fmt.Errorf("%w: limits.max_matches must be positive", ErrInvalid)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}
