// Package config loads the stride configuration from YAML. A missing
// config file is not an error: every field has a working default so the
// tool runs out of the box.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goalstride/stride/internal/types"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = ".stride/config.yaml"

// Config is the on-disk configuration.
type Config struct {
	// DBPath is the sqlite database location.
	DBPath string `yaml:"db_path"`

	// Model overrides the Anthropic model. The STRIDE_MODEL environment
	// variable takes precedence over this field.
	Model string `yaml:"model,omitempty"`

	// MaxSteps caps how many AI-proposed steps are kept per plan.
	MaxSteps int `yaml:"max_steps"`

	// PlanningHorizonDays spreads default due dates when the plan has
	// no explicit offsets and the goal has no target date.
	PlanningHorizonDays int `yaml:"planning_horizon_days"`

	// StreakMode is "friendly" (yesterday keeps a streak alive) or
	// "strict" (a nonzero current streak requires a check-in today).
	StreakMode string `yaml:"streak_mode"`

	// AITimeout bounds each AI call, e.g. "2m".
	AITimeout string `yaml:"ai_timeout,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:              filepath.Join(".stride", "stride.db"),
		MaxSteps:            8,
		PlanningHorizonDays: 14,
		StreakMode:          "friendly",
	}
}

// Load reads the config at path, filling unset fields with defaults.
// A missing file returns Default() with no error; a malformed file is
// a validation error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, types.Validationf("parsing %s: %v", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return types.Validationf("db_path must not be empty")
	}
	if c.MaxSteps <= 0 {
		return types.Validationf("max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.PlanningHorizonDays <= 0 {
		return types.Validationf("planning_horizon_days must be positive, got %d", c.PlanningHorizonDays)
	}
	switch c.StreakMode {
	case "friendly", "strict":
	default:
		return types.Validationf("streak_mode must be %q or %q, got %q", "friendly", "strict", c.StreakMode)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Strict reports whether strict streak mode is configured.
func (c *Config) Strict() bool {
	return c.StreakMode == "strict"
}

// Timeout parses AITimeout, defaulting to two minutes when unset.
func (c *Config) Timeout() (time.Duration, error) {
	if c.AITimeout == "" {
		return 2 * time.Minute, nil
	}
	d, err := time.ParseDuration(c.AITimeout)
	if err != nil {
		return 0, types.Validationf("invalid ai_timeout %q: %v", c.AITimeout, err)
	}
	return d, nil
}
