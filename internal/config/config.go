// Package config implements YAML-driven engine configuration,
// mirroring the teacher's internal/config package: typed sub-structs,
// a DefaultConfig constructor, Load/Save against a YAML file, and
// environment-variable overrides applied after the file is parsed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds the reasoning engine's own tunables.
type EngineConfig struct {
	// DefaultCapacity is the number of active assertions each KB
	// (global or per-note) may hold. Universal assertions count toward
	// it but are never evicted; a ground/skolemized commit into a full
	// KB first evicts the lowest-priority ground/skolemized assertion.
	DefaultCapacity int `yaml:"default_capacity"`
	// PriorityDecay is the factor Cognition.CalculateDerivedPriority
	// applies to the minimum support priority.
	PriorityDecay float64 `yaml:"priority_decay"`
	// MaxReasoningDepth is a configured ceiling on derivation depth.
	// No package in this module reads it; internal/logic's
	// simplification fixpoint uses its own compiled-in cap
	// (maxSimplifyDepth).
	MaxReasoningDepth int `yaml:"max_reasoning_depth"`
	// SubsumptionEnabled is loaded from YAML and from
	// REASONKIT_SUBSUMPTION_ENABLED, but Knowledge.Commit does not
	// consult it: the subsumption check, like duplicate-kif rejection,
	// always applies.
	SubsumptionEnabled bool `yaml:"subsumption_enabled"`
	// QueryTimeout is a query deadline, parsed via time.ParseDuration
	// by GetQueryTimeout. query.Executor does not read it; a query has
	// a deadline only from its context or its "timeoutMs" parameter.
	QueryTimeout string `yaml:"query_timeout"`
}

// LoggingConfig holds logging settings. cmd/reason builds its zap
// logger from the --verbose flag and does not read these fields.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the top-level configuration document.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the engine's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			DefaultCapacity:    10000,
			PriorityDecay:      0.95,
			MaxReasoningDepth:  50,
			SubsumptionEnabled: true,
			QueryTimeout:       "5s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads and parses a YAML config file at path, falling back to
// DefaultConfig (with env overrides still applied) if the file does
// not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes c to path as YAML, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: mkdir %s: %w", dir, err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REASONKIT_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.DefaultCapacity = n
		}
	}
	if v := os.Getenv("REASONKIT_PRIORITY_DECAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Engine.PriorityDecay = f
		}
	}
	if v := os.Getenv("REASONKIT_SUBSUMPTION_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Engine.SubsumptionEnabled = b
		}
	}
	if v := os.Getenv("REASONKIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// GetQueryTimeout returns Engine.QueryTimeout as a duration, falling
// back to 5s if unset or unparseable.
func (c *Config) GetQueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Engine.QueryTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
