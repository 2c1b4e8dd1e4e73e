package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harnesslab/mockfs/internal/util"
	"gopkg.in/yaml.v3"
)

// KiB is bytes per kibibyte.
const KiB = 1024

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultSpillThreshold is the largest content size in bytes kept in an
	// in-memory buffer; anything larger spills to temp storage.
	DefaultSpillThreshold = 100 * KiB

	// DefaultVerbose is the CLI-style verbosity (1 error .. 5 trace).
	DefaultVerbose = 3
)

// Config contains runtime configuration values for the mock filesystem
// engine.
type Config struct {
	SpillThreshold int64         // Largest file size in bytes kept in memory (Default 102400)
	TempDir        string        // Parent directory for spilled content; "" uses the OS temp dir
	LogLvl         util.LogLevel // Internal log level; derived from the override's verbosity
}

// ConfigOverride uses pointer fields to distinguish between unset and zero
// values when loading partial configuration. See [Config] for field
// descriptions.
type ConfigOverride struct {
	SpillThreshold *int64  `yaml:"spill_threshold,omitempty" json:"spill_threshold,omitempty"`
	TempDir        *string `yaml:"temp_dir,omitempty" json:"temp_dir,omitempty"`
	// LogLvl is verbosity between 1 (error) and 5 (trace); clamped to range
	LogLvl *int `yaml:"verbose,omitempty" json:"verbose,omitempty"`
}

// NewConfig creates a Config from defaults with any non-nil override fields
// applied on top. A nil override yields pure defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := &Config{
		SpillThreshold: DefaultSpillThreshold,
		TempDir:        "",
		LogLvl:         verboseToLevel(DefaultVerbose),
	}
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.SpillThreshold != nil {
		c.SpillThreshold = *override.SpillThreshold
	}
	if override.TempDir != nil {
		c.TempDir = *override.TempDir
	}
	if override.LogLvl != nil {
		c.LogLvl = verboseToLevel(*override.LogLvl)
	}
}

// verboseToLevel maps CLI-style verbosity (1..5, clamped) to a log level.
func verboseToLevel(verbose int) util.LogLevel {
	if verbose < 1 {
		verbose = 1
	}
	if verbose > 5 {
		verbose = 5
	}
	lvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return lvls[verbose-1]
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with
// defaults. Convenience wrapper around NewConfig and LoadConfigOverrideFile.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
