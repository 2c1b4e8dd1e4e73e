package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/harnesslab/mockfs/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func createDefaultCfg() *Config {
	return &Config{
		SpillThreshold: DefaultSpillThreshold,
		TempDir:        "",
		LogLvl:         util.InfoLevel,
	}
}

// TestNewConfig_WithNilOverride tests that NewConfig creates a config with
// all default values when no override is provided.
func TestNewConfig_WithNilOverride(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(nil)

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values when no config provided")
}

func TestNewConfig_WithAllOverride(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		SpillThreshold: util.Pointer(int64(4 * KiB)),
		TempDir:        util.Pointer("/tmp/mockfs-test"),
		LogLvl:         util.Pointer(5),
	}
	cfg := NewConfig(override)

	expCfg := &Config{
		SpillThreshold: 4 * KiB,
		TempDir:        "/tmp/mockfs-test",
		LogLvl:         util.TraceLevel,
	}
	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields")
}

func TestConfig_Merge_LogLvlConversion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		verboseValue  int
		expectedLevel util.LogLevel
	}{
		{"verbose_1_error", 1, util.ErrorLevel},
		{"verbose_2_warn", 2, util.WarnLevel},
		{"verbose_3_info", 3, util.InfoLevel},
		{"verbose_4_debug", 4, util.DebugLevel},
		{"verbose_5_trace", 5, util.TraceLevel},
		{"verbose_0_clamped_to_1", 0, util.ErrorLevel},
		{"verbose_100_clamped_to_5", 100, util.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			override := &ConfigOverride{
				LogLvl: &tt.verboseValue,
			}

			cfg := NewConfig(override)

			assert.Equal(t, tt.expectedLevel, cfg.LogLvl,
				"verbose %d should map to util.LogLevel %v", tt.verboseValue, tt.expectedLevel)
		})
	}
}

func TestConfig_Merge_PartialOverride(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		SpillThreshold: util.Pointer(int64(DefaultSpillThreshold + 1)),
	}
	cfg := NewConfig(override)

	expCfg := createDefaultCfg()
	expCfg.SpillThreshold = DefaultSpillThreshold + 1

	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields and leave rest default")
}

func TestLoadConfigOverrideFile_YAML(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		SpillThreshold: util.Pointer(int64(2048)),
		TempDir:        util.Pointer("/var/tmp"),
	}
	data, err := yaml.Marshal(override)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := LoadConfigOverrideFile(path)
	require.NoError(t, err)
	assert.Equal(t, override, loaded)
}

func TestLoadConfigOverrideFile_JSON(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		SpillThreshold: util.Pointer(int64(2048)),
		LogLvl:         util.Pointer(4),
	}
	data, err := json.Marshal(override)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "override.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := LoadConfigOverrideFile(path)
	require.NoError(t, err)
	assert.Equal(t, override, loaded)
}

func TestLoadConfigOverrideFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigOverrideFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "override.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))
	_, err = LoadConfigOverrideFile(path)
	assert.ErrorContains(t, err, "unknown config file extension")
}

func TestNewConfigFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spill_threshold: 512\nverbose: 2\n"), 0o644))

	cfg, err := NewConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(512), cfg.SpillThreshold)
	assert.Equal(t, util.WarnLevel, cfg.LogLvl)
	assert.Equal(t, "", cfg.TempDir, "unset fields keep defaults")
}
