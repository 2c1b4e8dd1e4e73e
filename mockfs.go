// Package mockfs is a mock filesystem engine for test harnesses that
// exercise file-I/O-dependent code. It keeps a hierarchical namespace of
// directories and files entirely in process, storing small file contents in
// memory and transparently spilling large ones to ephemeral temp storage so
// big payloads never exhaust process memory. Nothing survives the engine:
// Close releases every spilled byte.
package mockfs

import (
	"github.com/harnesslab/mockfs/config"
	"github.com/harnesslab/mockfs/filesystem"
	"github.com/harnesslab/mockfs/internal/util"
)

// New creates a mock filesystem engine given your config. A nil config uses
// defaults (100 KiB spill threshold, OS temp dir). The config's log level is
// applied to the global logger.
func New(cfg *config.Config) *filesystem.FileSystem {
	if cfg == nil {
		cfg = config.NewConfig(nil)
	}
	util.InitializeLogger(cfg.LogLvl)
	return filesystem.NewFS(cfg)
}
