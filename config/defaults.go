package config

import (
	"fmt"
	"path/filepath"

	"github.com/btcsuite/btcutil"
)

// Config says where the command line tool keeps its trees and logs
type Config struct {
	DataDir    string
	Store      string
	FileName   string
	Dimension  uint
	Capacity   uint
	DebugLevel string
}

// DefaultDataDir is the per-user application data directory, something
// like ~/.ndtree
var DefaultDataDir = btcutil.AppDataDir(appName, false)

// DefaultConfig returns the config used when no flags are given
func DefaultConfig() *Config {
	return &Config{
		DataDir:    DefaultDataDir,
		Store:      StoreLevel,
		FileName:   DefaultFileName,
		Dimension:  DefaultDimension,
		Capacity:   DefaultCapacity,
		DebugLevel: DefaultDebugLevel,
	}
}

// StorePath is where the store of the configured kind lives.  The memory
// store has no path.
func (c *Config) StorePath() string {
	switch c.Store {
	case StoreFlat:
		return filepath.Join(c.DataDir, defaultStoreDirname)
	case StoreLevel:
		return filepath.Join(c.DataDir, defaultLevelDirname)
	}
	return ""
}

// LogFile is the path of the rotated log file
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, defaultLogDirname, defaultLogFilename)
}

// Validate checks the values flags can't check on their own
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMem, StoreFlat, StoreLevel:
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)",
			c.Store, StoreMem, StoreFlat, StoreLevel)
	}
	if c.Dimension < 1 || c.Dimension > 3 {
		return fmt.Errorf("dimension must be 1, 2 or 3, got %d", c.Dimension)
	}
	if c.Capacity == 0 {
		return fmt.Errorf("capacity must be greater than zero")
	}
	if c.FileName == "" {
		return fmt.Errorf("file name can't be empty")
	}
	return nil
}
