package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ndtree/ndtree/config"
	"github.com/ndtree/ndtree/log"
	"github.com/ndtree/ndtree/session"
)

// options are the flags every command takes
type options struct {
	DataDir    string `long:"datadir" description:"Directory to store trees and logs"`
	Store      string `long:"store" description:"Store backend" choice:"flat" choice:"leveldb"`
	File       string `long:"file" description:"Name of the tree within the store"`
	Dimension  uint   `long:"dim" description:"Spatial dimension of new trees (1, 2 or 3)"`
	Capacity   uint   `long:"capacity" description:"Capacity in nodes (0 keeps the stored node count on load)"`
	DebugLevel string `long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	NoLogFile  bool   `long:"nologfile" description:"Only log to stderr"`
}

// opts holds the parsed global flags, seeded with the defaults
var opts = func() options {
	d := config.DefaultConfig()
	return options{
		DataDir:    d.DataDir,
		Store:      d.Store,
		File:       d.FileName,
		Dimension:  d.Dimension,
		Capacity:   d.Capacity,
		DebugLevel: d.DebugLevel,
	}
}()

// loadConfig turns the flags into a validated config and sets up logging
func loadConfig() (*config.Config, error) {
	cfg := &config.Config{
		DataDir:    cleanAndExpandPath(opts.DataDir),
		Store:      opts.Store,
		FileName:   opts.File,
		Dimension:  opts.Dimension,
		Capacity:   opts.Capacity,
		DebugLevel: opts.DebugLevel,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := log.SetLogLevels(cfg.DebugLevel); err != nil {
		return nil, err
	}
	if !opts.NoLogFile {
		if err := log.InitLogRotator(cfg.LogFile()); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openStore opens the store the config points at
func openStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Store {
	case config.StoreMem:
		return nil, fmt.Errorf("store %q does not outlive a single command", cfg.Store)
	case config.StoreFlat:
		return session.OpenFileStore(cfg.StorePath())
	case config.StoreLevel:
		return session.OpenLevelStore(cfg.StorePath())
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// cleanAndExpandPath expands a leading ~ and cleans the result
func cleanAndExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
