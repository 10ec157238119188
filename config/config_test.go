package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	require.Equal(t, StoreLevel, c.Store)
	require.Equal(t, DefaultDataDir, c.DataDir)
	require.NotEmpty(t, DefaultDataDir)
}

func TestConfigPaths(t *testing.T) {
	c := DefaultConfig()
	c.DataDir = "/data"

	require.Equal(t, filepath.Join("/data", "treedb"), c.StorePath())
	c.Store = StoreFlat
	require.Equal(t, filepath.Join("/data", "store"), c.StorePath())
	c.Store = StoreMem
	require.Empty(t, c.StorePath())

	require.Equal(t, filepath.Join("/data", "logs", "ndtree.log"), c.LogFile())
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Config)
		ok   bool
	}{
		{"default", func(*Config) {}, true},
		{"flat", func(c *Config) { c.Store = StoreFlat }, true},
		{"1d", func(c *Config) { c.Dimension = 1 }, true},
		{"3d", func(c *Config) { c.Dimension = 3 }, true},
		{"bad store", func(c *Config) { c.Store = "s3" }, false},
		{"0d", func(c *Config) { c.Dimension = 0 }, false},
		{"4d", func(c *Config) { c.Dimension = 4 }, false},
		{"no capacity", func(c *Config) { c.Capacity = 0 }, false},
		{"no file", func(c *Config) { c.FileName = "" }, false},
	}
	for _, tc := range cases {
		c := DefaultConfig()
		tc.edit(c)
		err := c.Validate()
		if tc.ok {
			require.NoError(t, err, tc.name)
		} else {
			require.Error(t, err, tc.name)
		}
	}
}
