package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeFile(t, "planner.toml", `
listen = "127.0.0.1:9090"
mesh_file = "level.json"

[search]
max_expansions = 500
timeout = "2s"

[log]
level = "debug"
file = "planner.log"
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Listen)
	assert.Equal(t, "level.json", cfg.MeshFile)
	assert.Equal(t, 500, cfg.Search.MaxExpansions)
	assert.Equal(t, 2*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "planner.log", cfg.Log.File)

	// untouched keys keep their defaults
	assert.Equal(t, "*", cfg.AllowOrigin)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	_, err = loadConfig(writeFile(t, "bad.toml", "listen = "))
	require.Error(t, err)

	_, err = loadConfig(writeFile(t, "neg.toml", "[search]\nmax_expansions = -1\n"))
	require.ErrorContains(t, err, "max_expansions")

	_, err = loadConfig(writeFile(t, "zero.toml", "max_mesh_bytes = 0\n"))
	require.ErrorContains(t, err, "max_mesh_bytes")
}
