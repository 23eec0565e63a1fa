package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the planner configuration, read from a TOML file.
type Config struct {
	Listen       string       `toml:"listen"`
	MeshFile     string       `toml:"mesh_file"`
	AllowOrigin  string       `toml:"allow_origin"`
	MaxMeshBytes int64        `toml:"max_mesh_bytes"` // upload limit for POST /mesh
	Search       SearchConfig `toml:"search"`
	Log          LogConfig    `toml:"log"`
}

// SearchConfig bounds every route search.
type SearchConfig struct {
	MaxExpansions int           `toml:"max_expansions"` // 0 = unlimited
	Timeout       time.Duration `toml:"timeout"`        // 0 = no timeout
}

// LogConfig selects the log level and an optional rotating log file.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

func defaultConfig() Config {
	return Config{
		Listen:       ":8080",
		MeshFile:     "navmesh.geojson",
		AllowOrigin:  "*",
		MaxMeshBytes: 64 << 20,
		Search: SearchConfig{
			MaxExpansions: 200000,
			Timeout:       10 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// loadConfig returns the defaults overlaid with the file at path. An empty
// path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if cfg.MaxMeshBytes <= 0 {
		return cfg, fmt.Errorf("config %s: max_mesh_bytes must be positive", path)
	}
	if cfg.Search.MaxExpansions < 0 {
		return cfg, fmt.Errorf("config %s: search.max_expansions must not be negative", path)
	}
	return cfg, nil
}
