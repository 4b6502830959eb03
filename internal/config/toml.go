// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game  GameConfig  `toml:"game"`
	Store StoreConfig `toml:"store"`
	Log   LogConfig   `toml:"log"`
}

// GameConfig maps board settings.
type GameConfig struct {
	Size  *string `toml:"size"`
	Delay *string `toml:"delay"`
}

// StoreConfig maps result store settings.
type StoreConfig struct {
	Backend       *string `toml:"backend"`
	Path          *string `toml:"path"`
	RedisAddr     *string `toml:"redis-addr"`
	RedisPassword *string `toml:"redis-password"`
	RedisDB       *int    `toml:"redis-db"`
	RedisKey      *string `toml:"redis-key"`
	PostgresDSN   *string `toml:"postgres-dsn"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
