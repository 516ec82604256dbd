package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	BaseDir              string `toml:"base_dir"`
	CacheDir             string `toml:"cache_dir"`
	StagingDir           string `toml:"staging_dir"`
	HistoryFile          string `toml:"history_file"`
	LogLevel             string `toml:"log_level"`
	MaxParallel          int    `toml:"max_parallel"`
	PreserveTopDirectory bool   `toml:"preserve_top_directory"`
	FetchTimeoutSeconds  int    `toml:"fetch_timeout_seconds"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".xtract")

	return &Config{
		BaseDir:             base,
		CacheDir:            filepath.Join(base, "cache"),
		HistoryFile:         filepath.Join(base, "history.db"),
		LogLevel:            "info",
		MaxParallel:         4,
		FetchTimeoutSeconds: 3600,
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".xtract", "config.toml")
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}

	return cfg, nil
}

func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}
