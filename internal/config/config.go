package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
	Library LibraryConfig `yaml:"library"`
	Lookup  LookupConfig  `yaml:"lookup"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ScannerConfig holds scanner settings
type ScannerConfig struct {
	Extensions  []string `yaml:"extensions"`
	ExcludeDirs []string `yaml:"exclude_dirs"`
	Recursive   *bool    `yaml:"recursive"`
	Workers     int      `yaml:"workers"`
}

// LibraryConfig holds settings for the target library
type LibraryConfig struct {
	DeleteOriginal bool  `yaml:"delete_original"`
	BackupOriginal *bool `yaml:"backup_original"`
}

// LookupConfig holds TMDB identity-lookup configuration. Lookup is
// optional; without it videos keep their filename-derived identity.
type LookupConfig struct {
	Enabled          bool   `yaml:"enabled"`
	APIKey           string `yaml:"api_key"`
	Language         string `yaml:"language"`
	CachePath        string `yaml:"cache_path"`
	CacheTTLDays     int    `yaml:"cache_ttl_days"`
	RateLimitDelayMs int    `yaml:"rate_limit_delay_ms"`
	MaxAttempts      int    `yaml:"max_attempts"`
	InitialBackoffMs int    `yaml:"initial_backoff_ms"`
}

// WatchConfig holds file-watcher settings
type WatchConfig struct {
	Enabled         bool `yaml:"enabled"`
	DebounceSeconds int  `yaml:"debounce_seconds"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// Expand ~ to home directory if present
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if cfg.Lookup.Enabled && cfg.Lookup.APIKey == "" {
		return nil, fmt.Errorf("lookup is enabled but api_key is empty. Get one from https://www.themoviedb.org/settings/api")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Scanner.Extensions) == 0 {
		c.Scanner.Extensions = []string{".mkv", ".webm", ".mp4", ".avi", ".mov"}
	}
	if c.Scanner.Recursive == nil {
		recursive := true
		c.Scanner.Recursive = &recursive
	}
	if c.Scanner.Workers <= 0 {
		c.Scanner.Workers = 4
	}
	if c.Library.BackupOriginal == nil {
		backup := true
		c.Library.BackupOriginal = &backup
	}
	if c.Lookup.Language == "" {
		c.Lookup.Language = "en-US"
	}
	if c.Lookup.CachePath == "" {
		c.Lookup.CachePath = "./cache/lookup.db"
	}
	if c.Lookup.CacheTTLDays <= 0 {
		c.Lookup.CacheTTLDays = 30
	}
	if c.Lookup.MaxAttempts <= 0 {
		c.Lookup.MaxAttempts = 3
	}
	if c.Lookup.InitialBackoffMs <= 0 {
		c.Lookup.InitialBackoffMs = 1000
	}
	if c.Watch.DebounceSeconds <= 0 {
		c.Watch.DebounceSeconds = 5
	}
}
