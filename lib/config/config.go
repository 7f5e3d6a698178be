// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the client configuration file. The file is
// authored as JSONC (JSON extended with // comments and trailing
// commas) since it is hand-edited; comments are stripped before
// unmarshaling.
//
// Resolution order for the file location:
//   - PROCURE_CONFIG environment variable
//   - $XDG_CONFIG_HOME/procure/config.jsonc
//   - ~/.config/procure/config.jsonc
//
// A missing file is not an error — every field has a flag override,
// and `procure login --server ...` is enough to get started.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/jsonc"
)

// Config is the client configuration.
type Config struct {
	// ServerURL is the backend base URL.
	ServerURL string `json:"server_url"`

	// Output is the default output format for commands: "table",
	// "json", or "yaml". Flags override per invocation.
	Output string `json:"output"`

	// TimeoutSeconds bounds each API call. Zero means the default
	// (30 seconds).
	TimeoutSeconds int `json:"timeout_seconds"`

	// CacheDir overrides the response cache location. Empty uses the
	// user cache dir.
	CacheDir string `json:"cache_dir"`

	// NoCache disables the response cache entirely.
	NoCache bool `json:"no_cache"`
}

// DefaultTimeout is the per-call timeout when the file does not set one.
const DefaultTimeout = 30 * time.Second

// Timeout returns the configured per-call timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FilePath returns the config file location.
func FilePath() string {
	if envPath := os.Getenv("PROCURE_CONFIG"); envPath != "" {
		return envPath
	}
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "procure-config.jsonc")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "procure", "config.jsonc")
}

// Load reads the config from the well-known path. A missing file
// yields the zero config with no error.
func Load() (*Config, error) {
	return LoadFile(FilePath())
}

// LoadFile reads a config from a specific path. Comments and trailing
// commas are stripped before unmarshaling.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var loaded Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &loaded); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := loaded.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &loaded, nil
}

func (c *Config) validate() error {
	switch c.Output {
	case "", "table", "json", "yaml":
	default:
		return fmt.Errorf("output must be table, json, or yaml (got %q)", c.Output)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	return nil
}
