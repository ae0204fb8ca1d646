// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hjson/hjson-go/v4"
)

// Environment variables read by the loader.
const (
	EnvConfig = "HANGAR_CONFIG"
	EnvAPI    = "HANGAR_API"
	EnvLocale = "HANGAR_LOCALE"
)

// FileName is the configuration file looked up in the working directory
// and the user config directory.
const FileName = "hangar.hjson"

// Loader handles configuration file loading.
type Loader struct {
	getenv func(string) string
}

// NewLoader creates a loader that reads the process environment.
func NewLoader() *Loader {
	return &Loader{getenv: os.Getenv}
}

// NewLoaderWithEnv creates a loader with a custom environment lookup.
func NewLoaderWithEnv(getenv func(string) string) *Loader {
	return &Loader{getenv: getenv}
}

// Load reads and parses the configuration from the given path.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes HJSON configuration data.
func Parse(data []byte) (*Config, error) {
	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse hjson: %w", err)
	}

	// Round-trip through JSON for typed decoding.
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Resolve finds and loads the configuration, then applies environment
// overrides, defaults, path expansion and validation. explicit is the
// --config flag value. When no file is found the defaults are used.
func (l *Loader) Resolve(ctx context.Context, explicit string) (*Config, string, error) {
	path, err := l.FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg := &Config{}
	if path != "" {
		if cfg, err = l.Load(ctx, path); err != nil {
			return nil, path, err
		}
	}

	l.applyEnv(cfg)
	applyDefaults(cfg)

	if err := NewExpander(l.getenv).ExpandPaths(cfg); err != nil {
		return nil, path, err
	}
	if err := NewValidator().Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// FindConfig returns the configuration path to use, or "" when none exists.
// The search order is explicit, $HANGAR_CONFIG, ./hangar.hjson, then
// hangar/hangar.hjson under the user config directory. An explicit or
// environment path must exist.
func (l *Loader) FindConfig(explicit string) (string, error) {
	for _, p := range []string{explicit, l.getenv(EnvConfig)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file %s: %w", p, err)
		}
		return p, nil
	}

	candidates := []string{filepath.Join(".", FileName)}
	if dir := userConfigDir(l.getenv); dir != "" {
		candidates = append(candidates, filepath.Join(dir, FileName))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs, nil
			}
			return path, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
	}
	return "", nil
}

// userConfigDir returns $XDG_CONFIG_HOME/hangar, falling back to
// ~/.config/hangar.
func userConfigDir(getenv func(string) string) string {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hangar")
	}
	if home := getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "hangar")
	}
	return ""
}

func (l *Loader) applyEnv(cfg *Config) {
	if v := l.getenv(EnvAPI); v != "" {
		cfg.API.BaseURL = v
	}
	if v := l.getenv(EnvLocale); v != "" {
		cfg.I18n.Locale = v
	}
}

// applyDefaults sets default values for missing config fields.
func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.Timeout == "" {
		cfg.API.Timeout = DefaultAPITimeout.String()
	}

	if cfg.Session.StorePath == "" {
		cfg.Session.StorePath = DefaultStorePath
	}

	if cfg.Poll.StatusInterval == "" {
		cfg.Poll.StatusInterval = DefaultStatusInterval.String()
	}
	if cfg.Poll.MetricsInterval == "" {
		cfg.Poll.MetricsInterval = DefaultMetricsInterval.String()
	}
	if cfg.Poll.RefreshDelay == "" {
		cfg.Poll.RefreshDelay = DefaultRefreshDelay.String()
	}

	if cfg.Login.CASURL == "" {
		cfg.Login.CASURL = DefaultCASURL
	}
	if cfg.Login.CallbackAddr == "" {
		cfg.Login.CallbackAddr = DefaultCallbackAddr
	}
	if cfg.Login.Timeout == "" {
		cfg.Login.Timeout = DefaultLoginTimeout.String()
	}

	if cfg.Relay.Addr == "" {
		cfg.Relay.Addr = DefaultRelayAddr
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
