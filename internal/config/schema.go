// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the hangar-ctl configuration file.
package config

import "time"

// Config is the root configuration.
type Config struct {
	API     APIConfig     `json:"api"`
	Session SessionConfig `json:"session"`
	Poll    PollConfig    `json:"poll"`
	Login   LoginConfig   `json:"login"`
	I18n    I18nConfig    `json:"i18n"`
	Relay   RelayConfig   `json:"relay"`
	Logging LoggingConfig `json:"logging"`
}

// APIConfig locates the Hangar server.
type APIConfig struct {
	BaseURL string `json:"base_url"`
	Timeout string `json:"timeout"`
}

// SessionConfig controls where the session cookie is kept.
type SessionConfig struct {
	// StorePath is the SQLite file holding cookies. "memory" keeps the
	// session for the life of the process only.
	StorePath string `json:"store_path"`
}

// PollConfig sets the live dashboard cadence.
type PollConfig struct {
	StatusInterval  string `json:"status_interval"`
	MetricsInterval string `json:"metrics_interval"`
	RefreshDelay    string `json:"refresh_delay"`
}

// LoginConfig configures the CAS sign-in flow.
type LoginConfig struct {
	CASURL       string `json:"cas_url"`
	CallbackAddr string `json:"callback_addr"`
	Timeout      string `json:"timeout"`
}

// I18nConfig selects the locale and optional catalog overrides.
type I18nConfig struct {
	Locale     string `json:"locale"`
	CatalogDir string `json:"catalog_dir"`
	Watch      bool   `json:"watch"`
}

// RelayConfig configures the WebSocket relay started by "watch".
type RelayConfig struct {
	Addr string `json:"addr"`
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// Defaults.
const (
	DefaultBaseURL         = "https://hangar.garageisep.com"
	DefaultCASURL          = "https://portail-ovh.isep.fr/cas/login"
	DefaultCallbackAddr    = "127.0.0.1:8790"
	DefaultRelayAddr       = "127.0.0.1:8765"
	DefaultStorePath       = "{{ .ConfigDir }}/session.db"
	MemoryStore            = "memory"
	DefaultAPITimeout      = 30 * time.Second
	DefaultStatusInterval  = 5000 * time.Millisecond
	DefaultMetricsInterval = 3000 * time.Millisecond
	DefaultRefreshDelay    = 1500 * time.Millisecond
	DefaultLoginTimeout    = 5 * time.Minute
)

// ParseDuration parses a duration string, returning a default if empty or
// invalid.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// TimeoutDuration returns the HTTP timeout.
func (c APIConfig) TimeoutDuration() time.Duration {
	return ParseDuration(c.Timeout, DefaultAPITimeout)
}

// StatusEvery returns the status poll interval.
func (c PollConfig) StatusEvery() time.Duration {
	return ParseDuration(c.StatusInterval, DefaultStatusInterval)
}

// MetricsEvery returns the metrics poll interval.
func (c PollConfig) MetricsEvery() time.Duration {
	return ParseDuration(c.MetricsInterval, DefaultMetricsInterval)
}

// RefreshAfter returns the delay before the refresh that follows a
// lifecycle action.
func (c PollConfig) RefreshAfter() time.Duration {
	return ParseDuration(c.RefreshDelay, DefaultRefreshDelay)
}

// TimeoutDuration returns how long login waits for the CAS redirect.
func (c LoginConfig) TimeoutDuration() time.Duration {
	return ParseDuration(c.Timeout, DefaultLoginTimeout)
}
