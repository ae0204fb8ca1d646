// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_HJSONFeatures(t *testing.T) {
	cfg, err := Parse([]byte(`{
		// comment
		api: {
			base_url: "https://hangar.example.org"
			timeout: 10s
		}
		# hash comment
		poll: {
			status_interval: "2s",
		}
		i18n: { locale: "fr", watch: true }
	}`))
	require.NoError(t, err)

	assert.Equal(t, "https://hangar.example.org", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.TimeoutDuration())
	assert.Equal(t, 2*time.Second, cfg.Poll.StatusEvery())
	assert.Equal(t, DefaultMetricsInterval, cfg.Poll.MetricsEvery())
	assert.Equal(t, "fr", cfg.I18n.Locale)
	assert.True(t, cfg.I18n.Watch)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{ api: { base_url: `))
	assert.Error(t, err)
}

func TestResolve_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	l := NewLoaderWithEnv(envMap(map[string]string{"HOME": "/home/jdoe"}))
	cfg, path, err := l.Resolve(context.Background(), "")
	require.NoError(t, err)

	assert.Empty(t, path)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultCASURL, cfg.Login.CASURL)
	assert.Equal(t, "/home/jdoe/.config/hangar/session.db", cfg.Session.StorePath)
	assert.Equal(t, DefaultStatusInterval, cfg.Poll.StatusEvery())
	assert.Equal(t, 3*time.Second, cfg.Poll.MetricsEvery())
	assert.Equal(t, 1500*time.Millisecond, cfg.Poll.RefreshAfter())
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestResolve_SearchOrderAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeConfig(t, dir, `{ api: { base_url: "https://local.example.org" } }`)

	xdg := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "hangar"), 0o755))
	writeConfig(t, filepath.Join(xdg, "hangar"), `{ api: { base_url: "https://xdg.example.org" } }`)

	l := NewLoaderWithEnv(envMap(map[string]string{"XDG_CONFIG_HOME": xdg}))
	cfg, path, err := l.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "https://local.example.org", cfg.API.BaseURL)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	require.NoError(t, os.Remove(filepath.Join(dir, FileName)))
	cfg, _, err = l.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "https://xdg.example.org", cfg.API.BaseURL)

	l = NewLoaderWithEnv(envMap(map[string]string{
		"XDG_CONFIG_HOME": xdg,
		EnvAPI:            "http://localhost:8000",
		EnvLocale:         "fr",
	}))
	cfg, _, err = l.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, "fr", cfg.I18n.Locale)
}

func TestResolve_ExplicitPathMustExist(t *testing.T) {
	l := NewLoaderWithEnv(envMap(nil))
	_, _, err := l.Resolve(context.Background(), filepath.Join(t.TempDir(), "missing.hjson"))
	assert.Error(t, err)

	l = NewLoaderWithEnv(envMap(map[string]string{EnvConfig: "/nonexistent/hangar.hjson"}))
	_, _, err = l.Resolve(context.Background(), "")
	assert.Error(t, err)
}

func TestResolve_ValidationErrorsAggregated(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		api: { base_url: "ftp://nope", timeout: "soon" }
		relay: { addr: "8765" }
		logging: { level: "loud" }
	}`)

	_, _, err := NewLoaderWithEnv(envMap(nil)).Resolve(context.Background(), path)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"api.base_url", "api.timeout", "relay.addr", "logging.level"}, fields)
}

func TestExpander(t *testing.T) {
	e := NewExpander(envMap(map[string]string{"HOME": "/home/jdoe", "XDG_DATA_HOME": "/data"}))

	got, err := e.Expand("~/hangar/catalogs")
	require.NoError(t, err)
	assert.Equal(t, "/home/jdoe/hangar/catalogs", got)

	got, err = e.Expand(`{{ env "XDG_DATA_HOME" }}/hangar.log`)
	require.NoError(t, err)
	assert.Equal(t, "/data/hangar.log", got)

	got, err = e.Expand(`{{ default "/tmp" (env "NOPE") }}/x`)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", got)

	_, err = e.Expand("{{ .Nope }}")
	assert.Error(t, err)

	cfg := &Config{Session: SessionConfig{StorePath: MemoryStore}}
	require.NoError(t, e.ExpandPaths(cfg))
	assert.Equal(t, MemoryStore, cfg.Session.StorePath)
}

// chdir changes the working directory for the duration of the test, like
// testing.T.Chdir (Go 1.24+), restoring it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("chdir %s: %v", prev, err)
		}
	})
}
