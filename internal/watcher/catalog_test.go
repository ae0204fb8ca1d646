// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garageisep/hangar/internal/events"
	"github.com/garageisep/hangar/internal/i18n"
)

func TestCatalogWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nav:\n  home: \"Start\"\n"), 0o644))

	loc, err := i18n.New("en", dir)
	require.NoError(t, err)
	require.Equal(t, "Start", loc.T("nav.home"))

	bus := events.NewMemoryBus(events.MemoryBusConfig{})
	defer bus.Close()
	reloaded := make(chan struct{}, 1)
	bus.Subscribe(events.EventCatalogReloaded, func(ctx context.Context, e events.Event) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})

	w, err := NewCatalogWatcher(dir, loc, Options{Debounce: 20 * time.Millisecond, Bus: bus})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("nav:\n  home: \"Lobby\"\n"), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
	assert.Equal(t, "Lobby", loc.T("nav.home"))
}

func TestCatalogWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	loc, err := i18n.New("en", dir)
	require.NoError(t, err)

	reloads := 0
	w, err := NewCatalogWatcher(dir, reloaderFunc(func() error {
		reloads++
		return loc.Reload()
	}), Options{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, w.Close())

	assert.Equal(t, 0, reloads)
}

func TestCatalogWatcher_MissingDir(t *testing.T) {
	_, err := NewCatalogWatcher(filepath.Join(t.TempDir(), "absent"), nil, Options{})
	assert.Error(t, err)
}

type reloaderFunc func() error

func (f reloaderFunc) Reload() error { return f() }
