// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watcher reloads translation catalogs when their files change.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/garageisep/hangar/internal/clock"
	"github.com/garageisep/hangar/internal/events"
	"github.com/garageisep/hangar/internal/i18n"
)

// Reloader re-reads catalogs from disk.
type Reloader interface {
	Reload() error
}

// CatalogWatcher watches a catalog directory and reloads the localizer
// after each burst of changes.
type CatalogWatcher struct {
	dir       string
	reloader  Reloader
	bus       events.Bus
	log       *slog.Logger
	watcher   *fsnotify.Watcher
	debouncer *Debouncer

	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Options configures a CatalogWatcher.
type Options struct {
	Clock    clock.Clock
	Debounce time.Duration
	Bus      events.Bus
	Logger   *slog.Logger
}

// NewCatalogWatcher starts watching dir.
func NewCatalogWatcher(dir string, reloader Reloader, opts Options) (*CatalogWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	w := &CatalogWatcher{
		dir:       dir,
		reloader:  reloader,
		bus:       opts.Bus,
		log:       opts.Logger.With("component", "CatalogWatcher"),
		watcher:   fsWatcher,
		debouncer: NewDebouncer(opts.Clock, opts.Debounce),
		closeCh:   make(chan struct{}),
	}

	w.wg.Add(1)
	go w.processEvents()
	return w, nil
}

// Close stops watching.
func (w *CatalogWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debouncer.Stop()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *CatalogWatcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "dir", w.dir, "error", err)
		}
	}
}

func (w *CatalogWatcher) handleEvent(event fsnotify.Event) {
	if !i18n.IsCatalogFile(event.Name) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	w.debouncer.Debounce(w.dir, func() { w.reload(event.Name) })
}

// reload re-reads the catalogs. A broken file keeps the previous catalogs.
func (w *CatalogWatcher) reload(changed string) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	if err := w.reloader.Reload(); err != nil {
		w.log.Error("catalog reload failed", "file", filepath.Base(changed), "error", err)
		return
	}
	w.log.Info("catalogs reloaded", "file", filepath.Base(changed))

	if w.bus != nil {
		w.bus.Publish(context.Background(), events.Event{
			Type:    events.EventCatalogReloaded,
			Payload: map[string]interface{}{"file": filepath.Base(changed)},
		})
	}
}
