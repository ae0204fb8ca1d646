// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"sync"
	"time"

	"github.com/garageisep/hangar/internal/clock"
)

const defaultDebounceDuration = 200 * time.Millisecond

// Debouncer runs a function once a burst of calls with the same key has
// been quiet for the debounce duration.
type Debouncer struct {
	mu       sync.Mutex
	clk      clock.Clock
	duration time.Duration
	timers   map[string]clock.Timer
}

// NewDebouncer creates a debouncer. A nil clock uses real time.
func NewDebouncer(clk clock.Clock, duration time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.Real()
	}
	if duration <= 0 {
		duration = defaultDebounceDuration
	}
	return &Debouncer{
		clk:      clk,
		duration: duration,
		timers:   make(map[string]clock.Timer),
	}
}

// Debounce schedules fn for key, replacing any call still pending for it.
func (d *Debouncer) Debounce(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, exists := d.timers[key]; exists {
		timer.Stop()
	}

	var timer clock.Timer
	timer = d.clk.AfterFunc(d.duration, func() {
		d.mu.Lock()
		if d.timers[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = timer
}

// Pending reports whether a call is scheduled for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[key]
	return ok
}

// Stop cancels all pending calls.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
