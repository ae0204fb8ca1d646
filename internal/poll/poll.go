// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package poll runs cancellable repeating fetches.
//
// A Handle owns one polled quantity of a mounted view. The first fetch runs
// immediately, later fetches run one interval after the previous fetch
// returned, so two fetches of the same quantity never overlap. Stop must be
// called when the view goes away; it is idempotent.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/garageisep/hangar/internal/clock"
)

// FetchFunc performs one fetch. The context is cancelled when the handle is
// stopped.
type FetchFunc func(ctx context.Context)

// Handle is a running poll loop.
type Handle struct {
	mu       sync.Mutex
	clk      clock.Clock
	interval time.Duration
	fetch    FetchFunc
	ctx      context.Context
	cancel   context.CancelFunc
	timer    clock.Timer
	stopped  bool
	wg       sync.WaitGroup
}

// Start begins polling. fetch is called once right away and then every
// interval until Stop is called or ctx is done.
func Start(ctx context.Context, clk clock.Clock, interval time.Duration, fetch FetchFunc) *Handle {
	if clk == nil {
		clk = clock.Real()
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		clk:      clk,
		interval: interval,
		fetch:    fetch,
		ctx:      ctx,
		cancel:   cancel,
	}

	h.wg.Add(1)
	go h.tick()
	return h
}

// schedule arms the next tick. Must be called with h.mu held.
func (h *Handle) schedule(d time.Duration) {
	h.wg.Add(1)
	h.timer = h.clk.AfterFunc(d, h.tick)
}

func (h *Handle) tick() {
	defer h.wg.Done()

	h.mu.Lock()
	if h.stopped || h.ctx.Err() != nil {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	h.fetch(h.ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped || h.ctx.Err() != nil {
		return
	}
	h.schedule(h.interval)
}

// Stop cancels the pending tick and the context of any fetch in progress.
// It does not wait for an in-progress fetch to return; use Wait for that.
func (h *Handle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	if h.timer != nil && h.timer.Stop() {
		h.wg.Done()
	}
	h.cancel()
}

// Stopped reports whether Stop has been called.
func (h *Handle) Stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// Wait blocks until no fetch is running or pending. Only meaningful after
// Stop.
func (h *Handle) Wait() {
	h.wg.Wait()
}
