// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garageisep/hangar/internal/clock"
)

func newFake() *clock.Fake {
	return clock.NewFake(time.Date(2026, 1, 17, 10, 0, 0, 0, time.UTC))
}

func TestStartFetchesImmediatelyThenEveryInterval(t *testing.T) {
	clk := newFake()
	var calls atomic.Int32

	h := Start(context.Background(), clk, 5*time.Second, func(ctx context.Context) {
		calls.Add(1)
	})
	defer h.Stop()

	clk.WaitForTimers(1)
	assert.Equal(t, int32(1), calls.Load())

	clk.Advance(4 * time.Second)
	assert.Equal(t, int32(1), calls.Load())

	clk.Advance(time.Second)
	assert.Equal(t, int32(2), calls.Load())

	clk.Advance(10 * time.Second)
	assert.Equal(t, int32(4), calls.Load())
}

func TestStopIsIdempotentAndFinal(t *testing.T) {
	clk := newFake()
	var calls atomic.Int32

	h := Start(context.Background(), clk, 3*time.Second, func(ctx context.Context) {
		calls.Add(1)
	})
	clk.WaitForTimers(1)

	h.Stop()
	h.Stop()
	h.Wait()
	assert.True(t, h.Stopped())
	assert.Equal(t, 0, clk.Pending())

	clk.Advance(time.Minute)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStopCancelsInFlightFetch(t *testing.T) {
	clk := newFake()
	started := make(chan struct{})
	cancelled := make(chan struct{})

	h := Start(context.Background(), clk, time.Second, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	})

	<-started
	h.Stop()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("fetch context was not cancelled")
	}
	h.Wait()
	assert.Equal(t, 0, clk.Pending(), "no tick may be scheduled after stop")
}

func TestParentContextStopsLoop(t *testing.T) {
	clk := newFake()
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	h := Start(ctx, clk, time.Second, func(context.Context) { calls.Add(1) })
	defer h.Stop()
	clk.WaitForTimers(1)

	cancel()
	clk.Advance(5 * time.Second)
	require.Equal(t, int32(1), calls.Load())
}

func TestSequenceDropsStaleResponses(t *testing.T) {
	var seq Sequence
	first := seq.Next()
	second := seq.Next()

	assert.True(t, seq.Accept(second))
	assert.False(t, seq.Accept(first), "older response must be dropped")
	assert.False(t, seq.Accept(second), "a response is applied once")
	assert.True(t, seq.Accept(seq.Next()))
}
