// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garageisep/hangar/internal/clock"
)

func TestMemoryBus_PublishAssignsIDAndTimestamp(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 1, 17, 10, 0, 0, 0, time.UTC))
	bus := NewMemoryBus(MemoryBusConfig{Clock: clk})
	defer bus.Close()

	var received Event
	_, err := bus.Subscribe("*", func(ctx context.Context, e Event) {
		received = e
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), Event{Type: EventSessionResolved}))

	assert.Len(t, received.ID, 36)
	assert.Equal(t, clk.Now(), received.Timestamp)
}

func TestMemoryBus_SubscribePattern(t *testing.T) {
	bus := NewMemoryBus(MemoryBusConfig{})
	defer bus.Close()

	var project, failures int32
	_, err := bus.Subscribe("project.*", func(ctx context.Context, e Event) {
		atomic.AddInt32(&project, 1)
	})
	require.NoError(t, err)
	_, err = bus.Subscribe("*.failed", func(ctx context.Context, e Event) {
		atomic.AddInt32(&failures, 1)
	})
	require.NoError(t, err)

	for _, typ := range []string{
		EventProjectStatus,
		EventProjectMetrics,
		EventControlFailed,
		EventSessionLogin,
	} {
		require.NoError(t, bus.Publish(context.Background(), Event{Type: typ, ProjectID: 7}))
	}

	assert.Equal(t, int32(3), atomic.LoadInt32(&project))
	assert.Equal(t, int32(1), atomic.LoadInt32(&failures))
}

func TestMemoryBus_SubscribeOrder(t *testing.T) {
	bus := NewMemoryBus(MemoryBusConfig{})
	defer bus.Close()

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		_, err := bus.Subscribe("*", func(ctx context.Context, e Event) {
			order = append(order, i)
		})
		require.NoError(t, err)
	}

	require.NoError(t, bus.Publish(context.Background(), Event{Type: EventProjectStatus}))
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(MemoryBusConfig{})
	defer bus.Close()

	var count int32
	id, err := bus.Subscribe("*", func(ctx context.Context, e Event) {
		atomic.AddInt32(&count, 1)
	})
	require.NoError(t, err)

	bus.Publish(context.Background(), Event{Type: EventProjectStatus})
	require.NoError(t, bus.Unsubscribe(id))
	bus.Publish(context.Background(), Event{Type: EventProjectStatus})

	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
	assert.ErrorIs(t, bus.Unsubscribe(id), ErrSubscriptionNotFound)
}

func TestMemoryBus_SubscribeAsync(t *testing.T) {
	bus := NewMemoryBus(MemoryBusConfig{})
	defer bus.Close()

	received := make(chan Event, 1)
	_, err := bus.SubscribeAsync(EventProjectMetrics, func(ctx context.Context, e Event) {
		received <- e
	}, 10)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), Event{
		Type:    EventProjectMetrics,
		Payload: map[string]interface{}{"cpu_usage": 12.5},
	}))

	select {
	case e := <-received:
		assert.Equal(t, 12.5, e.Payload["cpu_usage"])
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestMemoryBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewMemoryBus(MemoryBusConfig{})
	defer bus.Close()

	var after int32
	bus.Subscribe("*", func(ctx context.Context, e Event) { panic("boom") })
	bus.Subscribe("*", func(ctx context.Context, e Event) { atomic.AddInt32(&after, 1) })

	assert.NoError(t, bus.Publish(context.Background(), Event{Type: EventProjectStatus}))
	assert.Equal(t, int32(1), atomic.LoadInt32(&after))
}

func TestMemoryBus_Closed(t *testing.T) {
	bus := NewMemoryBus(MemoryBusConfig{})
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), Event{Type: EventProjectStatus}), ErrBusClosed)
	_, err := bus.Subscribe("*", func(context.Context, Event) {})
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestMemoryBus_History(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 1, 17, 10, 0, 0, 0, time.UTC))
	bus := NewMemoryBus(MemoryBusConfig{Clock: clk, HistorySize: 3})
	defer bus.Close()

	ctx := context.Background()
	bus.Publish(ctx, Event{Type: EventSessionResolved})
	start := clk.Now()
	clk.Advance(time.Second)
	bus.Publish(ctx, Event{Type: EventProjectStatus, ProjectID: 1})
	bus.Publish(ctx, Event{Type: EventProjectStatus, ProjectID: 2})
	bus.Publish(ctx, Event{Type: EventProjectMetrics, ProjectID: 2})

	all := bus.History(Filter{})
	require.Len(t, all, 3, "history is bounded")
	assert.Equal(t, EventProjectStatus, all[0].Type)

	byProject := bus.History(Filter{ProjectID: 2})
	assert.Len(t, byProject, 2)

	statuses := bus.History(Filter{Types: []string{EventProjectStatus}, Limit: 1})
	require.Len(t, statuses, 1)
	assert.Equal(t, 2, statuses[0].ProjectID)

	assert.Len(t, bus.History(Filter{Since: start}), 3)
}
