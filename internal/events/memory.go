// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/garageisep/hangar/internal/clock"
)

// ErrBusClosed is returned when operating on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// ErrSubscriptionNotFound is returned when unsubscribing with an unknown ID.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// MemoryBusConfig configures a MemoryBus.
type MemoryBusConfig struct {
	HistorySize int
	Clock       clock.Clock
	Logger      *slog.Logger
}

// MemoryBus is an in-memory Bus.
type MemoryBus struct {
	mu            sync.RWMutex
	subscriptions map[SubscriptionID]*subscription
	order         []SubscriptionID
	history       *history
	clock         clock.Clock
	log           *slog.Logger
	closed        atomic.Bool
	wg            sync.WaitGroup
}

type subscription struct {
	id      SubscriptionID
	pattern Pattern
	handler Handler
	async   bool
	ch      chan Event
	stopCh  chan struct{}
}

// NewMemoryBus creates an in-memory event bus.
func NewMemoryBus(cfg MemoryBusConfig) *MemoryBus {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &MemoryBus{
		subscriptions: make(map[SubscriptionID]*subscription),
		history:       newHistory(cfg.HistorySize),
		clock:         cfg.Clock,
		log:           cfg.Logger.With("component", "EventBus"),
	}
}

// Publish delivers event to every matching subscriber, in subscription
// order. A missing ID or timestamp is filled in.
func (bus *MemoryBus) Publish(ctx context.Context, event Event) error {
	if bus.closed.Load() {
		return ErrBusClosed
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = bus.clock.Now()
	}

	bus.history.add(event)

	bus.mu.RLock()
	subs := make([]*subscription, 0, len(bus.order))
	for _, id := range bus.order {
		subs = append(subs, bus.subscriptions[id])
	}
	bus.mu.RUnlock()

	for _, sub := range subs {
		if !sub.pattern.Match(event.Type) {
			continue
		}
		if sub.async {
			select {
			case sub.ch <- event:
			case <-sub.stopCh:
			default:
				bus.log.Warn("dropped event, subscriber buffer full", "type", event.Type, "subscription", sub.id)
			}
			continue
		}
		bus.deliver(ctx, sub.handler, event)
	}
	return nil
}

// deliver runs a handler, recovering from panics.
func (bus *MemoryBus) deliver(ctx context.Context, handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			bus.log.Error("event handler panic", "type", event.Type, "panic", r)
		}
	}()
	handler(ctx, event)
}

// Subscribe registers a synchronous handler.
func (bus *MemoryBus) Subscribe(pattern string, handler Handler) (SubscriptionID, error) {
	return bus.subscribe(pattern, handler, false, 0)
}

// SubscribeAsync registers a handler that runs on its own goroutine.
func (bus *MemoryBus) SubscribeAsync(pattern string, handler Handler, bufferSize int) (SubscriptionID, error) {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return bus.subscribe(pattern, handler, true, bufferSize)
}

func (bus *MemoryBus) subscribe(pattern string, handler Handler, async bool, bufferSize int) (SubscriptionID, error) {
	if bus.closed.Load() {
		return "", ErrBusClosed
	}
	compiled, err := Compile(pattern)
	if err != nil {
		return "", err
	}

	sub := &subscription{
		id:      SubscriptionID(uuid.NewString()),
		pattern: compiled,
		handler: handler,
		async:   async,
	}
	if async {
		sub.ch = make(chan Event, bufferSize)
		sub.stopCh = make(chan struct{})
	}

	bus.mu.Lock()
	bus.subscriptions[sub.id] = sub
	bus.order = append(bus.order, sub.id)
	bus.mu.Unlock()

	if async {
		bus.wg.Add(1)
		go bus.runAsync(sub)
	}
	return sub.id, nil
}

func (bus *MemoryBus) runAsync(sub *subscription) {
	defer bus.wg.Done()
	for {
		select {
		case <-sub.stopCh:
			return
		case event := <-sub.ch:
			bus.deliver(context.Background(), sub.handler, event)
		}
	}
}

// Unsubscribe removes a subscription. Async handlers stop after the event
// they are currently processing.
func (bus *MemoryBus) Unsubscribe(id SubscriptionID) error {
	bus.mu.Lock()
	sub, ok := bus.subscriptions[id]
	if !ok {
		bus.mu.Unlock()
		return ErrSubscriptionNotFound
	}
	delete(bus.subscriptions, id)
	for i, existing := range bus.order {
		if existing == id {
			bus.order = append(bus.order[:i:i], bus.order[i+1:]...)
			break
		}
	}
	bus.mu.Unlock()

	if sub.async {
		close(sub.stopCh)
	}
	return nil
}

// History returns retained events matching filter.
func (bus *MemoryBus) History(filter Filter) []Event {
	return bus.history.query(filter)
}

// Close shuts down the bus and waits for async handlers to return.
func (bus *MemoryBus) Close() error {
	if bus.closed.Swap(true) {
		return nil
	}

	bus.mu.Lock()
	for _, sub := range bus.subscriptions {
		if sub.async {
			close(sub.stopCh)
		}
	}
	bus.subscriptions = make(map[SubscriptionID]*subscription)
	bus.order = nil
	bus.mu.Unlock()

	bus.wg.Wait()
	bus.history.clear()
	return nil
}
