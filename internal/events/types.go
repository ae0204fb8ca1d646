// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package events provides the in-process event bus for Hangar.
//
// Session transitions and live project view updates are published here so
// that front ends (terminal dashboard, WebSocket relay) can follow them
// without reaching into the state machines.
package events

import (
	"context"
	"time"
)

// Event is an immutable record of something that happened.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	ProjectID int                    `json:"project_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// Handler processes received events.
type Handler func(ctx context.Context, event Event)

// SubscriptionID identifies a subscription.
type SubscriptionID string

// Filter selects events from the history.
type Filter struct {
	Types     []string  // Event type patterns (wildcards allowed)
	ProjectID int       // Zero matches every project
	Since     time.Time // Events strictly after this time
	Limit     int       // Keep only the most recent Limit events
}

// Bus is the publish/subscribe interface shared by the Hangar components.
type Bus interface {
	// Publish delivers an event to every matching subscriber.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a handler that runs on the publishing goroutine.
	Subscribe(pattern string, handler Handler) (SubscriptionID, error)

	// SubscribeAsync registers a handler fed through a buffered channel.
	// Events are dropped when the buffer is full.
	SubscribeAsync(pattern string, handler Handler, bufferSize int) (SubscriptionID, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(id SubscriptionID) error

	// History returns retained events matching filter, oldest first.
	History(filter Filter) []Event

	// Close stops async subscribers and rejects further publishes.
	Close() error
}

// Event types.
const (
	// Session
	EventSessionResolved = "session.resolved"
	EventSessionLogin    = "session.login"
	EventSessionLogout   = "session.logout"

	// Live project view
	EventProjectMounted   = "project.mounted"
	EventProjectUnmounted = "project.unmounted"
	EventProjectDetails   = "project.details"
	EventProjectStatus    = "project.status"
	EventProjectMetrics   = "project.metrics"
	EventProjectDeleted   = "project.deleted"

	// Control actions on a project
	EventControlStarted  = "project.control.started"
	EventControlFinished = "project.control.finished"
	EventControlFailed   = "project.control.failed"

	// Translation catalogs reloaded from disk
	EventCatalogReloaded = "catalog.reloaded"
)
