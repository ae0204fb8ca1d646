// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import "sync"

const defaultHistorySize = 1000

// history keeps the most recent events in publish order.
type history struct {
	mu     sync.RWMutex
	events []Event
	max    int
}

func newHistory(max int) *history {
	if max <= 0 {
		max = defaultHistorySize
	}
	return &history{max: max}
}

func (h *history) add(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	if len(h.events) > h.max {
		h.events = append([]Event(nil), h.events[len(h.events)-h.max:]...)
	}
}

func (h *history) query(filter Filter) []Event {
	patterns := make([]Pattern, 0, len(filter.Types))
	for _, t := range filter.Types {
		if p, err := Compile(t); err == nil {
			patterns = append(patterns, p)
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]Event, 0)
	for _, event := range h.events {
		if matches(event, filter, patterns) {
			result = append(result, event)
		}
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result
}

func matches(event Event, filter Filter, patterns []Pattern) bool {
	if len(filter.Types) > 0 {
		matched := false
		for _, p := range patterns {
			if p.Match(event.Type) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if filter.ProjectID != 0 && event.ProjectID != filter.ProjectID {
		return false
	}
	if !filter.Since.IsZero() && !event.Timestamp.After(filter.Since) {
		return false
	}
	return true
}

func (h *history) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}
