// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"sort"
	"sync"

	"github.com/garageisep/hangar/pkg/client"
)

// State is the authentication state of the running client.
type State struct {
	// User is the signed-in identity, nil when anonymous or still loading.
	User *client.User `json:"user"`
	// Loading is true until the first resolution.
	Loading bool `json:"loading"`
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return !s.Loading && s.User != nil
}

// Store holds the one State of the process. Any goroutine may read it;
// only the Controller writes it.
type Store struct {
	mu    sync.RWMutex
	state State
	subs  map[int]func(State)
	next  int
}

// NewStore returns a store in the loading state.
func NewStore() *Store {
	return &Store{
		state: State{Loading: true},
		subs:  make(map[int]func(State)),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe calls fn after every change, in subscription order, on the
// goroutine that made the change. fn runs with no session lock held, so it
// may call back into the Controller; when transitions race, Snapshot is the
// authoritative state. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// set replaces the state and returns the subscribers to notify, in
// subscription order. The caller notifies them once it holds no locks.
func (s *Store) set(state State) []func(State) {
	s.mu.Lock()
	s.state = state
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()
	return fns
}
