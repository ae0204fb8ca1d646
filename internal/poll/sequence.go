// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package poll

import "sync"

// Sequence orders responses for one quantity. Every request takes a number
// from Next; a response is applied only if Accept reports that no newer
// request has already been applied.
type Sequence struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// Next returns the number of a new request.
func (s *Sequence) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Accept marks seq as applied if it is newer than anything applied so far.
func (s *Sequence) Accept(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		return false
	}
	s.applied = seq
	return true
}
