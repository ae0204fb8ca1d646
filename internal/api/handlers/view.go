// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/garageisep/hangar/internal/live"
)

// ViewSource returns the mounted view, or nil when none is mounted.
type ViewSource func() *live.View

// ViewHandler serves the snapshot of the mounted project view.
type ViewHandler struct {
	source ViewSource
}

// NewViewHandler creates a view handler.
func NewViewHandler(source ViewSource) *ViewHandler {
	return &ViewHandler{source: source}
}

// Get writes the current snapshot.
func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	var v *live.View
	if h.source != nil {
		v = h.source()
	}
	if v == nil {
		WriteError(w, http.StatusServiceUnavailable, ErrNoView, "no project view is mounted")
		return
	}
	WriteJSON(w, http.StatusOK, v.Snapshot())
}

// Health reports that the relay is up.
func Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
