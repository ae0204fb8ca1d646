// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package handlers serves the live relay: the current view snapshot, the
// event history, and a WebSocket event stream.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope is the body of every relay response. Exactly one of Data and
// Error is set.
type Envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Problem    `json:"error,omitempty"`
	Meta  Meta        `json:"meta"`
}

// Problem describes a refused request. Details names the offending query
// parameter and what was wrong with it.
type Problem struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Meta carries the relay's clock and, for lists, the item count.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	Count     *int      `json:"count,omitempty"`
}

// Relay error codes
const (
	ErrNotFound   = "NOT_FOUND"
	ErrBadRequest = "BAD_REQUEST"
	ErrNoView     = "NO_VIEW"
)

// WriteJSON writes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Envelope{Data: data})
}

// WriteList writes items and their count. A nil slice is written as [].
func WriteList[T any](w http.ResponseWriter, status int, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	write(w, status, Envelope{Data: items, Meta: Meta{Count: &n}})
}

// WriteError writes a Problem without details.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorWithDetails(w, status, code, message, nil)
}

// WriteErrorWithDetails writes a Problem.
func WriteErrorWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	write(w, status, Envelope{Error: &Problem{Code: code, Message: message, Details: details}})
}

// badParam refuses a request because of one query parameter.
func badParam(w http.ResponseWriter, name, value string, err error) {
	WriteErrorWithDetails(w, http.StatusBadRequest, ErrBadRequest, err.Error(), map[string]interface{}{
		"parameter": name,
		"value":     value,
	})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	env.Meta.Timestamp = time.Now().UTC()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}
