// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/garageisep/hangar/internal/events"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
	streamBuf  = 100
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventHandler serves the event history and the live event stream.
type EventHandler struct {
	bus events.Bus
	log *slog.Logger
}

// NewEventHandler creates a new event handler.
func NewEventHandler(bus events.Bus, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{bus: bus, log: logger}
}

var errBadProject = errors.New("project must be a positive integer")

// filterFromQuery reads type, project, limit and since parameters. Only a
// malformed project is refused; other malformed values are ignored.
func filterFromQuery(r *http.Request) (events.Filter, error) {
	query := r.URL.Query()
	filter := events.Filter{}

	if types := query["type"]; len(types) > 0 {
		filter.Types = types
	}

	if p := query.Get("project"); p != "" {
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return filter, errBadProject
		}
		filter.ProjectID = id
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	if sinceStr := query.Get("since"); sinceStr != "" {
		if t, err := time.Parse(time.RFC3339, sinceStr); err == nil {
			filter.Since = t
		}
	}
	return filter, nil
}

// History returns retained events.
func (h *EventHandler) History(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		badParam(w, "project", r.URL.Query().Get("project"), err)
		return
	}
	WriteList(w, http.StatusOK, h.bus.History(filter))
}

// WebSocket streams events matching the pattern query parameter (all
// events by default) as JSON text frames.
func (h *EventHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}
	if _, err := events.Compile(pattern); err != nil {
		badParam(w, "pattern", pattern, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	eventCh := make(chan events.Event, streamBuf)
	done := make(chan struct{})

	subID, err := h.bus.SubscribeAsync(pattern, func(_ context.Context, event events.Event) {
		select {
		case eventCh <- event:
		case <-done:
		default:
			// Drop if buffer full
		}
	}, streamBuf)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	defer h.bus.Unsubscribe(subID)
	h.log.Debug("websocket subscribed", "pattern", pattern, "subscription", subID)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	// Read goroutine (for close detection)
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-eventCh:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
