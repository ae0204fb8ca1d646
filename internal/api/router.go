// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package api is the live relay: a local HTTP server that exposes the
// mounted project view and streams its events over WebSocket to browsers
// and scripts.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/garageisep/hangar/internal/api/handlers"
	"github.com/garageisep/hangar/internal/api/middleware"
	"github.com/garageisep/hangar/internal/events"
)

// ServerConfig holds configuration for the relay server.
type ServerConfig struct {
	Addr string // host:port
}

// Dependencies holds everything the relay handlers read from.
type Dependencies struct {
	Bus    events.Bus
	View   handlers.ViewSource
	Logger *slog.Logger
}

// NewRouter creates the relay router.
func NewRouter(deps Dependencies) *mux.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS)

	r.HandleFunc("/healthz", handlers.Health).Methods("GET")
	r.HandleFunc("/ws", handlers.NewEventHandler(deps.Bus, logger).WebSocket).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/view", handlers.NewViewHandler(deps.View).Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/events", handlers.NewEventHandler(deps.Bus, logger).History).Methods("GET", "OPTIONS")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, handlers.ErrNotFound, "not found")
	})
	return r
}

// Server is the relay HTTP server.
type Server struct {
	router *mux.Router
	cfg    ServerConfig
	log    *slog.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates a relay server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deps.Logger = logger.With("component", "Relay")
	return &Server{
		router: NewRouter(deps),
		cfg:    cfg,
		log:    deps.Logger,
	}
}

// Router returns the underlying router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Listen binds the configured address. Addr reports the bound address,
// which matters when the port is 0.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()
	return nil
}

// Addr returns the listening address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve accepts connections until Shutdown. It calls Listen if needed.
func (s *Server) Serve() error {
	s.mu.Lock()
	bound := s.listener != nil
	s.mu.Unlock()
	if !bound {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	srv, ln := s.server, s.listener
	s.mu.Unlock()

	s.log.Info("relay listening", "addr", "http://"+ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.log.Info("shutting down relay")

	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return srv.Shutdown(shutdownCtx)
}
