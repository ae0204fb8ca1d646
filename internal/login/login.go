// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package login runs the CAS sign-in flow for a command line client.
//
// A local listener plays the role of the web client's /auth/callback
// route: the browser is sent to the CAS login page with that listener as
// the service URL, CAS redirects back with a one-time ticket, and the
// listener hands the query string to the session controller.
package login

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/garageisep/hangar/internal/api/middleware"
	"github.com/garageisep/hangar/internal/i18n"
	"github.com/garageisep/hangar/internal/session"
	"github.com/garageisep/hangar/pkg/client"
)

// CallbackPath is the path CAS redirects to.
const CallbackPath = "/auth/callback"

// ErrTimeout is returned by Wait when no callback arrived in time.
var ErrTimeout = errors.New("timed out waiting for the login callback")

// Completer exchanges a callback query string for a user.
// *session.Controller implements it.
type Completer interface {
	CompleteLoginFromQuery(ctx context.Context, rawQuery string) (*client.User, error)
}

// Config configures a Listener.
type Config struct {
	Addr    string        // host:port of the callback listener
	CASURL  string        // CAS login endpoint
	Timeout time.Duration // how long Wait waits for the callback
}

// ServiceURL returns the URL CAS must redirect back to for a listener
// bound to addr.
func ServiceURL(addr string) string {
	return "http://" + addr + CallbackPath
}

// CASLoginURL returns the CAS login URL for service.
func CASLoginURL(casURL, service string) string {
	sep := "?"
	if u, err := url.Parse(casURL); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return casURL + sep + "service=" + url.QueryEscape(service)
}

type result struct {
	user *client.User
	err  error
}

// Listener is a one-shot callback server.
type Listener struct {
	cfg       Config
	completer Completer
	loc       *i18n.Localizer
	log       *slog.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	results  chan result
	once     sync.Once
}

// NewListener creates a listener. loc localizes the page shown in the
// browser once the ticket has been exchanged.
func NewListener(cfg Config, completer Completer, loc *i18n.Localizer, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = i18n.MustNew(i18n.DefaultLocale, "")
	}
	return &Listener{
		cfg:       cfg,
		completer: completer,
		loc:       loc,
		log:       logger.With("component", "Login"),
		results:   make(chan result, 1),
	}
}

// Handler returns the callback router.
func (l *Listener) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Logging(l.log))
	r.Use(middleware.Recovery(l.log))
	r.HandleFunc(CallbackPath, l.callback).Methods("GET")
	return r
}

// Start binds the callback address and serves in the background.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", l.cfg.Addr, err)
	}
	srv := &http.Server{Handler: l.Handler(), ReadHeaderTimeout: 10 * time.Second}

	l.mu.Lock()
	l.listener = ln
	l.server = srv
	l.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.log.Error("callback listener failed", "error", err)
		}
	}()
	l.log.Debug("callback listener started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (l *Listener) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener != nil {
		return l.listener.Addr().String()
	}
	return l.cfg.Addr
}

// LoginURL returns the CAS URL to open in the browser.
func (l *Listener) LoginURL() string {
	return CASLoginURL(l.cfg.CASURL, ServiceURL(l.Addr()))
}

// Wait blocks until the first callback has been handled, ctx is done, or
// the configured timeout elapses.
func (l *Listener) Wait(ctx context.Context) (*client.User, error) {
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}
	select {
	case res := <-l.results:
		return res.user, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}

// Close stops the listener.
func (l *Listener) Close() error {
	l.mu.Lock()
	srv := l.server
	l.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

var page = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Hangar</title></head>
<body><p>{{.}}</p></body></html>
`))

func (l *Listener) callback(w http.ResponseWriter, r *http.Request) {
	user, err := l.completer.CompleteLoginFromQuery(r.Context(), r.URL.RawQuery)

	status := http.StatusOK
	var msg string
	var loginErr *session.LoginError
	switch {
	case err == nil:
		msg = l.loc.T("auth.logged_in_as", "name", user.Name, "login", user.Login)
	case errors.As(err, &loginErr):
		status = http.StatusUnauthorized
		msg = l.loc.T(loginErr.Key)
	default:
		status = http.StatusUnauthorized
		msg = l.loc.T("auth.login_failed")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page.Execute(w, msg)

	l.once.Do(func() {
		l.results <- result{user: user, err: err}
	})
}

// OpenBrowser opens target in the user's default browser.
func OpenBrowser(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", target)
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	return cmd.Start()
}
