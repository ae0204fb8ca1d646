// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package session owns the authentication state of a Hangar client.
//
// The Controller resolves the session once at startup, exchanges CAS
// tickets for an identity, signs out, and gates protected views. All
// transitions go through the Controller; views read the Store.
package session

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/garageisep/hangar/internal/events"
	"github.com/garageisep/hangar/internal/route"
	"github.com/garageisep/hangar/pkg/client"
)

// AuthAPI is the part of the Hangar API the controller needs.
// *client.AuthClient implements it.
type AuthAPI interface {
	Me(ctx context.Context) (*client.User, error)
	ValidateTicket(ctx context.Context, ticket string) (*client.User, error)
	Logout(ctx context.Context) error
}

// Gate is the outcome of checking access to a protected view.
type Gate int

const (
	// GateLoading means the session is not resolved yet; render a loading
	// indicator and do not redirect.
	GateLoading Gate = iota
	// GateAllowed means a user is signed in.
	GateAllowed
	// GateRedirected means the session is anonymous; the controller has
	// navigated to Home.
	GateRedirected
)

func (g Gate) String() string {
	switch g {
	case GateLoading:
		return "loading"
	case GateAllowed:
		return "allowed"
	default:
		return "redirected"
	}
}

// Options configures a Controller.
type Options struct {
	Navigator route.Navigator
	Bus       events.Bus
	Logger    *slog.Logger
}

// Controller performs session transitions.
type Controller struct {
	store *Store
	auth  AuthAPI
	nav   route.Navigator
	bus   events.Bus
	log   *slog.Logger

	// mu serializes transitions.
	mu           sync.Mutex
	initOnce     sync.Once
	resolved     chan struct{}
	resolvedOnce sync.Once
}

// NewController creates a controller writing to store.
func NewController(store *Store, auth AuthAPI, opts Options) *Controller {
	if opts.Navigator == nil {
		opts.Navigator = route.NavigatorFunc(func(route.Route) {})
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Controller{
		store:    store,
		auth:     auth,
		nav:      opts.Navigator,
		bus:      opts.Bus,
		log:      opts.Logger.With("component", "Session"),
		resolved: make(chan struct{}),
	}
	if !store.Snapshot().Loading {
		c.markResolved()
	}
	return c
}

// Store returns the store the controller writes to.
func (c *Controller) Store() *Store {
	return c.store
}

// Initialize asks the server who is signed in. It runs at most once per
// controller; later calls return immediately. Any failure resolves the
// session as anonymous. If CompleteLogin has already resolved the session,
// the result is discarded.
func (c *Controller) Initialize(ctx context.Context) {
	c.initOnce.Do(func() {
		user, err := c.auth.Me(ctx)
		if err != nil {
			c.log.Debug("no active session", "error", err)
			user = nil
		}

		c.mu.Lock()
		if !c.store.Snapshot().Loading {
			c.mu.Unlock()
			c.log.Debug("session already resolved, dropping initial lookup")
			return
		}
		notify := c.apply(ctx, State{User: user}, events.EventSessionResolved)
		c.mu.Unlock()
		notify()
	})
}

// CompleteLogin exchanges a CAS ticket for an identity. On success the
// session becomes authenticated and the client navigates Home.
//
// An empty ticket fails with TICKET_MISSING without contacting the server
// and leaves the session untouched: it stays anonymous or authenticated if
// it was already resolved, and stays loading if Initialize has not run yet.
// Callers that need a resolved session call Initialize first. Any other
// failure is LOGIN_FAILED and leaves the session anonymous. There is no
// retry.
func (c *Controller) CompleteLogin(ctx context.Context, ticket string) (*client.User, error) {
	if ticket == "" {
		return nil, ticketMissing()
	}

	user, err := c.auth.ValidateTicket(ctx, ticket)

	c.mu.Lock()
	if err != nil {
		c.log.Error("login failed", "error", err)
		notify := c.apply(ctx, State{}, events.EventSessionResolved)
		c.mu.Unlock()
		notify()
		return nil, loginFailed(err)
	}
	c.log.Info("logged in", "login", user.Login)
	notify := c.apply(ctx, State{User: user}, events.EventSessionLogin)
	c.mu.Unlock()
	notify()

	c.nav.Navigate(route.Route{Kind: route.Home})
	return user, nil
}

// CompleteLoginFromQuery reads the ticket parameter of a callback query
// string ("ticket=ST-1..." with or without a leading "?") and completes the
// login. Malformed neighbouring parameters do not hide the ticket.
func (c *Controller) CompleteLoginFromQuery(ctx context.Context, rawQuery string) (*client.User, error) {
	if len(rawQuery) > 0 && rawQuery[0] == '?' {
		rawQuery = rawQuery[1:]
	}
	// ParseQuery keeps every pair it could decode alongside the error.
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		c.log.Debug("malformed callback query", "error", err)
	}
	return c.CompleteLogin(ctx, values.Get("ticket"))
}

// Logout ends the session on the server, then locally, then navigates
// Home. If the server call fails the local session is kept and the error
// is returned.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.auth.Logout(ctx); err != nil {
		c.log.Warn("logout failed", "error", err)
		return err
	}

	c.mu.Lock()
	notify := c.apply(ctx, State{}, events.EventSessionLogout)
	c.mu.Unlock()
	notify()

	c.nav.Navigate(route.Route{Kind: route.Home})
	return nil
}

// RequireAuthenticated checks access to a protected view. When the session
// is resolved and anonymous it navigates Home.
func (c *Controller) RequireAuthenticated() Gate {
	state := c.store.Snapshot()
	switch {
	case state.Loading:
		return GateLoading
	case state.User != nil:
		return GateAllowed
	default:
		c.nav.Navigate(route.Route{Kind: route.Home})
		return GateRedirected
	}
}

// WaitResolved blocks until the session has left the loading state.
func (c *Controller) WaitResolved(ctx context.Context) (State, error) {
	select {
	case <-c.resolved:
		return c.store.Snapshot(), nil
	case <-ctx.Done():
		return c.store.Snapshot(), ctx.Err()
	}
}

// CanControl reports whether the signed-in user may run control actions
// on a project owned by owner: admins and the owner may, participants and
// anonymous users may not.
func (c *Controller) CanControl(owner string) bool {
	user := c.store.Snapshot().User
	if user == nil {
		return false
	}
	return user.IsAdmin || user.Login == owner
}

// apply writes state. Must be called with c.mu held. The returned function
// notifies store subscribers and publishes the transition; call it after
// releasing c.mu so subscribers may start another transition.
func (c *Controller) apply(ctx context.Context, state State, eventType string) (notify func()) {
	state.Loading = false
	subs := c.store.set(state)
	c.markResolved()

	return func() {
		for _, fn := range subs {
			fn(state)
		}
		if c.bus == nil {
			return
		}
		payload := map[string]interface{}{"authenticated": state.User != nil}
		if state.User != nil {
			payload["login"] = state.User.Login
			payload["is_admin"] = state.User.IsAdmin
		}
		c.bus.Publish(ctx, events.Event{Type: eventType, Payload: payload})
	}
}

func (c *Controller) markResolved() {
	c.resolvedOnce.Do(func() { close(c.resolved) })
}
