// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/url"
)

// AuthClient provides access to the session endpoints.
//
// Hangar delegates authentication to CAS: the browser is sent to the CAS login
// page, which redirects back with a one-time ticket. ValidateTicket exchanges
// that ticket for a session cookie and the user's identity.
//
// Access this client through [Client.Auth]:
//
//	user, err := client.Auth.Me(ctx)
type AuthClient struct {
	c *Client
}

type userResponse struct {
	User User `json:"user"`
}

// Me returns the user bound to the current session cookie.
//
// Any failure (no cookie, expired session, network error) is returned as an
// error; callers that only want to know "is anyone signed in" can treat every
// error as anonymous.
func (a *AuthClient) Me(ctx context.Context) (*User, error) {
	var resp userResponse
	if err := a.c.get(ctx, "/auth/me", &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ValidateTicket exchanges a CAS ticket for a session.
func (a *AuthClient) ValidateTicket(ctx context.Context, ticket string) (*User, error) {
	var resp userResponse
	if err := a.c.get(ctx, "/auth/callback?ticket="+url.QueryEscape(ticket), &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout ends the current session on the server.
func (a *AuthClient) Logout(ctx context.Context) error {
	return a.c.get(ctx, "/auth/logout", nil)
}
