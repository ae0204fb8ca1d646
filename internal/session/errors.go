// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
)

// Login failure codes.
const (
	CodeTicketMissing = "TICKET_MISSING"
	CodeLoginFailed   = "LOGIN_FAILED"
)

// Sentinels matched by LoginError.
var (
	ErrTicketMissing = errors.New("authentication ticket is missing")
	ErrLoginFailed   = errors.New("authentication failed")
)

// LoginError is returned by CompleteLogin. Key is the translation key of
// the message to show.
type LoginError struct {
	Code string
	Key  string
	Err  error
}

func (e *LoginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

// Unwrap returns the underlying failure, if any.
func (e *LoginError) Unwrap() error {
	return e.Err
}

// Is matches ErrTicketMissing or ErrLoginFailed by code.
func (e *LoginError) Is(target error) bool {
	switch target {
	case ErrTicketMissing:
		return e.Code == CodeTicketMissing
	case ErrLoginFailed:
		return e.Code == CodeLoginFailed
	}
	return false
}

func ticketMissing() *LoginError {
	return &LoginError{Code: CodeTicketMissing, Key: "auth.ticket_missing"}
}

func loginFailed(err error) *LoginError {
	return &LoginError{Code: CodeLoginFailed, Key: "auth.login_failed", Err: err}
}
