// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Validator validates configuration values.
type Validator struct{}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks configuration validity. All problems are reported
// together.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateURL("api.base_url", cfg.API.BaseURL, errs)
	v.validateURL("login.cas_url", cfg.Login.CASURL, errs)
	v.validateAddr("login.callback_addr", cfg.Login.CallbackAddr, errs)
	v.validateAddr("relay.addr", cfg.Relay.Addr, errs)
	v.validateDurations(cfg, errs)
	v.validateLogging(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateURL(field, value string, errs *ValidationError) {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs.Add(field, fmt.Sprintf("invalid URL '%s'", value))
	}
}

func (v *Validator) validateAddr(field, value string, errs *ValidationError) {
	if _, _, err := net.SplitHostPort(value); err != nil {
		errs.Add(field, fmt.Sprintf("invalid address '%s'", value))
	}
}

func (v *Validator) validateDurations(cfg *Config, errs *ValidationError) {
	durations := []struct {
		field string
		value string
	}{
		{"api.timeout", cfg.API.Timeout},
		{"poll.status_interval", cfg.Poll.StatusInterval},
		{"poll.metrics_interval", cfg.Poll.MetricsInterval},
		{"poll.refresh_delay", cfg.Poll.RefreshDelay},
		{"login.timeout", cfg.Login.Timeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			errs.Add(d.field, fmt.Sprintf("invalid duration '%s'", d.value))
			continue
		}
		if parsed <= 0 {
			errs.Add(d.field, "must be positive")
		}
	}
}

func (v *Validator) validateLogging(cfg *Config, errs *ValidationError) {
	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs.Add("logging.level", fmt.Sprintf("invalid level '%s'", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "", "text", "json":
	default:
		errs.Add("logging.format", fmt.Sprintf("invalid format '%s'", cfg.Logging.Format))
	}
}
