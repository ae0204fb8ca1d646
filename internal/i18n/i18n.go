// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package i18n resolves user-facing strings from translation catalogs.
//
// English and French catalogs are embedded. A catalog directory can
// override or extend them; Reload re-reads it.
//
// Lookups report a missing key as a typed error so callers can choose a
// fallback (for example errors.DEFAULT for an unknown error code) instead of
// matching on message text.
package i18n

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultLocale is used when no locale is configured or detected, and as the
// secondary catalog for keys missing from the active locale.
const DefaultLocale = "en"

// Keys with fallbacks.
const (
	KeyLoading       = "common.loading"
	KeyStatusUnknown = "common.status_unknown"
	KeyErrorDefault  = "errors.DEFAULT"

	statusPrefix = "common.status_"
	errorPrefix  = "errors."
)

// ErrMissingKey is matched by every MissingKeyError.
var ErrMissingKey = errors.New("missing translation key")

// MissingKeyError reports a key present in neither the active nor the
// default catalog.
type MissingKeyError struct {
	Locale string
	Key    string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing translation key %q for locale %q", e.Key, e.Locale)
}

// Is makes errors.Is(err, ErrMissingKey) true.
func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingKey
}

// Localizer translates keys for one active locale. It is safe for
// concurrent use.
type Localizer struct {
	mu       sync.RWMutex
	locale   string
	builtin  map[string]Catalog
	catalogs map[string]Catalog
	dir      string
}

// New returns a Localizer for locale. An empty locale selects
// DefaultLocale. If dir is not empty, catalogs found there are merged over
// the embedded ones.
func New(locale, dir string) (*Localizer, error) {
	builtin, err := loadBuiltin()
	if err != nil {
		return nil, err
	}
	l := &Localizer{builtin: builtin, dir: dir}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	if locale == "" {
		locale = DefaultLocale
	}
	if err := l.SetLocale(locale); err != nil {
		return nil, err
	}
	return l, nil
}

// MustNew is like New but panics on error. The embedded catalogs always
// load, so MustNew(locale, "") only panics for an unknown locale.
func MustNew(locale, dir string) *Localizer {
	l, err := New(locale, dir)
	if err != nil {
		panic(err)
	}
	return l
}

// Reload rebuilds the catalogs from the embedded data and the override
// directory.
func (l *Localizer) Reload() error {
	merged := make(map[string]Catalog, len(l.builtin))
	for locale, cat := range l.builtin {
		c := make(Catalog, len(cat))
		c.merge(cat)
		merged[locale] = c
	}

	if l.dir != "" {
		overrides, err := loadDir(l.dir)
		if err != nil {
			return err
		}
		for locale, cat := range overrides {
			if merged[locale] == nil {
				merged[locale] = make(Catalog)
			}
			merged[locale].merge(cat)
		}
	}

	l.mu.Lock()
	l.catalogs = merged
	l.mu.Unlock()
	return nil
}

// Dir returns the override directory, if any.
func (l *Localizer) Dir() string {
	return l.dir
}

// SetLocale switches the active locale.
func (l *Localizer) SetLocale(locale string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.catalogs[locale]; !ok {
		return fmt.Errorf("unknown locale %q", locale)
	}
	l.locale = locale
	return nil
}

// Locale returns the active locale.
func (l *Localizer) Locale() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.locale
}

// Locales returns every available locale, sorted.
func (l *Localizer) Locales() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.catalogs))
	for locale := range l.catalogs {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the raw template for key. A key absent from the active
// locale is looked up in DefaultLocale; if that also fails the error is a
// *MissingKeyError.
func (l *Localizer) Lookup(key string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if msg, ok := l.catalogs[l.locale][key]; ok {
		return msg, nil
	}
	if msg, ok := l.catalogs[DefaultLocale][key]; ok {
		return msg, nil
	}
	return "", &MissingKeyError{Locale: l.locale, Key: key}
}

// T translates key and substitutes {name} placeholders from args, given as
// name, value pairs. A missing key renders as the key itself.
func (l *Localizer) T(key string, args ...string) string {
	msg, err := l.Lookup(key)
	if err != nil {
		return key
	}
	return Format(msg, args...)
}

// Status returns the label of a container status. A nil status means the
// status has not been fetched yet.
func (l *Localizer) Status(status *string) string {
	if status == nil {
		return l.T(KeyLoading)
	}
	if msg, err := l.Lookup(statusPrefix + *status); err == nil {
		return msg
	}
	return l.T(KeyStatusUnknown)
}

// Error returns the message for an error code, falling back to
// errors.DEFAULT for codes without a translation.
func (l *Localizer) Error(code string) string {
	if msg, err := l.Lookup(errorPrefix + code); err == nil {
		return msg
	}
	return l.T(KeyErrorDefault)
}

// Format substitutes {name} placeholders in template. args are name, value
// pairs; a trailing unpaired name is ignored.
func Format(template string, args ...string) string {
	if len(args) < 2 || !strings.Contains(template, "{") {
		return template
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+args[i]+"}", args[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// DetectLocale picks a locale from the usual environment variables: a
// value starting with "fr" selects French, anything else English.
func DetectLocale(getenv func(string) string) string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := getenv(name); v != "" {
			if strings.HasPrefix(strings.ToLower(v), "fr") {
				return "fr"
			}
			return DefaultLocale
		}
	}
	return DefaultLocale
}
