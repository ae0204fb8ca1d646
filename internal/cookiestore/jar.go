// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package cookiestore provides an http.CookieJar whose cookies survive
// between hangar-ctl invocations, so one login serves later commands.
//
// Cookie matching is delegated to net/http/cookiejar; every cookie the jar
// accepts is also written to a SQLite table and replayed on Open.
package cookiestore

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/garageisep/hangar/internal/clock"
)

// Memory opens a jar that is not written to disk.
const Memory = "memory"

const schema = `
CREATE TABLE IF NOT EXISTS cookies (
    host TEXT NOT NULL,
    name TEXT NOT NULL,
    path TEXT NOT NULL,
    value TEXT NOT NULL,
    domain TEXT NOT NULL DEFAULT '',
    secure INTEGER NOT NULL DEFAULT 0,
    http_only INTEGER NOT NULL DEFAULT 0,
    expires INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (host, name, path)
);
`

// Jar is a persistent cookie jar. It is safe for concurrent use.
type Jar struct {
	mu    sync.Mutex
	db    *sql.DB
	jar   *cookiejar.Jar
	clock clock.Clock
	log   *slog.Logger
}

// Open opens or creates the jar stored at path. Memory keeps the cookies in
// an in-process database. A nil logger uses slog.Default.
func Open(path string, clk clock.Clock, logger *slog.Logger) (*Jar, error) {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := path
	if path == Memory || path == "" {
		dsn = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: ":memory:" is private to its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	inner, err := cookiejar.New(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	j := &Jar{db: db, jar: inner, clock: clk, log: logger.With("component", "CookieStore")}
	if err := j.load(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// load replays stored cookies into the in-memory jar and removes expired
// rows.
func (j *Jar) load() error {
	now := j.clock.Now().Unix()
	if _, err := j.db.Exec(`DELETE FROM cookies WHERE expires > 0 AND expires <= ?`, now); err != nil {
		return fmt.Errorf("failed to prune cookies: %w", err)
	}

	rows, err := j.db.Query(`SELECT host, name, path, value, domain, secure, http_only, expires FROM cookies`)
	if err != nil {
		return fmt.Errorf("failed to load cookies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			host, name, path, value, domain string
			secure, httpOnly                bool
			expires                         int64
		)
		if err := rows.Scan(&host, &name, &path, &value, &domain, &secure, &httpOnly, &expires); err != nil {
			return fmt.Errorf("failed to scan cookie: %w", err)
		}

		c := &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     path,
			Domain:   domain,
			Secure:   secure,
			HttpOnly: httpOnly,
		}
		if expires > 0 {
			c.Expires = time.Unix(expires, 0)
		}
		scheme := "http"
		if secure {
			scheme = "https"
		}
		j.jar.SetCookies(&url.URL{Scheme: scheme, Host: host, Path: path}, []*http.Cookie{c})
	}
	return rows.Err()
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// SetCookies implements http.CookieJar. Storage failures are logged and
// leave the in-memory jar updated; the session then only lasts for this
// process.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)

	now := j.clock.Now()
	for _, c := range cookies {
		j.persist(u, c, now)
	}
}

func (j *Jar) persist(u *url.URL, c *http.Cookie, now time.Time) {
	path := c.Path
	if path == "" {
		path = "/"
	}
	host := u.Host

	if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now)) {
		if _, err := j.db.Exec(`DELETE FROM cookies WHERE host = ? AND name = ? AND path = ?`, host, c.Name, path); err != nil {
			j.log.Warn("failed to delete cookie", "host", host, "name", c.Name, "error", err)
		}
		return
	}

	var expires int64
	switch {
	case c.MaxAge > 0:
		expires = now.Add(time.Duration(c.MaxAge) * time.Second).Unix()
	case !c.Expires.IsZero():
		expires = c.Expires.Unix()
	}

	_, err := j.db.Exec(`
		INSERT INTO cookies (host, name, path, value, domain, secure, http_only, expires, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (host, name, path) DO UPDATE SET
			value = excluded.value,
			domain = excluded.domain,
			secure = excluded.secure,
			http_only = excluded.http_only,
			expires = excluded.expires,
			updated_at = CURRENT_TIMESTAMP`,
		host, c.Name, path, c.Value, c.Domain, c.Secure, c.HttpOnly, expires)
	if err != nil {
		j.log.Warn("failed to store cookie", "host", host, "name", c.Name, "error", err)
	}
}

// Count returns the number of stored cookies.
func (j *Jar) Count() (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM cookies`).Scan(&n)
	return n, err
}

// Clear forgets every cookie, in memory and on disk.
func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	inner, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.jar = inner
	if _, err := j.db.Exec(`DELETE FROM cookies`); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

// Close closes the database.
func (j *Jar) Close() error {
	return j.db.Close()
}
