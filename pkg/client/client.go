// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client provides a Go client library for the Hangar API.
//
// Hangar is a container-hosting platform: users sign in through the
// institutional CAS, deploy projects from a Docker image or a GitHub
// repository, and manage their lifecycle. This client library provides
// typed access to the Hangar REST endpoints.
//
// # Getting Started
//
// Create a client pointing to your Hangar server:
//
//	c := client.New("https://hangar.garageisep.com")
//
// The client provides access to different API resources through sub-clients:
//
//	// Who am I?
//	user, err := c.Auth.Me(ctx)
//
//	// List owned projects
//	projects, err := c.Projects.Owned(ctx)
//
//	// Restart a project
//	err = c.Projects.Restart(ctx, 42)
//
//	// Fleet-wide metrics (admins only)
//	metrics, err := c.Admin.Metrics(ctx)
//
// # Sessions
//
// Hangar authenticates with a session cookie set by the ticket exchange
// endpoint. Supply a cookie jar to keep the session across requests:
//
//	jar, _ := cookiejar.New(nil)
//	c := client.New(baseURL, client.WithCookieJar(jar))
//
// # Error Handling
//
// Every failure is returned as an *APIError carrying a machine-readable
// ErrorCode. Network failures, unstructured HTTP failures, and undecodable
// responses are all normalized to that shape:
//
//	err := c.Projects.Start(ctx, 42)
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) {
//	    fmt.Println(apiErr.ErrorCode) // e.g. "UNAUTHORIZED", "HTTP_ERROR_502"
//	}
//
// # Context Support
//
// All API methods accept a context.Context for cancellation and timeouts.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIRoot is the path prefix under which the Hangar REST API is served.
const DefaultAPIRoot = "/api"

// UserAgent is sent with every request.
const UserAgent = "hangar-go-client"

// Client is a Hangar API client.
//
// A Client provides access to the Hangar API through resource-specific
// sub-clients. Use [New] to create a Client instance.
//
// The Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	apiRoot    string
	userAgent  string
	httpClient *http.Client

	// Auth provides access to the CAS ticket exchange and session endpoints.
	Auth *AuthClient

	// Projects provides access to project deployment and lifecycle operations.
	Projects *ProjectClient

	// Admin provides access to fleet-wide views. Requires an admin session.
	Admin *AdminClient

	// Databases provides access to managed database operations.
	Databases *DatabaseClient
}

// Option configures a [Client]. Options are passed to [New] to customize
// client behavior.
type Option func(*Client)

// New creates a new Hangar API client with the given base URL and options.
//
// The baseURL should be the root URL of the Hangar server
// (e.g., "https://hangar.garageisep.com"). Any trailing slash is removed.
//
// By default, the client uses:
//   - The [DefaultAPIRoot] path prefix
//   - A 30-second HTTP timeout
//   - No cookie jar (use [WithCookieJar] to keep a session)
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiRoot:   DefaultAPIRoot,
		userAgent: UserAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthClient{c: c}
	c.Projects = &ProjectClient{c: c}
	c.Admin = &AdminClient{c: c}
	c.Databases = &DatabaseClient{c: c}

	return c
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
//
// The default timeout is 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithCookieJar sets the cookie jar used to carry the Hangar session cookie.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

// WithAPIRoot overrides the API path prefix (default "/api").
func WithAPIRoot(root string) Option {
	return func(c *Client) {
		c.apiRoot = "/" + strings.Trim(root, "/")
		if c.apiRoot == "/" {
			c.apiRoot = ""
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// BaseURL returns the base URL of the server.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIURL returns the absolute URL of an API path.
func (c *Client) APIURL(path string) string {
	return c.baseURL + c.apiRoot + path
}

// get performs a GET request and decodes the response into out.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// post performs a POST request with no body.
func (c *Client) post(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, out)
}

// put performs a PUT request with no body.
func (c *Client) put(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, out)
}

// delete performs a DELETE request.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// sendJSON performs a request with a JSON body. encodeCode is the error code
// reported when the body cannot be encoded.
func (c *Client) sendJSON(ctx context.Context, method, path string, body, out interface{}, encodeCode string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &APIError{ErrorCode: encodeCode, Details: err.Error(), err: err}
	}
	return c.do(ctx, method, path, bytes.NewReader(data), out)
}

// do performs an HTTP request and parses the response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.APIURL(path), body)
	if err != nil {
		return &APIError{ErrorCode: ErrCodeClientError, Details: err.Error(), err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{ErrorCode: ErrCodeNetworkError, Details: err.Error(), err: err}
	}
	defer resp.Body.Close()

	return c.parseResponse(resp, out)
}

// parseResponse reads a response and decodes it into out, or normalizes
// the failure into an *APIError.
func (c *Client) parseResponse(resp *http.Response, out interface{}) error {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{ErrorCode: ErrCodeNetworkError, Status: resp.StatusCode, Details: err.Error(), err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorBody(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &APIError{
			ErrorCode: ErrCodeResponseParse,
			Status:    resp.StatusCode,
			Details:   fmt.Sprintf("decode %T: %v", out, err),
			err:       err,
		}
	}
	return nil
}

// parseErrorBody extracts the structured {error_code, details} body of a
// failed response. Anything else falls back to HTTP_ERROR_<status>.
func parseErrorBody(status int, body []byte) *APIError {
	var structured struct {
		ErrorCode string  `json:"error_code"`
		Details   *string `json:"details"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.ErrorCode != "" {
		apiErr := &APIError{ErrorCode: structured.ErrorCode, Status: status}
		if structured.Details != nil {
			apiErr.Details = *structured.Details
		}
		return apiErr
	}
	return &APIError{ErrorCode: HTTPErrorCode(status), Status: status}
}
