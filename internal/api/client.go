// Package api is the HTTP client for the agent-fleet backend. It owns the
// typed endpoint models, the batched snapshot fetch the dashboard renders
// from, and the one-shot dispatch used by action keys and CLI verbs.
//
// The base URL is injected at construction; nothing in this package reads
// configuration or environment state on its own.
package api

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

const (
	// DefaultBaseURL matches the command-center backend's default bind address.
	DefaultBaseURL = "http://localhost:5000"

	// DefaultTimeout bounds every request so a hung backend cannot pin the
	// dashboard in its loading state.
	DefaultTimeout = 10 * time.Second
)

// Client talks to one backend instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL sets the backend base URL. A trailing slash is trimmed so
// request paths can always start with "/".
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(url), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client. Used by tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient creates a backend client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping fetches the root service blob. It doubles as the reachability check
// for `crewdeck status`.
func (c *Client) Ping(ctx context.Context) (*ServiceInfo, error) {
	var info ServiceInfo
	if err := c.getJSON(ctx, "ping", "/", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// getJSON issues a GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	raw, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return newAPIError(op, 0, fmt.Errorf("%w: %v", ErrBadPayload, err))
	}
	return nil
}

// do performs one request and returns the raw body of a 2xx response. Every
// failure comes back as an *APIError carrying op and status code.
func (c *Client) do(ctx context.Context, op, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, newAPIError(op, 0, fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, newAPIError(op, 0, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newAPIError(op, 0, ErrTimeout)
		}
		return nil, newAPIError(op, 0, fmt.Errorf("%w: %v", ErrServerUnavailable, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newAPIError(op, 0, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, newAPIError(op, resp.StatusCode, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(op, resp.StatusCode, fmt.Errorf("unexpected status: %s", resp.Status))
	}
	if !json.Valid(raw) {
		return nil, newAPIError(op, resp.StatusCode, ErrBadPayload)
	}
	return json.RawMessage(raw), nil
}
