// ABOUTME: HTTP client for the materialhub REST API
// ABOUTME: One configured pipeline shared by the materials, auth and admin groups

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds every request unless overridden with WithTimeout
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is read for its detail
const maxErrorBody = 64 << 10

// UnauthorizedHandler is notified of every 401 before the error is returned.
type UnauthorizedHandler func(ctx context.Context, err *APIError)

// Client is the API client for the materialhub backend. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	apiURL     string
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.RWMutex
	nextID   int
	handlers map[int]UnauthorizedHandler
}

// Option configures a Client
type Option func(*options)

type options struct {
	tokens  TokenSource
	timeout time.Duration
	logger  *slog.Logger
	base    http.RoundTripper
}

// WithTokenSource sets where bearer tokens come from
func WithTokenSource(ts TokenSource) Option {
	return func(o *options) { o.tokens = ts }
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the request logger (default slog.Default())
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTransport replaces the underlying round tripper (http.DefaultTransport)
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// New creates a client for the backend at baseURL. Requests go to
// <baseURL>/api.
func New(baseURL string, opts ...Option) *Client {
	o := options{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		base:    http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		baseURL: baseURL,
		apiURL:  baseURL + "/api",
		httpClient: &http.Client{
			Timeout: o.timeout,
			Transport: &transport{
				next:   o.base,
				tokens: o.tokens,
				logger: o.logger,
			},
		},
		logger:   o.logger,
		handlers: make(map[int]UnauthorizedHandler),
	}
}

// BaseURL returns the backend origin the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnUnauthorized registers fn to run on every 401 response. The returned
// function removes the registration.
func (c *Client) OnUnauthorized(fn UnauthorizedHandler) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.handlers, id)
		c.mu.Unlock()
	}
}

func (c *Client) notifyUnauthorized(ctx context.Context, apiErr *APIError) {
	c.mu.RLock()
	handlers := make([]UnauthorizedHandler, 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, apiErr)
	}
}

// request describes one API call
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// getJSON performs a GET and decodes the response into out
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

// sendJSON encodes in as the request body (nil for none) and decodes the
// response into out
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	req := request{method: method, path: path}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		req.body = bytes.NewReader(body)
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	target := c.apiURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.handleErrorResponse(req, resp)
		if apiErr.StatusCode == http.StatusUnauthorized {
			c.notifyUnauthorized(ctx, apiErr)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError labels context errors and connection failures. The
// cause stays reachable through errors.Is/As.
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse turns a non-2xx response into an *APIError
func (c *Client) handleErrorResponse(req *http.Request, resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Detail:     parseDetail(body),
		Method:     req.Method,
		Path:       req.URL.Path,
		RequestID:  req.Header.Get(RequestIDHeader),
	}
}
