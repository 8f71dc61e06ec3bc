// ABOUTME: RoundTripper that stamps request IDs and bearer tokens onto outgoing requests
// ABOUTME: Logs each exchange with method, path, status and latency

package client

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RequestIDHeader is set on every outgoing request
const RequestIDHeader = "X-Request-ID"

// TokenSource yields the bearer token to send, or "" for none.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// transport decorates next. The token is looked up per request so that a
// session change takes effect without rebuilding the client.
type transport struct {
	next   http.RoundTripper
	tokens TokenSource
	logger *slog.Logger
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	requestID := req.Header.Get(RequestIDHeader)

	if t.tokens != nil {
		token, err := t.tokens.Token(req.Context())
		if err != nil {
			t.logger.Warn("token lookup failed, sending request without credentials",
				"request_id", requestID, "error", err)
		} else if token != "" {
			(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
		}
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		t.logger.Warn("api request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"request_id", requestID,
			"duration", elapsed,
			"error", err)
		return nil, err
	}

	t.logger.Debug("api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", elapsed)
	return resp, nil
}
