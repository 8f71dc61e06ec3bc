// ABOUTME: Tests for the materialhub API client pipeline
// ABOUTME: Uses httptest to mock backend responses

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/materialhub/materialhub-cli/internal/logger"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) Token(context.Context) (string, error) { return "", errors.New("store locked") }

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return New(server.URL, append([]Option{WithLogger(logger.Discard())}, opts...)...)
}

func TestBearerHeader_TokenPresent(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":1,"username":"alice"}`))
	}, WithTokenSource(staticToken("abc")))

	_, err := c.Auth().Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got)
}

func TestBearerHeader_TokenAbsent(t *testing.T) {
	var present bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		w.Write([]byte(`{"maps":[]}`))
	}, WithTokenSource(staticToken("")))

	_, err := c.Materials().Maps(context.Background())
	require.NoError(t, err)
	assert.False(t, present)
}

func TestBearerHeader_TokenSourceErrorSendsWithout(t *testing.T) {
	var present bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		w.Write([]byte(`{"maps":[]}`))
	}, WithTokenSource(failingToken{}))

	_, err := c.Materials().Maps(context.Background())
	require.NoError(t, err)
	assert.False(t, present)
}

func TestRequestIDHeader(t *testing.T) {
	ids := make(chan string, 2)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Material not found"}`))
	})

	_, err1 := c.Materials().Get(context.Background(), 1)
	_, err2 := c.Materials().Get(context.Background(), 2)

	first, second := <-ids, <-ids
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)

	var apiErr *APIError
	require.ErrorAs(t, err1, &apiErr)
	assert.Equal(t, first, apiErr.RequestID)
	require.ErrorAs(t, err2, &apiErr)
	assert.Equal(t, second, apiErr.RequestID)
}

func TestUnauthorized_NotifiesHandlers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	})

	var calls atomic.Int32
	var seen *APIError
	c.OnUnauthorized(func(_ context.Context, err *APIError) {
		calls.Add(1)
		seen = err
	})

	_, err := c.Auth().Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
	require.NotNil(t, seen)
	assert.Equal(t, "/api/users/me", seen.Path)
	assert.Equal(t, "Could not validate credentials", seen.Detail)
}

func TestUnauthorized_Unsubscribe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	var calls atomic.Int32
	unsubscribe := c.OnUnauthorized(func(context.Context, *APIError) { calls.Add(1) })
	unsubscribe()

	_, err := c.Auth().Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(0), calls.Load())
}

func TestForbiddenDoesNotNotify(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"Not enough permissions"}`))
	})

	notified := false
	c.OnUnauthorized(func(context.Context, *APIError) { notified = true })

	_, err := c.Admin().Stats(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.False(t, notified)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
}

func TestErrorStatusesPassThrough(t *testing.T) {
	tests := []struct {
		status int
		body   string
		target error
		detail string
	}{
		{http.StatusBadRequest, `{"detail":"Username already registered"}`, ErrBadRequest, "Username already registered"},
		{http.StatusNotFound, `{"detail":"Material not found"}`, ErrNotFound, "Material not found"},
		{http.StatusUnprocessableEntity, `{"detail":[{"loc":["query","title"],"msg":"field required"}]}`, ErrBadRequest, "title: field required"},
		{http.StatusInternalServerError, `{"error":"boom"}`, nil, "boom"},
		{http.StatusBadGateway, `upstream down`, nil, "upstream down"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Materials().Get(context.Background(), 9)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.detail, apiErr.Detail)
			assert.Equal(t, http.MethodGet, apiErr.Method)
			assert.Equal(t, "/api/materials/9", apiErr.Path)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

func TestConnectionError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	c := New("http://"+addr, WithLogger(logger.Discard()))
	_, err = c.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot connect to backend")

	var opErr *net.OpError
	assert.ErrorAs(t, err, &opErr)
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.Materials().List(ctx, ListParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "canceled")
}

func TestContextTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Materials().List(ctx, ListParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
}

func TestClientTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, WithTimeout(50*time.Millisecond))

	_, err := c.Materials().Categories(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestInvalidJSONResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := c.Admin().Stats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid response")
}

func TestHealth(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/healthz", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
		})
		h, err := c.Health(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "healthy", h.Status)
	})

	t.Run("plain body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})
		h, err := c.Health(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ok", h.Status)
	})

	t.Run("unhealthy", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		_, err := c.Health(context.Background())
		assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	})
}

func TestStatusCodeOfNonAPIError(t *testing.T) {
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
	assert.Equal(t, 0, StatusCode(nil))
}
