// ABOUTME: Error types returned by the API client
// ABOUTME: APIError carries the HTTP status and matches the sentinel errors with errors.Is

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinels for errors.Is against an *APIError
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx response from the backend. The body is not
// interpreted beyond extracting a human-readable detail.
type APIError struct {
	StatusCode int
	Detail     string
	Method     string
	Path       string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target is the sentinel for e's status code.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// StatusCode returns the HTTP status of err if it wraps an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// errorBody covers the shapes error bodies arrive in: FastAPI's detail
// (a string, or a list of validation errors) and plain error/message keys.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type validationError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseDetail extracts a readable message from an error body. Unknown
// shapes fall back to the trimmed raw body.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return strings.TrimSpace(string(body))
	}

	if len(eb.Detail) > 0 {
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil {
			return s
		}
		var list []validationError
		if err := json.Unmarshal(eb.Detail, &list); err == nil {
			parts := make([]string, 0, len(list))
			for _, v := range list {
				if field := lastLoc(v.Loc); field != "" {
					parts = append(parts, field+": "+v.Msg)
				} else {
					parts = append(parts, v.Msg)
				}
			}
			return strings.Join(parts, "; ")
		}
		return string(eb.Detail)
	}

	if eb.Error != "" {
		return eb.Error
	}
	return eb.Message
}

func lastLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	return fmt.Sprint(loc[len(loc)-1])
}
