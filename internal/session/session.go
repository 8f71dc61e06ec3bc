// ABOUTME: Client-side auth state mirrored to persistent storage
// ABOUTME: Token and user are always set and cleared together

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/materialhub/materialhub-cli/internal/models"
	"github.com/materialhub/materialhub-cli/internal/storage"
)

// Session holds the bearer token and the signed-in user. The zero value is
// not usable; construct with New.
type Session struct {
	store  storage.Store
	logger *slog.Logger

	mu    sync.RWMutex
	token string
	user  *models.User
}

// New returns an empty session backed by store. Call InitAuth to restore it.
func New(store storage.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{store: store, logger: logger}
}

// SetAuth replaces the in-memory session with auth and persists both keys.
// Memory is updated even when persistence fails.
func (s *Session) SetAuth(ctx context.Context, auth *models.AuthResponse) error {
	if auth == nil {
		return errors.New("session: nil auth response")
	}

	user := auth.User
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	s.mu.Lock()
	s.token = auth.AccessToken
	s.user = &user
	s.mu.Unlock()

	if err := s.store.Set(ctx, storage.KeyToken, auth.AccessToken); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyUser, string(userJSON)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}

	s.logger.Debug("session set", "user", user.Username, "admin", user.IsAdmin)
	return nil
}

// SetUser refreshes the stored user while keeping the token, e.g. after
// re-reading /users/me. It is a no-op when no session is active.
func (s *Session) SetUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return nil
	}
	s.user = &user
	s.mu.Unlock()

	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyUser, string(userJSON)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	return nil
}

// ClearAuth drops the session from memory and storage. Both removals are
// attempted; their errors are joined.
func (s *Session) ClearAuth(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	errToken := s.store.Remove(ctx, storage.KeyToken)
	errUser := s.store.Remove(ctx, storage.KeyUser)
	if err := errors.Join(errToken, errUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.logger.Debug("session cleared")
	return nil
}

// InitAuth restores the session from storage and reports whether one was
// found. A half-present, unparseable or unreadable session is cleared and
// treated as no session.
func (s *Session) InitAuth(ctx context.Context) bool {
	token, tokenErr := s.store.Get(ctx, storage.KeyToken)
	userJSON, userErr := s.store.Get(ctx, storage.KeyUser)

	if errors.Is(tokenErr, storage.ErrNotFound) && errors.Is(userErr, storage.ErrNotFound) {
		s.reset()
		return false
	}

	var user models.User
	err := errors.Join(ignoreNotFound(tokenErr), ignoreNotFound(userErr))
	switch {
	case err != nil:
		s.logger.Warn("session storage unreadable, clearing", "error", err)
	case tokenErr != nil || userErr != nil || token == "":
		s.logger.Warn("incomplete session in storage, clearing")
		err = errors.New("incomplete session")
	default:
		if jerr := json.Unmarshal([]byte(userJSON), &user); jerr != nil {
			s.logger.Warn("corrupt user in storage, clearing", "error", jerr)
			err = jerr
		}
	}

	if err != nil {
		if cerr := s.ClearAuth(ctx); cerr != nil {
			s.logger.Warn("failed to clear corrupt session", "error", cerr)
		}
		return false
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.logger.Debug("session restored", "user", user.Username)
	return true
}

func (s *Session) reset() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}

// IsAuthenticated reports whether both token and user are present.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Token returns the in-memory bearer token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAdmin reports whether the signed-in user has admin privileges.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin
}

// TokenExpiry reads the exp claim of the token without verifying its
// signature. ok is false when there is no token or it carries no expiry.
func (s *Session) TokenExpiry() (exp time.Time, ok bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	date, err := parsed.Claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

func ignoreNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}
