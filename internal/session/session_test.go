// ABOUTME: Tests for the session lifecycle
// ABOUTME: Covers restore, clearing, corrupt state and token expiry

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/materialhub/materialhub-cli/internal/logger"
	"github.com/materialhub/materialhub-cli/internal/models"
	"github.com/materialhub/materialhub-cli/internal/storage"
)

func authFor(name string, admin bool) *models.AuthResponse {
	return &models.AuthResponse{
		AccessToken: "tok-" + name,
		TokenType:   "bearer",
		User:        models.User{ID: 7, Username: name, Email: name + "@example.com", IsActive: true, IsAdmin: admin},
	}
}

// failingStore wraps a store and fails the configured operations.
type failingStore struct {
	storage.Store
	getErr    error
	setErr    error
	removeErr error
}

func (f *failingStore) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func (f *failingStore) Remove(ctx context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	return f.Store.Remove(ctx, key)
}

func TestSetAuthThenInitAuthRestores(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	require.NoError(t, New(store, logger.Discard()).SetAuth(ctx, authFor("alice", true)))

	fresh := New(store, logger.Discard())
	require.True(t, fresh.InitAuth(ctx))
	assert.True(t, fresh.IsAuthenticated())
	assert.Equal(t, "tok-alice", fresh.Token())
	assert.Equal(t, "alice", fresh.User().Username)
	assert.True(t, fresh.IsAdmin())
}

func TestClearAuthThenInitAuthIsUnauthenticated(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := New(store, logger.Discard())

	require.NoError(t, s.SetAuth(ctx, authFor("bob", false)))
	require.NoError(t, s.ClearAuth(ctx))
	assert.False(t, s.IsAuthenticated())

	fresh := New(store, logger.Discard())
	assert.False(t, fresh.InitAuth(ctx))
	assert.False(t, fresh.IsAuthenticated())

	_, err := store.Get(ctx, storage.KeyToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(ctx, storage.KeyUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInitAuthWithCorruptUserClearsSession(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyToken, "tok"))
	require.NoError(t, store.Set(ctx, storage.KeyUser, "{not json"))

	s := New(store, logger.Discard())
	assert.NotPanics(t, func() {
		assert.False(t, s.InitAuth(ctx))
	})
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())

	_, err := store.Get(ctx, storage.KeyToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInitAuthWithHalfSessionClears(t *testing.T) {
	tests := map[string]map[string]string{
		"token only":  {storage.KeyToken: "tok"},
		"user only":   {storage.KeyUser: `{"id":1,"username":"x"}`},
		"empty token": {storage.KeyToken: "", storage.KeyUser: `{"id":1,"username":"x"}`},
	}

	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemoryStore()
			for k, v := range values {
				require.NoError(t, store.Set(ctx, k, v))
			}

			s := New(store, logger.Discard())
			assert.False(t, s.InitAuth(ctx))
			assert.False(t, s.IsAuthenticated())

			for k := range values {
				_, err := store.Get(ctx, k)
				assert.ErrorIs(t, err, storage.ErrNotFound, "key %s", k)
			}
		})
	}
}

func TestInitAuthWithUnreadableStore(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: storage.NewMemoryStore(), getErr: errors.New("disk gone")}

	s := New(store, logger.Discard())
	assert.False(t, s.InitAuth(ctx))
	assert.False(t, s.IsAuthenticated())
}

func TestInitAuthEmptyStore(t *testing.T) {
	s := New(storage.NewMemoryStore(), logger.Discard())
	assert.False(t, s.InitAuth(context.Background()))
}

func TestSetAuthReportsPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("read-only")
	s := New(&failingStore{Store: storage.NewMemoryStore(), setErr: boom}, logger.Discard())

	err := s.SetAuth(ctx, authFor("carol", false))
	assert.ErrorIs(t, err, boom)
	// memory is still updated
	assert.True(t, s.IsAuthenticated())
}

func TestSetAuthRejectsNil(t *testing.T) {
	s := New(storage.NewMemoryStore(), logger.Discard())
	assert.Error(t, s.SetAuth(context.Background(), nil))
}

func TestClearAuthJoinsErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("locked")
	s := New(&failingStore{Store: storage.NewMemoryStore(), removeErr: boom}, logger.Discard())
	require.NoError(t, s.SetAuth(ctx, authFor("dave", false)))

	err := s.ClearAuth(ctx)
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.IsAuthenticated())
}

func TestUserReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore(), logger.Discard())
	require.NoError(t, s.SetAuth(ctx, authFor("erin", false)))

	u := s.User()
	u.IsAdmin = true
	assert.False(t, s.IsAdmin())
}

func TestSetUserKeepsToken(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := New(store, logger.Discard())

	// no session: ignored
	require.NoError(t, s.SetUser(ctx, models.User{ID: 1, Username: "ghost"}))
	assert.Nil(t, s.User())

	require.NoError(t, s.SetAuth(ctx, authFor("frank", false)))
	require.NoError(t, s.SetUser(ctx, models.User{ID: 7, Username: "frank", IsAdmin: true}))

	fresh := New(store, logger.Discard())
	require.True(t, fresh.InitAuth(ctx))
	assert.True(t, fresh.IsAdmin())
	assert.Equal(t, "tok-frank", fresh.Token())
}

func TestTokenExpiry(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	}).SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	s := New(storage.NewMemoryStore(), logger.Discard())
	_, ok := s.TokenExpiry()
	assert.False(t, ok)

	auth := authFor("alice", false)
	auth.AccessToken = signed
	require.NoError(t, s.SetAuth(ctx, auth))

	got, ok := s.TokenExpiry()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
}

func TestTokenExpiryOpaqueToken(t *testing.T) {
	s := New(storage.NewMemoryStore(), logger.Discard())
	require.NoError(t, s.SetAuth(context.Background(), authFor("opaque", false)))

	_, ok := s.TokenExpiry()
	assert.False(t, ok)
}

func TestStoredTokenReadsEveryCall(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	src := StoredToken(store)

	tok, err := src.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.Set(ctx, storage.KeyToken, "abc"))
	tok, err = src.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}

func TestStoredTokenPropagatesErrors(t *testing.T) {
	boom := errors.New("io")
	src := StoredToken(&failingStore{Store: storage.NewMemoryStore(), getErr: boom})

	_, err := src.Token(context.Background())
	assert.ErrorIs(t, err, boom)
}
