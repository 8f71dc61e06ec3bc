// ABOUTME: Token source reading the bearer token from persistent storage
// ABOUTME: Re-read on every request so a logout in another process takes effect

package session

import (
	"context"
	"errors"

	"github.com/materialhub/materialhub-cli/internal/storage"
)

// TokenFunc adapts a function to the client's token source contract.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StoredToken returns a token source backed by the token key of store. A
// missing key yields an empty token.
func StoredToken(store storage.Store) TokenFunc {
	return func(ctx context.Context) (string, error) {
		token, err := store.Get(ctx, storage.KeyToken)
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return token, err
	}
}
