// ABOUTME: Persistent key/value storage for the client session
// ABOUTME: Defines the Store contract and opens the configured backend

package storage

import (
	"context"
	"errors"
	"fmt"
)

// Keys under which the session is persisted
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a small string key/value store. Operations are synchronous.
// Remove of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend named by kind rooted at dir.
func Open(ctx context.Context, kind, dir string) (Store, error) {
	switch kind {
	case BackendFile, "":
		return NewFileStore(dir), nil
	case BackendSQLite:
		return OpenSQLite(ctx, dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
