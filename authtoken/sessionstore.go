package authtoken

import (
	"context"
	"time"
)

// SessionStore is a thin capability over a key-value backend with per-key
// expiry. It carries no business logic; the SessionManager owns all keys
// written through it (session pointers and blacklist entries).
//
// An adapter whose backend connection was never established must fail every
// call with ErrNotInitialized, never silently no-op.
type SessionStore interface {
	// Put stores a value under key with the given TTL.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value under key, or ErrTokenNotFound if the key is
	// absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// CompareAndSwap atomically replaces the value under key with new,
	// but only if the stored value still equals old. It returns
	// ErrTokenMismatch when the stored value has moved on (or the key is
	// gone), which makes refresh rotation atomic: of two concurrent
	// rotations only one swap can win.
	CompareAndSwap(ctx context.Context, key, old, new string, ttl time.Duration) error
}
