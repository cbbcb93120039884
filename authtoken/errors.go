package authtoken

import "errors"

var (
	// ErrInvalidSignature is returned when a token is tampered with, signed
	// with the wrong key, uses an unexpected algorithm, or carries the wrong
	// token type.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrTokenExpired is returned when a token's signature is valid but the
	// token is past its expiry, either by its embedded exp claim or by the
	// ledger row's expires_at.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenNotFound is returned when a presented token is unknown to the
	// ledger or the cache: never issued, already revoked, or superseded.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenMismatch is returned when the cache holds a different current
	// token for the subject than the one presented. A rotated-away refresh
	// token presented again dies with this error.
	ErrTokenMismatch = errors.New("token mismatch")

	// ErrStoreUnavailable is returned when a backing store call fails for
	// infrastructure reasons (connection refused, timeout).
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotInitialized is returned when a store adapter is used before its
	// backend client was provided. Adapters fail fast rather than no-op.
	ErrNotInitialized = errors.New("store not initialized")
)
