package authtoken

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenLedger is the durable record of issued refresh tokens, enabling audit
// and cleanup independent of the fast cache. Plain CRUD; no derived logic.
//
// The schema allows multiple rows per subject, though in practice one is
// current at a time; stale rows are cleaned opportunistically at issue time.
type TokenLedger interface {
	// Insert records a newly issued refresh token.
	Insert(ctx context.Context, rec RefreshRecord) error

	// FindByToken returns the record for an exact token string, or
	// ErrTokenNotFound.
	FindByToken(ctx context.Context, token string) (RefreshRecord, error)

	// UpdateToken replaces a token string in place with a new token and
	// expiry (rotation). Returns ErrTokenNotFound if no row matched.
	UpdateToken(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) error

	// DeleteExpiredForSubject removes the subject's rows whose expiry has
	// passed.
	DeleteExpiredForSubject(ctx context.Context, subjectID uuid.UUID) error

	// DeleteByToken removes the row(s) holding an exact token string.
	// Deleting an unknown token is not an error.
	DeleteByToken(ctx context.Context, token string) error
}
