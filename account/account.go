// Package account implements the user-facing authentication flows of the
// subscription management backend: registration, login, token refresh and
// logout. Token lifecycle work is delegated to the authtoken package; this
// package owns user records and credential checks.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no user matches the given email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login failure. Unknown email and
	// wrong password produce the same error so the response cannot be used
	// to probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is an account record. PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserStore abstracts persistence for user records.
type UserStore interface {
	// Create inserts a new user. Returns ErrEmailTaken if the email is
	// already registered.
	Create(ctx context.Context, user User) error

	// FindByEmail returns the user with the given email, or ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (User, error)

	// FindByID returns the user with the given ID, or ErrUserNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
}
