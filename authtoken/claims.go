package authtoken

import (
	"time"

	"github.com/google/uuid"
)

// TokenType represents the type of token (access or refresh).
type TokenType string

const (
	AccessToken  TokenType = "access"  // Access token type
	RefreshToken TokenType = "refresh" // Refresh token type
)

// Identity is the subject identity embedded in every signed token.
// It is immutable once minted.
type Identity struct {
	SubjectID uuid.UUID `json:"sub"`
	Email     string    `json:"eml"`
}

// Claims contains the decoded claims of an access or refresh token.
//
// Fields:
//   - ID: Unique token ID (JWT ID)
//   - Identity: Subject ID and email
//   - IssuedAt: Token issuance time
//   - ExpiresAt: Token expiration time
//   - TokenType: Token type (access or refresh)
type Claims struct {
	ID        uuid.UUID `json:"jti"`
	Identity  Identity  `json:"idn"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	TokenType TokenType `json:"typ"`
}

// TokenPair is the result of issuing or rotating a session: a short-lived
// access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// RefreshRecord is a durable ledger entry for an issued refresh token.
// Superseded rows are updated in place on rotation; stale rows are cleaned
// opportunistically at issue time.
type RefreshRecord struct {
	ID        string
	Token     string
	SubjectID uuid.UUID
	ExpiresAt time.Time
}
