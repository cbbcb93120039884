package authtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenCodec creates and verifies signed, time-bound tokens carrying a
// subject identity claim. Implementations are pure functions of the
// configured secrets and the clock; they never touch a store.
type TokenCodec interface {
	// IssueAccess signs a new short-lived access token for the identity.
	IssueAccess(identity Identity) (string, Claims, error)

	// IssueRefresh signs a new long-lived refresh token for the identity.
	IssueRefresh(identity Identity) (string, Claims, error)

	// Verify validates a token of the given kind and returns its claims.
	// It distinguishes ErrTokenExpired (signature valid, past expiry) from
	// ErrInvalidSignature (tampered, wrong key, wrong type).
	Verify(tokenString string, kind TokenType) (Claims, error)

	// Decode parses a token without verifying its signature. Used only to
	// recover the expiry of a token being blacklisted.
	Decode(tokenString string) (Claims, error)
}

// JWTCodec implements TokenCodec using HS256-signed JWTs with distinct
// secrets for the access and refresh namespaces.
type JWTCodec struct {
	config Config
}

// NewJWTCodec creates a codec from the given configuration.
func NewJWTCodec(config Config) (*JWTCodec, error) {
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &JWTCodec{config: config}, nil
}

// IssueAccess signs a new access token.
func (c *JWTCodec) IssueAccess(identity Identity) (string, Claims, error) {
	return c.issue(identity, AccessToken, c.config.AccessToken.Secret, c.config.AccessToken.TTL)
}

// IssueRefresh signs a new refresh token.
func (c *JWTCodec) IssueRefresh(identity Identity) (string, Claims, error) {
	return c.issue(identity, RefreshToken, c.config.RefreshToken.Secret, c.config.RefreshToken.TTL)
}

func (c *JWTCodec) issue(identity Identity, kind TokenType, secret string, ttl time.Duration) (string, Claims, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to generate token ID: %w", err)
	}

	now := time.Now()
	claims := Claims{
		ID:        tokenID,
		Identity:  identity,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
		TokenType: kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, toMapClaims(claims))

	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return signedToken, claims, nil
}

// Verify validates a token of the given kind and returns its claims.
func (c *JWTCodec) Verify(tokenString string, kind TokenType) (Claims, error) {
	var secret string
	switch kind {
	case AccessToken:
		secret = c.config.AccessToken.Secret
	case RefreshToken:
		secret = c.config.RefreshToken.Secret
	default:
		return Claims{}, fmt.Errorf("invalid token type: %s", kind)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Only HMAC is accepted; this rejects none-alg and RSA-for-HMAC
		// confusion attempts before any claim is trusted.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, fmt.Errorf("%w: %s token", ErrTokenExpired, kind)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("%w: invalid claims", ErrInvalidSignature)
	}

	claims, err := mapToClaims(mapClaims)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if claims.TokenType != kind {
		return Claims{}, fmt.Errorf("%w: expected %s token, got %s", ErrInvalidSignature, kind, claims.TokenType)
	}

	return claims, nil
}

// Decode parses a token without verifying its signature.
func (c *JWTCodec) Decode(tokenString string) (Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("%w: invalid claims", ErrInvalidSignature)
	}

	claims, err := mapToClaims(mapClaims)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return claims, nil
}
