package authtoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// toMapClaims converts claims to jwt.MapClaims.
func toMapClaims(claims Claims) jwt.MapClaims {
	return jwt.MapClaims{
		"jti": claims.ID.String(),
		"sub": claims.Identity.SubjectID.String(),
		"eml": claims.Identity.Email,
		"iat": claims.IssuedAt.Unix(),
		"exp": claims.ExpiresAt.Unix(),
		"typ": string(claims.TokenType),
	}
}

// mapToClaims converts JWT claims back to Claims.
func mapToClaims(claims jwt.MapClaims) (Claims, error) {
	jti, ok := claims["jti"].(string)
	if !ok {
		return Claims{}, fmt.Errorf("missing jti claim")
	}
	tokenID, err := uuid.Parse(jti)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid token ID: %w", err)
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Claims{}, fmt.Errorf("missing sub claim")
	}
	subjectID, err := uuid.Parse(sub)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid subject ID: %w", err)
	}

	email, ok := claims["eml"].(string)
	if !ok {
		return Claims{}, fmt.Errorf("missing eml claim")
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return Claims{}, fmt.Errorf("invalid iat claim type")
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return Claims{}, fmt.Errorf("invalid exp claim type")
	}

	typ, ok := claims["typ"].(string)
	if !ok {
		return Claims{}, fmt.Errorf("missing typ claim")
	}

	return Claims{
		ID: tokenID,
		Identity: Identity{
			SubjectID: subjectID,
			Email:     email,
		},
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
		TokenType: TokenType(typ),
	}, nil
}

// sessionKey returns the cache key holding the current refresh token for a
// subject.
func sessionKey(subjectID uuid.UUID) string {
	return "session:" + subjectID.String()
}

// blacklistKey returns the cache key marking an access token as revoked.
func blacklistKey(token string) string {
	return "blacklist:" + token
}
