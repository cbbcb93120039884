package authtoken

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// SessionManager composes TokenCodec, SessionStore and TokenLedger into the
// issue / rotate / revoke / blacklist-check operations.
//
// The ledger (durable) and the cache (volatile) are written as two separate
// calls with no cross-store transaction. The cache is the authoritative gate
// for "is this the current refresh token": rotation replaces the cached value
// with a compare-and-swap, so of two concurrent rotations presenting the same
// token only one swap can win and the loser's mint is discarded. The ledger
// is the audit and recovery record.
//
// The manager exclusively owns the write path to both stores. It holds no
// mutable state between calls; many instances can run behind a load balancer.
type SessionManager struct {
	codec  TokenCodec
	store  SessionStore
	ledger TokenLedger
	logger *slog.Logger
}

// NewSessionManager constructs a SessionManager with explicit injected
// dependencies. A nil logger falls back to slog.Default().
func NewSessionManager(codec TokenCodec, store SessionStore, ledger TokenLedger, logger *slog.Logger) (*SessionManager, error) {
	if codec == nil {
		return nil, fmt.Errorf("token codec cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}
	if ledger == nil {
		return nil, fmt.Errorf("token ledger cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionManager{
		codec:  codec,
		store:  store,
		ledger: ledger,
		logger: logger,
	}, nil
}

// Issue mints a new access/refresh pair for the identity, persists the
// refresh token to the ledger and the cache, and returns the pair.
//
// If either persistence write fails, the whole operation fails and the
// minted pair is discarded: an unpersisted refresh token could never be
// validated later, so returning it would only defer the failure to the
// client's next refresh.
func (m *SessionManager) Issue(ctx context.Context, identity Identity) (TokenPair, error) {
	accessToken, accessClaims, err := m.codec.IssueAccess(identity)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, refreshClaims, err := m.codec.IssueRefresh(identity)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	// Opportunistic cleanup of this subject's stale rows. Best effort.
	if err := m.ledger.DeleteExpiredForSubject(ctx, identity.SubjectID); err != nil {
		m.logger.Warn("failed to purge expired refresh tokens",
			"subject_id", identity.SubjectID, "error", err)
	}

	rec := RefreshRecord{
		Token:     refreshToken,
		SubjectID: identity.SubjectID,
		ExpiresAt: refreshClaims.ExpiresAt,
	}
	if err := m.ledger.Insert(ctx, rec); err != nil {
		return TokenPair{}, fmt.Errorf("failed to record refresh token: %w", err)
	}

	// Last-writer-wins: a second Issue for the same subject overwrites the
	// session pointer and orphans the first refresh token.
	ttl := time.Until(refreshClaims.ExpiresAt)
	if err := m.store.Put(ctx, sessionKey(identity.SubjectID), refreshToken, ttl); err != nil {
		return TokenPair{}, fmt.Errorf("failed to cache refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessClaims.ExpiresAt,
		RefreshExpiresAt: refreshClaims.ExpiresAt,
	}, nil
}

// Rotate exchanges a presented refresh token for a fresh access/refresh
// pair, invalidating the presented token.
//
// Validation runs against three independent clocks and stores in order:
// the token's own signature and expiry, the ledger row (which may have been
// expired early, taking precedence over a still-valid signature), and the
// cache entry, which must hold exactly the presented token. The cache check
// is the reuse gate: once a rotation has moved the pointer on, every
// ancestor token fails here regardless of its own validity.
func (m *SessionManager) Rotate(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := m.codec.Verify(refreshToken, RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	rec, err := m.ledger.FindByToken(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if time.Now().After(rec.ExpiresAt) {
		return TokenPair{}, fmt.Errorf("%w: ledger record expired", ErrTokenExpired)
	}

	key := sessionKey(claims.Identity.SubjectID)
	current, err := m.store.Get(ctx, key)
	if err != nil {
		return TokenPair{}, err
	}
	if current != refreshToken {
		return TokenPair{}, fmt.Errorf("%w: refresh token superseded", ErrTokenMismatch)
	}

	accessToken, accessClaims, err := m.codec.IssueAccess(claims.Identity)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}
	newRefreshToken, newRefreshClaims, err := m.codec.IssueRefresh(claims.Identity)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := m.ledger.UpdateToken(ctx, refreshToken, newRefreshToken, newRefreshClaims.ExpiresAt); err != nil {
		return TokenPair{}, fmt.Errorf("failed to rotate ledger record: %w", err)
	}

	// Atomic swap: if a concurrent rotation already moved the pointer the
	// swap loses and this mint is discarded.
	ttl := time.Until(newRefreshClaims.ExpiresAt)
	if err := m.store.CompareAndSwap(ctx, key, refreshToken, newRefreshToken, ttl); err != nil {
		if errors.Is(err, ErrTokenMismatch) {
			return TokenPair{}, fmt.Errorf("%w: concurrent rotation won", ErrTokenMismatch)
		}
		return TokenPair{}, fmt.Errorf("failed to rotate cached refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     newRefreshToken,
		AccessExpiresAt:  accessClaims.ExpiresAt,
		RefreshExpiresAt: newRefreshClaims.ExpiresAt,
	}, nil
}

// Revoke invalidates the presented tokens: the access token is blacklisted
// for its remaining lifetime, the refresh token is removed from ledger and
// cache. Either argument may be empty.
//
// Revoke never fails outwardly. Internal failures are swallowed and logged
// so that logout's response cannot distinguish "already logged out" from
// "server error", and the client always clears its session state.
func (m *SessionManager) Revoke(ctx context.Context, accessToken, refreshToken string) {
	if accessToken != "" {
		m.blacklistAccessToken(ctx, accessToken)
	}

	if refreshToken != "" {
		m.dropRefreshToken(ctx, refreshToken)
	}
}

// blacklistAccessToken writes a blacklist entry with TTL equal to the
// token's remaining lifetime. Undecodable or already-expired tokens are
// skipped silently; by the time the entry would matter the token is dead
// anyway.
func (m *SessionManager) blacklistAccessToken(ctx context.Context, accessToken string) {
	claims, err := m.codec.Decode(accessToken)
	if err != nil {
		m.logger.Warn("failed to decode access token for blacklisting", "error", err)
		return
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return
	}

	if err := m.store.Put(ctx, blacklistKey(accessToken), "revoked", ttl); err != nil {
		m.logger.Error("failed to blacklist access token",
			"subject_id", claims.Identity.SubjectID, "error", err)
	}
}

// dropRefreshToken removes a refresh token from both stores.
func (m *SessionManager) dropRefreshToken(ctx context.Context, refreshToken string) {
	claims, err := m.codec.Verify(refreshToken, RefreshToken)
	if err != nil {
		m.logger.Warn("failed to verify refresh token for revocation", "error", err)
		return
	}

	if err := m.ledger.DeleteByToken(ctx, refreshToken); err != nil {
		m.logger.Error("failed to delete refresh token from ledger",
			"subject_id", claims.Identity.SubjectID, "error", err)
	}

	if err := m.store.Delete(ctx, sessionKey(claims.Identity.SubjectID)); err != nil {
		m.logger.Error("failed to delete session cache entry",
			"subject_id", claims.Identity.SubjectID, "error", err)
	}
}

// IsRevoked reports whether an access token has been blacklisted. The
// request-authentication gate must consult it before trusting signature
// verification, since a blacklisted token is still signature-valid.
//
// A store failure is returned as an error so the gate can refuse the
// request instead of failing open.
func (m *SessionManager) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	_, err := m.store.Get(ctx, blacklistKey(accessToken))
	if errors.Is(err, ErrTokenNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// VerifyAccess is the full authentication-gate check for an access token:
// blacklist first, then signature and expiry.
func (m *SessionManager) VerifyAccess(ctx context.Context, accessToken string) (Claims, error) {
	revoked, err := m.IsRevoked(ctx, accessToken)
	if err != nil {
		return Claims{}, err
	}
	if revoked {
		return Claims{}, fmt.Errorf("%w: token revoked", ErrTokenNotFound)
	}

	return m.codec.Verify(accessToken, AccessToken)
}
