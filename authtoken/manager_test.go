// manager_test.go

package authtoken

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns Pair And Persists Refresh Token", func(t *testing.T) {
		manager, store, ledger := testManager(t)
		identity := testIdentity()

		pair, err := manager.Issue(ctx, identity)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

		rec, err := ledger.FindByToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, identity.SubjectID, rec.SubjectID)
		assert.WithinDuration(t, pair.RefreshExpiresAt, rec.ExpiresAt, time.Second)

		cached, err := store.Get(ctx, sessionKey(identity.SubjectID))
		require.NoError(t, err)
		assert.Equal(t, pair.RefreshToken, cached)
	})

	t.Run("Second Issue Overwrites Session Pointer", func(t *testing.T) {
		manager, store, _ := testManager(t)
		identity := testIdentity()

		first, err := manager.Issue(ctx, identity)
		require.NoError(t, err)
		second, err := manager.Issue(ctx, identity)
		require.NoError(t, err)

		cached, err := store.Get(ctx, sessionKey(identity.SubjectID))
		require.NoError(t, err)
		assert.Equal(t, second.RefreshToken, cached)

		// The first refresh token is orphaned: still a live ledger row, but
		// the cache gate rejects it.
		_, err = manager.Rotate(ctx, first.RefreshToken)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenMismatch)
	})

	t.Run("Issue Fails When Cache Write Fails", func(t *testing.T) {
		codec, err := NewJWTCodec(testConfig())
		require.NoError(t, err)

		manager, err := NewSessionManager(codec, &RedisSessionStore{}, NewMemoryTokenLedger(), testLogger())
		require.NoError(t, err)

		_, err = manager.Issue(ctx, testIdentity())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotInitialized)
	})
}

func TestRotate(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns Fresh Pair", func(t *testing.T) {
		manager, store, ledger := testManager(t)
		identity := testIdentity()

		pair, err := manager.Issue(ctx, identity)
		require.NoError(t, err)

		rotated, err := manager.Rotate(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
		assert.NotEqual(t, pair.AccessToken, rotated.AccessToken)

		// Ledger row was updated in place, cache pointer moved on.
		_, err = ledger.FindByToken(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenNotFound)
		rec, err := ledger.FindByToken(ctx, rotated.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, identity.SubjectID, rec.SubjectID)

		cached, err := store.Get(ctx, sessionKey(identity.SubjectID))
		require.NoError(t, err)
		assert.Equal(t, rotated.RefreshToken, cached)
	})

	t.Run("Replay Of Rotated Token Rejected", func(t *testing.T) {
		manager, _, _ := testManager(t)

		pair, err := manager.Issue(ctx, testIdentity())
		require.NoError(t, err)

		_, err = manager.Rotate(ctx, pair.RefreshToken)
		require.NoError(t, err)

		_, err = manager.Rotate(ctx, pair.RefreshToken)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("Unknown Token Rejected", func(t *testing.T) {
		manager, _, _ := testManager(t)

		codec, err := NewJWTCodec(testConfig())
		require.NoError(t, err)
		foreign, _, err := codec.IssueRefresh(testIdentity())
		require.NoError(t, err)

		_, err = manager.Rotate(ctx, foreign)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("Forged Token Rejected", func(t *testing.T) {
		manager, _, _ := testManager(t)

		_, err := manager.Rotate(ctx, "garbage")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("Expired Signature Rejected", func(t *testing.T) {
		manager, _, _ := testManager(t)

		expired := signedTestToken(t, testRefreshSecret, RefreshToken, -time.Minute)
		_, err := manager.Rotate(ctx, expired)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("Ledger Expiry Takes Precedence Over Valid Signature", func(t *testing.T) {
		manager, _, ledger := testManager(t)
		identity := testIdentity()

		pair, err := manager.Issue(ctx, identity)
		require.NoError(t, err)

		// Expire the row early, as an operator would to force re-login.
		err = ledger.UpdateToken(ctx, pair.RefreshToken, pair.RefreshToken, time.Now().Add(-time.Minute))
		require.NoError(t, err)

		_, err = manager.Rotate(ctx, pair.RefreshToken)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("Blacklists Access Token", func(t *testing.T) {
		manager, _, _ := testManager(t)

		pair, err := manager.Issue(ctx, testIdentity())
		require.NoError(t, err)

		revoked, err := manager.IsRevoked(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.False(t, revoked)

		manager.Revoke(ctx, pair.AccessToken, "")

		revoked, err = manager.IsRevoked(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("Removes Refresh Token From Both Stores", func(t *testing.T) {
		manager, store, ledger := testManager(t)
		identity := testIdentity()

		pair, err := manager.Issue(ctx, identity)
		require.NoError(t, err)

		manager.Revoke(ctx, "", pair.RefreshToken)

		_, err = ledger.FindByToken(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenNotFound)
		_, err = store.Get(ctx, sessionKey(identity.SubjectID))
		assert.ErrorIs(t, err, ErrTokenNotFound)

		_, err = manager.Rotate(ctx, pair.RefreshToken)
		require.Error(t, err)
	})

	t.Run("Garbage Tokens Swallowed", func(t *testing.T) {
		manager, _, _ := testManager(t)

		assert.NotPanics(t, func() {
			manager.Revoke(ctx, "garbage", "also-garbage")
			manager.Revoke(ctx, "", "")
		})
	})

	t.Run("Expired Access Token Not Blacklisted", func(t *testing.T) {
		manager, store, _ := testManager(t)

		expired := signedTestToken(t, testAccessSecret, AccessToken, -time.Minute)
		manager.Revoke(ctx, expired, "")

		// No entry written: the token is already dead on its own clock.
		_, err := store.Get(ctx, blacklistKey(expired))
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("Store Failures Swallowed", func(t *testing.T) {
		codec, err := NewJWTCodec(testConfig())
		require.NoError(t, err)

		manager, err := NewSessionManager(codec, &RedisSessionStore{}, NewMemoryTokenLedger(), testLogger())
		require.NoError(t, err)

		pair, issueErr := testPairForRevoke(t)
		require.NoError(t, issueErr)

		assert.NotPanics(t, func() {
			manager.Revoke(ctx, pair.AccessToken, pair.RefreshToken)
		})
	})
}

func TestVerifyAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid Token Passes", func(t *testing.T) {
		manager, _, _ := testManager(t)
		identity := testIdentity()

		pair, err := manager.Issue(ctx, identity)
		require.NoError(t, err)

		claims, err := manager.VerifyAccess(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, identity, claims.Identity)
	})

	t.Run("Blacklisted Token Rejected Despite Valid Signature", func(t *testing.T) {
		manager, _, _ := testManager(t)

		pair, err := manager.Issue(ctx, testIdentity())
		require.NoError(t, err)

		manager.Revoke(ctx, pair.AccessToken, "")

		_, err = manager.VerifyAccess(ctx, pair.AccessToken)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("Gate Fails Closed On Store Failure", func(t *testing.T) {
		codec, err := NewJWTCodec(testConfig())
		require.NoError(t, err)

		manager, err := NewSessionManager(codec, &RedisSessionStore{}, NewMemoryTokenLedger(), testLogger())
		require.NoError(t, err)

		_, err = manager.VerifyAccess(ctx, "any-token")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotInitialized)
	})
}

// TestTokenLifecycleScenario walks the full lineage: issue, rotate, replay,
// rotate again, revoke, verify revocation.
func TestTokenLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	manager, _, _ := testManager(t)
	identity := testIdentity()

	pair1, err := manager.Issue(ctx, identity)
	require.NoError(t, err)

	pair2, err := manager.Rotate(ctx, pair1.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair1.RefreshToken, pair2.RefreshToken)

	// Ancestor replay rejected.
	_, err = manager.Rotate(ctx, pair1.RefreshToken)
	require.Error(t, err)

	// Latest token still rotates.
	pair3, err := manager.Rotate(ctx, pair2.RefreshToken)
	require.NoError(t, err)

	manager.Revoke(ctx, pair3.AccessToken, pair3.RefreshToken)

	revoked, err := manager.IsRevoked(ctx, pair3.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = manager.Rotate(ctx, pair3.RefreshToken)
	require.Error(t, err)
}

// testPairForRevoke mints a pair through a working manager so revoke can be
// exercised against a broken store.
func testPairForRevoke(t *testing.T) (TokenPair, error) {
	t.Helper()

	manager, _, _ := testManager(t)
	return manager.Issue(context.Background(), testIdentity())
}
