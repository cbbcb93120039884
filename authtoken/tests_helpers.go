// tests_helpers.go

package authtoken

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var (
	testAccessSecret  = "test-access-secret-32-bytes-long-0000000"
	testRefreshSecret = "test-refresh-secret-32-bytes-long-000000"
)

func testConfig() Config {
	return DefaultConfig(testAccessSecret, testRefreshSecret)
}

func testIdentity() Identity {
	return Identity{
		SubjectID: uuid.New(),
		Email:     "user@example.com",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testManager builds a SessionManager on in-memory stores. The returned
// store and ledger are the same instances the manager writes through, so
// tests can inspect them directly.
func testManager(t *testing.T) (*SessionManager, *MemorySessionStore, *MemoryTokenLedger) {
	t.Helper()

	codec, err := NewJWTCodec(testConfig())
	require.NoError(t, err)

	store := NewMemorySessionStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	ledger := NewMemoryTokenLedger()

	manager, err := NewSessionManager(codec, store, ledger, testLogger())
	require.NoError(t, err)

	return manager, store, ledger
}

func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:6379",
		DB:   1,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		t.Skip("Redis not available, skipping test")
	}
	return client
}

func testPostgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, LedgerSchema)
	require.NoError(t, err)

	return pool
}
