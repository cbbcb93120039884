// File: authtoken.sessionstore.redis.imp.go

package authtoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// compareAndSwapScript swaps the value under a key only if it still holds
// the expected old value. Runs server-side so the check and the write are
// atomic.
var compareAndSwapScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "EX", ARGV[3])
	return 1
end
return 0
`)

// RedisSessionStore implements SessionStore on a Redis backend.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store and verifies the
// connection.
func NewRedisSessionStore(client *redis.Client) (*RedisSessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisSessionStore{client: client}, nil
}

// Put stores a value under key with the given TTL.
func (r *RedisSessionStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if r == nil || r.client == nil {
		return ErrNotInitialized
	}
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns the value under key.
func (r *RedisSessionStore) Get(ctx context.Context, key string) (string, error) {
	if r == nil || r.client == nil {
		return "", ErrNotInitialized
	}

	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return value, nil
}

// Delete removes the key. Absent keys are not an error.
func (r *RedisSessionStore) Delete(ctx context.Context, key string) error {
	if r == nil || r.client == nil {
		return ErrNotInitialized
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// CompareAndSwap atomically replaces old with new under key.
func (r *RedisSessionStore) CompareAndSwap(ctx context.Context, key, old, new string, ttl time.Duration) error {
	if r == nil || r.client == nil {
		return ErrNotInitialized
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	ttlSeconds := int64(ttl / time.Second)
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	swapped, err := compareAndSwapScript.Run(ctx, r.client, []string{key}, old, new, ttlSeconds).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if swapped == 0 {
		return ErrTokenMismatch
	}
	return nil
}
