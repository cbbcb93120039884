// File: authtoken.sessionstore.inmemory.imp.go

package authtoken

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// cacheEntry represents a stored value with its expiration time.
type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// MemorySessionStore is an in-memory implementation of SessionStore.
// Suitable for development, testing, or single-instance deployments.
type MemorySessionStore struct {
	mu              sync.RWMutex
	entries         map[string]cacheEntry
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
}

// NewMemorySessionStore creates a new in-memory session store.
// cleanupInterval determines how often expired entries are removed
// (default: 5 minutes).
func NewMemorySessionStore(cleanupInterval time.Duration) *MemorySessionStore {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	store := &MemorySessionStore{
		entries:         make(map[string]cacheEntry),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	// Start background cleanup
	go store.periodicCleanup()

	return store
}

// Put stores a value under key with the given TTL.
func (m *MemorySessionStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get returns the value under key.
func (m *MemorySessionStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[key]
	if !exists || time.Now().After(entry.expiresAt) {
		return "", ErrTokenNotFound
	}
	return entry.value, nil
}

// Delete removes the key. Absent keys are not an error.
func (m *MemorySessionStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// CompareAndSwap atomically replaces old with new under key.
func (m *MemorySessionStore) CompareAndSwap(ctx context.Context, key, old, new string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[key]
	if !exists || time.Now().After(entry.expiresAt) || entry.value != old {
		return ErrTokenMismatch
	}

	m.entries[key] = cacheEntry{
		value:     new,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// periodicCleanup runs background cleanup of expired entries.
func (m *MemorySessionStore) periodicCleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCleanup:
			return
		case <-ticker.C:
			m.mu.Lock()
			now := time.Now()
			for key, entry := range m.entries {
				if now.After(entry.expiresAt) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Close stops the background cleanup goroutine.
// Call this when shutting down the application.
func (m *MemorySessionStore) Close() error {
	m.cleanupOnce.Do(func() {
		close(m.stopCleanup)
	})
	return nil
}

// Len returns the number of live entries. Useful for monitoring and tests.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	now := time.Now()
	for _, entry := range m.entries {
		if now.Before(entry.expiresAt) {
			n++
		}
	}
	return n
}
