// File: account.userstore.inmemory.imp.go

package account

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryUserStore is an in-memory implementation of UserStore for
// development and tests.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]User
	byEmail map[string]uuid.UUID
}

// NewMemoryUserStore creates a new in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[uuid.UUID]User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create inserts a new user.
func (m *MemoryUserStore) Create(ctx context.Context, user User) error {
	email := strings.ToLower(user.Email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[email]; exists {
		return ErrEmailTaken
	}
	m.byID[user.ID] = user
	m.byEmail[email] = user.ID
	return nil
}

// FindByEmail returns the user with the given email.
func (m *MemoryUserStore) FindByEmail(ctx context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byEmail[strings.ToLower(email)]
	if !exists {
		return User{}, ErrUserNotFound
	}
	return m.byID[id], nil
}

// FindByID returns the user with the given ID.
func (m *MemoryUserStore) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.byID[id]
	if !exists {
		return User{}, ErrUserNotFound
	}
	return user, nil
}
