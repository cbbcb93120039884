// File: authtoken.ledger.inmemory.imp.go

package authtoken

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// MemoryTokenLedger is an in-memory implementation of TokenLedger.
// Suitable for development and tests.
type MemoryTokenLedger struct {
	mu      sync.RWMutex
	records map[string]RefreshRecord // keyed by token string
}

// NewMemoryTokenLedger creates a new in-memory token ledger.
func NewMemoryTokenLedger() *MemoryTokenLedger {
	return &MemoryTokenLedger{
		records: make(map[string]RefreshRecord),
	}
}

// Insert records a newly issued refresh token.
func (m *MemoryTokenLedger) Insert(ctx context.Context, rec RefreshRecord) error {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.Token] = rec
	return nil
}

// FindByToken returns the record for an exact token string.
func (m *MemoryTokenLedger) FindByToken(ctx context.Context, token string) (RefreshRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, exists := m.records[token]
	if !exists {
		return RefreshRecord{}, ErrTokenNotFound
	}
	return rec, nil
}

// UpdateToken replaces a token string in place (rotation).
func (m *MemoryTokenLedger) UpdateToken(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.records[oldToken]
	if !exists {
		return ErrTokenNotFound
	}

	delete(m.records, oldToken)
	rec.Token = newToken
	rec.ExpiresAt = newExpiresAt
	m.records[newToken] = rec
	return nil
}

// DeleteExpiredForSubject removes the subject's expired rows.
func (m *MemoryTokenLedger) DeleteExpiredForSubject(ctx context.Context, subjectID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for token, rec := range m.records {
		if rec.SubjectID == subjectID && now.After(rec.ExpiresAt) {
			delete(m.records, token)
		}
	}
	return nil
}

// DeleteByToken removes the row holding an exact token string.
func (m *MemoryTokenLedger) DeleteByToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, token)
	return nil
}

// Len returns the number of stored records. Useful for tests.
func (m *MemoryTokenLedger) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records)
}
