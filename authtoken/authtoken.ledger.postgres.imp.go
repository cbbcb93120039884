// File: authtoken.ledger.postgres.imp.go

package authtoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// LedgerSchema is the DDL for the refresh token ledger. Applied by the
// deployment's migration step; exported so integration tests can create the
// table themselves.
const LedgerSchema = `
CREATE TABLE IF NOT EXISTS refresh_tokens (
	id         TEXT PRIMARY KEY,
	token      TEXT NOT NULL UNIQUE,
	subject_id UUID NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS refresh_tokens_subject_id_idx ON refresh_tokens (subject_id);
`

// PostgresTokenLedger implements TokenLedger using PostgreSQL.
type PostgresTokenLedger struct {
	pool *pgxpool.Pool
}

// NewPostgresTokenLedger creates a Postgres-backed token ledger from an
// already-connected pool.
func NewPostgresTokenLedger(pool *pgxpool.Pool) (*PostgresTokenLedger, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgx pool cannot be nil")
	}
	return &PostgresTokenLedger{pool: pool}, nil
}

// Insert records a newly issued refresh token.
func (l *PostgresTokenLedger) Insert(ctx context.Context, rec RefreshRecord) error {
	if l == nil || l.pool == nil {
		return ErrNotInitialized
	}

	id := rec.ID
	if id == "" {
		id = ulid.Make().String()
	}

	_, err := l.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (id, token, subject_id, expires_at)
		VALUES ($1, $2, $3, $4)
	`, id, rec.Token, rec.SubjectID, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// FindByToken returns the record for an exact token string.
func (l *PostgresTokenLedger) FindByToken(ctx context.Context, token string) (RefreshRecord, error) {
	if l == nil || l.pool == nil {
		return RefreshRecord{}, ErrNotInitialized
	}

	var rec RefreshRecord
	err := l.pool.QueryRow(ctx, `
		SELECT id, token, subject_id, expires_at
		FROM refresh_tokens
		WHERE token = $1
	`, token).Scan(&rec.ID, &rec.Token, &rec.SubjectID, &rec.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return RefreshRecord{}, ErrTokenNotFound
	}
	if err != nil {
		return RefreshRecord{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return rec, nil
}

// UpdateToken replaces a token string in place (rotation).
func (l *PostgresTokenLedger) UpdateToken(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) error {
	if l == nil || l.pool == nil {
		return ErrNotInitialized
	}

	tag, err := l.pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET token = $2, expires_at = $3
		WHERE token = $1
	`, oldToken, newToken, newExpiresAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// DeleteExpiredForSubject removes the subject's expired rows.
func (l *PostgresTokenLedger) DeleteExpiredForSubject(ctx context.Context, subjectID uuid.UUID) error {
	if l == nil || l.pool == nil {
		return ErrNotInitialized
	}

	_, err := l.pool.Exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE subject_id = $1 AND expires_at < now()
	`, subjectID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteByToken removes the row(s) holding an exact token string.
func (l *PostgresTokenLedger) DeleteByToken(ctx context.Context, token string) error {
	if l == nil || l.pool == nil {
		return ErrNotInitialized
	}

	_, err := l.pool.Exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE token = $1
	`, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
