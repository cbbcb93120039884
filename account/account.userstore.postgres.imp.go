// File: account.userstore.postgres.imp.go

package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserSchema is the DDL for the users table. Exported so integration tests
// can create the table themselves.
const UserSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresUserStore implements UserStore using PostgreSQL.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore creates a Postgres-backed user store from an
// already-connected pool.
func NewPostgresUserStore(pool *pgxpool.Pool) (*PostgresUserStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgx pool cannot be nil")
	}
	return &PostgresUserStore{pool: pool}, nil
}

// Create inserts a new user.
func (s *PostgresUserStore) Create(ctx context.Context, user User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail returns the user with the given email.
func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.findBy(ctx, "email = $1", email)
}

// FindByID returns the user with the given ID.
func (s *PostgresUserStore) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	return s.findBy(ctx, "id = $1", id)
}

func (s *PostgresUserStore) findBy(ctx context.Context, where string, arg any) (User, error) {
	var user User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE `+where,
		arg,
	).Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
