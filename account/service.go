package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Rionxx/subscription-management-app/authtoken"
)

// Service implements the authentication flows: register, login, refresh and
// logout. Route handlers call it after their own input validation; it maps
// cleanly onto 201/200 on success and 401 on ErrInvalidCredentials or any
// authtoken validity error.
type Service struct {
	users    UserStore
	sessions *authtoken.SessionManager
	logger   *slog.Logger
}

// NewService constructs a Service. A nil logger falls back to slog.Default().
func NewService(users UserStore, sessions *authtoken.SessionManager, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user store cannot be nil")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, sessions: sessions, logger: logger}, nil
}

// Register creates a new account and issues its first token pair.
func (s *Service) Register(ctx context.Context, email, password, name string) (User, authtoken.TokenPair, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, authtoken.TokenPair{}, err
	}

	user := User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return User{}, authtoken.TokenPair{}, err
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return User{}, authtoken.TokenPair{}, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, pair, nil
}

// Login checks the credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (User, authtoken.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, authtoken.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, authtoken.TokenPair{}, err
	}

	if !ComparePassword(user.PasswordHash, password) {
		return User{}, authtoken.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return User{}, authtoken.TokenPair{}, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new pair and re-resolves the user
// record for the response body.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (User, authtoken.TokenPair, error) {
	pair, err := s.sessions.Rotate(ctx, refreshToken)
	if err != nil {
		return User{}, authtoken.TokenPair{}, err
	}

	claims, err := s.sessions.VerifyAccess(ctx, pair.AccessToken)
	if err != nil {
		return User{}, authtoken.TokenPair{}, err
	}

	user, err := s.users.FindByID(ctx, claims.Identity.SubjectID)
	if err != nil {
		return User{}, authtoken.TokenPair{}, err
	}

	return user, pair, nil
}

// Logout revokes the presented tokens. It never fails: the client's session
// state must always end up cleared, and the response must not leak whether
// anything was actually revoked.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) {
	s.sessions.Revoke(ctx, accessToken, refreshToken)
}

// Authenticate is the request gate for protected routes: blacklist check
// first, then signature verification, then a user-exists check. Returns the
// authenticated user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (User, error) {
	claims, err := s.sessions.VerifyAccess(ctx, accessToken)
	if err != nil {
		return User{}, err
	}

	user, err := s.users.FindByID(ctx, claims.Identity.SubjectID)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) issue(ctx context.Context, user User) (authtoken.TokenPair, error) {
	return s.sessions.Issue(ctx, authtoken.Identity{
		SubjectID: user.ID,
		Email:     user.Email,
	})
}
