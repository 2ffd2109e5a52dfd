// Package auth implements the identity guard: password hashing,
// session tokens and the middleware that resolves a session cookie to
// a user id. Every protected request passes through here before any
// store access.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// SessionStore is the persistence surface the auth service needs.
type SessionStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	SessionUserID(ctx context.Context, token string) (int64, error)
	DeleteSession(ctx context.Context, token string) error
}

type Service struct {
	store      SessionStore
	sessionTTL time.Duration
	logger     *log.Logger
}

func NewService(store SessionStore, sessionTTL time.Duration, logger *log.Logger) *Service {
	return &Service{
		store:      store,
		sessionTTL: sessionTTL,
		logger:     logger.WithComponent(log.ComponentAuth),
	}
}

// Register creates a user account. The returned user carries the hash;
// callers must not serialize it.
func (s *Service) Register(ctx context.Context, username, email, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if len(username) < 3 {
		return core.User{}, fmt.Errorf("%w: username must be at least 3 characters", core.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return core.User{}, fmt.Errorf("%w: invalid email", core.ErrValidation)
	}
	if len(password) < 6 {
		return core.User{}, fmt.Errorf("%w: password must be at least 6 characters", core.ErrValidation)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, core.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return core.User{}, err
	}

	s.logger.InfoContext(ctx, "user registered", log.FieldUserID, user.ID, "username", username)
	return user, nil
}

// Login verifies credentials and opens a session. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", time.Time{}, core.ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return "", time.Time{}, core.ErrInvalidCredentials
	}

	token, err = GenerateSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt = time.Now().Add(s.sessionTTL)

	if err := s.store.CreateSession(ctx, token, user.ID, expiresAt); err != nil {
		return "", time.Time{}, err
	}

	s.logger.InfoContext(ctx, "user logged in", log.FieldUserID, user.ID)
	return token, expiresAt, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to the owning user id.
func (s *Service) Authenticate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, core.ErrUnauthenticated
	}
	userID, err := s.store.SessionUserID(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return 0, core.ErrUnauthenticated
		}
		return 0, err
	}
	return userID, nil
}
