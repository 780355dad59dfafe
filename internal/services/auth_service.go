package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password;
// callers cannot tell the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService fronts the user store. Hashing lives behind the PasswordHasher
// collaborator so the scheme can change without touching the ledger.
type AuthService struct {
	users  *storage.UserStore
	hasher auth.PasswordHasher
}

func NewAuthService(users *storage.UserStore, hasher auth.PasswordHasher) *AuthService {
	return &AuthService{users: users, hasher: hasher}
}

// Login resolves an email/password pair to the account, or
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (core.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return core.User{}, ErrInvalidCredentials
	}

	user, hash, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.User{}, ErrInvalidCredentials
		}
		return core.User{}, fmt.Errorf("login lookup: %w", err)
	}
	if !s.hasher.Verify(password, hash) {
		return core.User{}, ErrInvalidCredentials
	}

	slog.InfoContext(ctx, "User logged in", "id", user.ID)
	return user, nil
}

// Register creates an account; storage.ErrEmailTaken surfaces unchanged.
func (s *AuthService) Register(ctx context.Context, email, password, username string) (int64, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || password == "" || username == "" {
		return 0, core.ErrEmptyCredentials
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(ctx, email, hash, username)
}
