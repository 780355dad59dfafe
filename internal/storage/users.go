package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// UserStore persists accounts. Password material is opaque here: the store
// reads and writes whatever hash the credential collaborator produced.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, email, passwordHash, username string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, password, username) VALUES (?, ?, ?)",
		email, passwordHash, username)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "id", id, "email", email)
	return id, nil
}

// FindByEmail returns the account and its stored password hash.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (core.User, string, error) {
	var (
		u    core.User
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, username, password FROM users WHERE email = ?", email).
		Scan(&u.ID, &u.Email, &u.Username, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, "", ErrNotFound
		}
		return core.User{}, "", fmt.Errorf("find user: %w", err)
	}
	return u, hash, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, username FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Email, &u.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, ErrNotFound
		}
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
