// Package storage persists the ledger's entities in SQLite. Stores take an
// explicitly constructed *sql.DB owned by the composition root; there is no
// ambient global connection.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound marks reads that resolve to no row. Callers translate it
	// into an "absent" value, never a failure.
	ErrNotFound = errors.New("not found")

	// ErrCategoryInUse blocks category deletion while transactions still
	// reference the row, so references can never dangle.
	ErrCategoryInUse = errors.New("category is referenced by transactions")

	// ErrEmailTaken marks a registration against an already used email.
	ErrEmailTaken = errors.New("email already registered")
)

// Open creates the database file if needed, verifies the connection and runs
// the embedded migrations. The returned pool is shared by every store.
func Open(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// isUniqueViolation matches the driver's constraint error message; modernc
// sqlite exposes no typed constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
