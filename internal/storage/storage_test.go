package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
)

// openTestDB creates a migrated throwaway database under t.TempDir().
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "fintrack_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedUser registers a bare account and returns its id.
func seedUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()
	id, err := NewUserStore(db).Create(context.Background(), email, "hash", "tester")
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return id
}

// seedCategory inserts a category owned by ownerID (nil = global).
func seedCategory(t *testing.T, db *sql.DB, name string, typ core.TransactionType, ownerID *int64) core.Category {
	t.Helper()
	c := core.Category{Name: name, Type: typ, OwnerID: ownerID}
	if err := NewCategoryStore(db).Insert(context.Background(), &c); err != nil {
		t.Fatalf("seed category %s: %v", name, err)
	}
	return c
}
