package storage

import (
	"context"
	"errors"
	"testing"
)

func TestUserCreateAndFindByEmail(t *testing.T) {
	db := openTestDB(t)
	store := NewUserStore(db)
	ctx := context.Background()

	id, err := store.Create(ctx, "a@example.com", "pbkdf2$salt$hash", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected assigned id")
	}

	u, hash, err := store.FindByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.ID != id || u.Username != "alice" || hash != "pbkdf2$salt$hash" {
		t.Fatalf("round-trip mismatch: %+v hash=%q", u, hash)
	}
}

func TestUserEmailUnique(t *testing.T) {
	db := openTestDB(t)
	store := NewUserStore(db)
	ctx := context.Background()

	if _, err := store.Create(ctx, "a@example.com", "h", "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, "a@example.com", "h2", "alice2"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserFindAbsent(t *testing.T) {
	db := openTestDB(t)
	store := NewUserStore(db)

	if _, _, err := store.FindByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetByID(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
