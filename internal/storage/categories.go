package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// CategoryStore owns the persisted category rows. Lookups by display data
// (name + type) exist because tables and dropdowns show names, not ids.
type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// Insert persists the category and assigns its id. The caller never picks an
// id client-side.
func (s *CategoryStore) Insert(ctx context.Context, c *core.Category) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO category (name, type, user_id) VALUES (?, ?, ?)",
		c.Name, string(c.Type), ownerArg(c.OwnerID))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("category insert id: %w", err)
	}
	c.ID = id

	slog.InfoContext(ctx, "Category saved",
		"id", c.ID, "name", c.Name, "type", c.Type, "global", c.Global())
	return nil
}

func (s *CategoryStore) GetByID(ctx context.Context, id int64) (core.Category, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, type, user_id FROM category WHERE id = ?", id)
	return scanCategory(row)
}

func (s *CategoryStore) FindByNameAndOwner(ctx context.Context, name string, ownerID int64) (core.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, user_id FROM category
		 WHERE name = ? AND (user_id = ? OR user_id IS NULL)
		 ORDER BY user_id IS NULL LIMIT 1`,
		name, ownerID)
	return scanCategory(row)
}

// FindByNameTypeAndOwner resolves display data back to its row. A row owned
// by the user wins over a global row with the same name and type.
func (s *CategoryStore) FindByNameTypeAndOwner(ctx context.Context, name string, typ core.TransactionType, ownerID int64) (core.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, user_id FROM category
		 WHERE name = ? AND type = ? AND (user_id = ? OR user_id IS NULL)
		 ORDER BY user_id IS NULL LIMIT 1`,
		name, string(typ), ownerID)
	return scanCategory(row)
}

// ListForOwner returns the owner's categories plus the global ones. The OR
// over NULL owners is load-bearing: global categories are visible to all.
func (s *CategoryStore) ListForOwner(ctx context.Context, ownerID int64) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, user_id FROM category
		 WHERE user_id = ? OR user_id IS NULL
		 ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]core.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Update edits name and type by id. Ownership never changes after insert.
func (s *CategoryStore) Update(ctx context.Context, c core.Category) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE category SET name = ?, type = ? WHERE id = ?",
		c.Name, string(c.Type), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row, refusing while transactions still reference it.
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	var refs int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE category_id = ?", id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: %d transactions", ErrCategoryInUse, refs)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM category WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c     core.Category
		typ   string
		owner sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.Name, &typ, &owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, ErrNotFound
		}
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}
	c.Type = core.TransactionType(typ)
	if owner.Valid {
		c.OwnerID = &owner.Int64
	}
	return c, nil
}

func ownerArg(ownerID *int64) any {
	if ownerID == nil {
		return nil
	}
	return *ownerID
}
