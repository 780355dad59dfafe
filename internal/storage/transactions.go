package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
)

// TransactionStore owns the persisted transaction rows. Reads hydrate the
// category reference in the same query; a reference that no longer resolves
// is reported as an error rather than silently dropped.
type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Insert(ctx context.Context, t *core.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (type, amount_cents, category_id, description, date, user_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(t.Type), t.Amount.Cents, t.Category.ID, t.Description, t.Date.String(), t.UserID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"category_id", t.Category.ID,
		"date", t.Date.String(),
		"user_id", t.UserID)
	return nil
}

const selectTransactions = `
	SELECT t.id, t.type, t.amount_cents, t.description, t.date, t.user_id,
	       c.id, c.name, c.type, c.user_id
	FROM transactions t
	LEFT JOIN category c ON c.id = t.category_id`

// ListAll returns every transaction, newest first, categories hydrated.
func (s *TransactionStore) ListAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, selectTransactions+" ORDER BY t.date DESC, t.id DESC")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListForOwner returns one owner's transactions, newest first.
func (s *TransactionStore) ListForOwner(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		selectTransactions+" WHERE t.user_id = ? ORDER BY t.date DESC, t.id DESC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// MonthlyTotal sums amounts for one owner and type over the half-open
// interval [first day of month, first day of next month). The sum is integer
// cents, so there is no accumulation drift, and an empty month is exactly
// zero rather than absent.
func (s *TransactionStore) MonthlyTotal(ctx context.Context, ownerID int64, typ core.TransactionType, year int, month time.Month) (core.Money, error) {
	first := core.NewDate(year, int(month), 1)
	next := core.Date{Time: first.AddDate(0, 1, 0)}

	var cents int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)
		 FROM transactions
		 WHERE user_id = ? AND type = ? AND date >= ? AND date < ?`,
		ownerID, string(typ), first.String(), next.String()).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("monthly total: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	transactions := make([]core.Transaction, 0)
	for rows.Next() {
		var (
			t        core.Transaction
			typ      string
			date     string
			catID    sql.NullInt64
			catName  sql.NullString
			catType  sql.NullString
			catOwner sql.NullInt64
		)
		err := rows.Scan(&t.ID, &typ, &t.Amount.Cents, &t.Description, &date, &t.UserID,
			&catID, &catName, &catType, &catOwner)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if !catID.Valid {
			// The referenced category row is gone. Deletion is blocked
			// while references exist, so this only shows up on data
			// imported from elsewhere; surface it instead of masking it.
			return nil, fmt.Errorf("transaction %d: dangling category reference", t.ID)
		}
		t.Type = core.TransactionType(typ)
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		t.Date = d
		t.Category = core.Category{
			ID:   catID.Int64,
			Name: catName.String,
			Type: core.TransactionType(catType.String),
		}
		if catOwner.Valid {
			t.Category.OwnerID = &catOwner.Int64
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}
