// Package services holds the validated entry points in front of the stores.
// Callers (HTTP, tests, future UIs) never talk to storage directly.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// LedgerService is the single write/read API for transactions and
// categories. It is stateless: entities returned to callers are theirs.
type LedgerService struct {
	transactions *storage.TransactionStore
	categories   *storage.CategoryStore
	events       *amqp.Client
}

// NewLedgerService wires the stores and an optional event publisher; events
// may be nil when no broker is configured.
func NewLedgerService(transactions *storage.TransactionStore, categories *storage.CategoryStore, events *amqp.Client) *LedgerService {
	return &LedgerService{
		transactions: transactions,
		categories:   categories,
		events:       events,
	}
}

// AddTransaction is the authoritative validation gate: a non-positive amount
// or an unresolvable category never reaches storage. On success the assigned
// id is set on tx and a ledger event is published best-effort.
func (s *LedgerService) AddTransaction(ctx context.Context, tx *core.Transaction) error {
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if tx.Category.ID == 0 {
		return core.ErrMissingCategory
	}

	category, err := s.categories.GetByID(ctx, tx.Category.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: id %d", core.ErrMissingCategory, tx.Category.ID)
		}
		return fmt.Errorf("resolve category: %w", err)
	}
	tx.Category = category

	if err := s.transactions.Insert(ctx, tx); err != nil {
		return err
	}

	s.publishRecorded(ctx, tx)
	return nil
}

// Transactions lists one owner's history, newest first.
func (s *LedgerService) Transactions(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	return s.transactions.ListForOwner(ctx, ownerID)
}

// AllTransactions lists every owner's history, newest first.
func (s *LedgerService) AllTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.transactions.ListAll(ctx)
}

// MonthlyTotal is a pass-through: aggregation goes straight to storage, not
// through the in-memory filter.
func (s *LedgerService) MonthlyTotal(ctx context.Context, ownerID int64, typ core.TransactionType, year int, month time.Month) (core.Money, error) {
	if err := typ.Validate(); err != nil {
		return core.Money{}, err
	}
	return s.transactions.MonthlyTotal(ctx, ownerID, typ, year, month)
}

// AddCategory validates the display fields and delegates. The store assigns
// the id.
func (s *LedgerService) AddCategory(ctx context.Context, c *core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.categories.Insert(ctx, c)
}

func (s *LedgerService) Categories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	return s.categories.ListForOwner(ctx, ownerID)
}

func (s *LedgerService) CategoryByID(ctx context.Context, id int64) (core.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// ResolveCategory turns display data (name + type) back into its row.
func (s *LedgerService) ResolveCategory(ctx context.Context, name string, typ core.TransactionType, ownerID int64) (core.Category, error) {
	return s.categories.FindByNameTypeAndOwner(ctx, name, typ, ownerID)
}

func (s *LedgerService) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.categories.Update(ctx, c)
}

// DeleteCategory removes an unreferenced category; storage.ErrCategoryInUse
// comes back while transactions still point at it.
func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.publishCategoryDeleted(ctx, id)
	return nil
}

// publishRecorded is best-effort: the write already landed, so a broker
// hiccup is logged and swallowed.
func (s *LedgerService) publishRecorded(ctx context.Context, tx *core.Transaction) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionRecorded(ctx, tx.ID, tx.UserID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", tx.ID, "user_id", tx.UserID, "error", err)
	}
}

func (s *LedgerService) publishCategoryDeleted(ctx context.Context, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishCategoryDeleted(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish category event",
			"id", id, "error", err)
	}
}
