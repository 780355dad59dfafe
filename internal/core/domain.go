package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

type (
	// TransactionType is the closed income/expense enumeration. It is
	// persisted by its symbolic name.
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Category restricts transactions of one type to a label. OwnerID is
	// nil for global categories, which are visible to every user.
	Category struct {
		ID      int64
		Name    string
		Type    TransactionType
		OwnerID *int64
	}

	// Transaction holds a reference to its category, not ownership: the
	// category row lives independently and is hydrated on read.
	Transaction struct {
		ID          int64
		Type        TransactionType
		Amount      Money
		Category    Category
		Description string
		Date        Date
		UserID      int64
	}

	User struct {
		ID       int64
		Username string
		Email    string
	}
)

var (
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEmptyCategoryName = errors.New("empty category name")
	ErrMissingCategory   = errors.New("missing category")
	ErrEmptyCredentials  = errors.New("empty credentials")
)

// ParseTransactionType maps a symbolic name back to the enumeration.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t TransactionType) Validate() error {
	if t != Income && t != Expense {
		return fmt.Errorf("%w: %q", ErrInvalidType, string(t))
	}
	return nil
}

// NewDate creates a calendar date with no time component.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the YYYY-MM-DD wire and storage form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the storage form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	return c.Type.Validate()
}

// Global reports whether the category is shared across all users.
func (c Category) Global() bool {
	return c.OwnerID == nil
}

// Validate checks the softer pre-submission rules: positive amount and a
// resolvable category reference. The ledger service is the authoritative gate.
func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Category.ID == 0 {
		return ErrMissingCategory
	}
	return t.Date.Validate()
}

// Summary renders the one-line receipt form used by logs and listings.
func (t Transaction) Summary() string {
	return fmt.Sprintf("[%s] %s - %s | %s on %s",
		t.Type, t.Amount, t.Category.Name, t.Description, t.Date)
}
