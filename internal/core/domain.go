package core

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Transaction is a single ledger entry as last fetched from the server.
	Transaction struct {
		ID        int64
		Amount    decimal.NullDecimal // Valid is false when the server sent no usable amount
		Category  string              // empty means uncategorized
		CreatedAt time.Time           // zero when the server sent no timestamp
	}

	// Draft is validated user input for a create or update.
	Draft struct {
		Amount   decimal.Decimal
		Category string
	}
)

var (
	ErrEmptyAmount   = errors.New("amount is required")
	ErrInvalidAmount = errors.New("amount is not a valid number")
	ErrInvalidID     = errors.New("invalid transaction id")
	ErrNotFound      = errors.New("transaction not found")
)

// NormalizeCategory trims the label; blank input yields "" (absent).
func NormalizeCategory(s string) string {
	return strings.TrimSpace(s)
}

// HasCategory reports whether the transaction carries a non-empty category.
func (t Transaction) HasCategory() bool {
	return t.Category != ""
}

// HasAmount reports whether the amount is usable in numeric comparisons.
func (t Transaction) HasAmount() bool {
	return t.Amount.Valid
}

// NewDraft validates raw form input. It never touches the network, so callers
// can report validation failures before contacting the server.
func NewDraft(amount, category string) (Draft, error) {
	a, err := ParseAmount(amount)
	if err != nil {
		return Draft{}, err
	}
	return Draft{Amount: a, Category: NormalizeCategory(category)}, nil
}

// ParseID parses a positive transaction id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
