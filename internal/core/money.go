// Package core provides the transaction entity and amount handling.
//
// Amounts are decimals end to end, including their JSON encoding.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a decimal amount.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Sign and
// magnitude are not constrained here; the server owns those rules.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("")      -> 0, ErrEmptyAmount
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimals, or "-" when absent.
func FormatAmount(a decimal.NullDecimal) string {
	if !a.Valid {
		return "-"
	}
	return a.Decimal.StringFixed(2)
}
