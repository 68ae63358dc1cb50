package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const dateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Criteria is a conjunction of independent predicates. A zero field means
// "no constraint" for that predicate.
type Criteria struct {
	Search    string // case-insensitive substring of the category
	Category  string // exact category
	MinAmount decimal.NullDecimal
	MaxAmount decimal.NullDecimal
	DateFrom  time.Time // inclusive, start of day
	DateTo    time.Time // inclusive through the last millisecond of that day
}

// FilterInput carries raw predicate values as typed by the user.
type FilterInput struct {
	Search    string
	Category  string
	MinAmount string
	MaxAmount string
	DateFrom  string
	DateTo    string
}

// ParseCriteria converts raw input into Criteria. Amount bounds that do not
// parse are skipped rather than rejected. Dates are interpreted as calendar
// days in loc.
func ParseCriteria(in FilterInput, loc *time.Location) (Criteria, error) {
	if loc == nil {
		loc = time.Local
	}
	c := Criteria{
		Search:   strings.TrimSpace(in.Search),
		Category: core.NormalizeCategory(in.Category),
	}
	if d, err := core.ParseAmount(in.MinAmount); err == nil {
		c.MinAmount = decimal.NewNullDecimal(d)
	}
	if d, err := core.ParseAmount(in.MaxAmount); err == nil {
		c.MaxAmount = decimal.NewNullDecimal(d)
	}

	var err error
	if c.DateFrom, err = parseDay(in.DateFrom, loc); err != nil {
		return Criteria{}, fmt.Errorf("from: %w", err)
	}
	if c.DateTo, err = parseDay(in.DateTo, loc); err != nil {
		return Criteria{}, fmt.Errorf("to: %w", err)
	}
	return c, nil
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// IsZero reports whether no predicate is set.
func (c Criteria) IsZero() bool {
	return c.Search == "" && c.Category == "" &&
		!c.MinAmount.Valid && !c.MaxAmount.Valid &&
		c.DateFrom.IsZero() && c.DateTo.IsZero()
}

// endOfDay returns the last instant that still belongs to DateTo's day.
func (c Criteria) endOfDay() time.Time {
	return c.DateTo.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// Match evaluates every predicate against t. Search and date predicates
// only constrain records that carry the field they look at, so an
// uncategorized or undated record is never hidden by them.
func (c Criteria) Match(t core.Transaction) bool {
	if c.Search != "" && t.HasCategory() {
		if !strings.Contains(strings.ToLower(t.Category), strings.ToLower(c.Search)) {
			return false
		}
	}
	if c.Category != "" && t.Category != c.Category {
		return false
	}
	if c.MinAmount.Valid || c.MaxAmount.Valid {
		if !t.HasAmount() {
			return false
		}
		if c.MinAmount.Valid && t.Amount.Decimal.LessThan(c.MinAmount.Decimal) {
			return false
		}
		if c.MaxAmount.Valid && t.Amount.Decimal.GreaterThan(c.MaxAmount.Decimal) {
			return false
		}
	}
	if !t.CreatedAt.IsZero() {
		if !c.DateFrom.IsZero() && t.CreatedAt.Before(c.DateFrom) {
			return false
		}
		if !c.DateTo.IsZero() && t.CreatedAt.After(c.endOfDay()) {
			return false
		}
	}
	return true
}

// Key is a stable textual form used for memoization.
func (c Criteria) Key() string {
	return strings.Join([]string{
		strings.ToLower(c.Search),
		c.Category,
		nullString(c.MinAmount),
		nullString(c.MaxAmount),
		timeString(c.DateFrom),
		timeString(c.DateTo),
	}, "|")
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func timeString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Filter returns the subsequence of txs matching c, preserving order.
func Filter(txs []core.Transaction, c Criteria) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if c.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the distinct non-empty categories, sorted.
func Categories(txs []core.Transaction) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, t := range txs {
		if !t.HasCategory() {
			continue
		}
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	sort.Strings(out)
	return out
}
