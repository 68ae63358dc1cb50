package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func tx(id int64, amt, category string, at time.Time) core.Transaction {
	t := core.Transaction{ID: id, Category: category, CreatedAt: at}
	if amt != "" {
		t.Amount = amount(amt)
	}
	return t
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ids(txs []core.Transaction) []int64 {
	out := make([]int64, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func sampleLedger() []core.Transaction {
	return []core.Transaction{
		tx(1, "10", "Food", day(2025, 3, 1).Add(9*time.Hour)),
		tx(2, "250.50", "Rent", day(2025, 3, 2)),
		tx(3, "-20", "", day(2025, 3, 3).Add(12*time.Hour)),
		tx(4, "", "Food", day(2025, 3, 4)),
		tx(5, "75", "Fast food", time.Time{}),
		tx(6, "5", "transport", day(2025, 3, 6).Add(23*time.Hour)),
	}
}
