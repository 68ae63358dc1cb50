package ledger

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Statistics summarizes a sequence of transactions.
//
// Count is the number of transactions; Valued is how many carried a usable
// amount. Total and Average only consider valued transactions, so a malformed
// record never poisons the sums.
//
// Average is Total divided by Valued, not by Count. With malformed amounts
// present it is therefore larger in magnitude than Total/Count.
type Statistics struct {
	Total      decimal.Decimal
	Count      int
	Valued     int
	Average    decimal.Decimal
	MostRecent *core.Transaction
}

// Summarize computes statistics. An empty input yields the zero state:
// total 0, count 0, average 0 and no most recent transaction.
func Summarize(txs []core.Transaction) Statistics {
	st := Statistics{Total: decimal.Zero, Average: decimal.Zero, Count: len(txs)}

	var recent *core.Transaction
	for i := range txs {
		t := txs[i]
		if t.HasAmount() {
			st.Total = st.Total.Add(t.Amount.Decimal)
			st.Valued++
		}
		if t.CreatedAt.IsZero() {
			continue
		}
		// strict After keeps the first of equal timestamps
		if recent == nil || t.CreatedAt.After(recent.CreatedAt) {
			recent = &t
		}
	}

	if st.Valued > 0 {
		st.Average = st.Total.Div(decimal.NewFromInt(int64(st.Valued)))
	}
	st.MostRecent = recent
	return st
}
