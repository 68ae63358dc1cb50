package ledger

import (
	"strconv"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// View is everything the presentation layer renders for one set of criteria.
// Slices are shared with the cache and must be treated as read-only.
type View struct {
	Version      uint64
	LoadedAt     time.Time
	Criteria     Criteria
	Transactions []core.Transaction
	Stats        Statistics
	Categories   []string // drawn from the whole store, not the filtered subset
	Total        int      // size of the whole store
}

// Views memoizes derived views per store version and criteria.
type Views struct {
	store *Store
	cache cache.Cache[View]
}

// NewViews wraps store. A nil cache disables memoization.
func NewViews(store *Store, c cache.Cache[View]) *Views {
	return &Views{store: store, cache: c}
}

// Compute returns the view for criteria over the current store contents.
func (v *Views) Compute(criteria Criteria) View {
	snap := v.store.Snapshot()
	key := strconv.FormatUint(snap.Version, 10) + "#" + criteria.Key()

	if v.cache != nil {
		if view, ok := v.cache.Get(key); ok {
			return view
		}
	}

	filtered := snap.Transactions
	if !criteria.IsZero() {
		filtered = Filter(snap.Transactions, criteria)
	}
	view := View{
		Version:      snap.Version,
		LoadedAt:     snap.LoadedAt,
		Criteria:     criteria,
		Transactions: filtered,
		Stats:        Summarize(filtered),
		Categories:   Categories(snap.Transactions),
		Total:        len(snap.Transactions),
	}
	if v.cache != nil {
		v.cache.Set(key, view)
	}
	return view
}
