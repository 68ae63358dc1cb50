package ledger

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestFilter_NoPredicatesIsIdentity(t *testing.T) {
	in := sampleLedger()
	got := Filter(in, Criteria{})
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("expected identity, got ids %v", ids(got))
	}
	if len(Filter(nil, Criteria{Search: "x"})) != 0 {
		t.Fatal("empty input must yield empty output")
	}
}

func TestFilter_Predicates(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []int64
	}{
		{"search is case-insensitive substring of category", Criteria{Search: "FOOD"}, []int64{1, 3, 4, 5}},
		{"search keeps uncategorized", Criteria{Search: "o"}, []int64{1, 3, 4, 5, 6}},
		{"search does not look at amounts", Criteria{Search: "10"}, []int64{3}},
		{"exact category", Criteria{Category: "Food"}, []int64{1, 4}},
		{"min inclusive", Criteria{MinAmount: amount("10")}, []int64{1, 2, 5}},
		{"max inclusive", Criteria{MaxAmount: amount("10")}, []int64{1, 3, 6}},
		{"min and max", Criteria{MinAmount: amount("5"), MaxAmount: amount("75")}, []int64{1, 5, 6}},
		{"date from is inclusive start of day", Criteria{DateFrom: day(2025, 3, 4)}, []int64{4, 5, 6}},
		{"date to is inclusive end of day", Criteria{DateTo: day(2025, 3, 3)}, []int64{1, 2, 3, 5}},
		{"conjunction", Criteria{Search: "food", MinAmount: amount("1"), DateTo: day(2025, 3, 31)}, []int64{1, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(sampleLedger(), tt.c))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_MissingFieldsPassTextAndDatePredicates(t *testing.T) {
	ts := day(2025, 3, 1)
	txs := []core.Transaction{
		tx(1, "5", "Food", ts),
		tx(2, "5", "", ts),
		tx(3, "5", "Fuel", time.Time{}),
	}
	tests := []struct {
		name string
		c    Criteria
		want []int64
	}{
		{"search without a hit keeps only uncategorized", Criteria{Search: "xyz"}, []int64{2}},
		{"date from keeps undated", Criteria{DateFrom: day(2000, 1, 1)}, []int64{1, 2, 3}},
		{"date window after every timestamp keeps undated", Criteria{DateFrom: day(2030, 1, 1)}, []int64{3}},
		{"amount still requires a value", Criteria{MinAmount: amount("1")}, []int64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(txs, tt.c))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_DateToBoundary(t *testing.T) {
	end := day(2025, 3, 10).Add(24*time.Hour - time.Millisecond)
	txs := []core.Transaction{
		tx(1, "1", "", end),
		tx(2, "1", "", end.Add(time.Millisecond)),
	}
	got := ids(Filter(txs, Criteria{DateTo: day(2025, 3, 10)}))
	if !reflect.DeepEqual(got, []int64{1}) {
		t.Fatalf("expected only the 23:59:59.999 entry, got %v", got)
	}
}

func TestFilter_MinAmountNarrowsMonotonically(t *testing.T) {
	in := sampleLedger()
	thresholds := []string{"-100", "-20", "0", "5", "10", "75", "250.5", "1000"}
	for i := 1; i < len(thresholds); i++ {
		wider := Filter(in, Criteria{MinAmount: amount(thresholds[i-1])})
		narrower := Filter(in, Criteria{MinAmount: amount(thresholds[i])})
		set := map[int64]bool{}
		for _, t := range wider {
			set[t.ID] = true
		}
		for _, n := range narrower {
			if !set[n.ID] {
				t.Fatalf("min=%s result %d not contained in min=%s result", thresholds[i], n.ID, thresholds[i-1])
			}
		}
	}
}

func TestFilter_OrderIndependent(t *testing.T) {
	c := Criteria{Search: "o", MaxAmount: amount("100"), DateFrom: day(2025, 3, 1)}
	combined := ids(Filter(sampleLedger(), c))

	stepwise := Filter(sampleLedger(), Criteria{DateFrom: c.DateFrom})
	stepwise = Filter(stepwise, Criteria{MaxAmount: c.MaxAmount})
	stepwise = Filter(stepwise, Criteria{Search: c.Search})
	if !reflect.DeepEqual(combined, ids(stepwise)) {
		t.Fatalf("combined %v != stepwise %v", combined, ids(stepwise))
	}
}

func TestParseCriteria(t *testing.T) {
	c, err := ParseCriteria(FilterInput{
		Search:    "  fo ",
		Category:  " Food ",
		MinAmount: "abc",
		MaxAmount: "12,5",
		DateFrom:  "2025-03-01",
		DateTo:    "2025-03-31",
	}, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Search != "fo" || c.Category != "Food" {
		t.Fatalf("unexpected text predicates: %+v", c)
	}
	if c.MinAmount.Valid {
		t.Fatal("unparsable min amount must be skipped")
	}
	if !c.MaxAmount.Valid || c.MaxAmount.Decimal.String() != "12.5" {
		t.Fatalf("unexpected max amount: %+v", c.MaxAmount)
	}
	if !c.DateFrom.Equal(day(2025, 3, 1)) || !c.DateTo.Equal(day(2025, 3, 31)) {
		t.Fatalf("unexpected dates: %v %v", c.DateFrom, c.DateTo)
	}

	empty, err := ParseCriteria(FilterInput{}, nil)
	if err != nil || !empty.IsZero() {
		t.Fatalf("empty input should give zero criteria, got %+v err=%v", empty, err)
	}

	if _, err := ParseCriteria(FilterInput{DateTo: "31/03/2025"}, time.UTC); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestCriteriaKey(t *testing.T) {
	a := Criteria{Search: "Food", MinAmount: amount("1.0")}
	b := Criteria{Search: "food", MinAmount: amount("1")}
	if a.Key() != b.Key() {
		t.Fatalf("equivalent criteria should share a key: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == (Criteria{}).Key() {
		t.Fatal("different criteria must not share a key")
	}
}

func TestCategories(t *testing.T) {
	got := Categories([]core.Transaction{
		{Category: "Food"}, {Category: "Food"}, {Category: ""},
	})
	if !reflect.DeepEqual(got, []string{"Food"}) {
		t.Fatalf("expected [Food], got %v", got)
	}
	got = Categories(sampleLedger())
	want := []string{"Fast food", "Food", "Rent", "transport"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if len(Categories(nil)) != 0 {
		t.Fatal("no categories expected for empty input")
	}
}
