package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const timeLayout = "02/01/2006 15:04"

func formatCategory(c string) string {
	if c == "" {
		return "-"
	}
	return c
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format(timeLayout)
}

func renderTable(w io.Writer, txs []core.Transaction, loc *time.Location) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAMOUNT\tCATEGORY\tCREATED\t")
	for _, t := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n",
			t.ID, core.FormatAmount(t.Amount), formatCategory(t.Category), formatTime(t.CreatedAt, loc))
	}
	tw.Flush()
}

func renderStats(w io.Writer, st ledger.Statistics, loc *time.Location) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total:\t%s\n", st.Total.StringFixed(2))
	fmt.Fprintf(tw, "Transactions:\t%d\n", st.Count)
	fmt.Fprintf(tw, "Average:\t%s\n", st.Average.StringFixed(2))
	if st.MostRecent != nil {
		r := st.MostRecent
		fmt.Fprintf(tw, "Most recent:\t#%d %s %s (%s)\n",
			r.ID, core.FormatAmount(r.Amount), formatCategory(r.Category), formatTime(r.CreatedAt, loc))
	} else {
		fmt.Fprintf(tw, "Most recent:\t-\n")
	}
	tw.Flush()
}

func renderTransaction(w io.Writer, t core.Transaction, loc *time.Location) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", t.ID)
	fmt.Fprintf(tw, "Amount:\t%s\n", core.FormatAmount(t.Amount))
	fmt.Fprintf(tw, "Category:\t%s\n", formatCategory(t.Category))
	fmt.Fprintf(tw, "Created:\t%s\n", formatTime(t.CreatedAt, loc))
	tw.Flush()
}

// describeFilter renders the active predicates as key=value pairs.
func describeFilter(in ledger.FilterInput) string {
	var parts []string
	add := func(k, v string) {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, k+"="+strings.TrimSpace(v))
		}
	}
	add("search", in.Search)
	add("category", in.Category)
	add("min", in.MinAmount)
	add("max", in.MaxAmount)
	add("from", in.DateFrom)
	add("to", in.DateTo)
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
