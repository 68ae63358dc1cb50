package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// command maps one user intent to an App operation.
type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *App, args []string) error
}

var errUsage = errors.New("wrong arguments")

// commandTable lists every command in help order.
func commandTable() []command {
	return []command{
		{"help", "help", "show available commands", cmdHelp},
		{"list", "list", "show the filtered transactions and their statistics", cmdList},
		{"reload", "reload", "fetch all transactions from the server", cmdReload},
		{"stats", "stats", "show statistics for the filtered transactions", cmdStats},
		{"categories", "categories", "list known categories", cmdCategories},
		{"filter", "filter [key=value...]", "set search, category, min, max, from, to (dates YYYY-MM-DD)", cmdFilter},
		{"clear", "clear", "remove every filter", cmdClear},
		{"add", "add <amount> [category]", "create a transaction", cmdAdd},
		{"show", "show <id>", "fetch one transaction from the server", cmdShow},
		{"edit", "edit <id> <amount> [category]", "update a transaction", cmdEdit},
		{"delete", "delete <id>", "ask to delete a transaction", cmdDelete},
		{"confirm", "confirm", "delete the transaction awaiting confirmation", cmdConfirm},
		{"cancel", "cancel", "keep the transaction awaiting confirmation", cmdCancel},
		{"exit", "exit | quit", "leave the program", nil},
	}
}

// dispatchTable indexes commandTable by name.
func dispatchTable() map[string]command {
	table := make(map[string]command)
	for _, c := range commandTable() {
		if c.run != nil {
			table[c.name] = c
		}
	}
	return table
}

func cmdHelp(_ context.Context, a *App, _ []string) error {
	fmt.Fprintln(a.out, "Available commands:")
	for _, c := range commandTable() {
		fmt.Fprintf(a.out, "  %-30s %s\n", c.usage, c.summary)
	}
	return nil
}

func cmdList(_ context.Context, a *App, _ []string) error {
	state, loadErr := a.State()
	view := a.View()

	switch {
	case state == StateFailed:
		fmt.Fprintf(a.out, "Could not load transactions: %s\n", describe(loadErr))
		if view.Total == 0 {
			return nil
		}
		fmt.Fprintf(a.out, "Showing data loaded at %s\n", formatTime(view.LoadedAt, a.loc))
	case state == StateLoading:
		fmt.Fprintln(a.out, "Loading transactions...")
		return nil
	case view.Total == 0:
		fmt.Fprintln(a.out, "No transactions yet. Use add <amount> [category] to create one.")
		return nil
	}

	if len(view.Transactions) == 0 {
		fmt.Fprintf(a.out, "No transactions match the current filter (%s).\n", describeFilter(a.filter))
		return nil
	}
	renderTable(a.out, view.Transactions, a.loc)
	fmt.Fprintln(a.out)
	renderStats(a.out, view.Stats, a.loc)
	if !view.Criteria.IsZero() {
		fmt.Fprintf(a.out, "Filter: %s (%d of %d)\n", describeFilter(a.filter), len(view.Transactions), view.Total)
	}
	return nil
}

func cmdReload(ctx context.Context, a *App, _ []string) error {
	if err := a.Reload(ctx); err != nil {
		return err
	}
	a.notes.Success("Loaded %d transactions", a.View().Total)
	return nil
}

func cmdStats(_ context.Context, a *App, _ []string) error {
	renderStats(a.out, a.View().Stats, a.loc)
	return nil
}

func cmdCategories(_ context.Context, a *App, _ []string) error {
	cats := a.View().Categories
	if len(cats) == 0 {
		fmt.Fprintln(a.out, "No categories yet.")
		return nil
	}
	for _, c := range cats {
		fmt.Fprintln(a.out, c)
	}
	return nil
}

func cmdFilter(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.out, "Filter: %s\n", describeFilter(a.filter))
		return nil
	}
	values := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			a.notes.Error("Filters are written key=value, got %q", arg)
			return errUsage
		}
		values[strings.ToLower(k)] = v
	}
	if err := a.SetFilter(values); err != nil {
		return err
	}
	return cmdList(ctx, a, nil)
}

func cmdClear(ctx context.Context, a *App, _ []string) error {
	a.ClearFilter()
	return cmdList(ctx, a, nil)
}

func cmdAdd(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		return usage(a, "add")
	}
	return a.Add(ctx, args[0], strings.Join(args[1:], " "))
}

func cmdShow(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return usage(a, "show")
	}
	id, err := core.ParseID(args[0])
	if err != nil {
		a.notes.Error("%s", describe(err))
		return err
	}
	t, err := a.gw.Fetch(ctx, id)
	if err != nil {
		a.notes.Error("Could not fetch transaction #%d: %s", id, describe(err))
		return err
	}
	renderTransaction(a.out, t, a.loc)
	return nil
}

func cmdEdit(ctx context.Context, a *App, args []string) error {
	if len(args) < 2 {
		return usage(a, "edit")
	}
	id, err := core.ParseID(args[0])
	if err != nil {
		a.notes.Error("%s", describe(err))
		return err
	}
	return a.Edit(ctx, id, args[1], strings.Join(args[2:], " "))
}

func cmdDelete(_ context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return usage(a, "delete")
	}
	id, err := core.ParseID(args[0])
	if err != nil {
		a.notes.Error("%s", describe(err))
		return err
	}
	t, err := a.StageDelete(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Delete transaction #%d (%s, %s)? Type confirm or cancel.\n",
		t.ID, core.FormatAmount(t.Amount), formatCategory(t.Category))
	return nil
}

func cmdConfirm(ctx context.Context, a *App, _ []string) error {
	return a.Confirm(ctx)
}

func cmdCancel(_ context.Context, a *App, _ []string) error {
	if a.Cancel() {
		fmt.Fprintln(a.out, "Delete cancelled.")
	} else {
		fmt.Fprintln(a.out, "Nothing to cancel.")
	}
	return nil
}

func usage(a *App, name string) error {
	for _, c := range commandTable() {
		if c.name == name {
			fmt.Fprintf(a.out, "Usage: %s\n", c.usage)
		}
	}
	return errUsage
}
