package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/gateway"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/notify"
)

// Gateway is the subset of the sync gateway the client drives.
type Gateway interface {
	LoadAll(ctx context.Context) error
	Resync(ctx context.Context) error
	Fetch(ctx context.Context, id int64) (core.Transaction, error)
	Lookup(id int64) (core.Transaction, error)
	Create(ctx context.Context, d core.Draft) error
	Update(ctx context.Context, id int64, d core.Draft) error
	Remove(ctx context.Context, id int64) error
}

// App owns the client's state: the active filter, the pending delete and
// the view state. Nothing here is global.
type App struct {
	gw    Gateway
	views *ledger.Views
	notes *notify.Center
	out   io.Writer
	loc   *time.Location

	filter   ledger.FilterInput
	criteria ledger.Criteria
	pending  *core.Transaction

	mu      sync.Mutex
	state   ViewState
	loadErr error
	echoes  []*echo
	now     func() time.Time
}

// echo is a change event this client expects for one of its own writes.
type echo struct {
	op string
	id int64 // 0 matches any id
	at time.Time
}

// echoWindow bounds how long an unanswered echo can swallow events.
const echoWindow = 30 * time.Second

func NewApp(gw Gateway, views *ledger.Views, notes *notify.Center, out io.Writer) *App {
	return &App{
		gw:    gw,
		views: views,
		notes: notes,
		out:   out,
		loc:   time.Local,
		state: StateLoading,
		now:   time.Now,
	}
}

// State returns the current view state and the error of the last failed load.
func (a *App) State() (ViewState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state, a.loadErr
}

func (a *App) setState(s ViewState, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = s
	a.loadErr = err
}

// settle moves the view out of loading based on the outcome of a load.
func (a *App) settle(err error) {
	if err != nil {
		a.setState(StateFailed, err)
		return
	}
	if a.views.Compute(ledger.Criteria{}).Total == 0 {
		a.setState(StateEmpty, nil)
		return
	}
	a.setState(StateReady, nil)
}

// Reload fetches the full collection.
func (a *App) Reload(ctx context.Context) error {
	a.setState(StateLoading, nil)
	err := a.gw.LoadAll(ctx)
	a.settle(err)
	if err != nil {
		a.notes.Error("Could not load transactions: %s", describe(err))
		return err
	}
	return nil
}

// RemoteChanged reloads after a change event. Events caused by this
// client's own writes are dropped: the write already resynced the store.
func (a *App) RemoteChanged(ctx context.Context, op string, id int64) error {
	if a.consumeEcho(op, id) {
		return nil
	}
	err := a.gw.Resync(ctx)
	a.settle(err)
	if err != nil {
		a.notes.Error("Remote change detected but reload failed: %s", describe(err))
		return err
	}
	a.notes.Success("Transaction #%d was %sd; list refreshed", id, op)
	return nil
}

// expectEcho registers the event a write is about to cause. The returned
// func forgets it again when the write never reached the server.
func (a *App) expectEcho(op string, id int64) func() {
	e := &echo{op: op, id: id}
	a.mu.Lock()
	e.at = a.now()
	a.echoes = append(a.echoes, e)
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		for i, x := range a.echoes {
			if x == e {
				a.echoes = append(a.echoes[:i], a.echoes[i+1:]...)
				return
			}
		}
	}
}

// consumeEcho reports whether op/id answers one of this client's writes.
// Expired echoes are discarded on the way.
func (a *App) consumeEcho(op string, id int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	matched := false
	live := a.echoes[:0]
	for _, e := range a.echoes {
		if now.Sub(e.at) > echoWindow {
			continue
		}
		if !matched && e.op == op && (e.id == 0 || e.id == id) {
			matched = true
			continue
		}
		live = append(live, e)
	}
	a.echoes = live
	return matched
}

// Add validates the input before any network call.
func (a *App) Add(ctx context.Context, amount, category string) error {
	d, err := core.NewDraft(amount, category)
	if err != nil {
		a.notes.Error("%s", describe(err))
		return err
	}
	forget := a.expectEcho(log.OpCreate, 0)
	if err := a.afterWrite(forget, a.gw.Create(ctx, d)); err != nil {
		a.notes.Error("Could not create transaction: %s", describe(err))
		return err
	}
	a.notes.Success("Transaction created")
	return nil
}

func (a *App) Edit(ctx context.Context, id int64, amount, category string) error {
	d, err := core.NewDraft(amount, category)
	if err != nil {
		a.notes.Error("%s", describe(err))
		return err
	}
	forget := a.expectEcho(log.OpUpdate, id)
	if err := a.afterWrite(forget, a.gw.Update(ctx, id, d)); err != nil {
		a.notes.Error("Could not update transaction #%d: %s", id, describe(err))
		return err
	}
	a.notes.Success("Transaction #%d updated", id)
	return nil
}

// StageDelete looks id up locally and keeps it until Confirm or Cancel.
func (a *App) StageDelete(id int64) (core.Transaction, error) {
	t, err := a.gw.Lookup(id)
	if err != nil {
		a.notes.Error("%s", describe(err))
		return core.Transaction{}, err
	}
	a.pending = &t
	return t, nil
}

// Confirm deletes the staged transaction. The pending delete is cleared
// whatever the outcome.
func (a *App) Confirm(ctx context.Context) error {
	if a.pending == nil {
		err := errors.New("nothing to confirm")
		a.notes.Error("Nothing to confirm; use delete <id> first")
		return err
	}
	id := a.pending.ID
	a.pending = nil
	forget := a.expectEcho(log.OpDelete, id)
	if err := a.afterWrite(forget, a.gw.Remove(ctx, id)); err != nil {
		a.notes.Error("Could not delete transaction #%d: %s", id, describe(err))
		return err
	}
	a.notes.Success("Transaction #%d deleted", id)
	return nil
}

// Cancel drops the staged delete and reports whether there was one.
func (a *App) Cancel() bool {
	had := a.pending != nil
	a.pending = nil
	return had
}

func (a *App) Pending() (core.Transaction, bool) {
	if a.pending == nil {
		return core.Transaction{}, false
	}
	return *a.pending, true
}

// afterWrite updates the view state once a mutation has finished. A failed
// write leaves the store and the state as they were and will cause no
// event; a failed resync marks the view as failed.
func (a *App) afterWrite(forget func(), err error) error {
	switch {
	case err == nil:
		a.settle(nil)
	case errors.Is(err, gateway.ErrResync):
		a.settle(err)
	default:
		forget()
	}
	return err
}

// SetFilter merges values into the active filter. Keys are search,
// category, min, max, from and to; an empty value clears that predicate.
func (a *App) SetFilter(values map[string]string) error {
	next := a.filter
	for k, v := range values {
		switch k {
		case "search":
			next.Search = v
		case "category":
			next.Category = v
		case "min":
			next.MinAmount = v
		case "max":
			next.MaxAmount = v
		case "from":
			next.DateFrom = v
		case "to":
			next.DateTo = v
		default:
			err := fmt.Errorf("unknown filter %q", k)
			a.notes.Error("Unknown filter %q; use search, category, min, max, from or to", k)
			return err
		}
	}
	c, err := ledger.ParseCriteria(next, a.loc)
	if err != nil {
		a.notes.Error("Invalid filter: %s", err)
		return err
	}
	a.filter = next
	a.criteria = c
	return nil
}

func (a *App) ClearFilter() {
	a.filter = ledger.FilterInput{}
	a.criteria = ledger.Criteria{}
}

// View returns the derived view for the active filter.
func (a *App) View() ledger.View {
	return a.views.Compute(a.criteria)
}

// describe turns an error into a message for the user.
func describe(err error) string {
	var se *api.StatusError
	switch {
	case errors.Is(err, core.ErrEmptyAmount):
		return "Amount is required"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a number"
	case errors.Is(err, core.ErrNotFound):
		return "Transaction not found"
	case errors.Is(err, core.ErrInvalidID):
		return "Invalid transaction id"
	case errors.Is(err, gateway.ErrResync):
		return "saved, but the list could not be refreshed; run reload"
	case errors.As(err, &se):
		if se.Body != "" {
			return fmt.Sprintf("server returned %d: %s", se.Code, se.Body)
		}
		return fmt.Sprintf("server returned %d", se.Code)
	case errors.Is(err, api.ErrMalformedResponse):
		return "server sent an unreadable response"
	case errors.Is(err, api.ErrTransport):
		return "server unreachable"
	}
	return err.Error()
}

var _ Gateway = (*gateway.Gateway)(nil)

// logger for client-side diagnostics; user-facing output goes through out.
func clientLogger() *log.Logger {
	return log.FromContext(context.Background()).WithComponent(log.ComponentCLI)
}
