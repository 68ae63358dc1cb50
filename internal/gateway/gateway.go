// Package gateway keeps the local ledger store consistent with the remote
// resource using a two-phase protocol: mutate remotely, then resync by
// reloading the whole collection.
//
// Consistency window: between a successful remote write and the end of its
// resync the store still shows the previous state. When the resync fails the
// write is committed remotely but the store stays stale until the next
// successful load; callers see ErrResync in that case.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// ErrResync means the remote write succeeded but the follow-up reload failed.
var ErrResync = errors.New("saved, but reloading transactions failed")

// Remote is the transaction resource the gateway talks to.
type Remote interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Get(ctx context.Context, id int64) (core.Transaction, error)
	Create(ctx context.Context, d core.Draft) error
	Update(ctx context.Context, id int64, d core.Draft) error
	Delete(ctx context.Context, id int64) error
}

// Gateway serializes every store writer. Mutations hold mu across both
// phases, so a second mutation cannot interleave with the first one's
// resync. Standalone reloads are coalesced through singleflight.
type Gateway struct {
	remote Remote
	store  *ledger.Store
	logger *log.Logger

	mu    sync.Mutex
	loads singleflight.Group
}

// New creates a gateway writing into store. A nil logger uses the default.
func New(remote Remote, store *ledger.Store, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.New(log.Config{Handler: slog.Default().Handler()})
	}
	return &Gateway{
		remote: remote,
		store:  store,
		logger: logger.WithComponent(log.ComponentGateway),
	}
}

func (g *Gateway) Store() *ledger.Store {
	return g.store
}

// LoadAll replaces the store with the remote collection. On failure the
// previous contents are kept. Concurrent callers share one fetch.
func (g *Gateway) LoadAll(ctx context.Context) error {
	_, err, shared := g.loads.Do("load", func() (any, error) {
		g.mu.Lock()
		defer g.mu.Unlock()
		return nil, g.reload(ctx)
	})
	if shared {
		g.logger.DebugContext(ctx, "Joined in-flight reload")
	}
	return err
}

// Resync replaces the store with a fresh remote listing. Unlike LoadAll it
// never joins an in-flight reload, whose response may predate a change the
// caller already knows about.
func (g *Gateway) Resync(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reload(ctx)
}

// Fetch reads one transaction from the remote without touching the store.
func (g *Gateway) Fetch(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := g.remote.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("fetch transaction %d: %w", id, err)
	}
	return t, nil
}

// Lookup finds a transaction in the store without a network call.
func (g *Gateway) Lookup(id int64) (core.Transaction, error) {
	t, ok := g.store.FindByID(id)
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

// Create posts d and resyncs. The new record is never inserted locally.
func (g *Gateway) Create(ctx context.Context, d core.Draft) error {
	return g.mutate(ctx, log.OpCreate, 0, func() error {
		return g.remote.Create(ctx, d)
	})
}

func (g *Gateway) Update(ctx context.Context, id int64, d core.Draft) error {
	return g.mutate(ctx, log.OpUpdate, id, func() error {
		return g.remote.Update(ctx, id, d)
	})
}

// Remove deletes id. A target missing from the store fails with
// core.ErrNotFound without contacting the remote.
func (g *Gateway) Remove(ctx context.Context, id int64) error {
	if _, err := g.Lookup(id); err != nil {
		return err
	}
	return g.mutate(ctx, log.OpDelete, id, func() error {
		return g.remote.Delete(ctx, id)
	})
}

func (g *Gateway) mutate(ctx context.Context, op string, id int64, write func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := write(); err != nil {
		fields := log.NewFields().WithOperation(op).WithError(err)
		if id > 0 {
			fields[log.FieldTransactionID] = id
		}
		g.logger.WarnContext(ctx, "Remote write failed", fields.ToSlice()...)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := g.reload(ctx); err != nil {
		g.logger.ErrorContext(ctx, "Resync after write failed",
			log.FieldOperation, op,
			log.FieldError, err)
		return fmt.Errorf("%w: %w", ErrResync, err)
	}
	return nil
}

// reload must be called with mu held.
func (g *Gateway) reload(ctx context.Context) error {
	list, err := g.remote.List(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	version := g.store.ReplaceAll(list)
	g.logger.DebugContext(ctx, "Store reloaded",
		log.FieldOperation, log.OpReload,
		log.FieldCount, len(list),
		log.FieldVersion, version)
	return nil
}
