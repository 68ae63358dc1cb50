// Package storage persists transactions for the API server.
package storage

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Repository is implemented by every server backend. Lookups of a missing
// id return core.ErrNotFound.
type Repository interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Get(ctx context.Context, id int64) (core.Transaction, error)
	Create(ctx context.Context, d core.Draft, at time.Time) (core.Transaction, error)
	Update(ctx context.Context, id int64, d core.Draft) (core.Transaction, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}
