package backend

import (
	"context"

	"fintrack/internal/core"
)

// Backend is the transaction API served over HTTP. Implemented by
// *services.TransactionService.
type Backend interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Get(ctx context.Context, id int64) (core.Transaction, error)
	Create(ctx context.Context, amount, category string) (core.Transaction, error)
	Update(ctx context.Context, id int64, amount, category string) (core.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// ReadyFunc reports whether the backing store can serve requests.
type ReadyFunc func(ctx context.Context) error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Ready   ReadyFunc
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific; empty means start with no transactions
	SeedFile string

	// Change events; empty URL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
