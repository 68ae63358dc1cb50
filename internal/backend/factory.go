package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		repo  storage.Repository
		ready ReadyFunc
	)
	switch config.Type {
	case SQLiteBackend:
		sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		repo, ready = sqliteRepo, sqliteRepo.Ping
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store, err := memory.NewFromFile(config.SeedFile, time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
		}
		repo = store
		ready = func(context.Context) error { return nil }
		f.logger.InfoContext(ctx, "Initialized memory backend", "seed_file", config.SeedFile)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	service := services.NewTransactionService(repo, f.publisher(ctx, config), f.logger)

	return &BackendResult{
		Backend: service,
		Ready:   ready,
		Cleanup: service.Close,
	}, nil
}

// publisher connects to AMQP when configured. A broker that cannot be
// reached leaves the server running without change events.
func (f *DefaultFactory) publisher(ctx context.Context, config Config) services.Publisher {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events",
			log.FieldError, err)
		return nil
	}
	slog.InfoContext(ctx, "Initialized AMQP client",
		log.FieldComponent, log.ComponentAMQP,
		"exchange", config.AMQPExchange)
	return client
}
