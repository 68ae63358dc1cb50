package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Publisher announces committed writes. Implemented by *amqp.Client.
type Publisher interface {
	PublishTransactionChanged(ctx context.Context, op string, id int64) error
	Close() error
}

// TransactionService validates input, writes to the repository and publishes
// a change event after each successful write.
type TransactionService struct {
	repo      storage.Repository
	publisher Publisher
	logger    *log.StructuredLogger
	now       func() time.Time
}

// NewTransactionService wires a repository with an optional publisher.
func NewTransactionService(repo storage.Repository, publisher Publisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &TransactionService{
		repo:      repo,
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger.WithComponent(log.ComponentService)),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	if id <= 0 {
		return core.Transaction{}, core.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// Create validates amount and category text and stores a new transaction
// stamped with the current time.
func (s *TransactionService) Create(ctx context.Context, amount, category string) (core.Transaction, error) {
	d, err := core.NewDraft(amount, category)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := s.repo.Create(ctx, d, s.now())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.changed(ctx, log.OpCreate, t)
	return t, nil
}

func (s *TransactionService) Update(ctx context.Context, id int64, amount, category string) (core.Transaction, error) {
	if id <= 0 {
		return core.Transaction{}, core.ErrInvalidID
	}
	d, err := core.NewDraft(amount, category)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := s.repo.Update(ctx, id, d)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	s.changed(ctx, log.OpUpdate, t)
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return core.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.changed(ctx, log.OpDelete, core.Transaction{ID: id})
	return nil
}

// changed logs the write and publishes it. A publish failure never fails the
// request; the write is already committed.
func (s *TransactionService) changed(ctx context.Context, op string, t core.Transaction) {
	s.logger.LogTransactionChanged(ctx, op, t.ID, core.FormatAmount(t.Amount), t.Category)

	if s.publisher == nil {
		slog.DebugContext(ctx, "Change publisher not configured, skipping event",
			log.FieldComponent, log.ComponentService,
			log.FieldTransactionID, t.ID)
		return
	}
	if err := s.publisher.PublishTransactionChanged(ctx, op, t.ID); err != nil {
		s.logger.LogError(ctx, "Failed to publish change event", err,
			log.ComponentAMQP, op, log.LogFields{log.FieldTransactionID: t.ID})
	}
}

// Close closes both the repository and the publisher.
func (s *TransactionService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	return errors.Join(errs...)
}
