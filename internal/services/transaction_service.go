package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

type (
	TransactionRepository interface {
		Create(ctx context.Context, id string, tx core.Transaction, createdAt time.Time) error
		List(ctx context.Context) ([]storage.StoredTransaction, error)
	}

	EventPublisher interface {
		PublishTransactionRecorded(ctx context.Context, id string) error
	}
)

// TransactionService records transactions for the persistence API: SQLite
// first, then an AMQP event for the sheets worker.
type TransactionService struct {
	repo      TransactionRepository
	publisher EventPublisher
	logger    *log.Logger
	now       func() time.Time
}

// NewTransactionService wires the service. publisher may be nil, in which
// case no event is emitted.
func NewTransactionService(repo TransactionRepository, publisher EventPublisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentStorage),
		now:       time.Now,
	}
}

// Record validates and stores tx under a fresh id. A failed publish is
// logged, not returned: the transaction is already saved and the worker's
// pending scan picks it up.
func (s *TransactionService) Record(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := s.repo.Create(ctx, id, tx, s.now().UTC()); err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithTransaction(tx).
			ToSlice()...,
	)

	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping event", log.FieldRecordID, id)
		return id, nil
	}
	if err := s.publisher.PublishTransactionRecorded(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldRecordID, id,
			log.FieldError, err)
	}
	return id, nil
}

// List returns every recorded transaction in insertion order.
func (s *TransactionService) List(ctx context.Context) ([]storage.StoredTransaction, error) {
	txs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}
