package worker

import (
	"context"
	"fmt"

	"ledger/internal/amqp"
	"ledger/internal/log"
)

// Processor is the sheets sync the worker drives.
type Processor interface {
	SyncOne(ctx context.Context, id string) error
	ProcessPending(ctx context.Context, limit int) (int, error)
}

// SyncWorker copies transactions recorded by the API into Google Sheets
// as their AMQP events arrive.
type SyncWorker struct {
	processor Processor
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(processor Processor, batchSize int, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &SyncWorker{
		processor: processor,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleTransactionRecorded processes a single transaction.recorded message.
func (w *SyncWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	w.logger.InfoContext(ctx, "Processing transaction message",
		log.FieldRecordID, msg.ID,
		"timestamp", msg.Timestamp)

	if err := w.processor.SyncOne(ctx, msg.ID); err != nil {
		return fmt.Errorf("sync transaction %s: %w", msg.ID, err)
	}
	return nil
}

// StartupSyncCheck syncs rows left pending while the worker was down. It
// uses a larger batch than the periodic poll.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processor.ProcessPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if synced == 0 {
		w.logger.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}
	w.logger.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}
