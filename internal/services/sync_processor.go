package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to look for unsynced rows (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of rows per poll cycle (default: 10)
	BatchSize int
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
	}
}

type (
	// PendingStore is the part of the repository the processor needs.
	PendingStore interface {
		GetByID(ctx context.Context, id string) (storage.StoredTransaction, error)
		ListPending(ctx context.Context, limit int) ([]storage.StoredTransaction, error)
		MarkSynced(ctx context.Context, id string) error
		MarkSyncError(ctx context.Context, id string) error
	}

	// SheetAppender writes one transaction to the spreadsheet.
	SheetAppender interface {
		Append(ctx context.Context, tx core.Transaction) (string, error)
	}
)

// SyncProcessor copies recorded transactions to the spreadsheet, either one
// at a time on request or by polling for rows that are still pending.
type SyncProcessor struct {
	store  PendingStore
	sheets SheetAppender
	config SyncProcessorConfig
	logger *log.Logger

	// syncMu serialises appends so a message and a poll never write the
	// same row twice.
	syncMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(store PendingStore, sheets SheetAppender, config SyncProcessorConfig, logger *log.Logger) *SyncProcessor {
	def := DefaultSyncProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncProcessor{
		store:  store,
		sheets: sheets,
		config: config,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the polling loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval.String(),
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop signals the loop and waits for the current batch to finish.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.ProcessPending(ctx, p.config.BatchSize); err != nil {
				p.logger.ErrorContext(ctx, "Periodic sync failed", log.FieldError, err)
			}
		}
	}
}

// ProcessPending syncs up to limit unsynced rows, oldest first, and reports
// how many made it to the sheet. A failing row does not stop the batch.
func (p *SyncProcessor) ProcessPending(ctx context.Context, limit int) (int, error) {
	pending, err := p.store.ListPending(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	p.logger.DebugContext(ctx, "Processing pending transactions", log.FieldRecords, len(pending))

	synced := 0
	for _, st := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := p.sync(ctx, st); err != nil {
			p.logger.ErrorContext(ctx, "Failed to sync transaction",
				log.FieldRecordID, st.ID,
				log.FieldError, err)
			continue
		}
		synced++
	}
	return synced, nil
}

// SyncOne syncs the transaction recorded under id. Rows already synced are
// skipped, which makes redelivered messages harmless.
func (p *SyncProcessor) SyncOne(ctx context.Context, id string) error {
	st, err := p.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	return p.sync(ctx, st)
}

func (p *SyncProcessor) sync(ctx context.Context, st storage.StoredTransaction) error {
	p.syncMu.Lock()
	defer p.syncMu.Unlock()

	// Re-read under the lock; a concurrent caller may have synced it.
	current, err := p.store.GetByID(ctx, st.ID)
	if err != nil {
		return fmt.Errorf("reload transaction: %w", err)
	}
	if current.SyncStatus == storage.SyncDone {
		p.logger.DebugContext(ctx, "Transaction already synced", log.FieldRecordID, st.ID)
		return nil
	}

	ref, err := p.sheets.Append(ctx, current.Transaction)
	if err != nil {
		if markErr := p.store.MarkSyncError(ctx, st.ID); markErr != nil {
			p.logger.ErrorContext(ctx, "Failed to mark sync error",
				log.FieldRecordID, st.ID,
				log.FieldError, markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := p.store.MarkSynced(ctx, st.ID); err != nil {
		// The row is in the sheet; only the local flag is stale.
		p.logger.ErrorContext(ctx, "Failed to mark as synced",
			log.FieldRecordID, st.ID,
			log.FieldError, err)
	}

	p.logger.InfoContext(ctx, "Transaction synced to sheet",
		log.FieldRecordID, st.ID,
		log.FieldSheetsRef, ref)
	return nil
}
