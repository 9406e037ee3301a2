package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ledger/internal/core"
	"ledger/internal/csvexport"
	"ledger/internal/log"
	"ledger/internal/mirror"
)

// DefaultSyncTimeout bounds every call to the mirror when none is configured.
const DefaultSyncTimeout = 10 * time.Second

var ErrSyncClosed = errors.New("sync service closed")

// SyncService sends accepted transactions to the mirror and builds exports
// from it.
type SyncService struct {
	mirror  mirror.Mirror
	timeout time.Duration
	logger  *log.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
	fetches  singleflight.Group
}

func NewSyncService(m mirror.Mirror, timeout time.Duration, logger *log.Logger) *SyncService {
	if m == nil {
		m = mirror.Nop{}
	}
	if timeout <= 0 {
		timeout = DefaultSyncTimeout
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncService{
		mirror:  m,
		timeout: timeout,
		logger:  logger.WithComponent(log.ComponentSync),
	}
}

// PersistAsync sends tx to the mirror in its own goroutine and returns
// immediately. Failures are logged and dropped: the local store is never
// rolled back and nothing is retried.
func (s *SyncService) PersistAsync(tx core.Transaction) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("Sync skipped, service closed",
			log.NewFields().WithOperation(log.OpPersist).WithTransaction(tx).ToSlice()...)
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_ = s.Persist(ctx, tx)
	}()
}

// Persist sends tx and waits for the answer. The error is logged here too.
func (s *SyncService) Persist(ctx context.Context, tx core.Transaction) error {
	start := time.Now()
	ack, err := s.mirror.Persist(ctx, tx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist transaction",
			log.NewFields().
				WithOperation(log.OpPersist).
				WithTransaction(tx).
				WithError(err).
				ToSlice()...)
		return err
	}
	s.logger.InfoContext(ctx, "Transaction persisted",
		log.FieldOperation, log.OpPersist,
		log.FieldRecordID, ack.ID,
		log.FieldSheetsRef, ack.Ref,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// FetchAll returns the mirror's authoritative list. Concurrent callers share
// one request; a caller giving up does not cancel it for the others.
func (s *SyncService) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	ch := s.fetches.DoChan("fetch", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return s.mirror.FetchAll(fctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		txs := res.Val.([]core.Transaction)
		return append([]core.Transaction(nil), txs...), nil
	}
}

// Export fetches every transaction from the mirror and encodes the CSV file.
// On any failure no content is returned.
func (s *SyncService) Export(ctx context.Context) ([]byte, error) {
	start := time.Now()
	txs, err := s.FetchAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Export failed",
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
		return nil, err
	}
	content, err := csvexport.Generate(txs)
	if err != nil {
		s.logger.ErrorContext(ctx, "CSV encoding failed",
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Export ready",
		log.FieldOperation, log.OpExport,
		log.FieldRecords, len(txs),
		log.FieldDuration, time.Since(start).Milliseconds())
	return []byte(content), nil
}

// Wait blocks until every in-flight persist has finished or ctx is done.
func (s *SyncService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new persists and drains the in-flight ones.
func (s *SyncService) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if err := s.Wait(ctx); err != nil {
		s.logger.WarnContext(ctx, "In-flight syncs abandoned at shutdown", log.FieldError, err)
		return err
	}
	return nil
}
