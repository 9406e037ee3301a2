// Package memory is an in-process mirror used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ledger/internal/core"
	"ledger/internal/mirror"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
	// failWith, when set, is returned by every call.
	failWith error
}

var _ mirror.Mirror = (*Store)(nil)

func New(seed ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), seed...)}
}

// Persist stores the transaction and returns a synthetic reference.
func (s *Store) Persist(_ context.Context, tx core.Transaction) (mirror.Ack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return mirror.Ack{}, &mirror.SyncError{Op: mirror.OpPersist, Err: s.failWith}
	}
	s.items = append(s.items, tx)
	ref := fmt.Sprintf("mem:%d", len(s.items))
	return mirror.Ack{ID: ref, Status: "recorded", Ref: ref}, nil
}

// FetchAll returns a copy of everything persisted so far.
func (s *Store) FetchAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, &mirror.SyncError{Op: mirror.OpFetch, Err: s.failWith}
	}
	return append([]core.Transaction(nil), s.items...), nil
}

// Len reports how many transactions were persisted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// FailWith makes every later call fail with err; nil restores normal behavior.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}
