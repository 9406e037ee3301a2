// Package ledger holds the in-memory session: the transaction store, the
// running balance, the rendered table and the hand-off to the remote mirror.
package ledger

import (
	"sync"

	"ledger/internal/core"
)

// Store is an append-only, insertion-ordered list of validated transactions.
// Duplicates are kept.
type Store struct {
	mu  sync.RWMutex
	txs []core.Transaction
}

func NewStore() *Store {
	return &Store{}
}

// Append validates tx and adds it at the end.
func (s *Store) Append(tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.txs = append(s.txs, tx)
	s.mu.Unlock()
	return nil
}

// All returns a copy of the stored transactions in insertion order.
func (s *Store) All() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.txs...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}
