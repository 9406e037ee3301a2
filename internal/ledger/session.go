package ledger

import (
	"context"
	"sync"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/table"
)

// Input is the raw content of the entry form.
type Input struct {
	Description string
	Amount      string
	Type        string
	Date        string
}

// Syncer receives every accepted transaction. PersistAsync must not block.
type Syncer interface {
	PersistAsync(tx core.Transaction)
}

// View is a consistent snapshot of what the UI shows.
type View struct {
	Currency string
	Balance  core.Balance
	Table    table.Table
	Scroll   table.ScrollState
}

type Session struct {
	mu       sync.Mutex
	store    *Store
	currency string
	balance  core.Balance
	renderer *table.Renderer
	scroll   *table.ScrollController
	syncer   Syncer
	logger   *log.Logger
}

// NewSession starts an empty session displaying amounts in currency.
// syncer may be nil, in which case nothing leaves the process.
func NewSession(currency string, syncer Syncer, logger *log.Logger) (*Session, error) {
	code, err := core.NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Discard()
	}
	r := table.NewRenderer()
	s := &Session{
		store:    NewStore(),
		currency: code,
		renderer: r,
		scroll:   table.NewScrollController(r),
		syncer:   syncer,
		logger:   logger.WithComponent(log.ComponentLedger),
	}
	s.refresh()
	return s, nil
}

// Add validates the form input and, when valid, appends the transaction,
// recomputes the balance, re-renders the table and hands the transaction to
// the syncer without waiting for it.
//
// Invalid input is dropped: the returned *core.ValidationError is for the
// caller's logs, the session is left exactly as it was and nothing is synced.
func (s *Session) Add(ctx context.Context, in Input) (core.Transaction, error) {
	tx, err := core.NewTransaction(in.Description, in.Amount, in.Type, in.Date)
	if err != nil {
		s.logger.DebugContext(ctx, "Transaction dropped",
			log.FieldOperation, log.OpValidate,
			log.FieldError, err)
		return core.Transaction{}, err
	}

	s.mu.Lock()
	if err := s.store.Append(tx); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	s.refresh()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction added",
		log.NewFields().WithOperation(log.OpAppend).WithTransaction(tx).ToSlice()...)

	if s.syncer != nil {
		s.syncer.PersistAsync(tx)
	}
	return tx, nil
}

// SetCurrency switches the display currency and re-renders. Stored amounts
// are untouched.
func (s *Session) SetCurrency(code string) error {
	normalized, err := core.NormalizeCurrency(code)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if normalized == s.currency {
		return nil
	}
	s.currency = normalized
	s.refresh()
	return nil
}

func (s *Session) Currency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currency
}

func (s *Session) Balance() core.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Transactions returns the stored transactions in insertion order.
func (s *Session) Transactions() []core.Transaction {
	return s.store.All()
}

func (s *Session) Len() int {
	return s.store.Len()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Currency: s.currency,
		Balance:  s.balance,
		Table:    s.renderer.Table(),
		Scroll:   s.scroll.State(),
	}
}

// refresh recomputes the balance and re-renders the table; the renderer
// notifies the scroll controller. Callers hold s.mu.
func (s *Session) refresh() {
	txs := s.store.All()
	s.balance = core.NewBalance(txs, s.currency)
	s.renderer.Render(txs, s.currency)
}
