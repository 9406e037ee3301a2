// Package mirror defines the remote copy of the ledger: where accepted
// transactions are sent and where exports are read from.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// Operations reported in SyncError.Op.
const (
	OpPersist = "persist"
	OpFetch   = "fetch"
)

// Ports for outbound adapters.
type (
	Persister interface {
		Persist(ctx context.Context, tx core.Transaction) (Ack, error)
	}

	Fetcher interface {
		FetchAll(ctx context.Context) ([]core.Transaction, error)
	}

	Mirror interface {
		Persister
		Fetcher
	}
)

// Ack is what the remote returned for an accepted transaction.
type Ack struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Ref    string `json:"ref,omitempty"`
}

// Record is the wire form of a transaction.
type Record struct {
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
}

// NewRecord encodes tx for the create endpoint: DD/MM/YYYY date and the
// amount as a JSON number.
func NewRecord(tx core.Transaction) Record {
	return Record{
		Date:        core.FormatDate(tx.Date),
		Description: tx.Description,
		Amount:      json.Number(tx.Amount.String()),
		Type:        string(tx.Type),
	}
}

// Transaction decodes a record received from the remote. The date may be in
// any layout core.ParseDate accepts.
func (r Record) Transaction() (core.Transaction, error) {
	d, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record date %q: %w", r.Date, err)
	}
	amt, err := decimal.NewFromString(strings.TrimSpace(r.Amount.String()))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record amount %q: %w", r.Amount, core.ErrInvalidAmount)
	}
	if err := core.CheckAmount(amt); err != nil {
		return core.Transaction{}, fmt.Errorf("record amount: %w", err)
	}
	return core.Transaction{
		Date:        d,
		Description: r.Description,
		Amount:      amt,
		Type:        core.Type(r.Type),
	}, nil
}

// Decode converts a fetched list, failing on the first malformed record.
func Decode(records []Record) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(records))
	for i, r := range records {
		tx, err := r.Transaction()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// SyncError wraps every failure to talk to the remote.
type SyncError struct {
	Op     string
	Status int // HTTP status when the remote answered, 0 otherwise
	Err    error
}

func (e *SyncError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("mirror %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("mirror %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// ErrDisabled is returned by Nop.FetchAll.
var ErrDisabled = errors.New("no mirror configured")

// Nop accepts every transaction without sending it anywhere and has nothing
// to export.
type Nop struct{}

var _ Mirror = Nop{}

func (Nop) Persist(context.Context, core.Transaction) (Ack, error) {
	return Ack{Status: "skipped"}, nil
}

func (Nop) FetchAll(context.Context) ([]core.Transaction, error) {
	return nil, &SyncError{Op: OpFetch, Err: ErrDisabled}
}
