// Package table projects transactions into the ledger table and tracks the
// scroll mode the table is displayed in.
package table

import (
	"sync"

	"ledger/internal/core"
)

// Header is the fixed first row of every rendered table.
var Header = []string{"Date", "Description", "Amount", "Type"}

// Row is one rendered transaction.
type Row struct {
	Date        string
	Description string
	Amount      string
	Type        string
	Negative    bool
}

// Cells returns the row in header order.
func (r Row) Cells() []string {
	return []string{r.Date, r.Description, r.Amount, r.Type}
}

type Table struct {
	Header []string
	Rows   []Row
}

// Len is the number of data rows, excluding the header.
func (t Table) Len() int { return len(t.Rows) }

// Render builds the full table for txs in store order. Rendering the same
// input twice yields equal tables.
func Render(txs []core.Transaction, currency string) Table {
	t := Table{
		Header: append([]string(nil), Header...),
		Rows:   make([]Row, 0, len(txs)),
	}
	for _, tx := range txs {
		t.Rows = append(t.Rows, Row{
			Date:        core.FormatDate(tx.Date),
			Description: tx.Description,
			Amount:      core.FormatCurrency(tx.Amount, currency),
			Type:        string(tx.Type),
			Negative:    tx.Type == core.Expense,
		})
	}
	return t
}

// Renderer holds the currently displayed table and notifies subscribers
// every time it is replaced.
type Renderer struct {
	mu          sync.Mutex
	current     Table
	subscribers []func(rows int)
}

func NewRenderer() *Renderer {
	return &Renderer{current: Render(nil, "")}
}

// Subscribe registers fn to be called with the data-row count after each
// render.
func (r *Renderer) Subscribe(fn func(rows int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// Render replaces the current table and notifies subscribers.
func (r *Renderer) Render(txs []core.Transaction, currency string) Table {
	t := Render(txs, currency)

	r.mu.Lock()
	r.current = t
	subs := append(([]func(int))(nil), r.subscribers...)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(t.Len())
	}
	return t
}

// Table returns the table as last rendered.
func (r *Renderer) Table() Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
