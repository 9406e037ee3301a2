package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/table"
)

type recordingSyncer struct {
	mu  sync.Mutex
	txs []core.Transaction
}

func (r *recordingSyncer) PersistAsync(tx core.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, tx)
}

func (r *recordingSyncer) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.txs)
}

func newSession(t *testing.T, currency string) (*Session, *recordingSyncer) {
	t.Helper()
	syncer := &recordingSyncer{}
	s, err := NewSession(currency, syncer, nil)
	require.NoError(t, err)
	return s, syncer
}

func today() string { return core.FormatDate(core.Today()) }

func TestAddCoffeeEndToEnd(t *testing.T) {
	s, syncer := newSession(t, "USD")

	tx, err := s.Add(context.Background(), Input{Description: "Coffee", Amount: "3.5", Type: "expense", Date: today()})
	require.NoError(t, err)
	assert.Equal(t, "Coffee", tx.Description)

	v := s.View()
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "$-3.50", v.Balance.Formatted)
	assert.True(t, v.Balance.Negative)
	require.Equal(t, 1, v.Table.Len())
	assert.Equal(t, []string{today(), "Coffee", "$3.50", "expense"}, v.Table.Rows[0].Cells())
	assert.Equal(t, table.Compact, v.Scroll)
	assert.Equal(t, 1, syncer.calls())
}

func TestAddBalanceDeltas(t *testing.T) {
	cases := []struct {
		typ   string
		delta string
	}{
		{"income", "10"},
		{"expense", "-10"},
		{"transfer", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.typ, func(t *testing.T) {
			s, _ := newSession(t, "USD")
			_, err := s.Add(context.Background(), Input{Description: "seed", Amount: "5", Type: "income", Date: today()})
			require.NoError(t, err)
			before := s.Balance().Amount

			_, err = s.Add(context.Background(), Input{Description: "x", Amount: "10", Type: tc.typ, Date: today()})
			require.NoError(t, err)

			assert.Equal(t, 2, s.Len())
			assert.True(t, s.Balance().Amount.Sub(before).Equal(decimal.RequireFromString(tc.delta)),
				"delta = %s", s.Balance().Amount.Sub(before))
		})
	}
}

func TestAddInvalidIsDropped(t *testing.T) {
	cases := []struct {
		name  string
		in    Input
		field string
		want  error
	}{
		{"empty description", Input{Description: "  ", Amount: "1", Type: "income", Date: today()}, "description", core.ErrEmptyDescription},
		{"bad amount", Input{Description: "x", Amount: "abc", Type: "income", Date: today()}, "amount", core.ErrInvalidAmount},
		{"exponent amount", Input{Description: "x", Amount: "1e50000000", Type: "income", Date: today()}, "amount", core.ErrInvalidAmount},
		{"negative amount", Input{Description: "x", Amount: "-1", Type: "income", Date: today()}, "amount", core.ErrNegativeAmount},
		{"bad date", Input{Description: "x", Amount: "1", Type: "income", Date: "32/01/2024"}, "date", core.ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, syncer := newSession(t, "USD")
			_, err := s.Add(context.Background(), Input{Description: "ok", Amount: "2", Type: "expense", Date: today()})
			require.NoError(t, err)
			before := s.View()

			_, err = s.Add(context.Background(), tc.in)
			var ve *core.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.True(t, errors.Is(err, tc.want))

			assert.Equal(t, 1, s.Len())
			assert.Equal(t, before.Balance.Formatted, s.Balance().Formatted)
			assert.Equal(t, before.Table, s.View().Table)
			assert.Equal(t, 1, syncer.calls())
		})
	}
}

func TestDuplicatesAreKept(t *testing.T) {
	s, _ := newSession(t, "EUR")
	in := Input{Description: "Bread", Amount: "1,20", Type: "expense", Date: "01/02/2024"}
	for i := 0; i < 2; i++ {
		_, err := s.Add(context.Background(), in)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "€-2,40", s.Balance().Formatted)
}

func TestScrollStateFollowsRows(t *testing.T) {
	s, _ := newSession(t, "USD")
	for i := 1; i <= 11; i++ {
		_, err := s.Add(context.Background(), Input{Description: fmt.Sprintf("t%d", i), Amount: "1", Type: "income", Date: today()})
		require.NoError(t, err)
		want := table.Compact
		if i > table.ScrollThreshold {
			want = table.Scrollable
		}
		assert.Equal(t, want, s.View().Scroll, "after %d rows", i)
	}
}

func TestSetCurrencyRerenders(t *testing.T) {
	s, _ := newSession(t, "USD")
	_, err := s.Add(context.Background(), Input{Description: "Salary", Amount: "1234.5", Type: "income", Date: today()})
	require.NoError(t, err)

	require.NoError(t, s.SetCurrency("eur"))
	v := s.View()
	assert.Equal(t, "EUR", v.Currency)
	assert.Equal(t, "€1234,50", v.Balance.Formatted)
	assert.Equal(t, "€1234,50", v.Table.Rows[0].Amount)
	assert.True(t, s.Transactions()[0].Amount.Equal(decimal.RequireFromString("1234.5")))

	err = s.SetCurrency("XXQ")
	assert.ErrorIs(t, err, core.ErrUnknownCurrency)
	assert.Equal(t, "EUR", s.Currency())
}

func TestNewSessionRejectsUnknownCurrency(t *testing.T) {
	_, err := NewSession("nope", nil, nil)
	assert.ErrorIs(t, err, core.ErrUnknownCurrency)
}

func TestNilSyncer(t *testing.T) {
	s, err := NewSession("INR", nil, nil)
	require.NoError(t, err)
	_, err = s.Add(context.Background(), Input{Description: "Tea", Amount: "20", Type: "expense", Date: today()})
	require.NoError(t, err)
	assert.Equal(t, "₹-20.00", s.Balance().Formatted)
}

func TestConcurrentAdds(t *testing.T) {
	s, syncer := newSession(t, "USD")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Add(context.Background(), Input{Description: "c", Amount: "1", Type: "income", Date: today()})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
	assert.Equal(t, 50, s.View().Table.Len())
	assert.Equal(t, "$50.00", s.Balance().Formatted)
	assert.Equal(t, 50, syncer.calls())
}
