package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tx(amount string, typ Type) Transaction {
	return Transaction{
		Date:        NewDate(2024, 1, 1),
		Description: "t",
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
	}
}

func TestComputeBalance(t *testing.T) {
	cases := []struct {
		name string
		txs  []Transaction
		want string
	}{
		{"empty", nil, "0"},
		{"income only", []Transaction{tx("10", Income), tx("2.5", Income)}, "12.5"},
		{"mixed", []Transaction{tx("10", Income), tx("3.5", Expense)}, "6.5"},
		{"unknown ignored", []Transaction{tx("10", Income), tx("100", Type("refund"))}, "10"},
		{"negative", []Transaction{tx("0.1", Income), tx("0.3", Expense)}, "-0.2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeBalance(tc.txs)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestNewBalance(t *testing.T) {
	b := NewBalance([]Transaction{tx("3.5", Expense)}, "USD")
	if b.Formatted != "$-3.50" || !b.Negative {
		t.Fatalf("unexpected balance: %+v", b)
	}
	b = NewBalance(nil, "EUR")
	if b.Formatted != "€0,00" || b.Negative {
		t.Fatalf("unexpected empty balance: %+v", b)
	}
}
