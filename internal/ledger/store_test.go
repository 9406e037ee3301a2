package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

func TestStoreAppendKeepsOrder(t *testing.T) {
	s := NewStore()
	for _, d := range []string{"b", "a", "b"} {
		if err := s.Append(core.Transaction{Date: core.Today(), Description: d, Amount: decimal.NewFromInt(1), Type: core.Income}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	all := s.All()
	if len(all) != 3 || all[0].Description != "b" || all[1].Description != "a" || all[2].Description != "b" {
		t.Fatalf("unexpected order: %+v", all)
	}

	all[0].Description = "changed"
	if s.All()[0].Description != "b" {
		t.Fatal("All must return a copy")
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	s := NewStore()
	err := s.Append(core.Transaction{Date: core.Today(), Description: "x", Amount: decimal.NewFromInt(-1), Type: core.Expense})
	if err == nil {
		t.Fatal("expected error for negative amount")
	}
	if s.Len() != 0 {
		t.Fatalf("len = %d, want 0", s.Len())
	}
}
