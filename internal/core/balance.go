package core

import "github.com/shopspring/decimal"

// Balance is the net total of a set of transactions, ready for display.
type Balance struct {
	Amount    decimal.Decimal
	Formatted string
	Negative  bool
}

// ComputeBalance sums income and subtracts expense. Transactions with any
// other type contribute nothing.
func ComputeBalance(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Type.Signed(tx.Amount))
	}
	return total
}

func NewBalance(txs []Transaction, currency string) Balance {
	amount := ComputeBalance(txs)
	return Balance{
		Amount:    amount,
		Formatted: FormatCurrency(amount, currency),
		Negative:  amount.IsNegative(),
	}
}
