package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

type (
	// Type is the direction of a transaction. Values other than Income and
	// Expense are kept as entered and do not move the balance.
	Type string

	Transaction struct {
		Date        Date
		Description string
		Amount      decimal.Decimal // magnitude, never negative
		Type        Type
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("negative amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrUnknownCurrency  = errors.New("unknown currency")
)

// ValidationError reports which input field was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Known reports whether t is income or expense.
func (t Type) Known() bool {
	return t == Income || t == Expense
}

// Signed returns the contribution of amount to a balance.
func (t Type) Signed(amount decimal.Decimal) decimal.Decimal {
	switch t {
	case Income:
		return amount
	case Expense:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}

func (tx Transaction) Validate() error {
	if strings.TrimSpace(tx.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if tx.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Err: ErrNegativeAmount}
	}
	if err := CheckAmount(tx.Amount); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if err := tx.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	return nil
}

// NewTransaction builds a transaction from raw form values.
//
// The description is kept as entered (only blank values are rejected), the
// amount accepts either '.' or ',' as decimal separator and the date accepts
// every layout understood by ParseDate. The type is not restricted.
func NewTransaction(description, amount, typ, date string) (Transaction, error) {
	if strings.TrimSpace(description) == "" {
		return Transaction{}, &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	amt, err := ParseAmount(amount)
	if err != nil {
		return Transaction{}, &ValidationError{Field: "amount", Err: err}
	}
	d, err := ParseDate(date)
	if err != nil {
		return Transaction{}, &ValidationError{Field: "date", Err: err}
	}
	tx := Transaction{
		Date:        d,
		Description: description,
		Amount:      amt,
		Type:        Type(strings.TrimSpace(typ)),
	}
	return tx, tx.Validate()
}
