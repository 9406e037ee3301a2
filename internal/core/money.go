// Package core provides the ledger's value types and the pure functions
// around them.
//
// This file contains amount parsing and currency formatting. Amounts are
// decimals so that balances never pick up binary floating point noise.
package core

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"INR": "₹",
}

var decimalSeparators = map[string]string{
	"EUR": ",",
}

// Amounts must stay below 10^MaxAmountDigits in magnitude and carry at most
// MaxAmountScale fractional digits. Exponent notation such as "1e50000000"
// is otherwise a valid decimal whose rendering runs to millions of digits.
const (
	MaxAmountDigits = 15
	MaxAmountScale  = 8
)

var maxAmount = decimal.New(1, MaxAmountDigits)

// CheckAmount reports ErrInvalidAmount for amounts outside the bounds above.
// The exponent is checked first so that comparing never rescales a huge value.
func CheckAmount(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp < -MaxAmountScale || exp > MaxAmountDigits || !d.Abs().LessThan(maxAmount) {
		return fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}
	return nil
}

// ParseAmount converts user input to a non-negative decimal.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// NaN and infinities cannot be represented and are rejected as invalid, as
// are amounts that fail CheckAmount.
//
// Examples:
//
//	ParseAmount("3.5")  -> 3.5, nil
//	ParseAmount("3,50") -> 3.5, nil
//	ParseAmount("-1")   -> 0, ErrNegativeAmount
//	ParseAmount("abc")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// FormatCurrency renders amount with two decimals, the currency symbol and
// the currency's decimal separator. Codes without a known symbol are
// rendered bare, and the minus sign follows the symbol: "$-5.00".
func FormatCurrency(amount decimal.Decimal, code string) string {
	s := amount.StringFixed(2)
	if sep, ok := decimalSeparators[code]; ok {
		s = strings.Replace(s, ".", sep, 1)
	}
	return currencySymbols[code] + s
}

// ValidCurrency reports whether code is an ISO 4217 code.
func ValidCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// NormalizeCurrency trims and upper-cases code and checks it against the
// ISO registry.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !ValidCurrency(code) {
		return "", &ValidationError{Field: "currency", Err: ErrUnknownCurrency}
	}
	return code, nil
}
