// Package money provides an exact monetary value in minor currency units.
//
// Amounts are integers (pence, cents) to avoid fractional rounding errors.
// All operations return a new value; Money is never mutated in place.
package money

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no explicit currency is given.
const DefaultCurrency = "GBP"

// minorUnitExponent is the number of decimal places in the minor unit
// representation (2 for pence/cents).
const minorUnitExponent = 2

// Sentinel errors for money validation.
var (
	ErrNegativeAmount   = errors.New("money cannot be negative")
	ErrMissingCurrency  = errors.New("currency is required")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

// Money is a non-negative amount of a single currency, in minor units.
// Use New or Zero to construct usable values.
type Money struct {
	amount   int64
	currency string
}

// New returns a Money of amount minor units in the given currency.
func New(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeAmount
	}
	if currency == "" {
		return Money{}, ErrMissingCurrency
	}
	return Money{amount: amount, currency: currency}, nil
}

// Zero returns a zero-valued Money in the given currency. It panics on an
// empty currency, which is a programming error at the call site.
func Zero(currency string) Money {
	m, err := New(0, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Amount returns the value in minor currency units.
func (m Money) Amount() int64 { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() string { return m.currency }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount == 0 }

// Add returns the sum of m and other. The currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, errors.Wrapf(ErrCurrencyMismatch, "%s vs %s", m.currency, other.currency)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Multiply returns m scaled by qty. Exact integer arithmetic, no rounding.
func (m Money) Multiply(qty int64) (Money, error) {
	if qty <= 0 {
		return Money{}, ErrInvalidQuantity
	}
	return Money{amount: m.amount * qty, currency: m.currency}, nil
}

// Decimal returns the amount in major currency units, e.g. 2650 pence
// becomes 26.50.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -minorUnitExponent)
}

// String renders the amount in major units with the currency code,
// e.g. "26.50 GBP".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(minorUnitExponent), m.currency)
}
