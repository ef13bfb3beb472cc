// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user input
// and converting between cents and decimal representations.
package core

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to Money with proper rounding.
//
// Only a dot is a decimal separator; a comma is neither a decimal nor a
// thousands separator, so "1,000" is non-numeric. Amounts are kept in whole
// cents: input is rounded half-up to the cent, and anything that rounds to
// zero or below, such as "0.004", is rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("3.5")    -> Money{Cents: 350}, nil
//	ParseAmount("1.005")  -> Money{Cents: 101}, nil
//	ParseAmount("1,000")  -> Money{}, ErrInvalidAmount
//	ParseAmount("0")      -> Money{}, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m, ok := moneyFromDecimal(d)
	if !ok {
		return Money{}, ErrInvalidAmount
	}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// moneyFromDecimal rounds d to the cent. The second result is false when the
// value does not fit in int64 cents.
func moneyFromDecimal(d decimal.Decimal) (Money, bool) {
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return Money{}, false
	}
	return Money{Cents: cents.IntPart()}, true
}

// Decimal returns the amount as a decimal value in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount as a float64 for display and expression evaluation.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

// String formats the amount with exactly two decimals, e.g. "3.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// MarshalJSON writes the amount as a bare JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string. Stored
// amounts with more than two decimals are rounded half-up to the cent, so
// the next save writes the rounded value.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return err
	}
	v, ok := moneyFromDecimal(d)
	if !ok {
		return ErrInvalidAmount
	}
	*m = v
	return nil
}
