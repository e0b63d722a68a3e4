// This file contains helpers for parsing monetary amounts from user
// input and keeping them at two decimal places.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are empty, unparseable,
// or not strictly positive.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a decimal string to a positive amount rounded to
// two decimal places.
//
// It tolerates the noise users type into money fields: a leading "$",
// thousands separators, and surrounding whitespace. Rounding is half-up
// on the third decimal place. Returns ErrInvalidAmount for anything
// that is not a strictly positive number.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34, nil
//	ParseAmount("$1,200.50") -> 1200.50, nil
//	ParseAmount("12.346")    -> 12.35, nil
//	ParseAmount("-5")        -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseNonNegativeAmount is ParseAmount with zero allowed. Used for the
// current-spending figure a budget may start from.
func ParseNonNegativeAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with exactly two decimal places, the
// representation used on the wire and in storage.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
