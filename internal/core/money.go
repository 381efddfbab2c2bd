// Package core provides amount parsing and formatting utilities.
//
// This file contains the input-boundary validation for user supplied
// amounts and titles, and the currency-aware display of amounts.
package core

import (
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Amounts are stored and served as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ParseAmount converts a user supplied decimal string into a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rejects signs, exponents, grouping characters, zero and empty input.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ValidateInput checks a title/amount pair coming from a form or a command
// line before it reaches the ledger. The ledger itself accepts anything.
func ValidateInput(title, amount string) (string, decimal.Decimal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", decimal.Zero, ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return "", decimal.Zero, ErrTitleTooLong
	}
	d, err := ParseAmount(amount)
	if err != nil {
		return "", decimal.Zero, err
	}
	return title, d, nil
}

// FormatAmount renders an amount with the symbol and separators of the
// given ISO currency code.
func FormatAmount(amount decimal.Decimal, code string) string {
	// money.New never returns a nil currency, GetCurrency may.
	cur := money.New(0, code).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
