// Package core holds the canonical in-memory records and the normalization
// rules that turn raw persisted rows into them.
//
// This file contains the monetary rounding helpers. Amounts are float64 in
// soles; every figure leaving a constructor is rounded to 2 decimals.
package core

import "math"

// Round2 rounds v to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// InvoiceTotal computes the gross total for a base amount and a tax rate
// expressed as a percentage (18 means 18% IGV).
func InvoiceTotal(amount, taxRate float64) float64 {
	return Round2(amount * (1 + taxRate/100))
}

// ExpenseTotal computes the payable total of an expense document.
// IR retention is withheld, so it reduces what actually leaves the account.
func ExpenseTotal(base, tax, retention, otherTaxes float64) float64 {
	return Round2(base + tax + otherTaxes - retention)
}
