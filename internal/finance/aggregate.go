// Package finance implements the aggregation and projection engine: monthly
// aggregates, the cost-behavior baseline, break-even and runway metrics,
// seasonality analysis and the forward income projection.
//
// Everything here is a pure function over fully materialized inputs. The
// wall clock is always an explicit parameter so results are reproducible.
package finance

import (
	"sort"

	"github.com/musso17/facturascr/internal/core"
)

// MonthlyAggregate is the derived activity of one calendar month. It is
// rebuilt from the full record set on every computation and never mutated
// in place.
type MonthlyAggregate struct {
	Month            string  `json:"mes"` // YYYY-MM
	Income           float64 `json:"ingresos"`
	FixedExpenses    float64 `json:"gastos_fijos"`
	VariableExpenses float64 `json:"gastos_variables"`
	TotalExpenses    float64 `json:"gastos_totales"`
}

// MonthlyAggregates buckets invoices and expenses into calendar-month
// aggregates, ascending by month key. Expenses split into fixed and variable
// according to the fixed category set. Months with no activity produce no
// entry.
func MonthlyAggregates(invoices []core.Invoice, expenses []core.Expense, fixed core.CategorySet) []MonthlyAggregate {
	byMonth := make(map[string]*MonthlyAggregate)

	bucket := func(key string) *MonthlyAggregate {
		agg, ok := byMonth[key]
		if !ok {
			agg = &MonthlyAggregate{Month: key}
			byMonth[key] = agg
		}
		return agg
	}

	for _, inv := range invoices {
		bucket(inv.IssueDate.MonthKey()).Income += inv.Total
	}
	for _, exp := range expenses {
		agg := bucket(exp.IssueDate.MonthKey())
		if fixed.Has(exp.Category) {
			agg.FixedExpenses += exp.Total
		} else {
			agg.VariableExpenses += exp.Total
		}
	}

	out := make([]MonthlyAggregate, 0, len(byMonth))
	for _, agg := range byMonth {
		agg.Income = core.Round2(agg.Income)
		agg.FixedExpenses = core.Round2(agg.FixedExpenses)
		agg.VariableExpenses = core.Round2(agg.VariableExpenses)
		agg.TotalExpenses = core.Round2(agg.FixedExpenses + agg.VariableExpenses)
		out = append(out, *agg)
	}
	// Lexicographic order is chronological for YYYY-MM keys.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
