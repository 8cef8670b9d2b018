package finance

import (
	"testing"
	"time"

	"github.com/musso17/facturascr/internal/core"
)

var aggNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)

func invoice(issue string, amount, taxRate float64) core.Invoice {
	a, r := amount, taxRate
	return core.NormalizeInvoice(core.InvoiceRow{
		ID:        "f-" + issue,
		IssueDate: &issue,
		Amount:    &a,
		TaxRate:   &r,
	}, aggNow)
}

func expense(issue string, base float64, cat core.Category) core.Expense {
	b, c := base, string(cat)
	return core.NormalizeExpense(core.ExpenseRow{
		ID:        "g-" + issue,
		IssueDate: &issue,
		Base:      &b,
		Category:  &c,
	}, aggNow)
}

func TestMonthlyAggregatesSplit(t *testing.T) {
	// income {2024-01: 1000, 2024-02: 2000}, expenses {2024-01: 300 servicios,
	// 2024-02: 100 personal}
	aggs := MonthlyAggregates(
		[]core.Invoice{invoice("2024-01-10", 1000, 0), invoice("2024-02-20", 2000, 0)},
		[]core.Expense{expense("2024-01-05", 300, core.CategoryServicios), expense("2024-02-07", 100, core.CategoryPersonal)},
		core.DefaultFixedCategories(),
	)
	if len(aggs) != 2 {
		t.Fatalf("expected 2 months, got %d", len(aggs))
	}
	jan, feb := aggs[0], aggs[1]
	if jan.Month != "2024-01" || feb.Month != "2024-02" {
		t.Fatalf("months out of order: %s, %s", jan.Month, feb.Month)
	}
	if jan.Income != 1000 || jan.VariableExpenses != 300 || jan.FixedExpenses != 0 {
		t.Fatalf("jan = %+v", jan)
	}
	if feb.Income != 2000 || feb.VariableExpenses != 0 || feb.FixedExpenses != 100 {
		t.Fatalf("feb = %+v", feb)
	}
}

func TestMonthlyAggregatesDisjointMonths(t *testing.T) {
	aggs := MonthlyAggregates(
		[]core.Invoice{invoice("2024-01-10", 500, 18)},
		[]core.Expense{expense("2024-03-10", 200, core.CategoryMateriales)},
		core.DefaultFixedCategories(),
	)
	if len(aggs) != 2 {
		t.Fatalf("expected 2 sparse months, got %d", len(aggs))
	}
	if aggs[0].TotalExpenses != 0 {
		t.Fatalf("invoice-only month should have zero expenses, got %v", aggs[0].TotalExpenses)
	}
	if aggs[1].Income != 0 {
		t.Fatalf("expense-only month should have zero income, got %v", aggs[1].Income)
	}
}

func TestMonthlyAggregatesConservation(t *testing.T) {
	invoices := []core.Invoice{
		invoice("2023-11-01", 1234.56, 18),
		invoice("2023-11-15", 10, 18),
		invoice("2024-02-01", 99.99, 0),
	}
	expenses := []core.Expense{
		expense("2023-11-03", 500, core.CategoryPersonal),
		expense("2024-01-20", 77.77, core.CategoryMarketing),
	}
	aggs := MonthlyAggregates(invoices, expenses, core.DefaultFixedCategories())

	seen := make(map[string]bool)
	var income, expSum float64
	for _, agg := range aggs {
		if seen[agg.Month] {
			t.Fatalf("duplicate month key %s", agg.Month)
		}
		seen[agg.Month] = true
		income += agg.Income
		expSum += agg.FixedExpenses + agg.VariableExpenses
	}

	var wantIncome, wantExp float64
	for _, inv := range invoices {
		wantIncome += inv.Total
	}
	for _, e := range expenses {
		wantExp += e.Total
	}
	if core.Round2(income) != core.Round2(wantIncome) {
		t.Fatalf("income sum %v != invoice total sum %v", income, wantIncome)
	}
	if core.Round2(expSum) != core.Round2(wantExp) {
		t.Fatalf("expense sum %v != expense total sum %v", expSum, wantExp)
	}
}

func TestMonthlyAggregatesDeterministic(t *testing.T) {
	invoices := []core.Invoice{invoice("2024-01-10", 1000, 18), invoice("2024-02-20", 2000, 18)}
	expenses := []core.Expense{expense("2024-01-05", 300, core.CategoryServicios)}
	fixed := core.DefaultFixedCategories()

	first := MonthlyAggregates(invoices, expenses, fixed)
	second := MonthlyAggregates(invoices, expenses, fixed)
	if len(first) != len(second) {
		t.Fatalf("length mismatch across runs")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("run divergence at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
