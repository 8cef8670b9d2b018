package core

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.Local)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func TestNormalizeInvoiceDefaults(t *testing.T) {
	inv := NormalizeInvoice(InvoiceRow{ID: "f1"}, testNow)
	if inv.Amount != 0 || inv.TaxRate != 0 || inv.Total != 0 || inv.Paid != 0 || inv.Balance != 0 {
		t.Fatalf("expected zero amounts, got %+v", inv)
	}
	if !inv.IssueDate.Fallback || !inv.DueDate.Fallback {
		t.Fatalf("missing dates should be marked as fallback")
	}
	if inv.Status != InvoicePaid {
		t.Fatalf("zero balance must resolve to Pagado, got %s", inv.Status)
	}
}

func TestNormalizeInvoiceComputedTotal(t *testing.T) {
	inv := NormalizeInvoice(InvoiceRow{
		ID:        "f2",
		IssueDate: strPtr("2024-05-01"),
		DueDate:   strPtr("2024-07-01"),
		Amount:    numPtr(1000),
		TaxRate:   numPtr(18),
	}, testNow)
	if inv.Total != 1180 {
		t.Fatalf("total = %v, want 1180", inv.Total)
	}
	if inv.Balance != 1180 {
		t.Fatalf("balance = %v, want 1180", inv.Balance)
	}
	if inv.Status != InvoicePending {
		t.Fatalf("status = %s, want Pendiente", inv.Status)
	}
}

func TestNormalizeInvoiceStatusRules(t *testing.T) {
	cases := []struct {
		name   string
		due    string
		paid   float64
		status *string
		want   InvoiceStatus
	}{
		{"overpaid wins over persisted pending", "2024-07-01", 2000, strPtr("Pendiente"), InvoicePaid},
		{"exactly paid", "2024-07-01", 1180, nil, InvoicePaid},
		{"past due", "2024-06-01", 0, nil, InvoiceOverdue},
		{"due today is not overdue", "2024-06-15", 0, nil, InvoicePending},
		{"persisted overdue honored while unpaid", "2024-07-01", 100, strPtr("Vencido"), InvoiceOverdue},
		{"persisted paid ignored while balance positive", "2024-07-01", 100, strPtr("Pagado"), InvoicePending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := NormalizeInvoice(InvoiceRow{
				ID:        "f3",
				IssueDate: strPtr("2024-05-01"),
				DueDate:   strPtr(tc.due),
				Amount:    numPtr(1000),
				TaxRate:   numPtr(18),
				Paid:      numPtr(tc.paid),
				Status:    tc.status,
			}, testNow)
			if inv.Status != tc.want {
				t.Fatalf("status = %s, want %s", inv.Status, tc.want)
			}
			if inv.Balance < 0 {
				t.Fatalf("balance must never be negative, got %v", inv.Balance)
			}
		})
	}
}

func TestNormalizeExpensePaidOverride(t *testing.T) {
	exp := NormalizeExpense(ExpenseRow{
		ID:        "g1",
		IssueDate: strPtr("2024-04-10"),
		Base:      numPtr(500),
		Tax:       numPtr(90),
		Retention: numPtr(40),
		Paid:      numPtr(123.45), // stale partial payment
		Category:  strPtr("servicios"),
		Status:    strPtr("pagado"),
	}, testNow)
	if exp.Total != 550 {
		t.Fatalf("total = %v, want 550", exp.Total)
	}
	if exp.Paid != exp.Total {
		t.Fatalf("pagado status must force paid == total, got paid=%v total=%v", exp.Paid, exp.Total)
	}
}

func TestNormalizeExpenseUnknownCategory(t *testing.T) {
	exp := NormalizeExpense(ExpenseRow{
		ID:       "g2",
		Base:     numPtr(100),
		Category: strPtr("combustible"),
	}, testNow)
	if exp.Category != CategoryOtros {
		t.Fatalf("unknown category should fall back to otros, got %s", exp.Category)
	}
}

func TestParseDateFallback(t *testing.T) {
	cases := []struct {
		in       string
		fallback bool
	}{
		{"2024-01-31", false},
		{"2024-01-31T15:04:05Z", false},
		{"", true},
		{"31/01/2024", true},
		{"garbage", true},
	}
	for _, tc := range cases {
		got := ParseDate(tc.in, testNow)
		if got.Fallback != tc.fallback {
			t.Fatalf("ParseDate(%q).Fallback = %v, want %v", tc.in, got.Fallback, tc.fallback)
		}
		if tc.fallback && !got.Time.Equal(testNow) {
			t.Fatalf("fallback date must be the reference instant")
		}
	}
}

func TestMonthKey(t *testing.T) {
	d := ParseDate("2024-03-05", testNow)
	if got := d.MonthKey(); got != "2024-03" {
		t.Fatalf("MonthKey = %q, want 2024-03", got)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.2345, 1.23},
		{1.236, 1.24},
		{-1.236, -1.24},
		{1180.0000001, 1180},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
