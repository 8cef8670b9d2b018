package services

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/musso17/facturascr/internal/core"
	"github.com/musso17/facturascr/internal/storage"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func TestFacturaServiceCreateComputesTotal(t *testing.T) {
	svc := NewFacturaService(newTestStorage(t), nil)
	ctx := context.Background()

	inv, err := svc.Create(ctx, core.InvoiceRow{
		ClientID:  "cliente-1",
		IssueDate: strPtr("2024-05-01"),
		DueDate:   strPtr("2024-07-01"),
		Amount:    numPtr(1000),
		TaxRate:   numPtr(18),
	}, testNow)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if inv.Total != 1180 {
		t.Errorf("Total = %v, want 1180", inv.Total)
	}
	if inv.Status != core.InvoicePending {
		t.Errorf("Status = %q, want %q", inv.Status, core.InvoicePending)
	}
	if inv.ID == "" {
		t.Error("expected assigned ID")
	}
}

func TestFacturaServiceApplyPayment(t *testing.T) {
	svc := NewFacturaService(newTestStorage(t), nil)
	ctx := context.Background()

	inv, err := svc.Create(ctx, core.InvoiceRow{
		ClientID:  "cliente-1",
		IssueDate: strPtr("2024-05-01"),
		DueDate:   strPtr("2024-07-01"),
		Amount:    numPtr(1000),
		TaxRate:   numPtr(18),
	}, testNow)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.ApplyPayment(ctx, 1, -5, testNow); err == nil {
		t.Error("expected error for non-positive payment")
	}

	paid, err := svc.ApplyPayment(ctx, 1, 1180, testNow)
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if paid.Status != core.InvoicePaid {
		t.Errorf("Status = %q after full payment, want %q", paid.Status, core.InvoicePaid)
	}
	if paid.Balance != 0 {
		t.Errorf("Balance = %v, want 0", paid.Balance)
	}
	if paid.ID != inv.ID {
		t.Errorf("ID = %q, want %q", paid.ID, inv.ID)
	}
}

func TestGastoServicePagadoForcesPaid(t *testing.T) {
	svc := NewGastoService(newTestStorage(t), nil)
	ctx := context.Background()

	exp, err := svc.Create(ctx, core.ExpenseRow{
		DocType:   strPtr("factura"),
		IssueDate: strPtr("2024-05-10"),
		Base:      numPtr(500),
		Tax:       numPtr(90),
		Category:  strPtr("servicios"),
		Status:    strPtr("pagado"),
	}, testNow)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if exp.Total != 590 {
		t.Errorf("Total = %v, want 590", exp.Total)
	}
	if exp.Paid != 590 {
		t.Errorf("Paid = %v, want Total for pagado status", exp.Paid)
	}
	if exp.Category != core.CategoryServicios {
		t.Errorf("Category = %q, want servicios", exp.Category)
	}
}

func TestDashboardServiceMonthly(t *testing.T) {
	repo := newTestStorage(t)
	facturas := NewFacturaService(repo, nil)
	gastos := NewGastoService(repo, nil)
	dashboard := NewDashboardService(repo, 6)
	ctx := context.Background()

	_, err := facturas.Create(ctx, core.InvoiceRow{
		ClientID:  "cliente-1",
		IssueDate: strPtr("2024-01-10"),
		DueDate:   strPtr("2024-02-10"),
		Total:     numPtr(1000),
		Paid:      numPtr(1000),
	}, testNow)
	if err != nil {
		t.Fatalf("create factura: %v", err)
	}

	_, err = gastos.Create(ctx, core.ExpenseRow{
		IssueDate: strPtr("2024-01-20"),
		Total:     numPtr(300),
		Category:  strPtr("personal"),
		Status:    strPtr("pagado"),
	}, testNow)
	if err != nil {
		t.Fatalf("create gasto: %v", err)
	}

	aggs, err := dashboard.Monthly(ctx, testNow)
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if len(aggs) != 1 {
		t.Fatalf("got %d aggregates, want 1", len(aggs))
	}

	agg := aggs[0]
	if agg.Month != "2024-01" {
		t.Errorf("Month = %q, want 2024-01", agg.Month)
	}
	if agg.Income != 1000 {
		t.Errorf("Income = %v, want 1000", agg.Income)
	}
	if agg.FixedExpenses != 300 {
		t.Errorf("FixedExpenses = %v, want 300 (personal is a fixed category)", agg.FixedExpenses)
	}
}

func TestDashboardServiceProjection(t *testing.T) {
	repo := newTestStorage(t)
	facturas := NewFacturaService(repo, nil)
	dashboard := NewDashboardService(repo, 6)
	ctx := context.Background()

	for _, month := range []string{"2024-01", "2024-02", "2024-03"} {
		_, err := facturas.Create(ctx, core.InvoiceRow{
			ClientID:  "cliente-1",
			IssueDate: strPtr(month + "-10"),
			DueDate:   strPtr(month + "-25"),
			Total:     numPtr(1200),
			Paid:      numPtr(1200),
		}, testNow)
		if err != nil {
			t.Fatalf("create factura: %v", err)
		}
	}

	report, err := dashboard.Projection(ctx, testNow, 6, 1.0)
	if err != nil {
		t.Fatalf("Projection: %v", err)
	}

	if report.Baseline.AvgIncome != 1200 {
		t.Errorf("AvgIncome = %v, want 1200", report.Baseline.AvgIncome)
	}
	if report.Baseline.CashBalance != 3600 {
		t.Errorf("CashBalance = %v, want 3600", report.Baseline.CashBalance)
	}
	if len(report.Income) != 6 {
		t.Fatalf("got %d projected months, want 6", len(report.Income))
	}
	if report.Income[0].Month != "2024-07" {
		t.Errorf("first projected month = %q, want 2024-07", report.Income[0].Month)
	}
	if len(report.Seasonality) != 12 {
		t.Errorf("got %d seasonality entries, want 12", len(report.Seasonality))
	}
	// No expenses at all, so runway never runs out.
	if !math.IsInf(report.Metrics.RunwayMonths, 1) {
		t.Errorf("RunwayMonths = %v, want +Inf", report.Metrics.RunwayMonths)
	}
}
