// Package storage persists facturas and gastos in SQLite and exposes the
// resumen_impuestos view. Rows come back raw; callers run them through the
// normalizer with an explicit clock.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/musso17/facturascr/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateFactura persists a new factura and returns the stored row.
func (r *SQLiteRepository) CreateFactura(ctx context.Context, p CreateFacturaParams) (Factura, error) {
	f, err := r.queries.CreateFactura(ctx, p)
	if err != nil {
		return Factura{}, fmt.Errorf("create factura: %w", err)
	}

	slog.InfoContext(ctx, "Factura saved",
		"id", f.ID,
		"client_id", f.ClientID,
		"total", f.Total,
		"status", f.Status)

	return f, nil
}

// GetFactura retrieves a single factura by ID.
func (r *SQLiteRepository) GetFactura(ctx context.Context, id int64) (Factura, error) {
	f, err := r.queries.GetFactura(ctx, id)
	if err != nil {
		return Factura{}, fmt.Errorf("get factura %d: %w", id, err)
	}
	return f, nil
}

// ListFacturas returns every stored factura ordered by issue date.
func (r *SQLiteRepository) ListFacturas(ctx context.Context) ([]Factura, error) {
	facturas, err := r.queries.ListFacturas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list facturas: %w", err)
	}
	return facturas, nil
}

// ApplyPayment records a payment against a factura. The stored status flips
// to Pagado once the total is covered and the row is re-queued for export.
func (r *SQLiteRepository) ApplyPayment(ctx context.Context, id int64, amount float64) (Factura, error) {
	f, err := r.queries.ApplyFacturaPayment(ctx, id, amount)
	if err != nil {
		return Factura{}, fmt.Errorf("apply payment to factura %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Payment applied",
		"id", f.ID,
		"paid", f.Paid,
		"total", f.Total,
		"status", f.Status)

	return f, nil
}

// CreateGasto persists a new gasto and returns the stored row.
func (r *SQLiteRepository) CreateGasto(ctx context.Context, p CreateGastoParams) (Gasto, error) {
	g, err := r.queries.CreateGasto(ctx, p)
	if err != nil {
		return Gasto{}, fmt.Errorf("create gasto: %w", err)
	}

	slog.InfoContext(ctx, "Gasto saved",
		"id", g.ID,
		"category", g.Category,
		"total", g.Total,
		"status", g.Status)

	return g, nil
}

// GetGasto retrieves a single gasto by ID.
func (r *SQLiteRepository) GetGasto(ctx context.Context, id int64) (Gasto, error) {
	g, err := r.queries.GetGasto(ctx, id)
	if err != nil {
		return Gasto{}, fmt.Errorf("get gasto %d: %w", id, err)
	}
	return g, nil
}

// ListGastos returns every stored gasto ordered by issue date.
func (r *SQLiteRepository) ListGastos(ctx context.Context) ([]Gasto, error) {
	gastos, err := r.queries.ListGastos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gastos: %w", err)
	}
	return gastos, nil
}

// ListInvoices loads all facturas normalized against the given clock.
func (r *SQLiteRepository) ListInvoices(ctx context.Context, now time.Time) ([]core.Invoice, error) {
	facturas, err := r.ListFacturas(ctx)
	if err != nil {
		return nil, err
	}

	invoices := make([]core.Invoice, len(facturas))
	for i, f := range facturas {
		invoices[i] = core.NormalizeInvoice(f.Row(), now)
	}
	return invoices, nil
}

// ListExpenses loads all gastos normalized against the given clock.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, now time.Time) ([]core.Expense, error) {
	gastos, err := r.ListGastos(ctx)
	if err != nil {
		return nil, err
	}

	expenses := make([]core.Expense, len(gastos))
	for i, g := range gastos {
		expenses[i] = core.NormalizeExpense(g.Row(), now)
	}
	return expenses, nil
}

// ListPendingFacturas returns facturas that still need exporting.
func (r *SQLiteRepository) ListPendingFacturas(ctx context.Context, limit int) ([]PendingExport, error) {
	pending, err := r.queries.ListPendingFacturas(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending facturas: %w", err)
	}
	return pending, nil
}

// ListPendingGastos returns gastos that still need exporting.
func (r *SQLiteRepository) ListPendingGastos(ctx context.Context, limit int) ([]PendingExport, error) {
	pending, err := r.queries.ListPendingGastos(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending gastos: %w", err)
	}
	return pending, nil
}

// MarkFacturaSynced marks a factura as successfully exported.
func (r *SQLiteRepository) MarkFacturaSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkFacturaSynced(ctx, id); err != nil {
		return fmt.Errorf("mark factura synced: %w", err)
	}
	slog.InfoContext(ctx, "Factura marked as synced", "id", id)
	return nil
}

// MarkFacturaSyncError marks a factura whose export failed.
func (r *SQLiteRepository) MarkFacturaSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkFacturaSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark factura sync error: %w", err)
	}
	slog.WarnContext(ctx, "Factura marked with sync error", "id", id)
	return nil
}

// MarkGastoSynced marks a gasto as successfully exported.
func (r *SQLiteRepository) MarkGastoSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkGastoSynced(ctx, id); err != nil {
		return fmt.Errorf("mark gasto synced: %w", err)
	}
	slog.InfoContext(ctx, "Gasto marked as synced", "id", id)
	return nil
}

// MarkGastoSyncError marks a gasto whose export failed.
func (r *SQLiteRepository) MarkGastoSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkGastoSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark gasto sync error: %w", err)
	}
	slog.WarnContext(ctx, "Gasto marked with sync error", "id", id)
	return nil
}

// ReadTaxSummary reads the monthly IGV and retention summary view.
func (r *SQLiteRepository) ReadTaxSummary(ctx context.Context) ([]TaxSummary, error) {
	summaries, err := r.queries.ReadTaxSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tax summary: %w", err)
	}
	return summaries, nil
}
