// Package worker drains the export queue: it reloads each record from
// SQLite, appends it to the spreadsheet, and records the outcome. A periodic
// scan picks up anything the queue missed.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/musso17/facturascr/internal/amqp"
	"github.com/musso17/facturascr/internal/core"
	"github.com/musso17/facturascr/internal/export"
	"github.com/musso17/facturascr/internal/storage"
)

// ExportWorker synchronizes facturas and gastos from SQLite to the export
// destination.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	appender  export.Appender
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, appender export.Appender, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single export message from the queue.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.RecordExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"kind", msg.Kind,
		"id", msg.ID,
		"version", msg.Version)

	switch msg.Kind {
	case amqp.KindFactura:
		return w.exportFactura(ctx, msg.ID)
	case amqp.KindGasto:
		return w.exportGasto(ctx, msg.ID)
	default:
		return fmt.Errorf("unknown record kind: %q", msg.Kind)
	}
}

func (w *ExportWorker) exportFactura(ctx context.Context, id int64) error {
	f, err := w.storage.GetFactura(ctx, id)
	if err != nil {
		return fmt.Errorf("load factura: %w", err)
	}
	if f.SyncStatus == "synced" {
		slog.InfoContext(ctx, "Factura already exported, skipping", "id", id)
		return nil
	}

	inv := core.NormalizeInvoice(f.Row(), time.Now())
	ref, err := w.appender.AppendFactura(ctx, inv)
	if err != nil {
		if markErr := w.storage.MarkFacturaSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append factura: %w", err)
	}

	if err := w.storage.MarkFacturaSynced(ctx, id); err != nil {
		// The append itself worked; the pending scan will retry the mark.
		slog.ErrorContext(ctx, "Failed to mark factura as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Factura exported", "id", id, "sheet_range", ref)
	return nil
}

func (w *ExportWorker) exportGasto(ctx context.Context, id int64) error {
	g, err := w.storage.GetGasto(ctx, id)
	if err != nil {
		return fmt.Errorf("load gasto: %w", err)
	}
	if g.SyncStatus == "synced" {
		slog.InfoContext(ctx, "Gasto already exported, skipping", "id", id)
		return nil
	}

	exp := core.NormalizeExpense(g.Row(), time.Now())
	ref, err := w.appender.AppendGasto(ctx, exp)
	if err != nil {
		if markErr := w.storage.MarkGastoSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append gasto: %w", err)
	}

	if err := w.storage.MarkGastoSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark gasto as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Gasto exported", "id", id, "sheet_range", ref)
	return nil
}

// ProcessPending exports records that never made it through the queue. This
// is the backup mechanism for lost messages.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	return w.processPendingBatch(ctx, w.batchSize)
}

// StartupCheck drains a larger pending backlog once at worker startup to
// recover from downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	return w.processPendingBatch(ctx, w.batchSize*5)
}

func (w *ExportWorker) processPendingBatch(ctx context.Context, limit int) error {
	pendingFacturas, err := w.storage.ListPendingFacturas(ctx, limit)
	if err != nil {
		return fmt.Errorf("list pending facturas: %w", err)
	}
	pendingGastos, err := w.storage.ListPendingGastos(ctx, limit)
	if err != nil {
		return fmt.Errorf("list pending gastos: %w", err)
	}

	if len(pendingFacturas) == 0 && len(pendingGastos) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports",
		"facturas", len(pendingFacturas),
		"gastos", len(pendingGastos))

	exported := 0
	failed := 0

	for _, p := range pendingFacturas {
		if err := w.exportFactura(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export factura", "id", p.ID, "error", err)
			failed++
			continue
		}
		exported++
	}
	for _, p := range pendingGastos {
		if err := w.exportGasto(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export gasto", "id", p.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Pending export pass completed",
		"exported", exported,
		"failed", failed)

	return nil
}
