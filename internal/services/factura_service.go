// Package services orchestrates record writes across SQLite and the export
// queue. Local persistence always wins: a broker failure is logged, never
// surfaced to the caller.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/musso17/facturascr/internal/amqp"
	"github.com/musso17/facturascr/internal/core"
	"github.com/musso17/facturascr/internal/storage"
)

// FacturaService orchestrates factura operations across SQLite and AMQP.
type FacturaService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewFacturaService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *FacturaService {
	return &FacturaService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Create normalizes and persists a new factura, then queues it for export.
func (s *FacturaService) Create(ctx context.Context, row core.InvoiceRow, now time.Time) (core.Invoice, error) {
	inv := core.NormalizeInvoice(row, now)

	f, err := s.storage.CreateFactura(ctx, storage.CreateFacturaParams{
		ClientID:  inv.ClientID,
		IssueDate: inv.IssueDate.Time.Format("2006-01-02"),
		DueDate:   inv.DueDate.Time.Format("2006-01-02"),
		Amount:    inv.Amount,
		TaxRate:   inv.TaxRate,
		Total:     inv.Total,
		Paid:      inv.Paid,
		Status:    string(inv.Status),
	})
	if err != nil {
		return core.Invoice{}, fmt.Errorf("save factura: %w", err)
	}

	s.publishExport(ctx, amqp.KindFactura, f.ID, f.Version)
	return core.NormalizeInvoice(f.Row(), now), nil
}

// Get loads a single factura normalized against the given clock.
func (s *FacturaService) Get(ctx context.Context, id int64, now time.Time) (core.Invoice, error) {
	f, err := s.storage.GetFactura(ctx, id)
	if err != nil {
		return core.Invoice{}, err
	}
	return core.NormalizeInvoice(f.Row(), now), nil
}

// List loads every factura normalized against the given clock.
func (s *FacturaService) List(ctx context.Context, now time.Time) ([]core.Invoice, error) {
	return s.storage.ListInvoices(ctx, now)
}

// ApplyPayment records a payment and re-queues the factura for export.
func (s *FacturaService) ApplyPayment(ctx context.Context, id int64, amount float64, now time.Time) (core.Invoice, error) {
	if amount <= 0 {
		return core.Invoice{}, fmt.Errorf("payment amount must be positive, got %v", amount)
	}

	f, err := s.storage.ApplyPayment(ctx, id, amount)
	if err != nil {
		return core.Invoice{}, err
	}

	s.publishExport(ctx, amqp.KindFactura, f.ID, f.Version)
	return core.NormalizeInvoice(f.Row(), now), nil
}

func (s *FacturaService) publishExport(ctx context.Context, kind amqp.RecordKind, id, version int64) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping export message", "kind", kind, "id", id)
		return
	}
	if err := s.amqpClient.PublishRecordExport(ctx, kind, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"kind", kind, "id", id, "error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *FacturaService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close factura service: %v", errs)
	}
	return nil
}
