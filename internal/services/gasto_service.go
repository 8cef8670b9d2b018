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

// GastoService orchestrates gasto operations across SQLite and AMQP.
type GastoService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewGastoService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *GastoService {
	return &GastoService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Create normalizes and persists a new gasto, then queues it for export.
func (s *GastoService) Create(ctx context.Context, row core.ExpenseRow, now time.Time) (core.Expense, error) {
	exp := core.NormalizeExpense(row, now)

	g, err := s.storage.CreateGasto(ctx, storage.CreateGastoParams{
		DocType:     exp.DocType,
		DocNumber:   exp.DocNumber,
		SupplierID:  exp.SupplierID,
		IssueDate:   exp.IssueDate.Time.Format("2006-01-02"),
		PaymentDate: exp.DueDate.Time.Format("2006-01-02"),
		Base:        exp.Base,
		Tax:         exp.Tax,
		Retention:   exp.Retention,
		OtherTaxes:  exp.OtherTaxes,
		Total:       exp.Total,
		Paid:        exp.Paid,
		Category:    string(exp.Category),
		Status:      string(exp.Status),
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("save gasto: %w", err)
	}

	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping export message", "kind", amqp.KindGasto, "id", g.ID)
	} else if err := s.amqpClient.PublishRecordExport(ctx, amqp.KindGasto, g.ID, g.Version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"kind", amqp.KindGasto, "id", g.ID, "error", err)
	}

	return core.NormalizeExpense(g.Row(), now), nil
}

// Get loads a single gasto normalized against the given clock.
func (s *GastoService) Get(ctx context.Context, id int64, now time.Time) (core.Expense, error) {
	g, err := s.storage.GetGasto(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	return core.NormalizeExpense(g.Row(), now), nil
}

// List loads every gasto normalized against the given clock.
func (s *GastoService) List(ctx context.Context, now time.Time) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx, now)
}
