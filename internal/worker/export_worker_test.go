package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/musso17/facturascr/internal/amqp"
	"github.com/musso17/facturascr/internal/core"
	"github.com/musso17/facturascr/internal/storage"
)

type fakeAppender struct {
	facturas []core.Invoice
	gastos   []core.Expense
	fail     bool
}

func (f *fakeAppender) AppendFactura(_ context.Context, inv core.Invoice) (string, error) {
	if f.fail {
		return "", errors.New("sheets unavailable")
	}
	f.facturas = append(f.facturas, inv)
	return "Facturas!A2:J2", nil
}

func (f *fakeAppender) AppendGasto(_ context.Context, exp core.Expense) (string, error) {
	if f.fail {
		return "", errors.New("sheets unavailable")
	}
	f.gastos = append(f.gastos, exp)
	return "Gastos!A2:N2", nil
}

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedFactura(t *testing.T, repo *storage.SQLiteRepository) storage.Factura {
	t.Helper()

	f, err := repo.CreateFactura(context.Background(), storage.CreateFacturaParams{
		ClientID:  "cliente-1",
		IssueDate: "2024-01-10",
		DueDate:   "2024-02-10",
		Amount:    1000,
		TaxRate:   18,
		Total:     1180,
		Status:    "Pendiente",
	})
	if err != nil {
		t.Fatalf("CreateFactura: %v", err)
	}
	return f
}

func TestHandleExportMessageFactura(t *testing.T) {
	repo := newTestStorage(t)
	appender := &fakeAppender{}
	w := NewExportWorker(repo, appender, 10)
	ctx := context.Background()

	f := seedFactura(t, repo)

	msg := amqp.NewRecordExportMessage(amqp.KindFactura, f.ID, f.Version)
	if err := w.HandleExportMessage(ctx, msg); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}

	if len(appender.facturas) != 1 {
		t.Fatalf("appended %d facturas, want 1", len(appender.facturas))
	}
	if appender.facturas[0].Total != 1180 {
		t.Errorf("appended Total = %v, want 1180", appender.facturas[0].Total)
	}

	stored, err := repo.GetFactura(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetFactura: %v", err)
	}
	if stored.SyncStatus != "synced" {
		t.Errorf("SyncStatus = %q, want synced", stored.SyncStatus)
	}
}

func TestHandleExportMessageSkipsSynced(t *testing.T) {
	repo := newTestStorage(t)
	appender := &fakeAppender{}
	w := NewExportWorker(repo, appender, 10)
	ctx := context.Background()

	f := seedFactura(t, repo)
	if err := repo.MarkFacturaSynced(ctx, f.ID); err != nil {
		t.Fatalf("MarkFacturaSynced: %v", err)
	}

	msg := amqp.NewRecordExportMessage(amqp.KindFactura, f.ID, f.Version)
	if err := w.HandleExportMessage(ctx, msg); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}
	if len(appender.facturas) != 0 {
		t.Errorf("appended %d facturas for already-synced record, want 0", len(appender.facturas))
	}
}

func TestHandleExportMessageAppendFailure(t *testing.T) {
	repo := newTestStorage(t)
	appender := &fakeAppender{fail: true}
	w := NewExportWorker(repo, appender, 10)
	ctx := context.Background()

	f := seedFactura(t, repo)

	msg := amqp.NewRecordExportMessage(amqp.KindFactura, f.ID, f.Version)
	if err := w.HandleExportMessage(ctx, msg); err == nil {
		t.Fatal("expected error when append fails")
	}

	stored, err := repo.GetFactura(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetFactura: %v", err)
	}
	if stored.SyncStatus != "error" {
		t.Errorf("SyncStatus = %q after failure, want error", stored.SyncStatus)
	}
}

func TestHandleExportMessageUnknownKind(t *testing.T) {
	w := NewExportWorker(newTestStorage(t), &fakeAppender{}, 10)

	msg := &amqp.RecordExportMessage{Kind: "cliente", ID: 1, Version: 1}
	if err := w.HandleExportMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestProcessPendingExportsBothKinds(t *testing.T) {
	repo := newTestStorage(t)
	appender := &fakeAppender{}
	w := NewExportWorker(repo, appender, 10)
	ctx := context.Background()

	seedFactura(t, repo)
	_, err := repo.CreateGasto(ctx, storage.CreateGastoParams{
		DocType:   "factura",
		IssueDate: "2024-01-05",
		Base:      500,
		Tax:       90,
		Total:     590,
		Category:  "servicios",
		Status:    "pagado",
	})
	if err != nil {
		t.Fatalf("CreateGasto: %v", err)
	}

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}

	if len(appender.facturas) != 1 || len(appender.gastos) != 1 {
		t.Fatalf("appended %d facturas, %d gastos; want 1 and 1",
			len(appender.facturas), len(appender.gastos))
	}

	pendingF, err := repo.ListPendingFacturas(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingFacturas: %v", err)
	}
	pendingG, err := repo.ListPendingGastos(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingGastos: %v", err)
	}
	if len(pendingF) != 0 || len(pendingG) != 0 {
		t.Errorf("still %d facturas and %d gastos pending after pass", len(pendingF), len(pendingG))
	}
}
