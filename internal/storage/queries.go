package storage

import (
	"context"
	"database/sql"
)

// DBTX is the subset of *sql.DB and *sql.Tx the query layer needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries bundles all hand-written SQL against a single connection or
// transaction.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to the given connection.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const facturaColumns = `id, client_id, issue_date, due_date, amount, tax_rate, total, paid, status, version, sync_status, synced_at, created_at`

func scanFactura(row interface{ Scan(...any) error }) (Factura, error) {
	var f Factura
	err := row.Scan(
		&f.ID, &f.ClientID, &f.IssueDate, &f.DueDate,
		&f.Amount, &f.TaxRate, &f.Total, &f.Paid, &f.Status,
		&f.Version, &f.SyncStatus, &f.SyncedAt, &f.CreatedAt,
	)
	return f, err
}

// CreateFacturaParams holds the normalized values persisted for a new
// factura.
type CreateFacturaParams struct {
	ClientID  string
	IssueDate string
	DueDate   string
	Amount    float64
	TaxRate   float64
	Total     float64
	Paid      float64
	Status    string
}

const createFactura = `
INSERT INTO facturas (client_id, issue_date, due_date, amount, tax_rate, total, paid, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + facturaColumns

func (q *Queries) CreateFactura(ctx context.Context, p CreateFacturaParams) (Factura, error) {
	return scanFactura(q.db.QueryRowContext(ctx, createFactura,
		p.ClientID, p.IssueDate, p.DueDate, p.Amount, p.TaxRate, p.Total, p.Paid, p.Status))
}

const getFactura = `SELECT ` + facturaColumns + ` FROM facturas WHERE id = ?`

func (q *Queries) GetFactura(ctx context.Context, id int64) (Factura, error) {
	return scanFactura(q.db.QueryRowContext(ctx, getFactura, id))
}

const listFacturas = `SELECT ` + facturaColumns + ` FROM facturas ORDER BY issue_date, id`

func (q *Queries) ListFacturas(ctx context.Context) ([]Factura, error) {
	rows, err := q.db.QueryContext(ctx, listFacturas)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facturas []Factura
	for rows.Next() {
		f, err := scanFactura(rows)
		if err != nil {
			return nil, err
		}
		facturas = append(facturas, f)
	}
	return facturas, rows.Err()
}

const applyFacturaPayment = `
UPDATE facturas
SET paid        = ROUND(paid + ?, 2),
    status      = CASE WHEN ROUND(paid + ?, 2) >= total THEN 'Pagado' ELSE status END,
    version     = version + 1,
    sync_status = 'pending',
    synced_at   = NULL
WHERE id = ?
RETURNING ` + facturaColumns

// ApplyFacturaPayment adds a payment to a factura, flipping the stored
// status once the total is covered and re-queueing the row for export.
func (q *Queries) ApplyFacturaPayment(ctx context.Context, id int64, amount float64) (Factura, error) {
	return scanFactura(q.db.QueryRowContext(ctx, applyFacturaPayment, amount, amount, id))
}

const gastoColumns = `id, doc_type, doc_number, supplier_id, issue_date, payment_date, base, tax, retention, other_taxes, total, paid, category, status, version, sync_status, synced_at, created_at`

func scanGasto(row interface{ Scan(...any) error }) (Gasto, error) {
	var g Gasto
	err := row.Scan(
		&g.ID, &g.DocType, &g.DocNumber, &g.SupplierID,
		&g.IssueDate, &g.PaymentDate,
		&g.Base, &g.Tax, &g.Retention, &g.OtherTaxes, &g.Total, &g.Paid,
		&g.Category, &g.Status,
		&g.Version, &g.SyncStatus, &g.SyncedAt, &g.CreatedAt,
	)
	return g, err
}

// CreateGastoParams holds the normalized values persisted for a new gasto.
type CreateGastoParams struct {
	DocType     string
	DocNumber   string
	SupplierID  string
	IssueDate   string
	PaymentDate string
	Base        float64
	Tax         float64
	Retention   float64
	OtherTaxes  float64
	Total       float64
	Paid        float64
	Category    string
	Status      string
}

const createGasto = `
INSERT INTO gastos (doc_type, doc_number, supplier_id, issue_date, payment_date, base, tax, retention, other_taxes, total, paid, category, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + gastoColumns

func (q *Queries) CreateGasto(ctx context.Context, p CreateGastoParams) (Gasto, error) {
	return scanGasto(q.db.QueryRowContext(ctx, createGasto,
		p.DocType, p.DocNumber, p.SupplierID, p.IssueDate, p.PaymentDate,
		p.Base, p.Tax, p.Retention, p.OtherTaxes, p.Total, p.Paid, p.Category, p.Status))
}

const getGasto = `SELECT ` + gastoColumns + ` FROM gastos WHERE id = ?`

func (q *Queries) GetGasto(ctx context.Context, id int64) (Gasto, error) {
	return scanGasto(q.db.QueryRowContext(ctx, getGasto, id))
}

const listGastos = `SELECT ` + gastoColumns + ` FROM gastos ORDER BY issue_date, id`

func (q *Queries) ListGastos(ctx context.Context) ([]Gasto, error) {
	rows, err := q.db.QueryContext(ctx, listGastos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gastos []Gasto
	for rows.Next() {
		g, err := scanGasto(rows)
		if err != nil {
			return nil, err
		}
		gastos = append(gastos, g)
	}
	return gastos, rows.Err()
}

func (q *Queries) listPending(ctx context.Context, query string, limit int64) ([]PendingExport, error) {
	rows, err := q.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []PendingExport
	for rows.Next() {
		var p PendingExport
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

const listPendingFacturas = `
SELECT id, version, created_at FROM facturas
WHERE sync_status = 'pending'
ORDER BY created_at, id
LIMIT ?`

func (q *Queries) ListPendingFacturas(ctx context.Context, limit int64) ([]PendingExport, error) {
	return q.listPending(ctx, listPendingFacturas, limit)
}

const listPendingGastos = `
SELECT id, version, created_at FROM gastos
WHERE sync_status = 'pending'
ORDER BY created_at, id
LIMIT ?`

func (q *Queries) ListPendingGastos(ctx context.Context, limit int64) ([]PendingExport, error) {
	return q.listPending(ctx, listPendingGastos, limit)
}

const markFacturaSynced = `
UPDATE facturas SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) MarkFacturaSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markFacturaSynced, id)
	return err
}

const markFacturaSyncError = `
UPDATE facturas SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkFacturaSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markFacturaSyncError, id)
	return err
}

const markGastoSynced = `
UPDATE gastos SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) MarkGastoSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markGastoSynced, id)
	return err
}

const markGastoSyncError = `
UPDATE gastos SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkGastoSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markGastoSyncError, id)
	return err
}

const readTaxSummary = `
SELECT mes, igv_ventas, igv_compras, retenciones, igv_neto
FROM resumen_impuestos
ORDER BY mes`

func (q *Queries) ReadTaxSummary(ctx context.Context) ([]TaxSummary, error) {
	rows, err := q.db.QueryContext(ctx, readTaxSummary)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []TaxSummary
	for rows.Next() {
		var s TaxSummary
		if err := rows.Scan(&s.Mes, &s.IGVVentas, &s.IGVCompras, &s.Retenciones, &s.IGVNeto); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
