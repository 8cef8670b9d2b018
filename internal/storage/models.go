package storage

import (
	"database/sql"
	"strconv"

	"github.com/musso17/facturascr/internal/core"
)

// Factura is a persisted invoice row.
type Factura struct {
	ID         int64
	ClientID   string
	IssueDate  string
	DueDate    string
	Amount     float64
	TaxRate    float64
	Total      float64
	Paid       float64
	Status     string
	Version    int64
	SyncStatus string
	SyncedAt   sql.NullTime
	CreatedAt  sql.NullTime
}

// Row converts the persisted factura into the raw shape the normalizer
// consumes.
func (f Factura) Row() core.InvoiceRow {
	return core.InvoiceRow{
		ID:        strconv.FormatInt(f.ID, 10),
		ClientID:  f.ClientID,
		IssueDate: &f.IssueDate,
		DueDate:   &f.DueDate,
		Amount:    &f.Amount,
		TaxRate:   &f.TaxRate,
		Total:     &f.Total,
		Paid:      &f.Paid,
		Status:    &f.Status,
	}
}

// Gasto is a persisted expense row.
type Gasto struct {
	ID          int64
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
	Version     int64
	SyncStatus  string
	SyncedAt    sql.NullTime
	CreatedAt   sql.NullTime
}

// Row converts the persisted gasto into the raw shape the normalizer
// consumes.
func (g Gasto) Row() core.ExpenseRow {
	return core.ExpenseRow{
		ID:         strconv.FormatInt(g.ID, 10),
		DocType:    &g.DocType,
		DocNumber:  &g.DocNumber,
		SupplierID: &g.SupplierID,
		IssueDate:  &g.IssueDate,
		DueDate:    &g.PaymentDate,
		Base:       &g.Base,
		Tax:        &g.Tax,
		Retention:  &g.Retention,
		OtherTaxes: &g.OtherTaxes,
		Total:      &g.Total,
		Paid:       &g.Paid,
		Category:   &g.Category,
		Status:     &g.Status,
	}
}

// TaxSummary is one month of the resumen_impuestos view: IGV charged on
// sales, IGV paid on purchases, retentions withheld, and the net position.
type TaxSummary struct {
	Mes         string  `json:"mes"`
	IGVVentas   float64 `json:"igv_ventas"`
	IGVCompras  float64 `json:"igv_compras"`
	Retenciones float64 `json:"retenciones"`
	IGVNeto     float64 `json:"igv_neto"`
}

// PendingExport is the minimal record identity the export queue carries.
type PendingExport struct {
	ID        int64
	Version   int64
	CreatedAt sql.NullTime
}
