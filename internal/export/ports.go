// Package export appends facturas and gastos to a Google Sheets workbook so
// the accountant can keep working from the spreadsheet they already use.
package export

import (
	"context"

	"github.com/musso17/facturascr/internal/core"
)

// FacturaAppender writes one invoice row to the export destination.
type FacturaAppender interface {
	AppendFactura(ctx context.Context, inv core.Invoice) (string, error)
}

// GastoAppender writes one expense row to the export destination.
type GastoAppender interface {
	AppendGasto(ctx context.Context, exp core.Expense) (string, error)
}

// Appender combines both record kinds.
type Appender interface {
	FacturaAppender
	GastoAppender
}
