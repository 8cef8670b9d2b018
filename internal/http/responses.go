package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/musso17/facturascr/internal/core"
)

const dateLayout = "2006-01-02"

// facturaResponse is the wire shape of an invoice.
type facturaResponse struct {
	ID               string  `json:"id"`
	ClienteID        string  `json:"cliente_id"`
	FechaEmision     string  `json:"fecha_emision"`
	FechaVencimiento string  `json:"fecha_vencimiento"`
	Monto            float64 `json:"monto"`
	TasaIGV          float64 `json:"tasa_igv"`
	Total            float64 `json:"total"`
	Pagado           float64 `json:"pagado"`
	Saldo            float64 `json:"saldo"`
	Estado           string  `json:"estado"`
}

func toFacturaResponse(inv core.Invoice) facturaResponse {
	return facturaResponse{
		ID:               inv.ID,
		ClienteID:        inv.ClientID,
		FechaEmision:     inv.IssueDate.Time.Format(dateLayout),
		FechaVencimiento: inv.DueDate.Time.Format(dateLayout),
		Monto:            inv.Amount,
		TasaIGV:          inv.TaxRate,
		Total:            inv.Total,
		Pagado:           inv.Paid,
		Saldo:            inv.Balance,
		Estado:           string(inv.Status),
	}
}

// gastoResponse is the wire shape of an expense.
type gastoResponse struct {
	ID             string  `json:"id"`
	TipoDoc        string  `json:"tipo_doc"`
	NumeroDoc      string  `json:"numero_doc"`
	ProveedorID    string  `json:"proveedor_id"`
	FechaEmision   string  `json:"fecha_emision"`
	FechaPago      string  `json:"fecha_pago"`
	Base           float64 `json:"base"`
	IGV            float64 `json:"igv"`
	Retencion      float64 `json:"retencion"`
	OtrosImpuestos float64 `json:"otros_impuestos"`
	Total          float64 `json:"total"`
	Pagado         float64 `json:"pagado"`
	Categoria      string  `json:"categoria"`
	Estado         string  `json:"estado"`
}

func toGastoResponse(exp core.Expense) gastoResponse {
	return gastoResponse{
		ID:             exp.ID,
		TipoDoc:        exp.DocType,
		NumeroDoc:      exp.DocNumber,
		ProveedorID:    exp.SupplierID,
		FechaEmision:   exp.IssueDate.Time.Format(dateLayout),
		FechaPago:      exp.DueDate.Time.Format(dateLayout),
		Base:           exp.Base,
		IGV:            exp.Tax,
		Retencion:      exp.Retention,
		OtrosImpuestos: exp.OtherTaxes,
		Total:          exp.Total,
		Pagado:         exp.Paid,
		Categoria:      string(exp.Category),
		Estado:         string(exp.Status),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
