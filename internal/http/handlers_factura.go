package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/musso17/facturascr/internal/core"
	applog "github.com/musso17/facturascr/internal/log"
)

// facturaRequest mirrors the client payload: everything optional, the
// normalizer supplies defaults.
type facturaRequest struct {
	ClienteID        string   `json:"cliente_id"`
	FechaEmision     *string  `json:"fecha_emision"`
	FechaVencimiento *string  `json:"fecha_vencimiento"`
	Monto            *float64 `json:"monto"`
	TasaIGV          *float64 `json:"tasa_igv"`
	Total            *float64 `json:"total"`
	Pagado           *float64 `json:"pagado"`
	Estado           *string  `json:"estado"`
}

func (req facturaRequest) row() core.InvoiceRow {
	return core.InvoiceRow{
		ClientID:  req.ClienteID,
		IssueDate: req.FechaEmision,
		DueDate:   req.FechaVencimiento,
		Amount:    req.Monto,
		TaxRate:   req.TasaIGV,
		Total:     req.Total,
		Paid:      req.Pagado,
		Status:    req.Estado,
	}
}

func (s *Server) handleCreateFactura(w http.ResponseWriter, r *http.Request) {
	var req facturaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	inv, err := s.facturas.Create(r.Context(), req.row(), time.Now())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Create factura failed", "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudo guardar la factura")
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, toFacturaResponse(inv))
}

func (s *Server) handleListFacturas(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.facturas.List(r.Context(), time.Now())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List facturas failed", "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudieron listar las facturas")
		return
	}

	out := make([]facturaResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = toFacturaResponse(inv)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetFactura(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	inv, err := s.facturas.Get(r.Context(), id, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "factura no encontrada")
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Get factura failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudo leer la factura")
		return
	}

	writeJSON(w, http.StatusOK, toFacturaResponse(inv))
}

type pagoRequest struct {
	Monto float64 `json:"monto"`
}

func (s *Server) handleApplyPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req pagoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}
	if req.Monto <= 0 {
		writeError(w, http.StatusBadRequest, "el monto del pago debe ser positivo")
		return
	}

	inv, err := s.facturas.ApplyPayment(r.Context(), id, req.Monto, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "factura no encontrada")
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Apply payment failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudo registrar el pago")
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusOK, toFacturaResponse(inv))
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id inválido")
		return 0, false
	}
	return id, true
}
