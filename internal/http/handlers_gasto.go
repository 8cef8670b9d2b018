package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/musso17/facturascr/internal/core"
	applog "github.com/musso17/facturascr/internal/log"
)

type gastoRequest struct {
	TipoDoc        *string  `json:"tipo_doc"`
	NumeroDoc      *string  `json:"numero_doc"`
	ProveedorID    *string  `json:"proveedor_id"`
	FechaEmision   *string  `json:"fecha_emision"`
	FechaPago      *string  `json:"fecha_pago"`
	Base           *float64 `json:"base"`
	IGV            *float64 `json:"igv"`
	Retencion      *float64 `json:"retencion"`
	OtrosImpuestos *float64 `json:"otros_impuestos"`
	Total          *float64 `json:"total"`
	Pagado         *float64 `json:"pagado"`
	Categoria      *string  `json:"categoria"`
	Estado         *string  `json:"estado"`
}

func (req gastoRequest) row() core.ExpenseRow {
	return core.ExpenseRow{
		DocType:    req.TipoDoc,
		DocNumber:  req.NumeroDoc,
		SupplierID: req.ProveedorID,
		IssueDate:  req.FechaEmision,
		DueDate:    req.FechaPago,
		Base:       req.Base,
		Tax:        req.IGV,
		Retention:  req.Retencion,
		OtherTaxes: req.OtrosImpuestos,
		Total:      req.Total,
		Paid:       req.Pagado,
		Category:   req.Categoria,
		Status:     req.Estado,
	}
}

func (s *Server) handleCreateGasto(w http.ResponseWriter, r *http.Request) {
	var req gastoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	exp, err := s.gastos.Create(r.Context(), req.row(), time.Now())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Create gasto failed", "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudo guardar el gasto")
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, toGastoResponse(exp))
}

func (s *Server) handleListGastos(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.gastos.List(r.Context(), time.Now())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List gastos failed", "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudieron listar los gastos")
		return
	}

	out := make([]gastoResponse, len(expenses))
	for i, exp := range expenses {
		out[i] = toGastoResponse(exp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGasto(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	exp, err := s.gastos.Get(r.Context(), id, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "gasto no encontrado")
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Get gasto failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudo leer el gasto")
		return
	}

	writeJSON(w, http.StatusOK, toGastoResponse(exp))
}
