package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	applog "github.com/musso17/facturascr/internal/log"
)

const (
	maxProjectionMonths = 60
	monthlyCacheKey     = "mensual"
	taxCacheKey         = "impuestos"
)

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.monthlyCache.Get(monthlyCacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	aggs, err := s.dashboard.Monthly(r.Context(), time.Now())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Monthly aggregation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudo calcular el resumen mensual")
		return
	}

	s.monthlyCache.Set(monthlyCacheKey, aggs)
	writeJSON(w, http.StatusOK, aggs)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	months := s.defaultMonths
	if raw := r.URL.Query().Get("meses"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxProjectionMonths {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("meses debe ser un entero entre 1 y %d", maxProjectionMonths))
			return
		}
		months = parsed
	}

	growth := s.defaultGrowth
	if raw := r.URL.Query().Get("crecimiento"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "crecimiento debe ser un número positivo")
			return
		}
		growth = parsed
	}

	key := fmt.Sprintf("proy:%d:%.4f", months, growth)
	if cached, ok := s.projectionCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := s.dashboard.Projection(r.Context(), time.Now(), months, growth)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Projection failed", "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudo calcular la proyección")
		return
	}

	s.projectionCache.Set(key, report)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTaxSummary(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.taxCache.Get(taxCacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summaries, err := s.dashboard.TaxSummary(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Tax summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudo leer el resumen de impuestos")
		return
	}

	s.taxCache.Set(taxCacheKey, summaries)
	writeJSON(w, http.StatusOK, summaries)
}

type analysisRequest struct {
	Pregunta string `json:"pregunta"`
}

type analysisResponse struct {
	Analisis string `json:"analisis"`
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, "el análisis no está configurado")
		return
	}

	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	now := time.Now()
	report, err := s.dashboard.Projection(r.Context(), now, s.defaultMonths, s.defaultGrowth)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Projection for analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudo calcular la proyección")
		return
	}

	taxes, err := s.dashboard.TaxSummary(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Tax summary for analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "no se pudo leer el resumen de impuestos")
		return
	}

	answer, err := s.analyzer.Analyze(r.Context(), report, taxes, req.Pregunta)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Analysis failed", "error", err)
		writeError(w, http.StatusBadGateway, "el servicio de análisis no respondió")
		return
	}

	writeJSON(w, http.StatusOK, analysisResponse{Analisis: answer})
}
