// Package http serves the JSON API: record CRUD, the monthly dashboard, the
// projection report, the tax summary, and the analysis endpoint.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/musso17/facturascr/internal/cache"
	"github.com/musso17/facturascr/internal/finance"
	applog "github.com/musso17/facturascr/internal/log"
	"github.com/musso17/facturascr/internal/services"
	"github.com/musso17/facturascr/internal/storage"
)

// Analyzer is the advisor surface the analysis endpoint needs.
type Analyzer interface {
	Analyze(ctx context.Context, report services.ProjectionReport, taxes []storage.TaxSummary, question string) (string, error)
}

// Options configures the server beyond its collaborators.
type Options struct {
	Addr             string
	ProjectionMonths int
	GrowthFactor     float64
}

type Server struct {
	http.Server

	facturas  *services.FacturaService
	gastos    *services.GastoService
	dashboard *services.DashboardService
	analyzer  Analyzer

	defaultMonths int
	defaultGrowth float64

	rateLimiter *rateLimiter

	monthlyCache    *cache.LRUCache[[]finance.MonthlyAggregate]
	projectionCache *cache.LRUCache[services.ProjectionReport]
	taxCache        *cache.LRUCache[[]storage.TaxSummary]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
// The analyzer may be nil; the analysis endpoint then reports unavailable.
func NewServer(opts Options, facturas *services.FacturaService, gastos *services.GastoService, dashboard *services.DashboardService, analyzer Analyzer) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		facturas:        facturas,
		gastos:          gastos,
		dashboard:       dashboard,
		analyzer:        analyzer,
		defaultMonths:   opts.ProjectionMonths,
		defaultGrowth:   opts.GrowthFactor,
		rateLimiter:     newRateLimiter(),
		monthlyCache:    cache.NewLRUCache[[]finance.MonthlyAggregate](16, 5*time.Minute),
		projectionCache: cache.NewLRUCache[services.ProjectionReport](64, 5*time.Minute),
		taxCache:        cache.NewLRUCache[[]storage.TaxSummary](16, 5*time.Minute),
		cacheManager:    cache.NewManager(),
	}
	if s.defaultMonths <= 0 {
		s.defaultMonths = 12
	}
	if s.defaultGrowth <= 0 {
		s.defaultGrowth = 1.0
	}

	s.cacheManager.Register(s.monthlyCache)
	s.cacheManager.Register(s.projectionCache)
	s.cacheManager.Register(s.taxCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/facturas", s.secure(s.handleCreateFactura))
	mux.HandleFunc("GET /api/facturas", s.secure(s.handleListFacturas))
	mux.HandleFunc("GET /api/facturas/{id}", s.secure(s.handleGetFactura))
	mux.HandleFunc("POST /api/facturas/{id}/pagos", s.secure(s.handleApplyPayment))

	mux.HandleFunc("POST /api/gastos", s.secure(s.handleCreateGasto))
	mux.HandleFunc("GET /api/gastos", s.secure(s.handleListGastos))
	mux.HandleFunc("GET /api/gastos/{id}", s.secure(s.handleGetGasto))

	mux.HandleFunc("GET /api/dashboard/mensual", s.secure(s.handleMonthly))
	mux.HandleFunc("GET /api/dashboard/proyeccion", s.secure(s.handleProjection))
	mux.HandleFunc("GET /api/impuestos", s.secure(s.handleTaxSummary))
	mux.HandleFunc("POST /api/analisis", s.secure(s.handleAnalysis))

	return s
}

// invalidateDerived drops every cached derivation. Called after any write.
func (s *Server) invalidateDerived() {
	s.monthlyCache.Purge()
	s.projectionCache.Purge()
	s.taxCache.Purge()
}

// secure adds security headers, rate limiting, and request logging.
func (s *Server) secure(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		reqLog := applog.FromContext(r.Context()).
			WithComponent(applog.ComponentHTTP).
			With(applog.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = applog.WithLogger(ctx, reqLog)
		r = r.WithContext(ctx)

		reqLog.InfoContext(ctx, "Request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			reqLog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "demasiadas solicitudes, intente más tarde")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		reqLog.InfoContext(ctx, "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown gracefully stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
