package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gastos/internal/analytics"
	"gastos/internal/cache"
	"gastos/internal/config"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/services"
)

// Server owns the HTTP surface: routing, identity resolution, rate limiting
// and the dashboard cache. It embeds http.Server so callers can run
// ListenAndServe directly.
type Server struct {
	http.Server

	expenses   *services.ExpenseService
	categories *services.CategoryService
	budgets    *services.BudgetService
	settings   *services.SettingsService
	engine     *analytics.Engine

	logger      *log.Logger
	rateLimiter *rateLimiter

	// Dashboard responses are cached per owner and invalidated on any
	// write under that owner.
	dashCache *cache.LRUCache[core.DashboardMetrics]

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(cfg *config.Config, logger *log.Logger, exp *services.ExpenseService, cat *services.CategoryService, bud *services.BudgetService, set *services.SettingsService, engine *analytics.Engine) *Server {
	mux := http.NewServeMux()
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      log.Middleware(httpLogger)(mux),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		expenses:    exp,
		categories:  cat,
		budgets:     bud,
		settings:    set,
		engine:      engine,
		logger:      httpLogger,
		rateLimiter: newRateLimiter(cfg.RateLimitPerMinute),
		dashCache:   cache.NewLRUCache[core.DashboardMetrics](cfg.DashboardCacheSize, cfg.DashboardCacheTTL),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/v1/categories", s.withRequestContext(s.handleCreateCategory))
	mux.HandleFunc("GET /api/v1/categories", s.withRequestContext(s.handleListCategories))
	mux.HandleFunc("GET /api/v1/categories/most-used", s.withRequestContext(s.handleMostUsedCategories))
	mux.HandleFunc("GET /api/v1/categories/{id}", s.withRequestContext(s.handleGetCategory))
	mux.HandleFunc("PATCH /api/v1/categories/{id}", s.withRequestContext(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/v1/categories/{id}", s.withRequestContext(s.handleDeleteCategory))
	mux.HandleFunc("GET /api/v1/categories/{id}/stats", s.withRequestContext(s.handleCategoryStats))

	mux.HandleFunc("POST /api/v1/expenses", s.withRequestContext(s.handleCreateExpense))
	mux.HandleFunc("GET /api/v1/expenses", s.withRequestContext(s.handleListExpenses))
	mux.HandleFunc("GET /api/v1/expenses/{id}", s.withRequestContext(s.handleGetExpense))
	mux.HandleFunc("PATCH /api/v1/expenses/{id}", s.withRequestContext(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/v1/expenses/{id}", s.withRequestContext(s.handleDeleteExpense))

	mux.HandleFunc("POST /api/v1/budgets", s.withRequestContext(s.handleCreateBudget))
	mux.HandleFunc("GET /api/v1/budgets", s.withRequestContext(s.handleListBudgets))
	mux.HandleFunc("GET /api/v1/budgets/rollup", s.withRequestContext(s.handleBudgetRollup))
	mux.HandleFunc("GET /api/v1/budgets/{id}", s.withRequestContext(s.handleGetBudget))
	mux.HandleFunc("PATCH /api/v1/budgets/{id}", s.withRequestContext(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/v1/budgets/{id}", s.withRequestContext(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/v1/settings", s.withRequestContext(s.handleGetSettings))
	mux.HandleFunc("PATCH /api/v1/settings", s.withRequestContext(s.handleUpdateSettings))
	mux.HandleFunc("DELETE /api/v1/settings", s.withRequestContext(s.handleResetSettings))

	mux.HandleFunc("GET /api/v1/analytics/spend", s.withRequestContext(s.handleSpend))
	mux.HandleFunc("GET /api/v1/analytics/trend", s.withRequestContext(s.handleTrend))
	mux.HandleFunc("GET /api/v1/analytics/reports/monthly", s.withRequestContext(s.handleMonthlyReport))
	mux.HandleFunc("GET /api/v1/analytics/reports/yearly", s.withRequestContext(s.handleYearlyReport))
	mux.HandleFunc("GET /api/v1/analytics/distribution", s.withRequestContext(s.handleDistribution))
	mux.HandleFunc("GET /api/v1/analytics/top-expenses", s.withRequestContext(s.handleTopExpenses))
	mux.HandleFunc("GET /api/v1/analytics/weekly-progress", s.withRequestContext(s.handleWeeklyProgress))
	mux.HandleFunc("GET /api/v1/analytics/dashboard", s.withRequestContext(s.handleDashboard))

	return s
}

// withRequestContext adds security headers, rate limiting and request
// logging around a handler.
func (s *Server) withRequestContext(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()
		r = r.WithContext(withRequestID(r.Context(), requestID))

		s.logger.InfoContext(r.Context(), "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(r.Context(), "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateOwner drops every cached entry belonging to the owner. Called
// after any write that can change analytics output.
func (s *Server) invalidateOwner(ownerID string) {
	s.dashCache.DeletePrefix(ownerID)
}

// Shutdown stops the rate limiter cleanup goroutine and drains the HTTP
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
