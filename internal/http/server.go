// Package http is the JSON API surface: routing, middleware, request
// and response shaping. All domain decisions live in the services.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// ExportPublisher queues monthly report exports for the worker.
type ExportPublisher interface {
	PublishReportExport(ctx context.Context, req amqp.ReportExportMessage) error
}

type Server struct {
	http.Server
	logger       *log.Logger
	auth         *auth.Service
	categories   *services.CategoryService
	transactions *services.TransactionService
	budgets      *services.BudgetService
	exports      ExportPublisher
	secureCookie bool

	rateLimiter *rateLimiter

	// Derived report data is cached per (user, period) and dropped on
	// any write that could change it.
	summaryCache  *cache.LRUCache[core.PeriodSummary]
	progressCache *cache.LRUCache[[]core.BudgetProgress]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

type Config struct {
	Addr               string
	RateLimitPerMinute int
	SecureCookie       bool
}

// NewServer configures routes and middleware, returning a
// ready-to-run server. exports may be nil when no broker is
// configured; the export endpoint then reports unavailability.
func NewServer(
	cfg Config,
	logger *log.Logger,
	authSvc *auth.Service,
	categories *services.CategoryService,
	transactions *services.TransactionService,
	budgets *services.BudgetService,
	exports ExportPublisher,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:       logger.WithComponent(log.ComponentHTTP),
		auth:         authSvc,
		categories:   categories,
		transactions: transactions,
		budgets:      budgets,
		exports:      exports,
		secureCookie: cfg.SecureCookie,

		rateLimiter:      newRateLimiter(cfg.RateLimitPerMinute),
		summaryCache:     cache.NewLRUCache[core.PeriodSummary](100, 5*time.Minute),
		progressCache:    cache.NewLRUCache[[]core.BudgetProgress](100, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}
	s.Server = http.Server{
		Addr:    cfg.Addr,
		Handler: s.withMiddleware(mux),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)

	mux.Handle("GET /api/categories", s.authed(s.handleListCategories))
	mux.Handle("POST /api/categories", s.authed(s.handleCreateCategory))
	mux.Handle("GET /api/categories/{id}", s.authed(s.handleGetCategory))
	mux.Handle("PUT /api/categories/{id}", s.authed(s.handleUpdateCategory))
	mux.Handle("DELETE /api/categories/{id}", s.authed(s.handleDeleteCategory))

	mux.Handle("GET /api/transactions", s.authed(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.authed(s.handleCreateTransaction))
	mux.Handle("GET /api/transactions/{id}", s.authed(s.handleGetTransaction))
	mux.Handle("PUT /api/transactions/{id}", s.authed(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.authed(s.handleDeleteTransaction))

	mux.Handle("GET /api/budgets", s.authed(s.handleListBudgets))
	mux.Handle("POST /api/budgets", s.authed(s.handleCreateBudget))
	mux.Handle("GET /api/budgets/{id}", s.authed(s.handleGetBudget))
	mux.Handle("PUT /api/budgets/{id}", s.authed(s.handleUpdateBudget))
	mux.Handle("DELETE /api/budgets/{id}", s.authed(s.handleDeleteBudget))

	mux.Handle("GET /api/budgets/progress", s.authed(s.handleBudgetProgress))
	mux.Handle("GET /api/reports/summary", s.authed(s.handlePeriodSummary))
	mux.Handle("POST /api/reports/export", s.authed(s.handleReportExport))

	return s
}

// authed guards a handler behind the session middleware.
func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return s.auth.Middleware(h)
}

// userID pulls the authenticated user from the request context. The
// middleware guarantees presence on authed routes.
func userID(r *http.Request) int64 {
	id, _ := auth.UserID(r.Context())
	return id
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			summaryCleaned := s.summaryCache.CleanExpired()
			progressCleaned := s.progressCache.CleanExpired()
			if summaryCleaned > 0 || progressCleaned > 0 {
				s.logger.Debug("Cache cleanup completed",
					"summary_entries_removed", summaryCleaned,
					"progress_entries_removed", progressCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// periodKey is the report cache key for one user and calendar month.
func periodKey(userID int64, month, year int) string {
	return fmt.Sprintf("%d:%04d-%02d", userID, year, month)
}

// invalidatePeriod drops cached report data for one user and month.
func (s *Server) invalidatePeriod(userID int64, month, year int) {
	key := periodKey(userID, month, year)
	s.summaryCache.Delete(key)
	s.progressCache.Delete(key)
}

// invalidateUser drops every cached report for one user. Category
// renames change the names embedded in cached summaries across all
// periods, so period-level invalidation is not enough there.
func (s *Server) invalidateUser(userID int64) {
	prefix := fmt.Sprintf("%d:", userID)
	s.summaryCache.DeletePrefix(prefix)
	s.progressCache.DeletePrefix(prefix)
}

// Shutdown stops the HTTP server and the background cleanup loops.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
