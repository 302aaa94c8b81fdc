// Package http exposes the ledger and the finance engine as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"smartbudget/internal/core"
	"smartbudget/internal/finance"
	"smartbudget/internal/ledger"
	"smartbudget/internal/log"
	"smartbudget/internal/middleware/ratelimit"
	"smartbudget/internal/middleware/security"
	"smartbudget/internal/middleware/trace"
)

// maxBodyBytes bounds request bodies; imports are the largest payload.
const maxBodyBytes = 8 << 20

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Policy         finance.HealthPolicy
	RequestsPerMin int
	Logger         *log.Logger
	Ready          Pinger
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server is the API server. The embedded http.Server is ready to run.
type Server struct {
	http.Server

	book     *ledger.Book
	policy   finance.HealthPolicy
	logger   *log.Logger
	ready    Pinger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, book *ledger.Book, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default(log.ComponentHTTP)
	} else {
		logger = logger.WithComponent(log.ComponentHTTP)
	}
	policy := opts.Policy
	if policy.Labels == nil {
		policy = finance.DefaultHealthPolicy()
	}
	limitCfg := ratelimit.DefaultConfig()
	if opts.RequestsPerMin > 0 {
		limitCfg.RequestsPerMinute = opts.RequestsPerMin
	}
	readTimeout, writeTimeout := opts.ReadTimeout, opts.WriteTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	s := &Server{
		book:     book,
		policy:   policy,
		logger:   logger,
		ready:    opts.Ready,
		limiter:  ratelimit.NewLimiter(limitCfg),
		detector: security.NewDetector(logger),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, "error", err)
		}
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.WritesOnly, s.rateLimited)(h)
	h = s.tracer.Middleware(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Transactions
	mux.HandleFunc("GET /api/expenses", s.handleList(core.Expense))
	mux.HandleFunc("POST /api/expenses", s.handleCreate(core.Expense))
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdate(core.Expense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDelete(core.Expense))
	mux.HandleFunc("GET /api/income", s.handleList(core.Income))
	mux.HandleFunc("POST /api/income", s.handleCreate(core.Income))
	mux.HandleFunc("PATCH /api/income/{id}", s.handleUpdate(core.Income))
	mux.HandleFunc("DELETE /api/income/{id}", s.handleDelete(core.Income))
	mux.HandleFunc("POST /api/transactions/{id}/bookmark", s.handleToggleBookmark)
	mux.HandleFunc("GET /api/transactions", s.handleFilter)
	mux.HandleFunc("GET /api/bookmarks", s.handleBookmarks)
	mux.HandleFunc("GET /api/recent", s.handleRecent)

	// Budgets
	mux.HandleFunc("GET /api/budgets", s.handleGetBudgets)
	mux.HandleFunc("PUT /api/budgets", s.handleReplaceBudgets)
	mux.HandleFunc("PUT /api/budgets/{category}", s.handleSetBudget)
	mux.HandleFunc("DELETE /api/budgets/{category}", s.handleDeleteBudget)

	// Finance views
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/insights", s.handleInsights)
	mux.HandleFunc("GET /api/health-score", s.handleHealthScore)
	mux.HandleFunc("GET /api/budget-utilization", s.handleBudgetUtilization)
	mux.HandleFunc("GET /api/report", s.handleReport)

	// Savings goals
	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("PATCH /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("POST /api/goals/{id}/contribute", s.handleContribute)

	// Settings
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings/profile", s.handleUpdateProfile)
	mux.HandleFunc("PUT /api/settings/notifications", s.handleUpdateNotifications)
	mux.HandleFunc("PUT /api/settings/currency", s.handleSetCurrency)
	mux.HandleFunc("GET /api/currencies", s.handleCurrencies)
	mux.HandleFunc("POST /api/companies", s.handleAddCompany)
	mux.HandleFunc("DELETE /api/companies/{name}", s.handleRemoveCompany)
	mux.HandleFunc("PUT /api/companies/{name}", s.handleRenameCompany)
	mux.HandleFunc("POST /api/companies/{name}/switch", s.handleSwitchCompany)

	// Transfer
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("DELETE /api/data", s.handleReset)
}

// Shutdown stops the rate limiter cleanup and the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeProblem(w, r, http.StatusTooManyRequests, errorTypeRateLimit, "Too Many Requests", "rate limit exceeded, retry later")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
