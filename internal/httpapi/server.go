// Package httpapi exposes the engine over HTTP as synchronous JSON
// call/response operations. Transport only: all rules live in the
// services underneath.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spendtrack-dev/spendtrack/internal/approval"
	"github.com/spendtrack-dev/spendtrack/internal/expense"
	"github.com/spendtrack-dev/spendtrack/internal/ledger"
	"github.com/spendtrack-dev/spendtrack/internal/store"
)

// Server wires the services into a chi router.
type Server struct {
	ledger   *ledger.Service
	expense  *expense.Service
	approval *approval.Coordinator
	store    *store.Store
	log      *zap.Logger
}

// NewServer creates a Server.
func NewServer(l *ledger.Service, e *expense.Service, a *approval.Coordinator, st *store.Store, log *zap.Logger) *Server {
	return &Server{ledger: l, expense: e, approval: a, store: st, log: log}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.listBudgets)
			r.Get("/{kind}", s.getBudget)
			r.Post("/{kind}/credit", s.creditBudget)
			r.Post("/{kind}/debit", s.debitBudget)
			r.Get("/{kind}/balance/{currency}", s.getBalance)
			r.Get("/{kind}/history", s.getHistoryByKind)
		})
		r.Get("/history", s.getHistory)

		r.Route("/expense-requests", func(r chi.Router) {
			r.Post("/", s.createRequest)
			r.Get("/", s.listRequests)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getRequest)
				r.Put("/", s.updateRequest)
				r.Delete("/", s.deleteRequest)
				r.Get("/totals", s.getTotals)
				r.Post("/approve", s.approveRequest)
				r.Post("/reject", s.rejectRequest)
				r.Post("/details", s.addDetail)
				r.Put("/details/{detailID}", s.updateDetail)
				r.Delete("/details/{detailID}", s.removeDetail)
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Post("/", s.createEmployee)
			r.Get("/", s.listEmployees)
			r.Get("/{ref}", s.getEmployee)
			r.Put("/{ref}", s.updateEmployee)
			r.Delete("/{ref}", s.deleteEmployee)
		})
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", s.createProject)
			r.Get("/", s.listProjects)
			r.Get("/{id}", s.getProject)
			r.Put("/{id}", s.updateProject)
			r.Delete("/{id}", s.deleteProject)
		})
	})

	return r
}

// requestLogger logs one line per request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)))
	})
}
