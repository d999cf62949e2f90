package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/spendtrack-dev/spendtrack/internal/model"
	"github.com/spendtrack-dev/spendtrack/internal/store"
)

func parseKind(w http.ResponseWriter, r *http.Request) (model.BudgetKind, bool) {
	kind, ok := model.ParseBudgetKind(chi.URLParam(r, "kind"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, "bad_request", "unknown budget kind: "+chi.URLParam(r, "kind"))
		return "", false
	}
	return kind, true
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	var budgets []model.Budget
	err := s.store.View(func(tx *store.Tx) error {
		var err error
		budgets, err = tx.Budgets()
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": budgets})
}

func (s *Server) getBudget(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(w, r)
	if !ok {
		return
	}
	budget, err := s.ledger.Budget(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

type fundsRequest struct {
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	EmployeeRef string          `json:"employee_ref"`
	ProjectID   int64           `json:"project_id,omitempty"`
}

func (s *Server) creditBudget(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(w, r)
	if !ok {
		return
	}
	var body fundsRequest
	if !decodeBody(w, r, &body) {
		return
	}
	currency, err := model.ParseCurrency(body.Currency)
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := s.ledger.Credit(kind, currency, body.Amount, body.EmployeeRef, body.ProjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) debitBudget(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(w, r)
	if !ok {
		return
	}
	var body fundsRequest
	if !decodeBody(w, r, &body) {
		return
	}
	currency, err := model.ParseCurrency(body.Currency)
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := s.ledger.Debit(kind, currency, body.Amount, body.EmployeeRef, body.ProjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(w, r)
	if !ok {
		return
	}
	currency, err := model.ParseCurrency(chi.URLParam(r, "currency"))
	if err != nil {
		writeError(w, err)
		return
	}
	balance, err := s.ledger.Balance(kind, currency)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"budget_kind": kind,
		"currency":    currency,
		"balance":     balance,
	})
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.History()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (s *Server) getHistoryByKind(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(w, r)
	if !ok {
		return
	}
	entries, err := s.ledger.HistoryByKind(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}
