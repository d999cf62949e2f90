package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spendtrack-dev/spendtrack/internal/approval"
	"github.com/spendtrack-dev/spendtrack/internal/expense"
	"github.com/spendtrack-dev/spendtrack/internal/ledger"
	"github.com/spendtrack-dev/spendtrack/internal/model"
	"github.com/spendtrack-dev/spendtrack/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.Update(func(tx *store.Tx) error {
		if err := tx.EnsureBudget(model.BudgetBank); err != nil {
			return err
		}
		if err := tx.EnsureBudget(model.BudgetCash); err != nil {
			return err
		}
		if err := tx.PutEmployee(&model.Employee{Reference: "Emp1", FullName: "Jane Doe", Status: model.EmployeeActive}); err != nil {
			return err
		}
		return tx.PutProject(&model.Project{ID: 7, Reference: "Prj7", Name: "Atlas", Status: model.ProjectInProgress})
	}))

	log := zap.NewNop()
	srv := NewServer(
		ledger.NewService(st, log),
		expense.NewService(st, log, expense.Options{}),
		approval.NewCoordinator(st, log),
		st, log,
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func TestCreditThenBalance(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/budgets/BANK/credit", map[string]any{
		"currency":     "USD",
		"amount":       "150.25",
		"employee_ref": "Emp1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/budgets/BANK/balance/USD", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		BudgetKind string          `json:"budget_kind"`
		Currency   string          `json:"currency"`
		Balance    decimal.Decimal `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "BANK", got.BudgetKind)
	assert.Equal(t, "USD", got.Currency)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("150.25")))
}

func TestDebitInsufficientFunds(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/budgets/BANK/credit", map[string]any{
		"currency": "USD", "amount": "40", "employee_ref": "Emp1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/budgets/BANK/debit", map[string]any{
		"currency": "USD", "amount": "50", "employee_ref": "Emp1",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var got errorEnvelope
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "insufficient_funds", got.Error.Code)
}

func TestExpenseRequestLifecycle(t *testing.T) {
	ts := newTestServer(t)

	for _, c := range []string{"USD", "EUR"} {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/budgets/BANK/credit", map[string]any{
			"currency": c, "amount": "100", "employee_ref": "Emp1",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/expense-requests/", map[string]any{
		"employee_ref":         "Emp1",
		"project_id":           7,
		"start_date":           "2026-03-10T00:00:00Z",
		"return_date":          "2026-03-14T00:00:00Z",
		"mission":              "Client workshop",
		"mission_location":     "Tunis",
		"reimbursement_method": "BANK",
		"details": []map[string]any{
			{"description": "taxi", "amount": "50", "currency": "USD"},
			{"description": "hotel", "amount": "30", "currency": "EUR"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created model.ExpenseRequest
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Rqs1000", created.Reference)
	assert.Equal(t, model.StatusSubmitted, created.Status)

	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/expense-requests/%d/totals", ts.URL, created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var totals struct {
		Totals map[string]decimal.Decimal `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(body, &totals))
	assert.True(t, totals.Totals["USD"].Equal(decimal.RequireFromString("50")))

	resp, body = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/expense-requests/%d/approve", ts.URL, created.ID), map[string]any{
		"approver": "Emp1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var approved model.ExpenseRequest
	require.NoError(t, json.Unmarshal(body, &approved))
	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.Equal(t, "Approved", approved.ApprovalComment)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/budgets/BANK/balance/USD", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bal struct {
		Balance decimal.Decimal `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(body, &bal))
	assert.True(t, bal.Balance.Equal(decimal.RequireFromString("50")))

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist struct {
		History []model.History `json:"history"`
	}
	require.NoError(t, json.Unmarshal(body, &hist))
	assert.Len(t, hist.History, 4) // two credits, two approval debits
}

func TestApproveTwiceConflicts(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/budgets/BANK/credit", map[string]any{
		"currency": "USD", "amount": "100", "employee_ref": "Emp1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/expense-requests/", map[string]any{
		"employee_ref":         "Emp1",
		"project_id":           7,
		"start_date":           "2026-03-10T00:00:00Z",
		"return_date":          "2026-03-14T00:00:00Z",
		"mission":              "Audit",
		"mission_location":     "Sfax",
		"reimbursement_method": "BANK",
		"details": []map[string]any{
			{"description": "fuel", "amount": "20", "currency": "USD"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created model.ExpenseRequest
	require.NoError(t, json.Unmarshal(body, &created))

	approveURL := fmt.Sprintf("%s/api/expense-requests/%d/approve", ts.URL, created.ID)
	resp, _ = doJSON(t, http.MethodPost, approveURL, map[string]any{"approver": "Emp1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, approveURL, map[string]any{"approver": "Emp1"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var got errorEnvelope
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "invalid_state_transition", got.Error.Code)
}

func TestCurrencyLimitOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/expense-requests/", map[string]any{
		"employee_ref":         "Emp1",
		"project_id":           7,
		"start_date":           "2026-03-10T00:00:00Z",
		"return_date":          "2026-03-14T00:00:00Z",
		"mission":              "Tour",
		"mission_location":     "Tunis",
		"reimbursement_method": "BANK",
		"details": []map[string]any{
			{"description": "a", "amount": "10", "currency": "USD"},
			{"description": "b", "amount": "10", "currency": "EUR"},
			{"description": "c", "amount": "10", "currency": "GBP"},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var got errorEnvelope
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "business_rule_violation", got.Error.Code)
}

func TestUnknownBudgetKind(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/budgets/CRYPTO", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var got errorEnvelope
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "bad_request", got.Error.Code)
}

func TestEmployeeCRUD(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/employees/", map[string]any{
		"full_name":  "Sam Lee",
		"email":      "sam@example.com",
		"department": "Ops",
		"status":     "ACTIVE",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var emp model.Employee
	require.NoError(t, json.Unmarshal(body, &emp))
	assert.NotEmpty(t, emp.Reference)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/employees/"+emp.Reference, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/employees/Emp999", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var got errorEnvelope
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "not_found", got.Error.Code)
}
