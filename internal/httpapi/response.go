package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spendtrack-dev/spendtrack/internal/errs"
)

// errorBody is the JSON error envelope. Code is a stable category
// clients can branch on without matching message text.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// writeError maps the business error taxonomy onto HTTP statuses and
// stable error codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		insufficient *errs.InsufficientFundsError
		budgetNF     *errs.BudgetNotFoundError
		notFound     *errs.NotFoundError
		transition   *errs.StateTransitionError
		rule         *errs.RuleViolationError
	)
	switch {
	case errors.Is(err, errs.ErrInvalidAmount):
		writeErrorCode(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.As(err, &insufficient):
		writeErrorCode(w, http.StatusConflict, "insufficient_funds", insufficient.Error())
	case errors.As(err, &budgetNF):
		writeErrorCode(w, http.StatusNotFound, "budget_not_found", budgetNF.Error())
	case errors.As(err, &notFound):
		writeErrorCode(w, http.StatusNotFound, "not_found", notFound.Error())
	case errors.As(err, &transition):
		writeErrorCode(w, http.StatusConflict, "invalid_state_transition", transition.Error())
	case errors.As(err, &rule):
		writeErrorCode(w, http.StatusUnprocessableEntity, "business_rule_violation", rule.Error())
	default:
		writeErrorCode(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
