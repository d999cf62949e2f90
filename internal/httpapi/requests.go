package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/spendtrack-dev/spendtrack/internal/approval"
	"github.com/spendtrack-dev/spendtrack/internal/expense"
	"github.com/spendtrack-dev/spendtrack/internal/model"
	"github.com/spendtrack-dev/spendtrack/internal/store"
)

type detailPayload struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

func (d detailPayload) params() expense.DetailParams {
	return expense.DetailParams{Description: d.Description, Amount: d.Amount, Currency: d.Currency}
}

type requestPayload struct {
	EmployeeRef         string          `json:"employee_ref"`
	ProjectID           int64           `json:"project_id"`
	StartDate           time.Time       `json:"start_date"`
	ReturnDate          time.Time       `json:"return_date"`
	Mission             string          `json:"mission"`
	MissionLocation     string          `json:"mission_location"`
	ReimbursementMethod string          `json:"reimbursement_method"`
	Details             []detailPayload `json:"details"`
}

func (p requestPayload) details() []expense.DetailParams {
	out := make([]expense.DetailParams, len(p.Details))
	for i, d := range p.Details {
		out[i] = d.params()
	}
	return out
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "bad_request", "invalid "+name)
		return 0, false
	}
	return id, true
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	var body requestPayload
	if !decodeBody(w, r, &body) {
		return
	}
	req, err := s.expense.Create(expense.CreateParams{
		EmployeeRef:         body.EmployeeRef,
		ProjectID:           body.ProjectID,
		StartDate:           body.StartDate,
		ReturnDate:          body.ReturnDate,
		Mission:             body.Mission,
		MissionLocation:     body.MissionLocation,
		ReimbursementMethod: body.ReimbursementMethod,
		Details:             body.details(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RequestFilter{
		Status:      model.ExpenseStatus(q.Get("status")),
		EmployeeRef: q.Get("employee"),
		Currency:    model.Currency(q.Get("currency")),
	}
	if p := q.Get("project"); p != "" {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			writeErrorCode(w, http.StatusBadRequest, "bad_request", "invalid project filter")
			return
		}
		filter.ProjectID = id
	}
	requests, err := s.expense.List(filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expense_requests": requests})
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, err := s.expense.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) updateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body requestPayload
	if !decodeBody(w, r, &body) {
		return
	}
	req, err := s.expense.Update(id, expense.UpdateParams{
		StartDate:           body.StartDate,
		ReturnDate:          body.ReturnDate,
		Mission:             body.Mission,
		MissionLocation:     body.MissionLocation,
		ReimbursementMethod: body.ReimbursementMethod,
		Details:             body.details(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) deleteRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.expense.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getTotals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	totals, err := s.expense.Totals(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"totals": totals})
}

type approvePayload struct {
	Approver        string                     `json:"approver"`
	Comment         string                     `json:"comment,omitempty"`
	ApprovedAmounts map[string]decimal.Decimal `json:"approved_amounts,omitempty"`
}

func (s *Server) approveRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body approvePayload
	if !decodeBody(w, r, &body) {
		return
	}
	req, err := s.approval.Approve(id, approval.ApproveParams{
		Approver:        body.Approver,
		Comment:         body.Comment,
		ApprovedAmounts: body.ApprovedAmounts,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type rejectPayload struct {
	Approver string `json:"approver"`
	Reason   string `json:"reason"`
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body rejectPayload
	if !decodeBody(w, r, &body) {
		return
	}
	req, err := s.approval.Reject(id, body.Approver, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) addDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body detailPayload
	if !decodeBody(w, r, &body) {
		return
	}
	detail, err := s.expense.AddDetail(id, body.params())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) updateDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detailID, ok := pathID(w, r, "detailID")
	if !ok {
		return
	}
	var body detailPayload
	if !decodeBody(w, r, &body) {
		return
	}
	detail, err := s.expense.UpdateDetail(id, detailID, body.params())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) removeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detailID, ok := pathID(w, r, "detailID")
	if !ok {
		return
	}
	if err := s.expense.RemoveDetail(id, detailID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
