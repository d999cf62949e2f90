package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the lifecycle state of an expense request.
// SUBMITTED is the only non-terminal state.
type ExpenseStatus string

const (
	StatusSubmitted ExpenseStatus = "SUBMITTED"
	StatusApproved  ExpenseStatus = "APPROVED"
	StatusRejected  ExpenseStatus = "REJECTED"
)

// ExpenseDetail is one line item of an expense request. It belongs to
// exactly one request and is created and deleted with it.
type ExpenseDetail struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    Currency        `json:"currency"`
}

// ExpenseRequest is an employee's reimbursement claim against a
// project, composed of line-item details and moving through a
// submit -> approve/reject lifecycle. Once approved or rejected the
// request and its details are read-only.
type ExpenseRequest struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`

	EmployeeRef string `json:"employee_ref"`
	ProjectID   int64  `json:"project_id"`

	StartDate       time.Time `json:"start_date"`
	ReturnDate      time.Time `json:"return_date"`
	Mission         string    `json:"mission"`
	MissionLocation string    `json:"mission_location"`

	// ReimbursementMethod is the budget kind debited on approval.
	ReimbursementMethod BudgetKind    `json:"reimbursement_method"`
	Status              ExpenseStatus `json:"status"`

	Details []ExpenseDetail `json:"details"`

	// RequestedAmounts is the per-currency totals snapshot taken at
	// submission; ApprovedAmounts is the approver's final figures,
	// which may differ from the requested ones.
	RequestedAmounts map[Currency]decimal.Decimal `json:"requested_amounts,omitempty"`
	ApprovedAmounts  map[Currency]decimal.Decimal `json:"approved_amounts,omitempty"`

	ApprovalComment string     `json:"approval_comment,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalsByCurrency groups the current details by currency and sums
// their amounts. It is a pure projection over the detail slice: it is
// recomputed on each call, never accumulated or cached.
func (r *ExpenseRequest) TotalsByCurrency() map[Currency]decimal.Decimal {
	totals := make(map[Currency]decimal.Decimal, len(r.Details))
	for _, d := range r.Details {
		totals[d.Currency] = totals[d.Currency].Add(d.Amount)
	}
	return totals
}

// DistinctCurrencies returns the number of distinct currencies among
// the request's details.
func (r *ExpenseRequest) DistinctCurrencies() int {
	return len(r.TotalsByCurrency())
}

// Detail returns the detail with the given ID, or nil.
func (r *ExpenseRequest) Detail(detailID int64) *ExpenseDetail {
	for i := range r.Details {
		if r.Details[i].ID == detailID {
			return &r.Details[i]
		}
	}
	return nil
}
