package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation classifies a budget mutation.
type Operation string

const (
	OperationCredit Operation = "CREDIT"
	OperationDebit  Operation = "DEBIT"
)

// History is an immutable audit record of one budget mutation. Entries
// are only ever appended; there is no update or delete path.
type History struct {
	ID          int64           `json:"id"`
	Operation   Operation       `json:"operation"`
	BudgetKind  BudgetKind      `json:"budget_kind"`
	EmployeeRef string          `json:"employee_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    Currency        `json:"currency"`
	OccurredAt  time.Time       `json:"occurred_at"`
	RequestID   int64           `json:"request_id,omitempty"` // 0 = no originating request
	ProjectID   int64           `json:"project_id,omitempty"` // 0 = no linked project
}

// CreditRecord builds a CREDIT history entry attributed to an employee,
// optionally linked to a project.
func CreditRecord(kind BudgetKind, employeeRef string, amount decimal.Decimal, currency Currency, projectID int64) History {
	return History{
		Operation:   OperationCredit,
		BudgetKind:  kind,
		EmployeeRef: employeeRef,
		Amount:      amount,
		Currency:    currency,
		ProjectID:   projectID,
	}
}

// DebitRecord builds a DEBIT history entry linked to the expense
// request that caused it and to the request's project.
func DebitRecord(req *ExpenseRequest, kind BudgetKind, amount decimal.Decimal, currency Currency) History {
	return History{
		Operation:   OperationDebit,
		BudgetKind:  kind,
		EmployeeRef: req.EmployeeRef,
		Amount:      amount,
		Currency:    currency,
		RequestID:   req.ID,
		ProjectID:   req.ProjectID,
	}
}
