// Package approval orchestrates expense-request approval across the
// ledger, the history log, and the request lifecycle. An approval is
// one atomic unit: every per-currency debit, every history entry, and
// the status flip commit in a single store transaction, or none of
// them do. Rejection never touches the ledger.
package approval

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spendtrack-dev/spendtrack/internal/errs"
	"github.com/spendtrack-dev/spendtrack/internal/model"
	"github.com/spendtrack-dev/spendtrack/internal/store"
)

// Coordinator drives approvals and rejections.
type Coordinator struct {
	store *store.Store
	log   *zap.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(st *store.Store, log *zap.Logger) *Coordinator {
	return &Coordinator{store: st, log: log}
}

// ApproveParams carries the approver's decision.
type ApproveParams struct {
	Approver string
	Comment  string
	// ApprovedAmounts, when non-empty, overrides the request's
	// requested totals (administrative adjustment). Keys are currency
	// codes.
	ApprovedAmounts map[string]decimal.Decimal
}

// Approve debits the request's per-currency amounts from its
// reimbursement budget, records one DEBIT history entry per currency,
// and flips the request to APPROVED. If any currency cannot be
// covered, the whole transaction aborts: balances, history, and the
// request are left exactly as they were and the request stays
// SUBMITTED.
func (c *Coordinator) Approve(requestID int64, p ApproveParams) (*model.ExpenseRequest, error) {
	var req *model.ExpenseRequest
	err := c.store.Update(func(tx *store.Tx) error {
		var err error
		req, err = tx.Request(requestID)
		if err != nil {
			return err
		}
		if req.Status != model.StatusSubmitted {
			return &errs.StateTransitionError{Status: string(req.Status), Operation: "approve"}
		}

		amounts, err := c.resolveAmounts(req, p.ApprovedAmounts)
		if err != nil {
			return err
		}

		kind := req.ReimbursementMethod
		if kind == "" {
			kind = model.BudgetBank
		}
		budget, err := tx.Budget(kind)
		if err != nil {
			return err
		}

		// Deterministic debit order so failures and history are stable.
		currencies := make([]model.Currency, 0, len(amounts))
		for currency := range amounts {
			currencies = append(currencies, currency)
		}
		sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

		for _, currency := range currencies {
			if err := budget.Debit(currency, amounts[currency]); err != nil {
				return err
			}
		}
		if err := tx.PutBudget(budget); err != nil {
			return err
		}
		for _, currency := range currencies {
			if _, err := tx.AppendHistory(model.DebitRecord(req, kind, amounts[currency], currency)); err != nil {
				return err
			}
		}

		now := time.Now()
		req.ApprovedAmounts = amounts
		req.ApprovalComment = p.Comment
		if req.ApprovalComment == "" {
			req.ApprovalComment = "Approved"
		}
		req.ApprovedBy = p.Approver
		req.ApprovedAt = &now
		req.Status = model.StatusApproved
		req.UpdatedAt = now
		return tx.PutRequest(req)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("expense request approved",
		zap.Int64("request_id", req.ID),
		zap.String("reference", req.Reference),
		zap.String("approved_by", p.Approver))
	return req, nil
}

// Reject flips a SUBMITTED request to REJECTED with a reason,
// defaulting the reason if blank. The ledger is not involved.
func (c *Coordinator) Reject(requestID int64, approver, reason string) (*model.ExpenseRequest, error) {
	var req *model.ExpenseRequest
	err := c.store.Update(func(tx *store.Tx) error {
		var err error
		req, err = tx.Request(requestID)
		if err != nil {
			return err
		}
		if req.Status != model.StatusSubmitted {
			return &errs.StateTransitionError{Status: string(req.Status), Operation: "reject"}
		}

		now := time.Now()
		req.RejectionReason = reason
		if req.RejectionReason == "" {
			req.RejectionReason = "No reason provided"
		}
		req.ApprovedBy = approver
		req.ApprovedAt = &now
		req.Status = model.StatusRejected
		req.UpdatedAt = now
		return tx.PutRequest(req)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("expense request rejected",
		zap.Int64("request_id", req.ID),
		zap.String("reference", req.Reference),
		zap.String("rejected_by", approver))
	return req, nil
}

// resolveAmounts picks the amounts to debit: the override when
// supplied and non-empty, else the requested totals snapshot, else the
// totals recomputed from the details. Non-positive entries are
// dropped; an approval that resolves to nothing is a rule violation.
func (c *Coordinator) resolveAmounts(req *model.ExpenseRequest, override map[string]decimal.Decimal) (map[model.Currency]decimal.Decimal, error) {
	resolved := make(map[model.Currency]decimal.Decimal)

	if len(override) > 0 {
		for code, amount := range override {
			currency, err := model.ParseCurrency(code)
			if err != nil {
				return nil, err
			}
			if amount.Sign() > 0 {
				resolved[currency] = amount
			}
		}
	} else {
		requested := req.RequestedAmounts
		if len(requested) == 0 {
			requested = req.TotalsByCurrency()
		}
		for currency, amount := range requested {
			if amount.Sign() > 0 {
				resolved[currency] = amount
			}
		}
	}

	if len(resolved) == 0 {
		return nil, errs.RuleViolation("nothing to approve: no positive amounts")
	}
	return resolved, nil
}
