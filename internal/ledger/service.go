// Package ledger owns budget balances per (budget kind, currency) and
// the audit history of their mutations. Every successful credit or
// debit writes exactly one history entry in the same transaction, so
// the balance change and its audit record commit together or not at
// all.
package ledger

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spendtrack-dev/spendtrack/internal/model"
	"github.com/spendtrack-dev/spendtrack/internal/store"
)

// Service provides credit/debit/balance operations and history reads.
type Service struct {
	store *store.Store
	log   *zap.Logger
}

// NewService creates a ledger Service.
func NewService(st *store.Store, log *zap.Logger) *Service {
	return &Service{store: st, log: log}
}

// Credit adds amount to the (kind, currency) line, creating the line
// if the currency has never been touched. The credit is attributed to
// the employee and optionally linked to a project. Amount must be
// positive.
func (s *Service) Credit(kind model.BudgetKind, currency model.Currency, amount decimal.Decimal, employeeRef string, projectID int64) (model.History, error) {
	var entry model.History
	err := s.store.Update(func(tx *store.Tx) error {
		if _, err := tx.Employee(employeeRef); err != nil {
			return err
		}
		if projectID != 0 {
			if _, err := tx.Project(projectID); err != nil {
				return err
			}
		}

		budget, err := tx.Budget(kind)
		if err != nil {
			return err
		}
		if err := budget.Credit(currency, amount); err != nil {
			return err
		}
		if err := tx.PutBudget(budget); err != nil {
			return err
		}

		entry, err = tx.AppendHistory(model.CreditRecord(kind, employeeRef, amount, currency, projectID))
		return err
	})
	if err != nil {
		return model.History{}, err
	}

	s.log.Info("budget credited",
		zap.String("budget_kind", string(kind)),
		zap.String("currency", string(currency)),
		zap.String("amount", amount.String()),
		zap.String("employee_ref", employeeRef))
	return entry, nil
}

// Debit subtracts amount from the (kind, currency) line. It fails with
// an InsufficientFundsError, leaving the line untouched, if the line
// cannot cover the amount. Multi-currency debits that must commit as
// one unit go through the approval coordinator instead.
func (s *Service) Debit(kind model.BudgetKind, currency model.Currency, amount decimal.Decimal, employeeRef string, projectID int64) (model.History, error) {
	var entry model.History
	err := s.store.Update(func(tx *store.Tx) error {
		if _, err := tx.Employee(employeeRef); err != nil {
			return err
		}

		budget, err := tx.Budget(kind)
		if err != nil {
			return err
		}
		if err := budget.Debit(currency, amount); err != nil {
			return err
		}
		if err := tx.PutBudget(budget); err != nil {
			return err
		}

		h := model.History{
			Operation:   model.OperationDebit,
			BudgetKind:  kind,
			EmployeeRef: employeeRef,
			Amount:      amount,
			Currency:    currency,
			ProjectID:   projectID,
		}
		entry, err = tx.AppendHistory(h)
		return err
	})
	if err != nil {
		return model.History{}, err
	}

	s.log.Info("budget debited",
		zap.String("budget_kind", string(kind)),
		zap.String("currency", string(currency)),
		zap.String("amount", amount.String()),
		zap.String("employee_ref", employeeRef))
	return entry, nil
}

// Balance returns the line amount for (kind, currency), or zero if the
// currency has never been touched. It never creates a line.
func (s *Service) Balance(kind model.BudgetKind, currency model.Currency) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := s.store.View(func(tx *store.Tx) error {
		budget, err := tx.Budget(kind)
		if err != nil {
			return err
		}
		amount = budget.Balance(currency)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// Budget returns the full budget aggregate for a kind.
func (s *Service) Budget(kind model.BudgetKind) (*model.Budget, error) {
	var budget *model.Budget
	err := s.store.View(func(tx *store.Tx) error {
		var err error
		budget, err = tx.Budget(kind)
		return err
	})
	return budget, err
}

// History returns every history entry, most recent first.
func (s *Service) History() ([]model.History, error) {
	return s.historyByKind("")
}

// HistoryByKind returns the history of one budget kind, most recent
// first.
func (s *Service) HistoryByKind(kind model.BudgetKind) ([]model.History, error) {
	return s.historyByKind(kind)
}

func (s *Service) historyByKind(kind model.BudgetKind) ([]model.History, error) {
	var entries []model.History
	err := s.store.View(func(tx *store.Tx) error {
		var err error
		entries, err = tx.History(kind)
		return err
	})
	return entries, err
}
