package store

import (
	"encoding/json"
	"fmt"

	"github.com/spendtrack-dev/spendtrack/internal/errs"
	"github.com/spendtrack-dev/spendtrack/internal/model"
)

// Budget loads the budget for a kind.
func (tx *Tx) Budget(kind model.BudgetKind) (*model.Budget, error) {
	var b model.Budget
	found, err := tx.getJSON(bucketBudgets, []byte(kind), &b)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &errs.BudgetNotFoundError{Kind: string(kind)}
	}
	return &b, nil
}

// PutBudget writes a budget back, keyed by its kind.
func (tx *Tx) PutBudget(b *model.Budget) error {
	return tx.putJSON(bucketBudgets, []byte(b.Kind), b)
}

// EnsureBudget creates an empty budget for a kind if none exists.
// Called once at startup for each configured kind.
func (tx *Tx) EnsureBudget(kind model.BudgetKind) error {
	if _, err := tx.Budget(kind); err == nil {
		return nil
	} else if !errs.IsNotFound(err) {
		return err
	}
	return tx.PutBudget(model.NewBudget(kind))
}

// Budgets returns all budgets in key order.
func (tx *Tx) Budgets() ([]model.Budget, error) {
	var out []model.Budget
	err := tx.btx.Bucket([]byte(bucketBudgets)).ForEach(func(_, v []byte) error {
		var b model.Budget
		if err := json.Unmarshal(v, &b); err != nil {
			return fmt.Errorf("decoding budget record: %w", err)
		}
		out = append(out, b)
		return nil
	})
	return out, err
}
