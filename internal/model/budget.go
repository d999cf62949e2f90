package model

import (
	"github.com/shopspring/decimal"

	"github.com/spendtrack-dev/spendtrack/internal/errs"
)

// BudgetKind identifies a funding source tracked per currency.
type BudgetKind string

const (
	BudgetCash BudgetKind = "CASH"
	BudgetBank BudgetKind = "BANK"
)

// ParseBudgetKind validates a budget kind string.
func ParseBudgetKind(s string) (BudgetKind, bool) {
	switch BudgetKind(s) {
	case BudgetCash, BudgetBank:
		return BudgetKind(s), true
	}
	return "", false
}

// BudgetLine is the balance record for one currency within one budget.
// Amount is exact decimal and never negative.
type BudgetLine struct {
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// Budget holds one balance line per currency actually used. The kind is
// immutable after creation; lines are created lazily and never removed,
// even when a currency nets to zero.
type Budget struct {
	Kind  BudgetKind   `json:"kind"`
	Lines []BudgetLine `json:"lines"`
}

// NewBudget creates an empty budget for a kind.
func NewBudget(kind BudgetKind) *Budget {
	return &Budget{Kind: kind}
}

// Balance returns the line amount for a currency, or zero if the
// currency has never been touched. It never creates a line.
func (b *Budget) Balance(currency Currency) decimal.Decimal {
	for i := range b.Lines {
		if b.Lines[i].Currency == currency {
			return b.Lines[i].Amount
		}
	}
	return decimal.Zero
}

// line returns the line for a currency, creating it at zero if absent.
func (b *Budget) line(currency Currency) *BudgetLine {
	for i := range b.Lines {
		if b.Lines[i].Currency == currency {
			return &b.Lines[i]
		}
	}
	b.Lines = append(b.Lines, BudgetLine{Currency: currency, Amount: decimal.Zero})
	return &b.Lines[len(b.Lines)-1]
}

// Credit adds amount to the currency's line, creating it if absent.
func (b *Budget) Credit(currency Currency, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return errs.ErrInvalidAmount
	}
	line := b.line(currency)
	line.Amount = line.Amount.Add(amount)
	return nil
}

// Debit subtracts amount from the currency's line. If the line cannot
// cover the amount, it is left unchanged and an InsufficientFundsError
// is returned.
func (b *Budget) Debit(currency Currency, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return errs.ErrInvalidAmount
	}
	line := b.line(currency)
	if line.Amount.LessThan(amount) {
		return &errs.InsufficientFundsError{
			BudgetKind: string(b.Kind),
			Currency:   string(currency),
			Available:  line.Amount,
			Requested:  amount,
		}
	}
	line.Amount = line.Amount.Sub(amount)
	return nil
}
