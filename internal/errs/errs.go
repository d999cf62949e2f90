// Package errs defines the business error taxonomy shared by the
// ledger, expense, and approval services. Callers branch on these with
// errors.Is / errors.As rather than matching message strings.
package errs

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a non-positive amount is offered to
// a credit or debit.
var ErrInvalidAmount = errors.New("amount must be positive")

// InsufficientFundsError is returned when a debit exceeds the balance
// of a budget line. The line is left unchanged.
type InsufficientFundsError struct {
	BudgetKind string
	Currency   string
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s in %s budget: available %s, requested %s",
		e.Currency, e.BudgetKind, e.Available, e.Requested)
}

// BudgetNotFoundError is returned when no budget exists for a kind.
type BudgetNotFoundError struct {
	Kind string
}

func (e *BudgetNotFoundError) Error() string {
	return fmt.Sprintf("budget not found for kind %s", e.Kind)
}

// StateTransitionError is returned when an operation is attempted on an
// expense request whose status does not allow it.
type StateTransitionError struct {
	Status    string // current request status
	Operation string // attempted operation, e.g. "approve"
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s request: only SUBMITTED requests may change", e.Operation, e.Status)
}

// RuleViolationError is returned when a request violates a business
// rule, such as the currency-diversity limit.
type RuleViolationError struct {
	Reason string
}

func (e *RuleViolationError) Error() string {
	return e.Reason
}

// RuleViolation builds a RuleViolationError.
func RuleViolation(reason string) *RuleViolationError {
	return &RuleViolationError{Reason: reason}
}

// NotFoundError is returned when an employee, project, request, or
// detail reference does not resolve.
type NotFoundError struct {
	Kind string // "employee", "project", "expense request", "expense detail"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// NotFound builds a NotFoundError.
func NotFound(kind, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: key}
}

// IsInsufficientFunds reports whether err is an InsufficientFundsError.
func IsInsufficientFunds(err error) bool {
	var ife *InsufficientFundsError
	return errors.As(err, &ife)
}

// IsNotFound reports whether err is a NotFoundError or BudgetNotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	var bnf *BudgetNotFoundError
	return errors.As(err, &nfe) || errors.As(err, &bnf)
}
