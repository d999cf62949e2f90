// Package expense owns the expense-request lifecycle: creation with
// reference assignment, detail edits while SUBMITTED, per-currency
// totals, and the currency-diversity limit. Approval and rejection
// live in the approval package because they span the ledger.
package expense

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spendtrack-dev/spendtrack/internal/errs"
	"github.com/spendtrack-dev/spendtrack/internal/model"
	"github.com/spendtrack-dev/spendtrack/internal/refs"
	"github.com/spendtrack-dev/spendtrack/internal/store"
)

// DefaultMaxCurrencies is the currency-diversity limit applied when
// none is configured.
const DefaultMaxCurrencies = 2

// Options tunes workflow behavior.
type Options struct {
	MaxCurrencies   int
	ReferencePrefix string
	ReferenceStart  uint64
}

// Service drives the expense-request lifecycle.
type Service struct {
	store *store.Store
	log   *zap.Logger
	opts  Options
}

// NewService creates an expense Service. Zero option fields fall back
// to defaults (limit 2, "Rqs" references starting at 1000).
func NewService(st *store.Store, log *zap.Logger, opts Options) *Service {
	if opts.MaxCurrencies <= 0 {
		opts.MaxCurrencies = DefaultMaxCurrencies
	}
	if opts.ReferencePrefix == "" {
		opts.ReferencePrefix = refs.RequestPrefix
	}
	if opts.ReferenceStart == 0 {
		opts.ReferenceStart = 1000
	}
	return &Service{store: st, log: log, opts: opts}
}

// DetailParams describes one line item.
type DetailParams struct {
	Description string
	Amount      decimal.Decimal
	Currency    string
}

// CreateParams holds everything needed to submit a new request.
type CreateParams struct {
	EmployeeRef         string
	ProjectID           int64
	StartDate           time.Time
	ReturnDate          time.Time
	Mission             string
	MissionLocation     string
	ReimbursementMethod string
	Details             []DetailParams
}

// UpdateParams replaces the mutable fields of a SUBMITTED request.
// Details are full-replacement: the incoming slice becomes the whole
// detail collection.
type UpdateParams struct {
	StartDate           time.Time
	ReturnDate          time.Time
	Mission             string
	MissionLocation     string
	ReimbursementMethod string
	Details             []DetailParams
}

// Create validates the employee and project references, assigns a
// fresh unique reference, attaches the details, snapshots the
// per-currency totals, and persists the request in SUBMITTED state.
// The currency-diversity limit is checked before anything is stored.
func (s *Service) Create(p CreateParams) (*model.ExpenseRequest, error) {
	method, ok := model.ParseBudgetKind(p.ReimbursementMethod)
	if !ok {
		return nil, errs.RuleViolation(fmt.Sprintf("unknown reimbursement method: %q", p.ReimbursementMethod))
	}

	var req *model.ExpenseRequest
	err := s.store.Update(func(tx *store.Tx) error {
		if _, err := tx.Employee(p.EmployeeRef); err != nil {
			return err
		}
		if _, err := tx.Project(p.ProjectID); err != nil {
			return err
		}

		id, err := tx.NewRequestID()
		if err != nil {
			return err
		}
		reference, err := tx.NewRequestReference(s.opts.ReferencePrefix, s.opts.ReferenceStart)
		if err != nil {
			return err
		}
		details, err := s.buildDetails(tx, p.Details)
		if err != nil {
			return err
		}

		now := time.Now()
		req = &model.ExpenseRequest{
			ID:                  id,
			Reference:           reference,
			EmployeeRef:         p.EmployeeRef,
			ProjectID:           p.ProjectID,
			StartDate:           p.StartDate,
			ReturnDate:          p.ReturnDate,
			Mission:             p.Mission,
			MissionLocation:     p.MissionLocation,
			ReimbursementMethod: method,
			Status:              model.StatusSubmitted,
			Details:             details,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		req.RequestedAmounts = req.TotalsByCurrency()

		if err := s.validateCurrencyLimit(req); err != nil {
			return err
		}
		return tx.PutRequest(req)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("expense request created",
		zap.Int64("request_id", req.ID),
		zap.String("reference", req.Reference),
		zap.String("employee_ref", req.EmployeeRef))
	return req, nil
}

// Update replaces the mutable fields and the whole detail collection
// of a SUBMITTED request, then recomputes totals and re-validates the
// currency limit.
func (s *Service) Update(id int64, p UpdateParams) (*model.ExpenseRequest, error) {
	method, ok := model.ParseBudgetKind(p.ReimbursementMethod)
	if !ok {
		return nil, errs.RuleViolation(fmt.Sprintf("unknown reimbursement method: %q", p.ReimbursementMethod))
	}

	var req *model.ExpenseRequest
	err := s.store.Update(func(tx *store.Tx) error {
		var err error
		req, err = s.submittedRequest(tx, id, "update")
		if err != nil {
			return err
		}

		details, err := s.buildDetails(tx, p.Details)
		if err != nil {
			return err
		}

		req.StartDate = p.StartDate
		req.ReturnDate = p.ReturnDate
		req.Mission = p.Mission
		req.MissionLocation = p.MissionLocation
		req.ReimbursementMethod = method
		req.Details = details
		req.RequestedAmounts = req.TotalsByCurrency()
		req.UpdatedAt = time.Now()

		if err := s.validateCurrencyLimit(req); err != nil {
			return err
		}
		return tx.PutRequest(req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Delete removes a SUBMITTED request and its details.
func (s *Service) Delete(id int64) error {
	return s.store.Update(func(tx *store.Tx) error {
		if _, err := s.submittedRequest(tx, id, "delete"); err != nil {
			return err
		}
		return tx.DeleteRequest(id)
	})
}

// Get loads a request by ID.
func (s *Service) Get(id int64) (*model.ExpenseRequest, error) {
	var req *model.ExpenseRequest
	err := s.store.View(func(tx *store.Tx) error {
		var err error
		req, err = tx.Request(id)
		return err
	})
	return req, err
}

// List returns requests matching the filter.
func (s *Service) List(f store.RequestFilter) ([]model.ExpenseRequest, error) {
	var out []model.ExpenseRequest
	err := s.store.View(func(tx *store.Tx) error {
		var err error
		out, err = tx.Requests(f)
		return err
	})
	return out, err
}

// AddDetail appends one detail to a SUBMITTED request and re-checks
// the currency limit.
func (s *Service) AddDetail(requestID int64, p DetailParams) (*model.ExpenseDetail, error) {
	var added model.ExpenseDetail
	err := s.store.Update(func(tx *store.Tx) error {
		req, err := s.submittedRequest(tx, requestID, "edit")
		if err != nil {
			return err
		}

		detail, err := s.buildDetail(tx, p)
		if err != nil {
			return err
		}
		req.Details = append(req.Details, detail)
		req.RequestedAmounts = req.TotalsByCurrency()
		req.UpdatedAt = time.Now()

		if err := s.validateCurrencyLimit(req); err != nil {
			return err
		}
		added = detail
		return tx.PutRequest(req)
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateDetail replaces one detail of a SUBMITTED request.
func (s *Service) UpdateDetail(requestID, detailID int64, p DetailParams) (*model.ExpenseDetail, error) {
	var updated model.ExpenseDetail
	err := s.store.Update(func(tx *store.Tx) error {
		req, err := s.submittedRequest(tx, requestID, "edit")
		if err != nil {
			return err
		}

		detail := req.Detail(detailID)
		if detail == nil {
			return errs.NotFound("expense detail", fmt.Sprintf("%d", detailID))
		}

		currency, err := s.validateDetail(p)
		if err != nil {
			return err
		}
		detail.Description = p.Description
		detail.Amount = p.Amount
		detail.Currency = currency
		req.RequestedAmounts = req.TotalsByCurrency()
		req.UpdatedAt = time.Now()

		if err := s.validateCurrencyLimit(req); err != nil {
			return err
		}
		updated = *detail
		return tx.PutRequest(req)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveDetail deletes one detail from a SUBMITTED request.
func (s *Service) RemoveDetail(requestID, detailID int64) error {
	return s.store.Update(func(tx *store.Tx) error {
		req, err := s.submittedRequest(tx, requestID, "edit")
		if err != nil {
			return err
		}

		idx := -1
		for i := range req.Details {
			if req.Details[i].ID == detailID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errs.NotFound("expense detail", fmt.Sprintf("%d", detailID))
		}
		req.Details = append(req.Details[:idx], req.Details[idx+1:]...)
		req.RequestedAmounts = req.TotalsByCurrency()
		req.UpdatedAt = time.Now()

		if err := s.validateCurrencyLimit(req); err != nil {
			return err
		}
		return tx.PutRequest(req)
	})
}

// Totals returns the per-currency totals of a request's current
// details. Idempotent: two calls on an unmodified request agree.
func (s *Service) Totals(id int64) (map[model.Currency]decimal.Decimal, error) {
	req, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return req.TotalsByCurrency(), nil
}

// submittedRequest loads a request and ensures it is still SUBMITTED.
func (s *Service) submittedRequest(tx *store.Tx, id int64, op string) (*model.ExpenseRequest, error) {
	req, err := tx.Request(id)
	if err != nil {
		return nil, err
	}
	if req.Status != model.StatusSubmitted {
		return nil, &errs.StateTransitionError{Status: string(req.Status), Operation: op}
	}
	return req, nil
}

func (s *Service) validateDetail(p DetailParams) (model.Currency, error) {
	if p.Amount.Sign() <= 0 {
		return "", errs.RuleViolation("detail amount must be positive")
	}
	currency, err := model.ParseCurrency(p.Currency)
	if err != nil {
		return "", err
	}
	return currency, nil
}

func (s *Service) buildDetail(tx *store.Tx, p DetailParams) (model.ExpenseDetail, error) {
	currency, err := s.validateDetail(p)
	if err != nil {
		return model.ExpenseDetail{}, err
	}
	id, err := tx.NewDetailID()
	if err != nil {
		return model.ExpenseDetail{}, err
	}
	return model.ExpenseDetail{
		ID:          id,
		Description: p.Description,
		Amount:      p.Amount,
		Currency:    currency,
	}, nil
}

func (s *Service) buildDetails(tx *store.Tx, params []DetailParams) ([]model.ExpenseDetail, error) {
	details := make([]model.ExpenseDetail, 0, len(params))
	for _, p := range params {
		d, err := s.buildDetail(tx, p)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *Service) validateCurrencyLimit(req *model.ExpenseRequest) error {
	if n := req.DistinctCurrencies(); n > s.opts.MaxCurrencies {
		return errs.RuleViolation(fmt.Sprintf("too many currencies: %d used, max %d allowed", n, s.opts.MaxCurrencies))
	}
	return nil
}
