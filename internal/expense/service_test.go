package expense

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spendtrack-dev/spendtrack/internal/errs"
	"github.com/spendtrack-dev/spendtrack/internal/model"
	"github.com/spendtrack-dev/spendtrack/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.Update(func(tx *store.Tx) error {
		if err := tx.PutEmployee(&model.Employee{Reference: "Emp1", FullName: "Jane Doe", Status: model.EmployeeActive}); err != nil {
			return err
		}
		return tx.PutProject(&model.Project{ID: 7, Reference: "Prj7", Name: "Atlas", Status: model.ProjectInProgress})
	}))

	return NewService(st, zap.NewNop(), Options{}), st
}

func createParams(details ...DetailParams) CreateParams {
	return CreateParams{
		EmployeeRef:         "Emp1",
		ProjectID:           7,
		StartDate:           date(2026, 3, 10),
		ReturnDate:          date(2026, 3, 14),
		Mission:             "Client workshop",
		MissionLocation:     "Tunis",
		ReimbursementMethod: "BANK",
		Details:             details,
	}
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)

	req, err := svc.Create(createParams(
		DetailParams{Description: "taxi", Amount: dec("50"), Currency: "USD"},
		DetailParams{Description: "hotel", Amount: dec("30"), Currency: "EUR"},
	))
	require.NoError(t, err)

	assert.Equal(t, "Rqs1000", req.Reference)
	assert.Equal(t, model.StatusSubmitted, req.Status)
	require.Len(t, req.Details, 2)
	assert.NotZero(t, req.Details[0].ID)
	assert.True(t, req.RequestedAmounts["USD"].Equal(dec("50")))
	assert.True(t, req.RequestedAmounts["EUR"].Equal(dec("30")))
}

func TestCreate_ReferencesIncrease(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.Create(createParams(DetailParams{Description: "a", Amount: dec("1"), Currency: "USD"}))
	require.NoError(t, err)
	second, err := svc.Create(createParams(DetailParams{Description: "b", Amount: dec("1"), Currency: "USD"}))
	require.NoError(t, err)

	assert.Equal(t, "Rqs1000", first.Reference)
	assert.Equal(t, "Rqs1001", second.Reference)
}

func TestCreate_UnknownEmployee(t *testing.T) {
	svc, _ := newTestService(t)

	p := createParams(DetailParams{Description: "a", Amount: dec("1"), Currency: "USD"})
	p.EmployeeRef = "Emp9"
	_, err := svc.Create(p)
	assert.True(t, errs.IsNotFound(err))
}

func TestCreate_UnknownProject(t *testing.T) {
	svc, _ := newTestService(t)

	p := createParams(DetailParams{Description: "a", Amount: dec("1"), Currency: "USD"})
	p.ProjectID = 99
	_, err := svc.Create(p)
	assert.True(t, errs.IsNotFound(err))
}

func TestCreate_CurrencyLimit(t *testing.T) {
	svc, _ := newTestService(t)

	// Two distinct currencies pass.
	_, err := svc.Create(createParams(
		DetailParams{Description: "a", Amount: dec("10"), Currency: "USD"},
		DetailParams{Description: "b", Amount: dec("10"), Currency: "EUR"},
	))
	require.NoError(t, err)

	// Three fail, and nothing is persisted.
	_, err = svc.Create(createParams(
		DetailParams{Description: "a", Amount: dec("10"), Currency: "USD"},
		DetailParams{Description: "b", Amount: dec("10"), Currency: "EUR"},
		DetailParams{Description: "c", Amount: dec("10"), Currency: "GBP"},
	))
	var rule *errs.RuleViolationError
	require.ErrorAs(t, err, &rule)
	assert.Contains(t, rule.Reason, "too many currencies")

	all, err := svc.List(store.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreate_RejectsBadDetails(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(createParams(DetailParams{Description: "a", Amount: dec("-5"), Currency: "USD"}))
	var rule *errs.RuleViolationError
	assert.ErrorAs(t, err, &rule)

	_, err = svc.Create(createParams(DetailParams{Description: "a", Amount: dec("5"), Currency: "ZZZ"}))
	assert.ErrorAs(t, err, &rule)
}

func TestUpdate_ReplacesDetailsWholesale(t *testing.T) {
	svc, _ := newTestService(t)

	req, err := svc.Create(createParams(
		DetailParams{Description: "taxi", Amount: dec("50"), Currency: "USD"},
		DetailParams{Description: "hotel", Amount: dec("30"), Currency: "EUR"},
	))
	require.NoError(t, err)

	updated, err := svc.Update(req.ID, UpdateParams{
		StartDate:           req.StartDate,
		ReturnDate:          req.ReturnDate,
		Mission:             "Extended workshop",
		MissionLocation:     "Sfax",
		ReimbursementMethod: "CASH",
		Details: []DetailParams{
			{Description: "train", Amount: dec("20"), Currency: "USD"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Extended workshop", updated.Mission)
	assert.Equal(t, model.BudgetCash, updated.ReimbursementMethod)
	require.Len(t, updated.Details, 1, "details not present in the patch are gone")
	assert.True(t, updated.RequestedAmounts["USD"].Equal(dec("20")))
	_, hasEUR := updated.RequestedAmounts["EUR"]
	assert.False(t, hasEUR, "totals recomputed after replacement")
	assert.Equal(t, req.Reference, updated.Reference, "reference never changes")
}

func TestUpdate_OnlyWhileSubmitted(t *testing.T) {
	svc, st := newTestService(t)

	req, err := svc.Create(createParams(DetailParams{Description: "a", Amount: dec("1"), Currency: "USD"}))
	require.NoError(t, err)

	// Flip to APPROVED behind the service's back.
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		r, err := tx.Request(req.ID)
		if err != nil {
			return err
		}
		r.Status = model.StatusApproved
		return tx.PutRequest(r)
	}))

	_, err = svc.Update(req.ID, UpdateParams{ReimbursementMethod: "BANK"})
	var ste *errs.StateTransitionError
	require.ErrorAs(t, err, &ste)
	assert.Equal(t, "APPROVED", ste.Status)
}

func TestDetailLifecycle(t *testing.T) {
	svc, _ := newTestService(t)

	req, err := svc.Create(createParams(DetailParams{Description: "taxi", Amount: dec("50"), Currency: "USD"}))
	require.NoError(t, err)

	added, err := svc.AddDetail(req.ID, DetailParams{Description: "hotel", Amount: dec("80"), Currency: "EUR"})
	require.NoError(t, err)
	assert.NotZero(t, added.ID)

	updated, err := svc.UpdateDetail(req.ID, added.ID, DetailParams{Description: "hotel", Amount: dec("95.50"), Currency: "EUR"})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(dec("95.50")))

	totals, err := svc.Totals(req.ID)
	require.NoError(t, err)
	assert.True(t, totals["USD"].Equal(dec("50")))
	assert.True(t, totals["EUR"].Equal(dec("95.50")))

	require.NoError(t, svc.RemoveDetail(req.ID, added.ID))
	totals, err = svc.Totals(req.ID)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.True(t, totals["USD"].Equal(dec("50")))
}

func TestAddDetail_EnforcesCurrencyLimit(t *testing.T) {
	svc, _ := newTestService(t)

	req, err := svc.Create(createParams(
		DetailParams{Description: "a", Amount: dec("10"), Currency: "USD"},
		DetailParams{Description: "b", Amount: dec("10"), Currency: "EUR"},
	))
	require.NoError(t, err)

	_, err = svc.AddDetail(req.ID, DetailParams{Description: "c", Amount: dec("10"), Currency: "GBP"})
	var rule *errs.RuleViolationError
	require.ErrorAs(t, err, &rule)

	// The offending detail must not stick.
	got, err := svc.Get(req.ID)
	require.NoError(t, err)
	assert.Len(t, got.Details, 2)
}

func TestRemoveDetail_UnknownDetail(t *testing.T) {
	svc, _ := newTestService(t)

	req, err := svc.Create(createParams(DetailParams{Description: "a", Amount: dec("1"), Currency: "USD"}))
	require.NoError(t, err)

	err = svc.RemoveDetail(req.ID, 999)
	assert.True(t, errs.IsNotFound(err))
}

func TestDelete_OnlyWhileSubmitted(t *testing.T) {
	svc, st := newTestService(t)

	req, err := svc.Create(createParams(DetailParams{Description: "a", Amount: dec("1"), Currency: "USD"}))
	require.NoError(t, err)

	require.NoError(t, st.Update(func(tx *store.Tx) error {
		r, err := tx.Request(req.ID)
		if err != nil {
			return err
		}
		r.Status = model.StatusRejected
		return tx.PutRequest(r)
	}))

	err = svc.Delete(req.ID)
	var ste *errs.StateTransitionError
	assert.ErrorAs(t, err, &ste)
}

func TestTotals_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)

	req, err := svc.Create(createParams(
		DetailParams{Description: "a", Amount: dec("12.34"), Currency: "USD"},
		DetailParams{Description: "b", Amount: dec("0.66"), Currency: "USD"},
	))
	require.NoError(t, err)

	first, err := svc.Totals(req.ID)
	require.NoError(t, err)
	second, err := svc.Totals(req.ID)
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.True(t, first["USD"].Equal(dec("13.00")))
	assert.True(t, second["USD"].Equal(first["USD"]))
}

func TestList_Filters(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(createParams(DetailParams{Description: "a", Amount: dec("1"), Currency: "USD"}))
	require.NoError(t, err)
	_, err = svc.Create(createParams(DetailParams{Description: "b", Amount: dec("2"), Currency: "EUR"}))
	require.NoError(t, err)

	byStatus, err := svc.List(store.RequestFilter{Status: model.StatusSubmitted})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byCurrency, err := svc.List(store.RequestFilter{Currency: "EUR"})
	require.NoError(t, err)
	require.Len(t, byCurrency, 1)
}

func TestCreate_UnknownReimbursementMethod(t *testing.T) {
	svc, _ := newTestService(t)

	p := createParams(DetailParams{Description: "a", Amount: dec("1"), Currency: "USD"})
	p.ReimbursementMethod = "CRYPTO"
	_, err := svc.Create(p)
	var rule *errs.RuleViolationError
	assert.ErrorAs(t, err, &rule)
}
