package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spendtrack-dev/spendtrack/internal/errs"
	"github.com/spendtrack-dev/spendtrack/internal/model"
	"github.com/spendtrack-dev/spendtrack/internal/refs"
)

// Sequence names. Requests get two: one for the numeric ID and one for
// the human-readable reference number.
const (
	seqRequests    = "requests"
	seqRequestRefs = "request_refs"
	seqDetails     = "details"
	seqProjects    = "projects"
)

// NewRequestID allocates the next request ID.
func (tx *Tx) NewRequestID() (int64, error) {
	n, err := tx.NextSeq(seqRequests, 1)
	return int64(n), err
}

// NewRequestReference mints the next request reference, e.g.
// "Rqs1000". Allocation goes through the sequence bucket rather than
// reading the latest stored reference, so concurrent creates can never
// mint the same number.
func (tx *Tx) NewRequestReference(prefix string, start uint64) (string, error) {
	n, err := tx.NextSeq(seqRequestRefs, start)
	if err != nil {
		return "", err
	}
	if prefix == "" {
		prefix = refs.RequestPrefix
	}
	return refs.Format(prefix, n), nil
}

// NewDetailID allocates the next expense detail ID.
func (tx *Tx) NewDetailID() (int64, error) {
	n, err := tx.NextSeq(seqDetails, 1)
	return int64(n), err
}

// Request loads an expense request with its details.
func (tx *Tx) Request(id int64) (*model.ExpenseRequest, error) {
	var r model.ExpenseRequest
	found, err := tx.getJSON(bucketRequests, itob(uint64(id)), &r)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NotFound("expense request", strconv.FormatInt(id, 10))
	}
	return &r, nil
}

// PutRequest writes a request aggregate, details included.
func (tx *Tx) PutRequest(r *model.ExpenseRequest) error {
	return tx.putJSON(bucketRequests, itob(uint64(r.ID)), r)
}

// DeleteRequest removes a request and, with it, its details.
func (tx *Tx) DeleteRequest(id int64) error {
	if _, err := tx.Request(id); err != nil {
		return err
	}
	return tx.btx.Bucket([]byte(bucketRequests)).Delete(itob(uint64(id)))
}

// Requests returns requests matching the filter in ID order. The zero
// filter matches everything.
func (tx *Tx) Requests(f RequestFilter) ([]model.ExpenseRequest, error) {
	var out []model.ExpenseRequest
	err := tx.btx.Bucket([]byte(bucketRequests)).ForEach(func(_, v []byte) error {
		var r model.ExpenseRequest
		if err := json.Unmarshal(v, &r); err != nil {
			return fmt.Errorf("decoding request record: %w", err)
		}
		if f.matches(&r) {
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

// RequestFilter narrows a request listing. Empty fields match all.
type RequestFilter struct {
	Status      model.ExpenseStatus
	EmployeeRef string
	ProjectID   int64
	Currency    model.Currency
}

func (f RequestFilter) matches(r *model.ExpenseRequest) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.EmployeeRef != "" && r.EmployeeRef != f.EmployeeRef {
		return false
	}
	if f.ProjectID != 0 && r.ProjectID != f.ProjectID {
		return false
	}
	if f.Currency != "" {
		found := false
		for _, d := range r.Details {
			if d.Currency == f.Currency {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
