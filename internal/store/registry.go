package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spendtrack-dev/spendtrack/internal/errs"
	"github.com/spendtrack-dev/spendtrack/internal/model"
)

// Employee loads an employee by stable reference.
func (tx *Tx) Employee(ref string) (*model.Employee, error) {
	var e model.Employee
	found, err := tx.getJSON(bucketEmployees, []byte(ref), &e)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NotFound("employee", ref)
	}
	return &e, nil
}

// PutEmployee inserts or updates an employee, keyed by reference.
func (tx *Tx) PutEmployee(e *model.Employee) error {
	return tx.putJSON(bucketEmployees, []byte(e.Reference), e)
}

// DeleteEmployee removes an employee record.
func (tx *Tx) DeleteEmployee(ref string) error {
	if _, err := tx.Employee(ref); err != nil {
		return err
	}
	return tx.btx.Bucket([]byte(bucketEmployees)).Delete([]byte(ref))
}

// Employees returns all employees in reference order.
func (tx *Tx) Employees() ([]model.Employee, error) {
	var out []model.Employee
	err := tx.btx.Bucket([]byte(bucketEmployees)).ForEach(func(_, v []byte) error {
		var e model.Employee
		if err := json.Unmarshal(v, &e); err != nil {
			return fmt.Errorf("decoding employee record: %w", err)
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

// NewProjectID allocates the next project ID.
func (tx *Tx) NewProjectID() (int64, error) {
	n, err := tx.NextSeq(seqProjects, 1)
	return int64(n), err
}

// Project loads a project by ID.
func (tx *Tx) Project(id int64) (*model.Project, error) {
	var p model.Project
	found, err := tx.getJSON(bucketProjects, itob(uint64(id)), &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NotFound("project", strconv.FormatInt(id, 10))
	}
	return &p, nil
}

// PutProject inserts or updates a project.
func (tx *Tx) PutProject(p *model.Project) error {
	return tx.putJSON(bucketProjects, itob(uint64(p.ID)), p)
}

// DeleteProject removes a project record.
func (tx *Tx) DeleteProject(id int64) error {
	if _, err := tx.Project(id); err != nil {
		return err
	}
	return tx.btx.Bucket([]byte(bucketProjects)).Delete(itob(uint64(id)))
}

// Projects returns all projects in ID order.
func (tx *Tx) Projects() ([]model.Project, error) {
	var out []model.Project
	err := tx.btx.Bucket([]byte(bucketProjects)).ForEach(func(_, v []byte) error {
		var p model.Project
		if err := json.Unmarshal(v, &p); err != nil {
			return fmt.Errorf("decoding project record: %w", err)
		}
		out = append(out, p)
		return nil
	})
	return out, err
}
