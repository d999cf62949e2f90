package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spendtrack-dev/spendtrack/internal/model"
	"github.com/spendtrack-dev/spendtrack/internal/refs"
	"github.com/spendtrack-dev/spendtrack/internal/store"
)

// Employee and project records are plumbing around the engine: simple
// keyed CRUD with no lifecycle of their own.

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var emp model.Employee
	if !decodeBody(w, r, &emp) {
		return
	}
	if emp.Status == "" {
		emp.Status = model.EmployeeActive
	}
	err := s.store.Update(func(tx *store.Tx) error {
		if emp.Reference == "" {
			n, err := tx.NextSeq("employees", 1)
			if err != nil {
				return err
			}
			emp.Reference = refs.Format(refs.EmployeePrefix, n)
		}
		return tx.PutEmployee(&emp)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, emp)
}

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request) {
	var employees []model.Employee
	err := s.store.View(func(tx *store.Tx) error {
		var err error
		employees, err = tx.Employees()
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": employees})
}

func (s *Server) getEmployee(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	var emp *model.Employee
	err := s.store.View(func(tx *store.Tx) error {
		var err error
		emp, err = tx.Employee(ref)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (s *Server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	var emp model.Employee
	if !decodeBody(w, r, &emp) {
		return
	}
	emp.Reference = ref
	err := s.store.Update(func(tx *store.Tx) error {
		if _, err := tx.Employee(ref); err != nil {
			return err
		}
		return tx.PutEmployee(&emp)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (s *Server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	err := s.store.Update(func(tx *store.Tx) error {
		return tx.DeleteEmployee(chi.URLParam(r, "ref"))
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var proj model.Project
	if !decodeBody(w, r, &proj) {
		return
	}
	if proj.Status == "" {
		proj.Status = model.ProjectPlanned
	}
	err := s.store.Update(func(tx *store.Tx) error {
		id, err := tx.NewProjectID()
		if err != nil {
			return err
		}
		proj.ID = id
		if proj.Reference == "" {
			proj.Reference = refs.Format(refs.ProjectPrefix, uint64(id))
		}
		return tx.PutProject(&proj)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proj)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	var projects []model.Project
	err := s.store.View(func(tx *store.Tx) error {
		var err error
		projects, err = tx.Projects()
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var proj *model.Project
	err := s.store.View(func(tx *store.Tx) error {
		var err error
		proj, err = tx.Project(id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var proj model.Project
	if !decodeBody(w, r, &proj) {
		return
	}
	err := s.store.Update(func(tx *store.Tx) error {
		existing, err := tx.Project(id)
		if err != nil {
			return err
		}
		proj.ID = id
		if proj.Reference == "" {
			proj.Reference = existing.Reference
		}
		return tx.PutProject(&proj)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	err := s.store.Update(func(tx *store.Tx) error {
		return tx.DeleteProject(id)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
