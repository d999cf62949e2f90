package model

import "time"

// EmployeeStatus marks whether an employee is active.
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "ACTIVE"
	EmployeeInactive EmployeeStatus = "INACTIVE"
)

// Employee is an external collaborator record: the engine only needs a
// stable reference for history attribution and request ownership.
type Employee struct {
	Reference  string         `json:"reference"`
	FullName   string         `json:"full_name"`
	Email      string         `json:"email"`
	Department string         `json:"department"`
	Occupation string         `json:"occupation"`
	Status     EmployeeStatus `json:"status"`
	HireDate   time.Time      `json:"hire_date"`
}
