// Package refs formats and parses the human-readable references
// assigned to expense requests, employees, and projects. Allocation of
// the numeric part is the store's job (an atomic sequence); this
// package only owns the textual form.
package refs

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known reference prefixes.
const (
	RequestPrefix  = "Rqs"
	EmployeePrefix = "Emp"
	ProjectPrefix  = "Prj"
)

// Format returns a reference like "Rqs1042".
func Format(prefix string, n uint64) string {
	return fmt.Sprintf("%s%d", prefix, n)
}

// Parse extracts the numeric part of a reference with the given
// prefix. "Rqs1042" -> 1042.
func Parse(prefix, ref string) (uint64, error) {
	if !strings.HasPrefix(ref, prefix) {
		return 0, fmt.Errorf("reference %q does not start with %q", ref, prefix)
	}
	n, err := strconv.ParseUint(ref[len(prefix):], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in reference %q: %w", ref, err)
	}
	return n, nil
}
