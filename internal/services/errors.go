package services

import (
	"fmt"
	"sort"
	"strings"

	"autoparc/internal/validation"
)

// ValidationError reports missing or malformed fields at creation time.
// Nothing is committed when it is returned.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// ConflictError reports an operation blocked by existing state: a delete
// with live references, or a duplicate subcase number. The caller must
// resolve the conflict before retrying.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}
