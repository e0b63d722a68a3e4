// Package core holds the domain model of the tracker: categories,
// ledger transactions, budgets, goals, and the validation rules that
// guard every mutation.
package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated is returned when no valid principal accompanies
	// a request.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNotFound covers both records that do not exist and records owned
	// by a different principal. The two cases are deliberately
	// indistinguishable so that record ids do not leak across owners.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned on uniqueness violations, e.g. a duplicate
	// (name, type) category or a duplicate budget date range.
	ErrConflict = errors.New("record already exists")
)

// FieldErrors maps a field name to its validation messages. Every check
// runs; violations accumulate rather than short-circuiting on the first.
type FieldErrors map[string][]string

// Common validation messages, kept in one vocabulary across entities.
const (
	MsgRequired      = "This field is required."
	MsgInvalidNumber = "A valid number is required."
	MsgNotPositive   = "Ensure this value is greater than or equal to 0.01."
	MsgInvalidDate   = "Date has wrong format. Use YYYY-MM-DD."
	MsgInvalidChoice = "Not a valid choice."
	MsgInvalidRef    = "Invalid pk - object does not exist."
	MsgDateOrder     = "End date must be after start date."
)

// MsgMaxLength builds the over-length message for a given limit.
func MsgMaxLength(limit int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", limit)
}

// Add appends a message for the given field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Has reports whether the field carries at least one violation.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// AsError returns fe as an error when any violation was recorded, nil
// otherwise. Callers always return the result directly so an empty map
// never escapes as a non-nil error.
func (fe FieldErrors) AsError() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(fe[f], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// CategoryInUseError blocks category deletion while transactions still
// reference it, carrying the blocking counts for the caller's message.
type CategoryInUseError struct {
	ExpenseCount int64
	IncomeCount  int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf(
		"category is referenced by %d expense(s) and %d income record(s)",
		e.ExpenseCount, e.IncomeCount,
	)
}
