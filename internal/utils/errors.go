package utils

import "fmt"

// InsufficientDataError reports a column whose non-null sample count is below
// the configured minimum. It is logged and skipped, never fatal.
type InsufficientDataError struct {
	TableID    string
	Column     string
	Samples    int
	MinSamples int
}

// Error returns the error message string.
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data in %s.%s: %d non-null samples, need %d",
		e.TableID, e.Column, e.Samples, e.MinSamples)
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(tableID, column string, samples, minSamples int) error {
	return &InsufficientDataError{
		TableID:    tableID,
		Column:     column,
		Samples:    samples,
		MinSamples: minSamples,
	}
}

// UnknownRoleError reports a role id with no registered requirement profile.
// Role resolution never silently defaults.
type UnknownRoleError struct {
	RoleID string
}

// Error returns the error message string.
func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role: %q is not registered", e.RoleID)
}

// NewUnknownRoleError creates a new UnknownRoleError.
func NewUnknownRoleError(roleID string) error {
	return &UnknownRoleError{RoleID: roleID}
}

// InvalidTableError reports a malformed or empty input table. Fatal to the
// generation request.
type InvalidTableError struct {
	TableID string
	Reason  string
}

// Error returns the error message string.
func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table %q: %s", e.TableID, e.Reason)
}

// NewInvalidTableError creates a new InvalidTableError.
func NewInvalidTableError(tableID, reason string) error {
	return &InvalidTableError{TableID: tableID, Reason: reason}
}
