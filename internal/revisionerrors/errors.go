package revisionerrors

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
)

const (
	// NotFound describes an error that occurs when a branch, revision, table
	// or row being operated on does not exist.
	NotFound = errors.ConstError("not found")

	// Conflict describes an error that occurs when the requested change
	// collides with existing state, such as renaming onto an existing id.
	Conflict = errors.ConstError("conflict")

	// NoChanges describes an error that occurs when committing or reverting
	// a draft revision that has no changes.
	NoChanges = errors.ConstError("no changes")

	// ValidationFailed describes an error that occurs when row data or a
	// schema document does not satisfy its schema or the meta-schema.
	ValidationFailed = errors.ConstError("validation failed")

	// MalformedPatch describes an error that occurs when a patch batch holds
	// an unknown op or a path that cannot be resolved.
	MalformedPatch = errors.ConstError("malformed patch")

	// InvariantViolation describes an internal defect detected while a
	// transaction is running. It is never retried.
	InvariantViolation = errors.ConstError("invariant violation")

	// Forbidden describes an error returned by the permission oracle.
	Forbidden = errors.ConstError("forbidden")
)

// IsConflict reports whether err is a conflict, including the no changes case.
func IsConflict(err error) bool {
	return errors.Is(err, Conflict) || errors.Is(err, NoChanges)
}

// FieldError is a single violation reported by validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// ValidationError carries field level details for a failed validation.
type ValidationError struct {
	Subject string
	Details []FieldError
}

// NewValidationError returns a ValidationError for subject.
func NewValidationError(subject string, details ...FieldError) *ValidationError {
	return &ValidationError{Subject: subject, Details: details}
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s: %s", e.Subject, ValidationFailed)
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, fmt.Sprintf("%s: %s", d.Field, d.Message))
	}
	return fmt.Sprintf("%s: %s (%s)", e.Subject, ValidationFailed, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ValidationFailed
}
