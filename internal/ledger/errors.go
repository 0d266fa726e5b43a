package ledger

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/ritualhq/ritual/internal/civil"
)

// InputError reports a malformed argument to a ledger or aggregation entry
// point: a non-ISO date string, an empty key, a non-positive window length.
//
// InputError is the only error kind the core manufactures itself; storage
// failures surface as wrapped driver errors and are never InputError.
// Detect with IsInputError or errors.As.
type InputError struct {
	// Field is the argument name: "date", "task", "activity", "problem", "days".
	Field string

	// Value is the offending value as the caller supplied it.
	Value string

	// Message is a human-readable description of the constraint.
	Message string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// NewInputError creates an InputError for the given argument.
func NewInputError(field, value, message string) *InputError {
	return &InputError{Field: field, Value: value, Message: message}
}

// IsInputError reports whether err is or wraps an InputError.
// Uses errors.As to handle wrapped errors.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// normalizeKey canonicalizes a task/activity/problem identifier to NFC so
// composed and decomposed spellings of the same name address the same row.
func normalizeKey(s string) string {
	return norm.NFC.String(s)
}

// validDate rejects anything but a well-formed ISO-8601 calendar day.
func validDate(date string) error {
	if !civil.IsDate(date) {
		return NewInputError("date", date, "expected YYYY-MM-DD")
	}
	return nil
}

// validKey rejects empty identifiers. The ledger imposes no other shape on
// its key space; membership in any catalog is the caller's concern.
func validKey(field, value string) error {
	if value == "" {
		return NewInputError(field, value, "must not be empty")
	}
	return nil
}
