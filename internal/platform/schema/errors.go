package schema

import (
	"errors"
	"strings"
)

var (
	errInvalidDate   = errors.New("invalid date")
	errInvalidNumber = errors.New("invalid number")
)

// FieldError describes a single offending input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"message"`
}

// ValidationError is returned when a payload does not match its schema. It
// carries every offending field, not only the first one found.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field == "" {
			parts = append(parts, fe.Reason)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error.
func (e *ValidationError) Add(field, reason string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Reason: reason})
}

// OrNil returns nil when no errors were collected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
