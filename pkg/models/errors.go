package models

import (
	"errors"
	"fmt"
)

// Sentinel validation codes. Match them with errors.Is on any error returned
// by this package.
var (
	ErrMissingField         = errors.New("missing_field")
	ErrInvalidType          = errors.New("invalid_type")
	ErrImmutableFieldChange = errors.New("immutable_field")
	ErrInvalidField         = errors.New("invalid_field")
)

// ValidationError is a client-correctable rejection of overlay input.
type ValidationError struct {
	// Code is one of the sentinel errors above.
	Code    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Code
}

// LookupValidationCode resolves a machine code string, as produced by
// ValidationError.Code.Error(), back to its sentinel. It returns nil for
// unknown codes.
func LookupValidationCode(code string) error {
	for _, sentinel := range []error{ErrMissingField, ErrInvalidType, ErrImmutableFieldChange, ErrInvalidField} {
		if sentinel.Error() == code {
			return sentinel
		}
	}
	return nil
}

func missingField(field string) *ValidationError {
	return &ValidationError{
		Code:    ErrMissingField,
		Field:   field,
		Message: fmt.Sprintf("Missing required field: %s", field),
	}
}

func invalidField(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:    ErrInvalidField,
		Field:   field,
		Message: fmt.Sprintf("Invalid %s: "+format, append([]any{field}, args...)...),
	}
}
