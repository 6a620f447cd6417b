package client

import (
	"fmt"

	"github.com/surrealdb/surrealoverlay/pkg/models"
	"github.com/surrealdb/surrealoverlay/pkg/store"
)

// TransportError is a failure to obtain a usable response: the request did
// not complete, or the response was not the JSON the API promises.
type TransportError struct {
	Op string
	// StatusCode is zero when no response was received.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a structured error response from the server. It unwraps to the
// matching sentinel of pkg/models or pkg/store when the code is known.
type APIError struct {
	StatusCode int
	Code       string
	Message    string

	sentinel error
}

func newAPIError(status int, body models.APIError) *APIError {
	return &APIError{
		StatusCode: status,
		Code:       body.Code,
		Message:    body.Message,
		sentinel:   lookupCode(body.Code),
	}
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.sentinel
}

func lookupCode(code string) error {
	if err := models.LookupValidationCode(code); err != nil {
		return err
	}
	switch code {
	case store.ErrNotFound.Error():
		return store.ErrNotFound
	case store.ErrInvalidIdentifier.Error():
		return store.ErrInvalidIdentifier
	case store.ErrReadOnly.Error():
		return store.ErrReadOnly
	}
	return nil
}
