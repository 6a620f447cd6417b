package store

import (
	"errors"
	"fmt"

	"github.com/surrealdb/surrealoverlay/pkg/models"
)

// The messages double as the HTTP machine codes.
var (
	// ErrNotFound is returned when no overlay has the requested ID.
	ErrNotFound = errors.New(models.CodeNotFound)

	// ErrInvalidIdentifier is returned when an ID is not a well-formed UUID.
	ErrInvalidIdentifier = errors.New(models.CodeInvalidIdentifier)

	// ErrReadOnly is returned by ReadOnlyStore for writes during maintenance.
	ErrReadOnly = errors.New(models.CodeReadOnly)
)

// InvalidRecordError reports a stored record that no longer passes
// validation. Backends return it from reads.
type InvalidRecordError struct {
	ID  models.OverlayID
	Err error
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("stored overlay %s is invalid: %v", e.ID, e.Err)
}

func (e *InvalidRecordError) Unwrap() error {
	return e.Err
}
