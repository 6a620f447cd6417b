package store

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealoverlay/pkg/models"
)

// ReadOnlyStore wraps a Store and rejects write operations while in
// read-only mode.
//
// The mode is read through isReadOnly on every call, so the application can
// toggle maintenance mode at runtime without rebuilding the store. Reads
// pass through unchanged. Writes, including Migrate, fail with an error
// wrapping ErrReadOnly.
type ReadOnlyStore struct {
	Store
	isReadOnly func() bool
}

func NewReadOnlyStore(store Store, isReadOnly func() bool) *ReadOnlyStore {
	return &ReadOnlyStore{
		Store:      store,
		isReadOnly: isReadOnly,
	}
}

// Unwrap returns the underlying store.
func (r *ReadOnlyStore) Unwrap() Store {
	return r.Store
}

func (r *ReadOnlyStore) checkReadOnly() error {
	if r.isReadOnly() {
		return fmt.Errorf("operation denied: overlays are in read-only maintenance mode: %w", ErrReadOnly)
	}
	return nil
}

func (r *ReadOnlyStore) CreateOverlay(ctx context.Context, o *models.Overlay) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.CreateOverlay(ctx, o)
}

func (r *ReadOnlyStore) UpdateOverlay(ctx context.Context, o *models.Overlay) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.UpdateOverlay(ctx, o)
}

func (r *ReadOnlyStore) DeleteOverlay(ctx context.Context, id models.OverlayID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.DeleteOverlay(ctx, id)
}

func (r *ReadOnlyStore) Migrate(ctx context.Context) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.Migrate(ctx)
}
