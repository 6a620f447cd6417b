// Package store is the persistence layer of surrealoverlay.
//
// [Store] is the backend abstraction. It follows the Repository pattern: one
// method per primitive operation on the overlays table, no business rules.
// Three implementations exist:
//
//   - [github.com/surrealdb/surrealoverlay/pkg/store/surrealdb.Store]: native
//     SurrealQL over the official Go SDK, one record per overlay
//   - [github.com/surrealdb/surrealoverlay/pkg/store/postgres.Store]: database/sql
//     with squirrel-built queries and a JSONB column for variant attributes
//   - [github.com/surrealdb/surrealoverlay/pkg/store/memory.Store]: an in-process
//     map for tests and demo mode
//
// [Gateway] sits on top of a backend and owns the semantics clients see:
// identifier parsing, validation and default filling through
// [github.com/surrealdb/surrealoverlay/pkg/models], id and timestamp
// assignment, and ordering by layering index.
//
// [ReadOnlyStore] wraps a backend and rejects writes while maintenance mode is on.
package store

import (
	"context"

	"github.com/surrealdb/surrealoverlay/pkg/models"
)

// Store abstracts overlay persistence across backends.
//
// Create and Update receive complete, already validated overlays; the
// backend writes them as-is, including ID and timestamps. Get, Update and
// Delete return [ErrNotFound] when no record has the given ID. List returns
// an empty slice for no results, never nil.
//
// All methods accept a context for cancellation and deadlines.
type Store interface {
	// ListOverlays returns every stored overlay ordered by ascending zIndex.
	// Ties keep the backend's natural order.
	ListOverlays(ctx context.Context) ([]*models.Overlay, error)

	GetOverlay(ctx context.Context, id models.OverlayID) (*models.Overlay, error)

	// CreateOverlay persists a new overlay. o.ID must be set.
	CreateOverlay(ctx context.Context, o *models.Overlay) error

	// UpdateOverlay replaces the stored overlay with the same ID.
	UpdateOverlay(ctx context.Context, o *models.Overlay) error

	// DeleteOverlay removes the overlay permanently.
	DeleteOverlay(ctx context.Context, id models.OverlayID) error

	// Migrate creates or updates the schema. It is idempotent.
	Migrate(ctx context.Context) error

	// Close releases connections. The store is unusable afterwards.
	Close() error
}
