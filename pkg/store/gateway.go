package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/surrealdb/surrealoverlay/pkg/models"
)

// Gateway is the remote-facing overlay API. It validates input, assigns
// identifiers and timestamps, and delegates storage to a backend Store.
//
// Gateway is safe for concurrent use if the backend is. Concurrent updates
// of the same overlay are last-writer-wins.
type Gateway struct {
	backend Store
	now     func() time.Time
	log     zerolog.Logger
}

type GatewayOption func(*Gateway)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.now = now
	}
}

func WithLogger(log zerolog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.log = log
	}
}

func NewGateway(backend Store, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		backend: backend,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Backend returns the store the gateway writes through.
func (g *Gateway) Backend() Store {
	return g.backend
}

// List returns every overlay sorted by ascending zIndex. Overlays with equal
// zIndex keep the order the backend returned them in.
func (g *Gateway) List(ctx context.Context) ([]models.Overlay, error) {
	stored, err := g.backend.ListOverlays(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlays: %w", err)
	}

	overlays := make([]models.Overlay, 0, len(stored))
	for _, o := range stored {
		overlays = append(overlays, *o)
	}
	slices.SortStableFunc(overlays, func(a, b models.Overlay) int {
		return cmp.Compare(a.ZIndex, b.ZIndex)
	})

	g.log.Debug().Int("count", len(overlays)).Msg("listed overlays")
	return overlays, nil
}

func (g *Gateway) Get(ctx context.Context, id string) (*models.Overlay, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	o, err := g.backend.GetOverlay(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("failed to get overlay %s: %w", oid, err)
	}
	g.log.Debug().Str("id", oid.String()).Msg("fetched overlay")
	return o, nil
}

// Create validates in, fills variant defaults, and stores the result under a
// fresh ID with createdAt equal to updatedAt.
func (g *Gateway) Create(ctx context.Context, in models.Fields) (*models.Overlay, error) {
	o, err := models.ValidateAndFillDefaults(in)
	if err != nil {
		return nil, err
	}

	now := g.timestamp()
	o.ID = models.NewOverlayID()
	o.CreatedAt = now
	o.UpdatedAt = now

	if err := g.backend.CreateOverlay(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create overlay: %w", err)
	}

	g.log.Debug().Str("id", o.ID.String()).Str("type", string(o.Type)).Msg("created overlay")
	return o, nil
}

// Update merges patch into the stored overlay and persists it. The type of
// an overlay can never change. UpdatedAt never moves backwards, even if the
// clock does.
func (g *Gateway) Update(ctx context.Context, id string, patch models.Fields) (*models.Overlay, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	existing, err := g.backend.GetOverlay(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("failed to get overlay %s: %w", oid, err)
	}

	updated, err := models.ApplyUpdate(existing, patch)
	if err != nil {
		return nil, err
	}

	now := g.timestamp()
	if now.Before(existing.UpdatedAt) {
		now = existing.UpdatedAt
	}
	updated.UpdatedAt = now

	if err := g.backend.UpdateOverlay(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update overlay %s: %w", oid, err)
	}

	g.log.Debug().Str("id", oid.String()).Msg("updated overlay")
	return updated, nil
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	if err := g.backend.DeleteOverlay(ctx, oid); err != nil {
		return fmt.Errorf("failed to delete overlay %s: %w", oid, err)
	}

	g.log.Debug().Str("id", oid.String()).Msg("deleted overlay")
	return nil
}

// timestamp is truncated to microseconds, the finest precision every
// backend round-trips.
func (g *Gateway) timestamp() time.Time {
	return g.now().UTC().Truncate(time.Microsecond)
}

func parseID(id string) (models.OverlayID, error) {
	oid, err := models.ParseOverlayID(id)
	if err != nil {
		return models.OverlayID{}, fmt.Errorf("%w: %s", ErrInvalidIdentifier, err)
	}
	return oid, nil
}
