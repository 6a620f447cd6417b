// Package memory is an in-process overlay backend. It keeps records in
// insertion order, which is also the tiebreak for equal zIndex.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/surrealdb/surrealoverlay/pkg/models"
	"github.com/surrealdb/surrealoverlay/pkg/store"
)

type Store struct {
	mu       sync.RWMutex
	overlays map[models.OverlayID]*models.Overlay
	order    []models.OverlayID
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		overlays: make(map[models.OverlayID]*models.Overlay),
	}
}

func (s *Store) ListOverlays(ctx context.Context) ([]*models.Overlay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Overlay, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.overlays[id].Clone())
	}
	slices.SortStableFunc(result, func(a, b *models.Overlay) int {
		return cmp.Compare(a.ZIndex, b.ZIndex)
	})
	return result, nil
}

func (s *Store) GetOverlay(ctx context.Context, id models.OverlayID) (*models.Overlay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.overlays[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return o.Clone(), nil
}

func (s *Store) CreateOverlay(ctx context.Context, o *models.Overlay) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.ID.IsZero() {
		return fmt.Errorf("memory: overlay has no ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.overlays[o.ID]; exists {
		return fmt.Errorf("memory: overlay %s already exists", o.ID)
	}
	s.overlays[o.ID] = o.Clone()
	s.order = append(s.order, o.ID)
	return nil
}

func (s *Store) UpdateOverlay(ctx context.Context, o *models.Overlay) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.overlays[o.ID]; !ok {
		return store.ErrNotFound
	}
	s.overlays[o.ID] = o.Clone()
	return nil
}

func (s *Store) DeleteOverlay(ctx context.Context, id models.OverlayID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.overlays[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.overlays, id)
	s.order = slices.DeleteFunc(s.order, func(other models.OverlayID) bool {
		return other == id
	})
	return nil
}

func (s *Store) Migrate(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
