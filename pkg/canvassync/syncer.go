// Package canvassync keeps a [canvas.Store] in step with the overlay API.
//
// Creates and deletes go to the server first and reach the store through a
// refresh. Updates are optimistic: the store is patched at once and the
// request runs in the background. A failed update is reported but not rolled
// back; the next successful refresh brings the store back in line with the
// server. Concurrent updates to one overlay are not sequenced, so the refresh
// that resolves last wins.
package canvassync

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/surrealdb/surrealoverlay/pkg/canvas"
	"github.com/surrealdb/surrealoverlay/pkg/models"
)

// Remote is the persistence API. *client.Client implements it.
type Remote interface {
	ListOverlays(ctx context.Context) ([]models.Overlay, error)
	CreateOverlay(ctx context.Context, in models.Fields) (*models.Overlay, error)
	UpdateOverlay(ctx context.Context, id models.OverlayID, patch models.Fields) (*models.Overlay, error)
	DeleteOverlay(ctx context.Context, id models.OverlayID) error
}

type Syncer struct {
	store  *canvas.Store
	remote Remote
	log    zerolog.Logger

	mount   sync.Once
	pending sync.WaitGroup

	mu      sync.Mutex
	err     error
	loading int
	onError func(error)
}

type Option func(*Syncer)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Syncer) {
		s.log = log
	}
}

// OnError registers fn to be called with every surfaced error,
// including those of background updates.
func OnError(fn func(error)) Option {
	return func(s *Syncer) {
		s.onError = fn
	}
}

func New(store *canvas.Store, remote Remote, opts ...Option) *Syncer {
	s := &Syncer{
		store:  store,
		remote: remote,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Syncer) Store() *canvas.Store {
	return s.store
}

// Mount performs the initial fetch. Only the first call does anything.
func (s *Syncer) Mount(ctx context.Context) error {
	var err error
	s.mount.Do(func() {
		err = s.Fetch(ctx)
	})
	return err
}

// Fetch loads the list and replaces the store content with it. On failure
// the store keeps whatever it held before.
func (s *Syncer) Fetch(ctx context.Context) error {
	s.begin(true)
	defer s.endLoading()

	overlays, err := s.remote.ListOverlays(ctx)
	if err != nil {
		return s.fail("fetch overlays", err)
	}
	s.store.ReplaceAll(overlays)
	s.log.Debug().Int("count", len(overlays)).Msg("overlays refreshed")
	return nil
}

// Create sends in to the server and refreshes. Nothing is inserted locally,
// so a failed create leaves no trace in the store.
func (s *Syncer) Create(ctx context.Context, in models.Fields) (*models.Overlay, error) {
	s.begin(false)

	created, err := s.remote.CreateOverlay(ctx, in)
	if err != nil {
		return nil, s.fail("create overlay", err)
	}
	s.log.Debug().Str("id", created.ID.String()).Msg("overlay created")

	if err := s.Fetch(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// CreateText creates a text overlay with the editor's defaults, layered above
// everything currently in the store.
func (s *Syncer) CreateText(ctx context.Context) (*models.Overlay, error) {
	return s.Create(ctx, NewTextFields(len(s.store.Snapshot().Overlays)))
}

// CreateImage creates an image overlay with the editor's defaults.
func (s *Syncer) CreateImage(ctx context.Context) (*models.Overlay, error) {
	return s.Create(ctx, NewImageFields(len(s.store.Snapshot().Overlays)))
}

// Update patches the store immediately and sends the patch in the
// background. It returns an error only when the local patch is rejected, in
// which case nothing is sent. Use Wait to block until the request settles.
func (s *Syncer) Update(ctx context.Context, id models.OverlayID, changes models.Fields) error {
	s.begin(false)

	if _, err := s.store.Patch(id, changes); err != nil {
		return s.fail("update overlay", err)
	}

	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		if _, err := s.remote.UpdateOverlay(ctx, id, changes); err != nil {
			s.log.Warn().Err(err).Str("id", id.String()).Msg("optimistic update not persisted")
			_ = s.fail("update overlay", err)
			return
		}
		_ = s.Fetch(ctx)
	}()
	return nil
}

// DragStop is the rendering surface's callback for a finished drag.
func (s *Syncer) DragStop(ctx context.Context, id models.OverlayID, x, y float64) error {
	return s.Update(ctx, id, models.MovePatch(x, y))
}

// ResizeStop is the rendering surface's callback for a finished resize.
func (s *Syncer) ResizeStop(ctx context.Context, id models.OverlayID, width, height float64) error {
	return s.Update(ctx, id, models.ResizePatch(width, height))
}

// Delete removes the overlay on the server, then refreshes. If the server
// refuses, the overlay stays in the store.
func (s *Syncer) Delete(ctx context.Context, id models.OverlayID) error {
	s.begin(false)

	if err := s.remote.DeleteOverlay(ctx, id); err != nil {
		return s.fail("delete overlay", err)
	}
	s.log.Debug().Str("id", id.String()).Msg("overlay deleted")
	return s.Fetch(ctx)
}

// Wait blocks until every background update and its refresh have finished.
func (s *Syncer) Wait() {
	s.pending.Wait()
}

// Err returns the last surfaced error, or nil once a later action starts.
func (s *Syncer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Loading reports whether a fetch is in flight.
func (s *Syncer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

func (s *Syncer) begin(loading bool) {
	s.mu.Lock()
	s.err = nil
	if loading {
		s.loading++
	}
	s.mu.Unlock()
}

func (s *Syncer) endLoading() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

func (s *Syncer) fail(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)

	s.mu.Lock()
	s.err = err
	onError := s.onError
	s.mu.Unlock()

	s.log.Error().Err(err).Msg("overlay sync failed")
	if onError != nil {
		onError(err)
	}
	return err
}
