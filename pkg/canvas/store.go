// Package canvas holds the client-side overlay state: the list mirrored from
// the server plus the selection and editor flags that never leave the client.
//
// A Store is an explicit container owned by the application root. Every
// action is synchronous and performs no I/O; persistence lives in
// [github.com/surrealdb/surrealoverlay/pkg/canvassync].
package canvas

import (
	"errors"
	"sync"

	"github.com/surrealdb/surrealoverlay/pkg/models"
)

// ErrUnknownOverlay is returned by Patch and its helpers when no overlay in
// the store has the given id.
var ErrUnknownOverlay = errors.New("canvas: unknown overlay")

// State is an immutable snapshot of a Store. Listeners may keep it.
type State struct {
	// Overlays are in the order of the last ReplaceAll, with later Adds
	// appended. Patches never reorder.
	Overlays   []models.Overlay
	Selected   *models.Overlay
	EditorOpen bool

	// Version increases on every mutation.
	Version uint64
}

// Overlay returns the overlay with the given id from the snapshot.
func (s State) Overlay(id models.OverlayID) (models.Overlay, bool) {
	for _, o := range s.Overlays {
		if o.ID == id {
			return o, true
		}
	}
	return models.Overlay{}, false
}

type Store struct {
	mu         sync.Mutex
	overlays   []*models.Overlay
	selected   *models.Overlay
	editorOpen bool
	version    uint64

	nextListener int
	listeners    map[int]func(State)
}

func NewStore() *Store {
	return &Store{listeners: make(map[int]func(State))}
}

// Subscribe registers fn to receive a snapshot after each mutation. fn runs
// on the goroutine that performed the mutation, outside the store lock, so it
// may call back into the store.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ReplaceAll overwrites the list with an authoritative copy from the server.
func (s *Store) ReplaceAll(overlays []models.Overlay) {
	s.mutate(func() error {
		s.overlays = make([]*models.Overlay, len(overlays))
		for i := range overlays {
			s.overlays[i] = overlays[i].Clone()
		}
		return nil
	})
}

// Add appends o. It may not have a server id yet.
func (s *Store) Add(o models.Overlay) {
	s.mutate(func() error {
		s.overlays = append(s.overlays, o.Clone())
		return nil
	})
}

// Remove drops every overlay with the given id and reports whether any was
// present.
func (s *Store) Remove(id models.OverlayID) bool {
	removed := false
	s.mutate(func() error {
		kept := s.overlays[:0]
		for _, o := range s.overlays {
			if o.ID == id {
				removed = true
				continue
			}
			kept = append(kept, o)
		}
		for i := len(kept); i < len(s.overlays); i++ {
			s.overlays[i] = nil
		}
		s.overlays = kept
		if !removed {
			return errUnchanged
		}
		return nil
	})
	return removed
}

// Patch merges changes into the overlay with the given id using the same
// rules as the server. The overlay keeps its place in the list. On error the
// store is unchanged.
func (s *Store) Patch(id models.OverlayID, changes models.Fields) (models.Overlay, error) {
	var result models.Overlay
	err := s.mutate(func() error {
		i := s.indexLocked(id)
		if i < 0 {
			return ErrUnknownOverlay
		}
		updated, err := models.ApplyUpdate(s.overlays[i], changes)
		if err != nil {
			return err
		}
		s.overlays[i] = updated
		result = *updated.Clone()
		return nil
	})
	return result, err
}

// MoveTo sets the position, as a drag produces it.
func (s *Store) MoveTo(id models.OverlayID, x, y float64) (models.Overlay, error) {
	return s.Patch(id, models.MovePatch(x, y))
}

// Resize sets the size, as a resize handle produces it.
func (s *Store) Resize(id models.OverlayID, width, height float64) (models.Overlay, error) {
	return s.Patch(id, models.ResizePatch(width, height))
}

// Select marks o as selected, or clears the selection when o is nil.
// Selecting an overlay that is not in the store clears the selection.
func (s *Store) Select(o *models.Overlay) {
	s.mutate(func() error {
		s.selected = o.Clone()
		return nil
	})
}

func (s *Store) ToggleEditor() {
	s.mutate(func() error {
		s.editorOpen = !s.editorOpen
		return nil
	})
}

var errUnchanged = errors.New("unchanged")

// mutate runs fn under the lock, re-resolves the selection and notifies
// listeners. When fn fails nothing is published.
func (s *Store) mutate(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	s.resolveSelectionLocked()
	s.version++
	state := s.snapshotLocked()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
	return nil
}

// resolveSelectionLocked points the selection at the current copy of the
// selected overlay, or clears it when the overlay is gone.
func (s *Store) resolveSelectionLocked() {
	if s.selected == nil {
		return
	}
	i := s.indexLocked(s.selected.ID)
	if i < 0 {
		s.selected = nil
		return
	}
	s.selected = s.overlays[i].Clone()
}

func (s *Store) indexLocked(id models.OverlayID) int {
	for i, o := range s.overlays {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() State {
	state := State{
		Overlays:   make([]models.Overlay, len(s.overlays)),
		Selected:   s.selected.Clone(),
		EditorOpen: s.editorOpen,
		Version:    s.version,
	}
	for i, o := range s.overlays {
		state.Overlays[i] = *o.Clone()
	}
	return state
}
