package canvassync_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/surrealdb/surrealoverlay/pkg/canvas"
	"github.com/surrealdb/surrealoverlay/pkg/canvassync"
	"github.com/surrealdb/surrealoverlay/pkg/client"
	"github.com/surrealdb/surrealoverlay/pkg/models"
	"github.com/surrealdb/surrealoverlay/pkg/store"
	"github.com/surrealdb/surrealoverlay/pkg/store/memory"
	"github.com/surrealdb/surrealoverlay/pkg/surrealoverlay"
)

var _ canvassync.Remote = (*client.Client)(nil)

// fakeRemote serves a real gateway over a memory backend. Failures can be
// injected per operation and updates can be held until released.
type fakeRemote struct {
	gateway *store.Gateway

	mu         sync.Mutex
	listErr    error
	createErr  error
	updateErr  error
	deleteErr  error
	held       []heldUpdate
	holdUpdate bool
	lists      int
}

type heldUpdate struct {
	release chan struct{}
	patch   models.Fields
}

const (
	timeout = time.Second
	tick    = time.Millisecond
)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{gateway: store.NewGateway(memory.New())}
}

func (f *fakeRemote) ListOverlays(ctx context.Context) ([]models.Overlay, error) {
	f.mu.Lock()
	err := f.listErr
	f.lists++
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.gateway.List(ctx)
}

func (f *fakeRemote) CreateOverlay(ctx context.Context, in models.Fields) (*models.Overlay, error) {
	f.mu.Lock()
	err := f.createErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.gateway.Create(ctx, in)
}

func (f *fakeRemote) UpdateOverlay(ctx context.Context, id models.OverlayID, patch models.Fields) (*models.Overlay, error) {
	f.mu.Lock()
	err := f.updateErr
	var gate chan struct{}
	if f.holdUpdate {
		gate = make(chan struct{})
		f.held = append(f.held, heldUpdate{release: gate, patch: patch})
	}
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return f.gateway.Update(ctx, id.String(), patch)
}

func (f *fakeRemote) DeleteOverlay(ctx context.Context, id models.OverlayID) error {
	f.mu.Lock()
	err := f.deleteErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.gateway.Delete(ctx, id.String())
}

func (f *fakeRemote) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *fakeRemote) heldUpdate(i int) heldUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.held[i]
}

func (f *fakeRemote) heldCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.held)
}

type SyncerSuite struct {
	suite.Suite
	ctx    context.Context
	remote *fakeRemote
	store  *canvas.Store
	syncer *canvassync.Syncer
	errs   []error
}

func (s *SyncerSuite) SetupTest() {
	s.ctx = context.Background()
	s.remote = newFakeRemote()
	s.store = canvas.NewStore()
	s.errs = nil
	var mu sync.Mutex
	s.syncer = canvassync.New(s.store, s.remote,
		canvassync.WithLogger(zerolog.Nop()),
		canvassync.OnError(func(err error) {
			mu.Lock()
			s.errs = append(s.errs, err)
			mu.Unlock()
		}),
	)
}

func (s *SyncerSuite) seed(in models.Fields) models.Overlay {
	o, err := s.remote.gateway.Create(s.ctx, in)
	s.Require().NoError(err)
	return *o
}

func (s *SyncerSuite) TestMountFetchesOnce() {
	s.seed(canvassync.NewTextFields(0))

	s.Require().NoError(s.syncer.Mount(s.ctx))
	s.Require().NoError(s.syncer.Mount(s.ctx))

	s.Equal(1, s.remote.listCount())
	s.Len(s.store.Snapshot().Overlays, 1)
	s.False(s.syncer.Loading())
}

func (s *SyncerSuite) TestFetchFailureKeepsStore() {
	s.seed(canvassync.NewImageFields(0))
	s.Require().NoError(s.syncer.Fetch(s.ctx))
	before := s.store.Snapshot()

	s.remote.listErr = &client.TransportError{Op: "GET /api/overlays", StatusCode: 200, Err: errors.New("unexpected content type \"text/html\"")}
	err := s.syncer.Fetch(s.ctx)

	var terr *client.TransportError
	s.Require().ErrorAs(err, &terr)
	s.Equal(err, s.syncer.Err())
	s.Len(s.errs, 1)
	s.Equal(before, s.store.Snapshot())
	s.False(s.syncer.Loading())
}

func (s *SyncerSuite) TestCreateTextRefreshesWithServerDefaults() {
	s.seed(canvassync.NewImageFields(0))
	s.Require().NoError(s.syncer.Mount(s.ctx))

	created, err := s.syncer.CreateText(s.ctx)
	s.Require().NoError(err)
	s.Equal("Text Overlay 2", created.Name)
	s.Equal(2, created.ZIndex)
	s.Equal(models.Position{X: 50, Y: 50}, created.Position)
	s.Equal("New Text Overlay", created.Text.Content)
	s.Equal(24.0, created.Text.Style.FontSize)
	s.Equal("rgba(0,0,0,0.5)", created.Text.Style.BackgroundColor)
	s.Equal(models.AlignCenter, created.Text.Style.TextAlign)

	got, ok := s.store.Snapshot().Overlay(created.ID)
	s.Require().True(ok)
	s.Equal(*created, got)
}

func (s *SyncerSuite) TestCreateImageDefaults() {
	created, err := s.syncer.CreateImage(s.ctx)
	s.Require().NoError(err)
	s.Equal("Image Overlay 1", created.Name)
	s.Equal(models.Size{Width: 200, Height: 150}, created.Size)
	s.Equal("https://via.placeholder.com/200x150", created.Image.ImageURL)
	s.Equal("Sample image overlay", created.Image.Alt)
	s.Len(s.store.Snapshot().Overlays, 1)
}

func (s *SyncerSuite) TestCreateFailureLeavesStoreEmpty() {
	s.remote.createErr = errors.New("connection refused")

	created, err := s.syncer.CreateText(s.ctx)
	s.Require().Error(err)
	s.Nil(created)
	s.Empty(s.store.Snapshot().Overlays)
	s.Equal(0, s.remote.listCount())
}

func (s *SyncerSuite) TestCreateValidationFailure() {
	_, err := s.syncer.Create(s.ctx, models.Fields{Type: models.Ptr(models.KindImage)})
	s.ErrorIs(err, models.ErrMissingField)
	s.Empty(s.store.Snapshot().Overlays)
}

func (s *SyncerSuite) TestUpdateIsOptimisticThenReconciled() {
	o := s.seed(canvassync.NewTextFields(0))
	s.Require().NoError(s.syncer.Mount(s.ctx))

	s.remote.holdUpdate = true
	s.Require().NoError(s.syncer.DragStop(s.ctx, o.ID, 400, 220))

	local, ok := s.store.Snapshot().Overlay(o.ID)
	s.Require().True(ok)
	s.Equal(models.Position{X: 400, Y: 220}, local.Position)

	s.Eventually(func() bool { return s.remote.heldCount() == 1 }, timeout, tick)
	close(s.remote.heldUpdate(0).release)
	s.syncer.Wait()

	synced, ok := s.store.Snapshot().Overlay(o.ID)
	s.Require().True(ok)
	s.Equal(models.Position{X: 400, Y: 220}, synced.Position)
	s.False(synced.UpdatedAt.Before(o.UpdatedAt))
	s.NoError(s.syncer.Err())
}

func (s *SyncerSuite) TestUpdateFailureKeepsOptimisticState() {
	o := s.seed(canvassync.NewImageFields(0))
	s.Require().NoError(s.syncer.Mount(s.ctx))

	s.remote.updateErr = errors.New("connection reset")
	s.Require().NoError(s.syncer.ResizeStop(s.ctx, o.ID, 640, 360))
	s.syncer.Wait()

	s.Require().Error(s.syncer.Err())
	s.Len(s.errs, 1)
	local, _ := s.store.Snapshot().Overlay(o.ID)
	s.Equal(models.Size{Width: 640, Height: 360}, local.Size)

	stored, err := s.remote.gateway.Get(s.ctx, o.ID.String())
	s.Require().NoError(err)
	s.Equal(o.Size, stored.Size)
}

func (s *SyncerSuite) TestUpdateRejectedLocally() {
	o := s.seed(canvassync.NewTextFields(0))
	s.Require().NoError(s.syncer.Mount(s.ctx))

	err := s.syncer.Update(s.ctx, o.ID, models.Fields{Type: models.Ptr(models.KindImage)})
	s.ErrorIs(err, models.ErrImmutableFieldChange)
	s.syncer.Wait()
	s.Equal(1, s.remote.listCount())
}

// Two drags of the same overlay whose responses arrive in reverse order:
// the refresh that resolves last decides the final position.
func (s *SyncerSuite) TestOutOfOrderUpdatesLastResolvedWins() {
	o := s.seed(canvassync.NewTextFields(0))
	s.Require().NoError(s.syncer.Mount(s.ctx))

	s.remote.holdUpdate = true
	s.Require().NoError(s.syncer.DragStop(s.ctx, o.ID, 100, 100))
	s.Require().NoError(s.syncer.DragStop(s.ctx, o.ID, 200, 200))

	local, _ := s.store.Snapshot().Overlay(o.ID)
	s.Equal(models.Position{X: 200, Y: 200}, local.Position)

	s.Eventually(func() bool { return s.remote.heldCount() == 2 }, timeout, tick)
	first, last := s.remote.heldUpdate(1), s.remote.heldUpdate(0)

	// The refresh after the first release is the only pending mutation.
	version := s.store.Snapshot().Version
	close(first.release)
	s.Eventually(func() bool { return s.store.Snapshot().Version > version }, timeout, tick)
	mid, _ := s.store.Snapshot().Overlay(o.ID)
	s.Equal(*first.patch.Position.X, mid.Position.X)

	close(last.release)
	s.syncer.Wait()

	final, _ := s.store.Snapshot().Overlay(o.ID)
	s.Equal(*last.patch.Position.X, final.Position.X)
	s.Equal(*last.patch.Position.Y, final.Position.Y)

	stored, err := s.remote.gateway.Get(s.ctx, o.ID.String())
	s.Require().NoError(err)
	s.Equal(stored.Position, final.Position)
	s.NoError(s.syncer.Err())
}

func (s *SyncerSuite) TestDeleteRemovesAfterServerConfirms() {
	o := s.seed(canvassync.NewTextFields(0))
	s.Require().NoError(s.syncer.Mount(s.ctx))
	s.store.Select(&o)

	s.Require().NoError(s.syncer.Delete(s.ctx, o.ID))
	s.Empty(s.store.Snapshot().Overlays)
	s.Nil(s.store.Snapshot().Selected)
}

func (s *SyncerSuite) TestDeleteFailureKeepsOverlay() {
	o := s.seed(canvassync.NewTextFields(0))
	s.Require().NoError(s.syncer.Mount(s.ctx))

	s.Require().NoError(s.remote.gateway.Delete(s.ctx, o.ID.String()))
	err := s.syncer.Delete(s.ctx, o.ID)
	s.ErrorIs(err, store.ErrNotFound)
	s.Len(s.store.Snapshot().Overlays, 1)
}

func (s *SyncerSuite) TestNextActionClearsError() {
	s.remote.listErr = errors.New("offline")
	s.Require().Error(s.syncer.Fetch(s.ctx))
	s.Require().Error(s.syncer.Err())

	s.remote.listErr = nil
	s.Require().NoError(s.syncer.Fetch(s.ctx))
	s.NoError(s.syncer.Err())
}

func TestSyncer(t *testing.T) {
	suite.Run(t, new(SyncerSuite))
}

func TestSyncerOverHTTP(t *testing.T) {
	ctx := context.Background()
	config := surrealoverlay.DefaultConfig()
	config.Store = surrealoverlay.StoreMemory
	app := surrealoverlay.NewWithStore(config, memory.New(), zerolog.Nop())
	server := httptest.NewServer(app.Router())
	defer server.Close()

	c := client.NewClient(server.URL, client.WithHTTPClient(server.Client()))
	st := canvas.NewStore()
	syncer := canvassync.New(st, c)

	require.NoError(t, syncer.Mount(ctx))
	created, err := syncer.CreateImage(ctx)
	require.NoError(t, err)

	require.NoError(t, syncer.DragStop(ctx, created.ID, 5, 6))
	syncer.Wait()
	require.NoError(t, syncer.Err())

	got, ok := st.Snapshot().Overlay(created.ID)
	require.True(t, ok)
	assert.Equal(t, models.Position{X: 5, Y: 6}, got.Position)

	app.SetReadOnly(true)
	err = syncer.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrReadOnly)
	assert.Len(t, st.Snapshot().Overlays, 1)
}
