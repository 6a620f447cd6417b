// Package storetest holds the behavior every store.Store backend must show.
// Backend packages run it against their own implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/surrealdb/surrealoverlay/pkg/models"
	"github.com/surrealdb/surrealoverlay/pkg/store"
)

// Suite is the backend contract. NewStore must return an empty, migrated
// store; it is called before each test and the store is closed afterwards.
type Suite struct {
	suite.Suite

	NewStore func(t *testing.T) store.Store

	ctx   context.Context
	store store.Store
}

func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	suite.Run(t, &Suite{NewStore: newStore})
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore(s.T())
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		s.Require().NoError(s.store.Close())
	}
}

func (s *Suite) overlay(kind models.Kind, name string, zIndex int) *models.Overlay {
	o, err := models.ValidateAndFillDefaults(models.Fields{
		Type:   models.Ptr(kind),
		Name:   models.Ptr(name),
		ZIndex: models.Ptr(zIndex),
	})
	s.Require().NoError(err)

	now := time.Date(2024, 3, 4, 5, 6, 7, 123456000, time.UTC)
	o.ID = models.NewOverlayID()
	o.CreatedAt = now
	o.UpdatedAt = now
	return o
}

func (s *Suite) TestEmptyList() {
	list, err := s.store.ListOverlays(s.ctx)
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)
}

func (s *Suite) TestCreateAndGetText() {
	o := s.overlay(models.KindText, "Lower Third", 1)
	o.Text.Content = "Hello"
	o.Text.Style.BackgroundColor = "rgba(0,0,0,0.5)"
	s.Require().NoError(s.store.CreateOverlay(s.ctx, o))

	got, err := s.store.GetOverlay(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(o, got)
}

func (s *Suite) TestCreateAndGetImage() {
	o := s.overlay(models.KindImage, "Logo", 2)
	o.Image.ImageURL = "https://example.com/logo.png"
	o.Image.Style.BorderRadius = 8
	o.Visible = false
	s.Require().NoError(s.store.CreateOverlay(s.ctx, o))

	got, err := s.store.GetOverlay(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(o, got)
	s.Nil(got.Text)
}

func (s *Suite) TestGetMissing() {
	_, err := s.store.GetOverlay(s.ctx, models.NewOverlayID())
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *Suite) TestUpdateReplaces() {
	o := s.overlay(models.KindText, "T", 1)
	s.Require().NoError(s.store.CreateOverlay(s.ctx, o))

	updated, err := models.ApplyUpdate(o, models.MovePatch(400, 300))
	s.Require().NoError(err)
	updated.UpdatedAt = o.UpdatedAt.Add(time.Second)
	s.Require().NoError(s.store.UpdateOverlay(s.ctx, updated))

	got, err := s.store.GetOverlay(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(updated, got)
}

func (s *Suite) TestUpdateMissing() {
	o := s.overlay(models.KindImage, "ghost", 1)
	s.ErrorIs(s.store.UpdateOverlay(s.ctx, o), store.ErrNotFound)

	list, err := s.store.ListOverlays(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *Suite) TestDelete() {
	o := s.overlay(models.KindText, "T", 1)
	s.Require().NoError(s.store.CreateOverlay(s.ctx, o))
	s.Require().NoError(s.store.DeleteOverlay(s.ctx, o.ID))

	_, err := s.store.GetOverlay(s.ctx, o.ID)
	s.ErrorIs(err, store.ErrNotFound)
	s.ErrorIs(s.store.DeleteOverlay(s.ctx, o.ID), store.ErrNotFound)
}

func (s *Suite) TestListOrderedByZIndex() {
	for i, z := range []int{5, 1, 3} {
		o := s.overlay(models.KindText, string(rune('a'+i)), z)
		s.Require().NoError(s.store.CreateOverlay(s.ctx, o))
	}

	list, err := s.store.ListOverlays(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]int{1, 3, 5}, []int{list[0].ZIndex, list[1].ZIndex, list[2].ZIndex})
}

func (s *Suite) TestMigrateIdempotent() {
	s.NoError(s.store.Migrate(s.ctx))
	s.NoError(s.store.Migrate(s.ctx))
}
