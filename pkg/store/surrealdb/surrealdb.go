// Package surrealdb stores overlays in SurrealDB.
//
// Each overlay is one record in the overlays table, keyed by its UUID, so
// the record ID is overlays:⟨uuid⟩. The discriminator and the variant fields
// live side by side in the same document, in the flat wire shape. Only the
// entity model decides which fields are legal for which variant; this
// package writes what it is given.
//
// All queries are parameterized. Timestamps go through
// [surrealmodels.CustomDateTime] because the SDK's default time encoding is
// not a SurrealDB datetime.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/surrealdb/surrealoverlay/pkg/models"
	"github.com/surrealdb/surrealoverlay/pkg/store"
)

// Store is a store.Store backed by a SurrealDB connection.
type Store struct {
	db       *surrealdb.DB
	ns       string
	database string
	log      zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// overlayContent is the document written on create and update. The record ID
// is passed separately as the statement target.
type overlayContent struct {
	models.Fields
	CreatedAt *surrealmodels.CustomDateTime `json:"createdAt"`
	UpdatedAt *surrealmodels.CustomDateTime `json:"updatedAt"`
}

// overlayRecord is a document as read back.
type overlayRecord struct {
	ID models.OverlayID `json:"id"`
	models.Fields
	CreatedAt surrealmodels.CustomDateTime `json:"createdAt"`
	UpdatedAt surrealmodels.CustomDateTime `json:"updatedAt"`
}

// New connects to SurrealDB at wsURL, signs in when credentials are given,
// and selects the namespace and database.
func New(ctx context.Context, wsURL, namespace, database, username, password string, log zerolog.Logger) (*Store, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, wsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if username != "" && password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": username,
			"pass": password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &Store{
		db:       db,
		ns:       namespace,
		database: database,
		log:      log,
	}, nil
}

// Migrate defines the overlays table and an index on zIndex for the list
// query. Both statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	const query = `
		DEFINE TABLE IF NOT EXISTS overlays SCHEMALESS;
		DEFINE INDEX IF NOT EXISTS overlays_zindex ON TABLE overlays FIELDS zIndex;
	`
	if _, err := surrealdb.Query[any](ctx, s.db, query, map[string]any{}); err != nil {
		return fmt.Errorf("failed to migrate overlays table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

func (s *Store) ListOverlays(ctx context.Context) ([]*models.Overlay, error) {
	query := "SELECT * FROM type::table($table) ORDER BY zIndex ASC"
	params := map[string]any{
		"table": models.OverlayTable,
	}

	result, err := surrealdb.Query[[]overlayRecord](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlays: %w", err)
	}

	records := firstResult(result)
	overlays := make([]*models.Overlay, 0, len(records))
	for i := range records {
		o, err := records[i].overlay()
		if err != nil {
			s.log.Warn().Err(err).Str("id", records[i].ID.String()).Msg("stored overlay failed validation")
			return nil, err
		}
		overlays = append(overlays, o)
	}
	return overlays, nil
}

func (s *Store) GetOverlay(ctx context.Context, id models.OverlayID) (*models.Overlay, error) {
	return s.one(ctx, "SELECT * FROM $id", map[string]any{
		"id": id.RecordID(),
	})
}

func (s *Store) CreateOverlay(ctx context.Context, o *models.Overlay) error {
	if o.ID.IsZero() {
		return fmt.Errorf("overlay has no ID")
	}
	_, err := s.one(ctx, "CREATE $id CONTENT $data", map[string]any{
		"id":   o.ID.RecordID(),
		"data": content(o),
	})
	if err != nil {
		return fmt.Errorf("failed to create overlay: %w", err)
	}
	return nil
}

// UpdateOverlay replaces the whole document. UPDATE only touches existing
// records, so an empty result means the overlay is gone.
func (s *Store) UpdateOverlay(ctx context.Context, o *models.Overlay) error {
	_, err := s.one(ctx, "UPDATE $id CONTENT $data RETURN AFTER", map[string]any{
		"id":   o.ID.RecordID(),
		"data": content(o),
	})
	return err
}

func (s *Store) DeleteOverlay(ctx context.Context, id models.OverlayID) error {
	_, err := s.one(ctx, "DELETE $id RETURN BEFORE", map[string]any{
		"id": id.RecordID(),
	})
	return err
}

// one runs a single-statement query expected to yield at most one record.
func (s *Store) one(ctx context.Context, query string, params map[string]any) (*models.Overlay, error) {
	result, err := surrealdb.Query[[]overlayRecord](ctx, s.db, query, params)
	if err != nil {
		return nil, err
	}

	records := firstResult(result)
	if len(records) == 0 {
		return nil, store.ErrNotFound
	}
	return records[0].overlay()
}

func firstResult(result *[]surrealdb.QueryResult[[]overlayRecord]) []overlayRecord {
	if result == nil || len(*result) == 0 {
		return nil
	}
	return (*result)[0].Result
}

func content(o *models.Overlay) *overlayContent {
	fields := o.Fields()
	return &overlayContent{
		Fields:    fields,
		CreatedAt: &surrealmodels.CustomDateTime{Time: o.CreatedAt},
		UpdatedAt: &surrealmodels.CustomDateTime{Time: o.UpdatedAt},
	}
}

func (r *overlayRecord) overlay() (*models.Overlay, error) {
	doc := models.Document{
		ID:        r.ID,
		Fields:    r.Fields,
		CreatedAt: r.CreatedAt.Time.UTC(),
		UpdatedAt: r.UpdatedAt.Time.UTC(),
	}
	o, err := doc.Overlay()
	if err != nil {
		return nil, &store.InvalidRecordError{ID: r.ID, Err: err}
	}
	return o, nil
}
