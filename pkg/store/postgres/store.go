// Package postgres stores overlays in PostgreSQL.
//
// Geometry and the shared fields are real columns so the list can be ordered
// by an index. The variant-specific part (content, imageUrl, alt, style) is a
// JSONB document in attrs, keyed like the wire shape.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // registers the "postgres" driver
	"github.com/rs/zerolog"

	"github.com/surrealdb/surrealoverlay/pkg/models"
	"github.com/surrealdb/surrealoverlay/pkg/store"
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const table = "overlays"

// overlayColumns lists columns returned by overlay SELECT queries, in scan order.
var overlayColumns = []string{
	"id", "type", "name", "position_x", "position_y", "width", "height",
	"z_index", "visible", "attrs", "created_at", "updated_at",
}

// Store implements store.Store on a *sql.DB.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// attrs is the JSONB payload of the variant-specific fields.
type attrs struct {
	Content  *string            `json:"content,omitempty"`
	ImageURL *string            `json:"imageUrl,omitempty"`
	Alt      *string            `json:"alt,omitempty"`
	Style    *models.StylePatch `json:"style,omitempty"`
}

func New(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Open connects with lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return New(db, log), nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Migrate(context.Context) error {
	version, dirty, err := runMigrations(s.db)
	if err != nil {
		return err
	}
	if dirty {
		s.log.Warn().Uint("version", version).Msg("database migration state is dirty")
	} else {
		s.log.Info().Uint("version", version).Msg("database migrations complete")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListOverlays(ctx context.Context) ([]*models.Overlay, error) {
	query, args, err := psq.Select(overlayColumns...).
		From(table).
		OrderBy("z_index ASC", "seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying overlays: %w", err)
	}
	defer func() { _ = rows.Close() }()

	overlays := make([]*models.Overlay, 0)
	for rows.Next() {
		o, err := scanOverlay(rows)
		if err != nil {
			var invalid *store.InvalidRecordError
			if errors.As(err, &invalid) {
				s.log.Warn().Err(invalid.Err).Str("id", invalid.ID.String()).Msg("stored overlay failed validation")
			}
			return nil, err
		}
		overlays = append(overlays, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating overlay rows: %w", err)
	}
	return overlays, nil
}

func (s *Store) GetOverlay(ctx context.Context, id models.OverlayID) (*models.Overlay, error) {
	query, args, err := psq.Select(overlayColumns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building get query: %w", err)
	}

	o, err := scanOverlay(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return o, err
}

func (s *Store) CreateOverlay(ctx context.Context, o *models.Overlay) error {
	if o.ID.IsZero() {
		return fmt.Errorf("overlay has no ID")
	}

	payload, err := marshalAttrs(o)
	if err != nil {
		return err
	}

	query, args, err := psq.Insert(table).
		Columns(overlayColumns...).
		Values(
			o.ID, string(o.Type), o.Name, o.Position.X, o.Position.Y,
			o.Size.Width, o.Size.Height, o.ZIndex, o.Visible, payload,
			o.CreatedAt, o.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting overlay: %w", err)
	}
	return nil
}

// UpdateOverlay rewrites every mutable column. The type column is left
// alone; the entity model already refuses to change it.
func (s *Store) UpdateOverlay(ctx context.Context, o *models.Overlay) error {
	payload, err := marshalAttrs(o)
	if err != nil {
		return err
	}

	query, args, err := psq.Update(table).
		SetMap(sq.Eq{
			"name":       o.Name,
			"position_x": o.Position.X,
			"position_y": o.Position.Y,
			"width":      o.Size.Width,
			"height":     o.Size.Height,
			"z_index":    o.ZIndex,
			"visible":    o.Visible,
			"attrs":      payload,
			"updated_at": o.UpdatedAt,
		}).
		Where(sq.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating overlay: %w", err)
	}
	return requireRow(res)
}

func (s *Store) DeleteOverlay(ctx context.Context, id models.OverlayID) error {
	query, args, err := psq.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting overlay: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func marshalAttrs(o *models.Overlay) ([]byte, error) {
	f := o.Fields()
	payload, err := json.Marshal(attrs{
		Content:  f.Content,
		ImageURL: f.ImageURL,
		Alt:      f.Alt,
		Style:    f.Style,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding overlay attrs: %w", err)
	}
	return payload, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOverlay(row scanner) (*models.Overlay, error) {
	var (
		doc     models.Document
		kind    string
		name    string
		pos     models.Position
		size    models.Size
		zIndex  int
		visible bool
		raw     []byte
		created time.Time
		updated time.Time
	)

	if err := row.Scan(
		&doc.ID, &kind, &name, &pos.X, &pos.Y, &size.Width, &size.Height,
		&zIndex, &visible, &raw, &created, &updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning overlay: %w", err)
	}

	var a attrs
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decoding attrs of overlay %s: %w", doc.ID, err)
		}
	}

	t := models.Kind(kind)
	doc.Fields = models.Fields{
		Type:     &t,
		Name:     &name,
		Position: &models.PositionPatch{X: &pos.X, Y: &pos.Y},
		Size:     &models.SizePatch{Width: &size.Width, Height: &size.Height},
		ZIndex:   &zIndex,
		Visible:  &visible,
		Content:  a.Content,
		ImageURL: a.ImageURL,
		Alt:      a.Alt,
		Style:    a.Style,
	}
	doc.CreatedAt = created.UTC()
	doc.UpdatedAt = updated.UTC()

	o, err := doc.Overlay()
	if err != nil {
		return nil, &store.InvalidRecordError{ID: doc.ID, Err: err}
	}
	return o, nil
}
