package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// OverlayTable is the SurrealDB table overlay records live in.
const OverlayTable = "overlays"

// recordIDTag is the CBOR tag SurrealDB uses for RecordID values.
const recordIDTag = 8

// OverlayID is a typed ID for overlays.
// The zero value means the server has not assigned an identifier yet.
type OverlayID struct {
	uuid uuid.UUID
}

func NewOverlayID() OverlayID {
	return OverlayID{uuid: uuid.New()}
}

func NewOverlayIDFromUUID(id uuid.UUID) OverlayID {
	return OverlayID{uuid: id}
}

// ParseOverlayID parses the canonical string form of an overlay ID.
func ParseOverlayID(s string) (OverlayID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return OverlayID{}, fmt.Errorf("invalid overlay ID: %w", err)
	}
	return OverlayID{uuid: id}, nil
}

func (o OverlayID) UUID() uuid.UUID { return o.uuid }
func (o OverlayID) IsZero() bool    { return o.uuid == uuid.Nil }

func (o OverlayID) String() string {
	if o.IsZero() {
		return ""
	}
	return o.uuid.String()
}

func (o OverlayID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: OverlayTable,
		ID:    o.uuid.String(),
	}
}

func (o OverlayID) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *OverlayID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		o.uuid = uuid.Nil
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	o.uuid = id
	return nil
}

func (o OverlayID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  recordIDTag,
		Content: []any{OverlayTable, o.uuid.String()},
	})
}

func (o *OverlayID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, OverlayTable, &o.uuid)
}

func (o OverlayID) Value() (driver.Value, error) {
	if o.IsZero() {
		return nil, nil
	}
	return o.uuid.String(), nil
}

func (o *OverlayID) Scan(value any) error {
	return scanUUID(value, &o.uuid)
}

// scanUUID implements sql.Scanner for uuid columns.
func scanUUID(value any, target *uuid.UUID) error {
	if value == nil {
		*target = uuid.Nil
		return nil
	}

	switch v := value.(type) {
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		*target = id
	case []byte:
		id, err := uuid.ParseBytes(v)
		if err != nil {
			return err
		}
		*target = id
	default:
		return fmt.Errorf("cannot scan type %T into UUID", value)
	}
	return nil
}

// unmarshalCBORID decodes a SurrealDB RecordID, encoded as tag 8 wrapping
// [table, id], into target after checking the table name.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}

	if tag.Number != recordIDTag {
		return fmt.Errorf("expected RecordID tag (%d), got %d", recordIDTag, tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}

	table, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: table name must be string")
	}
	if table != expectedTable {
		return fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}

	idStr, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: ID must be string")
	}

	parsed, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid UUID in RecordID: %w", err)
	}

	*target = parsed
	return nil
}
