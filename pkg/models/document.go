package models

import (
	"encoding/json"
	"time"
)

// Document is the flat wire and storage shape of an overlay:
// {id, name, type, position, size, zIndex, visible, content?, imageUrl?, alt?,
// style, createdAt, updatedAt}.
type Document struct {
	ID OverlayID `json:"id"`
	Fields
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Document flattens o into its wire shape.
func (o *Overlay) Document() Document {
	return Document{
		ID:        o.ID,
		Fields:    o.Fields(),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// Overlay rebuilds the tagged union from a document. Missing keys take the
// variant defaults, so records written by older versions still load.
func (d Document) Overlay() (*Overlay, error) {
	o, err := ValidateAndFillDefaults(d.Fields)
	if err != nil {
		return nil, err
	}
	o.ID = d.ID
	o.CreatedAt = d.CreatedAt
	o.UpdatedAt = d.UpdatedAt
	return o, nil
}

func (o Overlay) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Document())
}

func (o *Overlay) UnmarshalJSON(data []byte) error {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	decoded, err := d.Overlay()
	if err != nil {
		return err
	}
	*o = *decoded
	return nil
}
