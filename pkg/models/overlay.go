package models

import (
	"time"
)

// Kind is the overlay variant tag, stored as the "type" discriminator.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Valid reports whether k is one of the known variants.
func (k Kind) Valid() bool {
	return k == KindText || k == KindImage
}

// TextAlign is the horizontal alignment of a text overlay.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

func (a TextAlign) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// Transparent is the background color sentinel for text overlays without a fill.
const Transparent = "transparent"

// Position is the top-left corner of an overlay in canvas coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the rendered box of an overlay. Both dimensions are positive.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextStyle is the style object of a text overlay.
type TextStyle struct {
	FontFamily      string    `json:"fontFamily"`
	FontSize        float64   `json:"fontSize"`
	FontWeight      string    `json:"fontWeight"`
	Color           string    `json:"color"`
	BackgroundColor string    `json:"backgroundColor"`
	Opacity         float64   `json:"opacity"`
	TextAlign       TextAlign `json:"textAlign"`
}

// ImageStyle is the style object of an image overlay.
type ImageStyle struct {
	Opacity      float64 `json:"opacity"`
	Border       string  `json:"border"`
	BorderRadius float64 `json:"borderRadius"`
}

// TextAttrs holds the fields only a text overlay has.
type TextAttrs struct {
	Content string
	Style   TextStyle
}

// ImageAttrs holds the fields only an image overlay has.
// ImageURL is not checked for reachability; the renderer resolves it lazily.
type ImageAttrs struct {
	ImageURL string
	Alt      string
	Style    ImageStyle
}

// Overlay is a persisted annotation. Exactly one of Text and Image is non-nil
// and it matches Type.
type Overlay struct {
	ID       OverlayID
	Name     string
	Type     Kind
	Position Position
	Size     Size
	ZIndex   int
	Visible  bool

	Text  *TextAttrs
	Image *ImageAttrs

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of o.
func (o *Overlay) Clone() *Overlay {
	if o == nil {
		return nil
	}
	c := *o
	if o.Text != nil {
		t := *o.Text
		c.Text = &t
	}
	if o.Image != nil {
		i := *o.Image
		c.Image = &i
	}
	return &c
}

// Opacity returns the style opacity regardless of the variant.
func (o *Overlay) Opacity() float64 {
	switch {
	case o.Text != nil:
		return o.Text.Style.Opacity
	case o.Image != nil:
		return o.Image.Style.Opacity
	}
	return 0
}
