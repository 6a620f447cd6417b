package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Defaults applied by ValidateAndFillDefaults when the caller omits a field.
const (
	DefaultZIndex      = 1
	DefaultTextContent = "Text Overlay"
	DefaultImageAlt    = "Image Overlay"
)

var (
	DefaultPosition  = Position{X: 10, Y: 10}
	DefaultTextSize  = Size{Width: 200, Height: 80}
	DefaultImageSize = Size{Width: 200, Height: 150}
)

func DefaultTextStyle() TextStyle {
	return TextStyle{
		FontFamily:      "Arial",
		FontSize:        16,
		FontWeight:      "normal",
		Color:           "#ffffff",
		BackgroundColor: Transparent,
		Opacity:         1,
		TextAlign:       AlignLeft,
	}
}

func DefaultImageStyle() ImageStyle {
	return ImageStyle{
		Opacity:      1,
		Border:       "none",
		BorderRadius: 0,
	}
}

// ValidateAndFillDefaults builds a complete overlay from creation input.
// Type and name are required; everything else falls back to the variant's
// defaults, with nested objects merged key by key. The result has no ID and
// no timestamps.
func ValidateAndFillDefaults(in Fields) (*Overlay, error) {
	if in.Type == nil || *in.Type == "" {
		return nil, missingField("type")
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, missingField("name")
	}

	o := &Overlay{
		Type:     *in.Type,
		Position: DefaultPosition,
		ZIndex:   DefaultZIndex,
		Visible:  true,
	}

	switch o.Type {
	case KindText:
		o.Size = DefaultTextSize
		o.Text = &TextAttrs{Content: DefaultTextContent, Style: DefaultTextStyle()}
	case KindImage:
		o.Size = DefaultImageSize
		o.Image = &ImageAttrs{Alt: DefaultImageAlt, Style: DefaultImageStyle()}
	default:
		return nil, &ValidationError{
			Code:    ErrInvalidType,
			Field:   "type",
			Message: `Invalid overlay type. Must be "text" or "image"`,
		}
	}

	if err := merge(o, in); err != nil {
		return nil, err
	}
	return o, nil
}

// ApplyUpdate returns existing with patch merged in. existing is not modified.
// Position, size and style merge key by key. Changing the variant tag is
// rejected with ErrImmutableFieldChange.
func ApplyUpdate(existing *Overlay, patch Fields) (*Overlay, error) {
	if existing == nil {
		return nil, errors.New("models: ApplyUpdate on nil overlay")
	}
	if patch.Type != nil && *patch.Type != existing.Type {
		return nil, &ValidationError{
			Code:    ErrImmutableFieldChange,
			Field:   "type",
			Message: "Cannot change overlay type",
		}
	}

	updated := existing.Clone()
	if err := merge(updated, patch); err != nil {
		return nil, err
	}
	return updated, nil
}

// merge writes every supplied field of p into o and validates the result.
// o must already be variant-consistent.
func merge(o *Overlay, p Fields) error {
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return missingField("name")
		}
		o.Name = *p.Name
	}

	if p.Position != nil {
		if p.Position.X != nil {
			o.Position.X = *p.Position.X
		}
		if p.Position.Y != nil {
			o.Position.Y = *p.Position.Y
		}
	}
	if !finite(o.Position.X) || !finite(o.Position.Y) {
		return invalidField("position", "coordinates must be finite numbers")
	}

	if p.Size != nil {
		if p.Size.Width != nil {
			o.Size.Width = *p.Size.Width
		}
		if p.Size.Height != nil {
			o.Size.Height = *p.Size.Height
		}
	}
	if !positive(o.Size.Width) || !positive(o.Size.Height) {
		return invalidField("size", "width and height must be positive")
	}

	if p.ZIndex != nil {
		o.ZIndex = *p.ZIndex
	}
	if p.Visible != nil {
		o.Visible = *p.Visible
	}

	switch o.Type {
	case KindText:
		return mergeText(o.Text, p)
	case KindImage:
		return mergeImage(o.Image, p)
	}
	return nil
}

func mergeText(t *TextAttrs, p Fields) error {
	if p.ImageURL != nil {
		return foreignField("imageUrl", KindText)
	}
	if p.Alt != nil {
		return foreignField("alt", KindText)
	}
	if p.Content != nil {
		t.Content = *p.Content
	}

	if s := p.Style; s != nil {
		if s.hasImageKeys() {
			return foreignField("style", KindText)
		}
		if s.Opacity != nil {
			t.Style.Opacity = *s.Opacity
		}
		if s.FontFamily != nil {
			t.Style.FontFamily = *s.FontFamily
		}
		if s.FontSize != nil {
			t.Style.FontSize = *s.FontSize
		}
		if s.FontWeight != nil {
			t.Style.FontWeight = *s.FontWeight
		}
		if s.Color != nil {
			t.Style.Color = *s.Color
		}
		if s.BackgroundColor != nil {
			t.Style.BackgroundColor = *s.BackgroundColor
		}
		if s.TextAlign != nil {
			t.Style.TextAlign = *s.TextAlign
		}
	}

	if err := checkOpacity(t.Style.Opacity); err != nil {
		return err
	}
	if !positive(t.Style.FontSize) {
		return invalidField("style.fontSize", "must be positive")
	}
	if !t.Style.TextAlign.Valid() {
		return invalidField("style.textAlign", "%q is not one of left, center, right", t.Style.TextAlign)
	}
	return nil
}

func mergeImage(img *ImageAttrs, p Fields) error {
	if p.Content != nil {
		return foreignField("content", KindImage)
	}
	if p.ImageURL != nil {
		img.ImageURL = *p.ImageURL
	}
	if p.Alt != nil {
		img.Alt = *p.Alt
	}

	if s := p.Style; s != nil {
		if s.hasTextKeys() {
			return foreignField("style", KindImage)
		}
		if s.Opacity != nil {
			img.Style.Opacity = *s.Opacity
		}
		if s.Border != nil {
			img.Style.Border = *s.Border
		}
		if s.BorderRadius != nil {
			img.Style.BorderRadius = *s.BorderRadius
		}
	}

	if err := checkOpacity(img.Style.Opacity); err != nil {
		return err
	}
	if !finite(img.Style.BorderRadius) || img.Style.BorderRadius < 0 {
		return invalidField("style.borderRadius", "must not be negative")
	}
	return nil
}

func foreignField(field string, kind Kind) *ValidationError {
	return &ValidationError{
		Code:    ErrInvalidField,
		Field:   field,
		Message: fmt.Sprintf("Field %s is not allowed on %s overlays", field, kind),
	}
}

func checkOpacity(v float64) error {
	if !finite(v) || v < 0 || v > 1 {
		return invalidField("style.opacity", "%v is outside [0, 1]", v)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}
