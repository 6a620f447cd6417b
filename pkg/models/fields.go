package models

// Fields is a partial overlay: creation input and update patch share it.
// A nil pointer means "not supplied". Nested objects are partial too, so a
// patch of Style{Opacity} leaves every sibling style field alone.
type Fields struct {
	Type     *Kind          `json:"type,omitempty"`
	Name     *string        `json:"name,omitempty"`
	Position *PositionPatch `json:"position,omitempty"`
	Size     *SizePatch     `json:"size,omitempty"`
	ZIndex   *int           `json:"zIndex,omitempty"`
	Visible  *bool          `json:"visible,omitempty"`

	// Text only.
	Content *string `json:"content,omitempty"`

	// Image only.
	ImageURL *string `json:"imageUrl,omitempty"`
	Alt      *string `json:"alt,omitempty"`

	Style *StylePatch `json:"style,omitempty"`
}

type PositionPatch struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

type SizePatch struct {
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// StylePatch carries the union of both variants' style keys. Which keys are
// allowed depends on the overlay the patch is applied to.
type StylePatch struct {
	Opacity *float64 `json:"opacity,omitempty"`

	// Text only.
	FontFamily      *string    `json:"fontFamily,omitempty"`
	FontSize        *float64   `json:"fontSize,omitempty"`
	FontWeight      *string    `json:"fontWeight,omitempty"`
	Color           *string    `json:"color,omitempty"`
	BackgroundColor *string    `json:"backgroundColor,omitempty"`
	TextAlign       *TextAlign `json:"textAlign,omitempty"`

	// Image only.
	Border       *string  `json:"border,omitempty"`
	BorderRadius *float64 `json:"borderRadius,omitempty"`
}

// Ptr returns a pointer to v. It keeps literal patches short.
func Ptr[T any](v T) *T {
	return &v
}

// MovePatch is the patch a drag-stop produces.
func MovePatch(x, y float64) Fields {
	return Fields{Position: &PositionPatch{X: &x, Y: &y}}
}

// ResizePatch is the patch a resize produces.
func ResizePatch(width, height float64) Fields {
	return Fields{Size: &SizePatch{Width: &width, Height: &height}}
}

// Fields returns o as a fully populated patch: every field of its variant is set.
func (o *Overlay) Fields() Fields {
	kind := o.Type
	f := Fields{
		Type:     &kind,
		Name:     Ptr(o.Name),
		Position: &PositionPatch{X: Ptr(o.Position.X), Y: Ptr(o.Position.Y)},
		Size:     &SizePatch{Width: Ptr(o.Size.Width), Height: Ptr(o.Size.Height)},
		ZIndex:   Ptr(o.ZIndex),
		Visible:  Ptr(o.Visible),
	}

	switch {
	case o.Text != nil:
		s := o.Text.Style
		f.Content = Ptr(o.Text.Content)
		f.Style = &StylePatch{
			Opacity:         Ptr(s.Opacity),
			FontFamily:      Ptr(s.FontFamily),
			FontSize:        Ptr(s.FontSize),
			FontWeight:      Ptr(s.FontWeight),
			Color:           Ptr(s.Color),
			BackgroundColor: Ptr(s.BackgroundColor),
			TextAlign:       Ptr(s.TextAlign),
		}
	case o.Image != nil:
		s := o.Image.Style
		f.ImageURL = Ptr(o.Image.ImageURL)
		f.Alt = Ptr(o.Image.Alt)
		f.Style = &StylePatch{
			Opacity:      Ptr(s.Opacity),
			Border:       Ptr(s.Border),
			BorderRadius: Ptr(s.BorderRadius),
		}
	}
	return f
}

func (p *StylePatch) hasTextKeys() bool {
	return p.FontFamily != nil || p.FontSize != nil || p.FontWeight != nil ||
		p.Color != nil || p.BackgroundColor != nil || p.TextAlign != nil
}

func (p *StylePatch) hasImageKeys() bool {
	return p.Border != nil || p.BorderRadius != nil
}
