package canvassync

import (
	"fmt"

	"github.com/surrealdb/surrealoverlay/pkg/models"
)

// Editor defaults for overlays created from the toolbar. They differ from the
// server's creation defaults.
const (
	NewTextContent   = "New Text Overlay"
	NewImageURL      = "https://via.placeholder.com/200x150"
	NewImageAlt      = "Sample image overlay"
	newTextFontSize  = 24
	newTextBackdrop  = "rgba(0,0,0,0.5)"
	newOverlayOrigin = 50
)

// NewTextFields returns the creation payload for a text overlay when count
// overlays already exist.
func NewTextFields(count int) models.Fields {
	style := models.DefaultTextStyle()
	return models.Fields{
		Type:     models.Ptr(models.KindText),
		Name:     models.Ptr(fmt.Sprintf("Text Overlay %d", count+1)),
		Position: &models.PositionPatch{X: models.Ptr(float64(newOverlayOrigin)), Y: models.Ptr(float64(newOverlayOrigin))},
		Size:     &models.SizePatch{Width: models.Ptr(models.DefaultTextSize.Width), Height: models.Ptr(models.DefaultTextSize.Height)},
		ZIndex:   models.Ptr(count + 1),
		Visible:  models.Ptr(true),
		Content:  models.Ptr(NewTextContent),
		Style: &models.StylePatch{
			FontFamily:      models.Ptr(style.FontFamily),
			FontSize:        models.Ptr(float64(newTextFontSize)),
			FontWeight:      models.Ptr(style.FontWeight),
			Color:           models.Ptr(style.Color),
			BackgroundColor: models.Ptr(newTextBackdrop),
			Opacity:         models.Ptr(style.Opacity),
			TextAlign:       models.Ptr(models.AlignCenter),
		},
	}
}

// NewImageFields returns the creation payload for an image overlay when count
// overlays already exist.
func NewImageFields(count int) models.Fields {
	style := models.DefaultImageStyle()
	return models.Fields{
		Type:     models.Ptr(models.KindImage),
		Name:     models.Ptr(fmt.Sprintf("Image Overlay %d", count+1)),
		Position: &models.PositionPatch{X: models.Ptr(float64(newOverlayOrigin)), Y: models.Ptr(float64(newOverlayOrigin))},
		Size:     &models.SizePatch{Width: models.Ptr(models.DefaultImageSize.Width), Height: models.Ptr(models.DefaultImageSize.Height)},
		ZIndex:   models.Ptr(count + 1),
		Visible:  models.Ptr(true),
		ImageURL: models.Ptr(NewImageURL),
		Alt:      models.Ptr(NewImageAlt),
		Style: &models.StylePatch{
			Opacity:      models.Ptr(style.Opacity),
			Border:       models.Ptr(style.Border),
			BorderRadius: models.Ptr(style.BorderRadius),
		},
	}
}
