package models_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/surrealoverlay/pkg/models"
)

func textInput(name string) models.Fields {
	return models.Fields{Type: models.Ptr(models.KindText), Name: models.Ptr(name)}
}

func imageInput(name string) models.Fields {
	return models.Fields{Type: models.Ptr(models.KindImage), Name: models.Ptr(name)}
}

func TestValidateAndFillDefaults_TextDefaults(t *testing.T) {
	in := textInput("Title")
	in.Style = &models.StylePatch{FontSize: models.Ptr(32.0)}

	o, err := models.ValidateAndFillDefaults(in)
	require.NoError(t, err)

	assert.Equal(t, models.KindText, o.Type)
	assert.Equal(t, "Title", o.Name)
	assert.Equal(t, models.Position{X: 10, Y: 10}, o.Position)
	assert.Equal(t, models.Size{Width: 200, Height: 80}, o.Size)
	assert.Equal(t, 1, o.ZIndex)
	assert.True(t, o.Visible)
	assert.Nil(t, o.Image)
	require.NotNil(t, o.Text)
	assert.Equal(t, "Text Overlay", o.Text.Content)
	assert.Equal(t, models.TextStyle{
		FontFamily:      "Arial",
		FontSize:        32,
		FontWeight:      "normal",
		Color:           "#ffffff",
		BackgroundColor: "transparent",
		Opacity:         1,
		TextAlign:       models.AlignLeft,
	}, o.Text.Style)
	assert.True(t, o.ID.IsZero())
	assert.True(t, o.CreatedAt.IsZero())
}

func TestValidateAndFillDefaults_ImageDefaults(t *testing.T) {
	in := imageInput("Logo")
	in.ImageURL = models.Ptr("https://x/y.png")

	o, err := models.ValidateAndFillDefaults(in)
	require.NoError(t, err)

	assert.Equal(t, models.Size{Width: 200, Height: 150}, o.Size)
	assert.Equal(t, models.Position{X: 10, Y: 10}, o.Position)
	assert.Nil(t, o.Text)
	require.NotNil(t, o.Image)
	assert.Equal(t, "https://x/y.png", o.Image.ImageURL)
	assert.Equal(t, "Image Overlay", o.Image.Alt)
	assert.Equal(t, models.ImageStyle{Opacity: 1, Border: "none", BorderRadius: 0}, o.Image.Style)
}

func TestValidateAndFillDefaults_PartialNestedMerge(t *testing.T) {
	in := textInput("T")
	in.Position = &models.PositionPatch{X: models.Ptr(300.0)}
	in.Size = &models.SizePatch{Height: models.Ptr(40.0)}

	o, err := models.ValidateAndFillDefaults(in)
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 300, Y: 10}, o.Position)
	assert.Equal(t, models.Size{Width: 200, Height: 40}, o.Size)
}

func TestValidateAndFillDefaults_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		in    models.Fields
		code  error
		field string
	}{
		{"missing type", models.Fields{Name: models.Ptr("A")}, models.ErrMissingField, "type"},
		{"missing name", models.Fields{Type: models.Ptr(models.KindImage)}, models.ErrMissingField, "name"},
		{"blank name", textInput("   "), models.ErrMissingField, "name"},
		{"unknown type", models.Fields{Type: models.Ptr(models.Kind("video")), Name: models.Ptr("A")}, models.ErrInvalidType, "type"},
		{
			"image field on text",
			func() models.Fields { f := textInput("A"); f.ImageURL = models.Ptr("u"); return f }(),
			models.ErrInvalidField, "imageUrl",
		},
		{
			"content on image",
			func() models.Fields { f := imageInput("A"); f.Content = models.Ptr("c"); return f }(),
			models.ErrInvalidField, "content",
		},
		{
			"text style on image",
			func() models.Fields {
				f := imageInput("A")
				f.Style = &models.StylePatch{FontSize: models.Ptr(12.0)}
				return f
			}(),
			models.ErrInvalidField, "style",
		},
		{
			"opacity above one",
			func() models.Fields {
				f := textInput("A")
				f.Style = &models.StylePatch{Opacity: models.Ptr(1.5)}
				return f
			}(),
			models.ErrInvalidField, "style.opacity",
		},
		{
			"zero width",
			func() models.Fields {
				f := imageInput("A")
				f.Size = &models.SizePatch{Width: models.Ptr(0.0)}
				return f
			}(),
			models.ErrInvalidField, "size",
		},
		{
			"negative border radius",
			func() models.Fields {
				f := imageInput("A")
				f.Style = &models.StylePatch{BorderRadius: models.Ptr(-1.0)}
				return f
			}(),
			models.ErrInvalidField, "style.borderRadius",
		},
		{
			"unknown alignment",
			func() models.Fields {
				f := textInput("A")
				f.Style = &models.StylePatch{TextAlign: models.Ptr(models.TextAlign("justify"))}
				return f
			}(),
			models.ErrInvalidField, "style.textAlign",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := models.ValidateAndFillDefaults(tt.in)
			require.Error(t, err)
			assert.Nil(t, o)
			assert.ErrorIs(t, err, tt.code)

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestValidateAndFillDefaults_NameStoredAsGiven(t *testing.T) {
	o, err := models.ValidateAndFillDefaults(textInput("  padded  "))
	require.NoError(t, err)
	assert.Equal(t, "  padded  ", o.Name)

	updated, err := models.ApplyUpdate(o, models.Fields{Name: models.Ptr(" Lower Third")})
	require.NoError(t, err)
	assert.Equal(t, " Lower Third", updated.Name)

	_, err = models.ApplyUpdate(o, models.Fields{Name: models.Ptr("\t ")})
	assert.ErrorIs(t, err, models.ErrMissingField)
}

func TestApplyUpdate_MergesStyleKeyByKey(t *testing.T) {
	in := textInput("T")
	in.Style = &models.StylePatch{Color: models.Ptr("#ff0000"), FontSize: models.Ptr(20.0)}
	existing, err := models.ValidateAndFillDefaults(in)
	require.NoError(t, err)

	updated, err := models.ApplyUpdate(existing, models.Fields{
		Style: &models.StylePatch{Opacity: models.Ptr(0.5)},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.5, updated.Text.Style.Opacity)
	assert.Equal(t, "#ff0000", updated.Text.Style.Color)
	assert.Equal(t, 20.0, updated.Text.Style.FontSize)
	assert.Equal(t, "Arial", updated.Text.Style.FontFamily)

	// existing is untouched
	assert.Equal(t, 1.0, existing.Text.Style.Opacity)
}

func TestApplyUpdate_Move(t *testing.T) {
	existing, err := models.ValidateAndFillDefaults(imageInput("I"))
	require.NoError(t, err)

	updated, err := models.ApplyUpdate(existing, models.MovePatch(120, 45))
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 120, Y: 45}, updated.Position)
	assert.Equal(t, existing.Size, updated.Size)
	assert.Equal(t, models.Position{X: 10, Y: 10}, existing.Position)
}

func TestApplyUpdate_TypeChangeRejected(t *testing.T) {
	existing, err := models.ValidateAndFillDefaults(textInput("T"))
	require.NoError(t, err)

	_, err = models.ApplyUpdate(existing, models.Fields{Type: models.Ptr(models.KindImage)})
	require.ErrorIs(t, err, models.ErrImmutableFieldChange)
	assert.Equal(t, "Cannot change overlay type", err.Error())

	// Repeating the same type is fine.
	_, err = models.ApplyUpdate(existing, models.Fields{Type: models.Ptr(models.KindText)})
	require.NoError(t, err)
}

func TestApplyUpdate_ForeignFieldRejected(t *testing.T) {
	existing, err := models.ValidateAndFillDefaults(textInput("T"))
	require.NoError(t, err)

	_, err = models.ApplyUpdate(existing, models.Fields{Style: &models.StylePatch{Border: models.Ptr("1px solid red")}})
	require.ErrorIs(t, err, models.ErrInvalidField)
}

func TestApplyUpdate_EmptyPatchIsIdentity(t *testing.T) {
	existing, err := models.ValidateAndFillDefaults(imageInput("I"))
	require.NoError(t, err)
	existing.ID = models.NewOverlayID()

	updated, err := models.ApplyUpdate(existing, models.Fields{})
	require.NoError(t, err)
	assert.Equal(t, existing, updated)
	assert.NotSame(t, existing.Image, updated.Image)
}

func TestLookupValidationCode(t *testing.T) {
	assert.Equal(t, models.ErrInvalidType, models.LookupValidationCode("invalid_type"))
	assert.Equal(t, models.ErrImmutableFieldChange, models.LookupValidationCode("immutable_field"))
	assert.Nil(t, models.LookupValidationCode("not_found"))
}
