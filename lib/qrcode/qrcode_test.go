package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Render_IsDeterministic(t *testing.T) {
	//Act
	first, err := Render("LOC-0A1B2C3D4E5F", DefaultSize)
	require.NoError(t, err)
	second, err := Render("LOC-0A1B2C3D4E5F", DefaultSize)
	require.NoError(t, err)

	//Assert
	assert.Equal(t, first, second)
}

func Test_Render_ProducesPNGOfRequestedSize(t *testing.T) {
	//Act
	data, err := Render("LOC-0A1B2C3D4E5F", 128)
	require.NoError(t, err)

	//Assert
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())
}

func Test_Render_DifferentCodesDiffer(t *testing.T) {
	a, err := Render("LOC-AAAAAAAAAAAA", DefaultSize)
	require.NoError(t, err)
	b, err := Render("LOC-BBBBBBBBBBBB", DefaultSize)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func Test_Render_EmptyCode(t *testing.T) {
	_, err := Render("", DefaultSize)

	assert.ErrorIs(t, err, ErrEmptyCode)
}

func Test_Image_Bounds(t *testing.T) {
	img, err := Image("LOC-0A1B2C3D4E5F", 64)

	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}
