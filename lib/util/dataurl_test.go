package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_EncodeDataURL(t *testing.T) {
	actual := EncodeDataURL(MimePNG, []byte("abc"))

	assert.Equal(t, "data:image/png;base64,YWJj", actual)
}

func Test_DecodeDataURL_RoundTrip(t *testing.T) {
	//Arrange
	content := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff}

	//Act
	mimeType, decoded, err := DecodeDataURL(EncodeDataURL(MimePDF, content))

	//Assert
	require.NoError(t, err)
	assert.Equal(t, MimePDF, mimeType)
	assert.Equal(t, content, decoded)
}

func Test_DecodeDataURL_Malformed(t *testing.T) {
	for _, input := range []string{
		"",
		"YWJj",
		"data:image/png,YWJj",
		"image/png;base64,YWJj",
		"data:image/png;base64,***",
	} {
		_, _, err := DecodeDataURL(input)
		assert.ErrorIs(t, err, ErrMalformedDataURL, "input %q", input)
	}
}
