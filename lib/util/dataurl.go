package util

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	MimePNG = "image/png"
	MimePDF = "application/pdf"
)

// ErrMalformedDataURL is returned when a string is not a base64 data URL
var ErrMalformedDataURL = errors.New("malformed data url")

// EncodeDataURL wraps binary content as data:<mime>;base64,<payload>
func EncodeDataURL(mimeType string, content []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// DecodeDataURL strips the prefix and returns the mime type and decoded bytes
func DecodeDataURL(dataURL string) (string, []byte, error) {
	prefix, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(prefix, "data:") || !strings.HasSuffix(prefix, ";base64") {
		return "", nil, ErrMalformedDataURL
	}
	mimeType := strings.TrimSuffix(strings.TrimPrefix(prefix, "data:"), ";base64")

	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedDataURL, err)
	}
	return mimeType, content, nil
}
