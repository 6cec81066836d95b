// Package qrcode renders location codes as scannable QR images.
// Render and Image are pure functions of the code and the target size;
// LocationCodes adds assign-on-demand over the store.
package qrcode

import (
	"errors"
	"fmt"
	"image"

	goqrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels used for API responses
const DefaultSize = 256

// ErrEmptyCode is returned when asked to render an empty payload
var ErrEmptyCode = errors.New("qr code payload is empty")

// Render encodes code as a PNG of size x size pixels
func Render(code string, size int) ([]byte, error) {
	q, err := encode(code)
	if err != nil {
		return nil, err
	}
	png, err := q.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr png: %w", err)
	}
	return png, nil
}

// Image returns the QR symbol for code as an image for compositing
func Image(code string, size int) (image.Image, error) {
	q, err := encode(code)
	if err != nil {
		return nil, err
	}
	return q.Image(size), nil
}

func encode(code string) (*goqrcode.QRCode, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}
	q, err := goqrcode.New(code, goqrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to build qr code: %w", err)
	}
	return q, nil
}
