package labels

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"inventory/lib/qrcode"
	"inventory/lib/util"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	cellWidthPx  = 320
	cellHeightPx = 160
	cellPadPx    = 8
	lineHeightPx = 18
)

var (
	borderColor = color.Gray{Y: 0xb4}
	textColor   = image.NewUniform(color.Black)
)

// ImageRenderer draws the first page of a sheet as a single PNG grid
type ImageRenderer struct{}

// Render returns the PNG bytes for sheet's first page
func (ImageRenderer) Render(sheet *Sheet) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, sheet.Columns*cellWidthPx, sheet.Rows*cellHeightPx))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	if len(sheet.Pages) > 0 {
		for slot, label := range sheet.Pages[0] {
			if label == nil {
				continue
			}
			origin := image.Pt((slot%sheet.Columns)*cellWidthPx, (slot/sheet.Columns)*cellHeightPx)
			if err := drawImageLabel(canvas, label, origin); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode label image: %w", err)
	}
	return buf.Bytes(), nil
}

func drawImageLabel(canvas *image.RGBA, label *Label, origin image.Point) error {
	cell := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(cellWidthPx, cellHeightPx))}
	strokeRect(canvas, cell, borderColor)

	textWidth := cellWidthPx - 2*cellPadPx
	if label.QRCode != "" {
		qrSize := cellHeightPx - 2*cellPadPx
		qr, err := qrcode.Image(label.QRCode, qrSize)
		if err != nil {
			return err
		}
		at := image.Pt(cell.Max.X-cellPadPx-qrSize, cell.Min.Y+cellPadPx)
		draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(image.Pt(qrSize, qrSize))}, qr, qr.Bounds().Min, draw.Src)
		textWidth -= qrSize + cellPadPx
	}

	face := basicfont.Face7x13
	maxChars := textWidth / face.Advance
	lines := []string{label.Name}
	if label.Specifications != "" {
		lines = append(lines, "Spec: "+label.Specifications)
	}
	lines = append(lines, "Qty: "+strconv.Itoa(label.Quantity)+" "+label.Unit)
	if label.LocationName != "" {
		lines = append(lines, "Location: "+label.LocationName)
	}

	drawer := &font.Drawer{Dst: canvas, Src: textColor, Face: face}
	baseline := cell.Min.Y + cellPadPx + face.Ascent
	for _, line := range lines {
		drawer.Dot = fixed.P(cell.Min.X+cellPadPx, baseline)
		drawer.DrawString(util.Truncate(line, maxChars))
		baseline += lineHeightPx
	}
	return nil
}

func strokeRect(canvas *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		canvas.Set(x, r.Min.Y, c)
		canvas.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		canvas.Set(r.Min.X, y, c)
		canvas.Set(r.Max.X-1, y, c)
	}
}
