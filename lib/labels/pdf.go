package labels

import (
	"bytes"
	"fmt"
	"strconv"

	"inventory/lib/qrcode"

	"github.com/go-pdf/fpdf"
)

const (
	pageMarginMM = 5.0
	cellPadMM    = 2.0
	qrPixels     = 256
	fontFamily   = "Helvetica"
)

// PDFRenderer draws a sheet as a multi-page vector document.
// Output is byte-identical for identical sheets.
type PDFRenderer struct{}

// Render returns the PDF bytes and the number of pages written
func (PDFRenderer) Render(sheet *Sheet) ([]byte, int, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: sheet.Paper.WidthMM, Ht: sheet.Paper.HeightMM},
	})
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(sheet.Stamp)
	pdf.SetModificationDate(sheet.Stamp)
	pdf.SetCompression(true)
	pdf.SetTitle("Item Labels", true)
	pdf.SetCreator("inventory", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	cellW := (sheet.Paper.WidthMM - 2*pageMarginMM) / float64(sheet.Columns)
	cellH := (sheet.Paper.HeightMM - 2*pageMarginMM) / float64(sheet.Rows)

	registered := map[string]bool{}
	for _, page := range sheet.Pages {
		pdf.AddPage()
		for slot, label := range page {
			if label == nil {
				continue
			}
			x := pageMarginMM + float64(slot%sheet.Columns)*cellW
			y := pageMarginMM + float64(slot/sheet.Columns)*cellH
			if err := drawPDFLabel(pdf, tr, registered, label, x, y, cellW, cellH); err != nil {
				return nil, 0, err
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), pdf.PageCount(), nil
}

func drawPDFLabel(pdf *fpdf.Fpdf, tr func(string) string, registered map[string]bool, label *Label, x, y, w, h float64) error {
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x, y, w, h, "D")

	textW := w - 2*cellPadMM
	if label.QRCode != "" {
		qrSize := min(h-2*cellPadMM, w*0.4)
		if !registered[label.QRCode] {
			png, err := qrcode.Render(label.QRCode, qrPixels)
			if err != nil {
				return err
			}
			pdf.RegisterImageOptionsReader(label.QRCode, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
			if pdf.Err() {
				return fmt.Errorf("failed to embed qr image: %w", pdf.Error())
			}
			registered[label.QRCode] = true
		}
		pdf.ImageOptions(label.QRCode, x+w-cellPadMM-qrSize, y+cellPadMM, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		textW -= qrSize + cellPadMM
	}

	// Five text lines share the cell height
	lineH := min((h-2*cellPadMM)/5, 6.0)
	fontPt := lineH * 2.2
	cursor := y + cellPadMM + lineH

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(fontFamily, "B", fontPt*1.1)
	pdf.Text(x+cellPadMM, cursor, fitText(pdf, tr(label.Name), textW))
	cursor += lineH * 1.2

	pdf.SetFont(fontFamily, "", fontPt)
	if label.Specifications != "" {
		pdf.Text(x+cellPadMM, cursor, fitText(pdf, tr("Spec: "+label.Specifications), textW))
		cursor += lineH
	}

	pdf.SetFont(fontFamily, "B", fontPt)
	pdf.Text(x+cellPadMM, cursor, fitText(pdf, tr("Qty: "+strconv.Itoa(label.Quantity)+" "+label.Unit), textW))
	cursor += lineH

	if label.LocationName != "" {
		pdf.SetFont(fontFamily, "", fontPt)
		pdf.Text(x+cellPadMM, cursor, fitText(pdf, tr("Location: "+label.LocationName), textW))
	}

	if pdf.Err() {
		return fmt.Errorf("failed to draw label for item %d: %w", label.ItemID, pdf.Error())
	}
	return nil
}

// fitText trims s until it fits width in the current font.
// s is already translated to the single-byte core font encoding.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if width <= 0 {
		return ""
	}
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for cut := len(s) - 1; cut >= 0; cut-- {
		candidate := s[:cut] + "..."
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}
