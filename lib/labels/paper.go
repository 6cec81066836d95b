package labels

import (
	"fmt"
	"strings"

	"inventory/lib/data"
)

// PaperSize is a physical sheet in millimetres
type PaperSize struct {
	Name     string  `json:"name"`
	WidthMM  float64 `json:"width_mm"`
	HeightMM float64 `json:"height_mm"`
}

var (
	PaperA4     = PaperSize{Name: "A4", WidthMM: 210, HeightMM: 297}
	PaperLetter = PaperSize{Name: "Letter", WidthMM: 215.9, HeightMM: 279.4}
	PaperA5     = PaperSize{Name: "A5", WidthMM: 148, HeightMM: 210}
)

// DefaultPaper is used when a request leaves paper_size empty
var DefaultPaper = PaperA4

var paperSizes = []PaperSize{PaperA4, PaperLetter, PaperA5}

// LookupPaperSize matches name case-insensitively against the supported sizes
func LookupPaperSize(name string) (PaperSize, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPaper, nil
	}
	for _, size := range paperSizes {
		if strings.EqualFold(size.Name, name) {
			return size, nil
		}
	}
	return PaperSize{}, fmt.Errorf("%w: unknown paper size %q", data.ErrInvalidConfig, name)
}
