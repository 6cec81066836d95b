// Package labels turns an ordered item selection into paginated label
// sheets and renders them as PDF documents or PNG images.
package labels

import (
	"context"
	"fmt"
	"time"

	"inventory/lib/data"
	"inventory/lib/models"
	"inventory/lib/util"

	"github.com/sirupsen/logrus"
)

const (
	MaxColumns = 10
	MaxRows    = 20

	// DefaultUnit is printed when an item has no unit of its own
	DefaultUnit = "pcs"
)

// Label is the resolved content of one grid cell
type Label struct {
	ItemID         int64  `json:"item_id"`
	Name           string `json:"name"`
	Specifications string `json:"specifications,omitempty"`
	Quantity       int    `json:"quantity"`
	Unit           string `json:"unit"`
	LocationName   string `json:"location_name,omitempty"`
	QRCode         string `json:"qr_code,omitempty"`
}

// Sheet is a fully resolved, paginated layout. Every page holds exactly
// Columns*Rows slots in row-major order; nil slots are left blank.
type Sheet struct {
	Paper   PaperSize  `json:"paper"`
	Columns int        `json:"columns"`
	Rows    int        `json:"rows"`
	Pages   [][]*Label `json:"pages"`
	Labels  int        `json:"labels"`

	// Stamp is the newest updated_at among the resolved rows
	Stamp time.Time `json:"stamp"`
}

// Capacity is the number of labels one page holds
func (s *Sheet) Capacity() int {
	return s.Columns * s.Rows
}

// FirstPage returns a copy of the sheet cut down to its first page
func (s *Sheet) FirstPage() *Sheet {
	first := *s
	if len(s.Pages) > 1 {
		first.Pages = s.Pages[:1]
	}
	first.Labels = 0
	for _, label := range first.Pages[0] {
		if label != nil {
			first.Labels++
		}
	}
	return &first
}

// ItemReader is the slice of the ledger the composer needs
type ItemReader interface {
	GetItemByID(ctx context.Context, itemID int64) (*models.Item, error)
}

// LocationReader is the slice of the hierarchy store the composer needs
type LocationReader interface {
	GetLocationByID(ctx context.Context, locationID int64) (*models.Location, error)
}

// QRAssigner assigns a location's code if it has none yet
type QRAssigner interface {
	AssignQRCode(ctx context.Context, locationID int64) (string, error)
}

// Composer resolves a LabelRequest against current store state
type Composer struct {
	Items     ItemReader
	Locations LocationReader
	QRCodes   QRAssigner
	Logger    *logrus.Logger
}

// ValidateRequest checks the selection and grid before anything is resolved
func ValidateRequest(req *models.LabelRequest) error {
	if len(req.ItemIDs) == 0 {
		return fmt.Errorf("%w: no items selected", data.ErrEmptySelection)
	}
	return ValidateGrid(req.Columns, req.Rows)
}

// ValidateGrid checks the column and row counts of a request
func ValidateGrid(columns, rows int) error {
	if columns < 1 || columns > MaxColumns {
		return fmt.Errorf("%w: columns must be between 1 and %d, got %d", data.ErrInvalidConfig, MaxColumns, columns)
	}
	if rows < 1 || rows > MaxRows {
		return fmt.Errorf("%w: rows must be between 1 and %d, got %d", data.ErrInvalidConfig, MaxRows, rows)
	}
	return nil
}

// Compose resolves every requested item and lays the labels out over as many
// pages as needed. Any unresolvable id fails the whole request.
func (c *Composer) Compose(ctx context.Context, req *models.LabelRequest, paper PaperSize) (*Sheet, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	sheet := &Sheet{Paper: paper, Columns: req.Columns, Rows: req.Rows}
	locations := map[int64]*models.Location{}
	labels := make([]*Label, 0, len(req.ItemIDs))

	for _, itemID := range req.ItemIDs {
		item, err := c.Items.GetItemByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		sheet.touch(item.UpdatedAt)

		label := &Label{
			ItemID:         item.ID,
			Name:           item.Name,
			Specifications: util.StringValue(item.Specifications),
			Quantity:       item.Quantity,
			Unit:           util.StringOrDefault(item.Unit, DefaultUnit),
		}

		if item.LocationID != nil {
			location, err := c.location(ctx, locations, *item.LocationID)
			if err != nil {
				return nil, err
			}
			sheet.touch(location.UpdatedAt)
			label.LocationName = location.Name
			label.QRCode = util.StringValue(location.QRCodeID)
		}

		labels = append(labels, label)
	}

	sheet.Labels = len(labels)
	sheet.Pages = paginate(labels, sheet.Capacity())

	c.Logger.WithFields(logrus.Fields{
		"labels":  sheet.Labels,
		"pages":   len(sheet.Pages),
		"columns": sheet.Columns,
		"rows":    sheet.Rows,
		"paper":   paper.Name,
	}).Debug("Composed label sheet")

	return sheet, nil
}

// location loads a location once per compose and makes sure it carries a code.
// After a fresh assignment the row is re-read so the sheet reflects the stored state.
func (c *Composer) location(ctx context.Context, cache map[int64]*models.Location, locationID int64) (*models.Location, error) {
	if location, ok := cache[locationID]; ok {
		return location, nil
	}

	location, err := c.Locations.GetLocationByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if location.QRCodeID == nil {
		if _, err := c.QRCodes.AssignQRCode(ctx, locationID); err != nil {
			return nil, err
		}
		if location, err = c.Locations.GetLocationByID(ctx, locationID); err != nil {
			return nil, err
		}
	}

	cache[locationID] = location
	return location, nil
}

func (s *Sheet) touch(t time.Time) {
	if t.After(s.Stamp) {
		s.Stamp = t
	}
}

// paginate splits labels into pages of exactly capacity slots, padding the
// last page with nil cells
func paginate(labels []*Label, capacity int) [][]*Label {
	pageCount := (len(labels) + capacity - 1) / capacity
	pages := make([][]*Label, pageCount)
	for p := range pages {
		page := make([]*Label, capacity)
		copy(page, labels[p*capacity:min(len(labels), (p+1)*capacity)])
		pages[p] = page
	}
	return pages
}
