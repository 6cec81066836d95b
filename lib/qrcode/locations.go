package qrcode

import (
	"context"
	"fmt"

	"inventory/lib/models"
	"inventory/lib/util"

	"github.com/sirupsen/logrus"
)

// LocationStore is what LocationCodes needs from the hierarchy and identity stores
type LocationStore interface {
	GetLocationByID(ctx context.Context, locationID int64) (*models.Location, error)
	AssignQRCode(ctx context.Context, locationID int64) (string, error)
}

// LocationCodes assigns codes on demand and renders them for display
type LocationCodes struct {
	Store  LocationStore
	Size   int
	Logger *logrus.Logger
}

// Generate assigns the location's code if it has none and renders it
func (s *LocationCodes) Generate(ctx context.Context, locationID int64) (*models.QRCodeResult, error) {
	location, err := s.Store.GetLocationByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, location)
}

// GenerateBatch renders codes for every id in request order. All ids are
// resolved before any code is assigned, so an unknown id changes nothing.
func (s *LocationCodes) GenerateBatch(ctx context.Context, locationIDs []int64) ([]models.QRCodeResult, error) {
	locations := make([]*models.Location, 0, len(locationIDs))
	for _, id := range locationIDs {
		location, err := s.Store.GetLocationByID(ctx, id)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}

	results := make([]models.QRCodeResult, 0, len(locations))
	for _, location := range locations {
		result, err := s.render(ctx, location)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	s.Logger.WithField("count", len(results)).Debug("Rendered QR code batch")
	return results, nil
}

func (s *LocationCodes) render(ctx context.Context, location *models.Location) (*models.QRCodeResult, error) {
	code := util.StringValue(location.QRCodeID)
	if code == "" {
		assigned, err := s.Store.AssignQRCode(ctx, location.ID)
		if err != nil {
			return nil, err
		}
		code = assigned
	}

	size := s.Size
	if size <= 0 {
		size = DefaultSize
	}
	png, err := Render(code, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render code for location %d: %w", location.ID, err)
	}

	return &models.QRCodeResult{
		ID:     location.ID,
		Code:   code,
		QRData: util.EncodeDataURL(util.MimePNG, png),
		Name:   location.Name,
	}, nil
}
