package labels

import (
	"context"

	"inventory/lib/models"
	"inventory/lib/util"

	"github.com/sirupsen/logrus"
)

const (
	formatPDF = "pdf"
	formatPNG = "png"
)

// Service produces label artifacts ready to return over the API
type Service struct {
	Composer *Composer
	PDF      PDFRenderer
	Image    ImageRenderer
	Cache    ArtifactCache // optional
	Logger   *logrus.Logger
}

// GeneratePDF renders every selected item across as many pages as needed
func (s *Service) GeneratePDF(ctx context.Context, req *models.LabelRequest) (*models.LabelArtifact, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	paper, err := LookupPaperSize(req.PaperSize)
	if err != nil {
		return nil, err
	}

	sheet, err := s.Composer.Compose(ctx, req, paper)
	if err != nil {
		return nil, err
	}

	content, err := s.render(ctx, formatPDF, sheet, func() ([]byte, error) {
		pdf, _, err := s.PDF.Render(sheet)
		return pdf, err
	})
	if err != nil {
		return nil, err
	}

	return &models.LabelArtifact{
		DataURL: util.EncodeDataURL(util.MimePDF, content),
		Pages:   len(sheet.Pages),
		Labels:  sheet.Labels,
	}, nil
}

// GenerateImage renders a single grid. Items beyond the first grid are
// left out and reported as omitted.
func (s *Service) GenerateImage(ctx context.Context, req *models.LabelRequest) (*models.LabelArtifact, error) {
	sheet, err := s.Composer.Compose(ctx, req, DefaultPaper)
	if err != nil {
		return nil, err
	}
	first := sheet.FirstPage()
	omitted := sheet.Labels - first.Labels
	if omitted > 0 {
		s.Logger.WithFields(logrus.Fields{
			"selected": sheet.Labels,
			"rendered": first.Labels,
			"omitted":  omitted,
		}).Warn("Raster labels truncated to one grid")
	}

	content, err := s.render(ctx, formatPNG, first, func() ([]byte, error) {
		return s.Image.Render(first)
	})
	if err != nil {
		return nil, err
	}

	return &models.LabelArtifact{
		DataURL: util.EncodeDataURL(util.MimePNG, content),
		Pages:   1,
		Labels:  first.Labels,
		Omitted: omitted,
	}, nil
}

// render consults the cache before drawing. Cache failures are logged and
// never fail the request.
func (s *Service) render(ctx context.Context, format string, sheet *Sheet, draw func() ([]byte, error)) ([]byte, error) {
	if s.Cache == nil {
		return draw()
	}

	key, err := Fingerprint(format, sheet)
	if err != nil {
		return nil, err
	}

	if cached, ok, err := s.Cache.Get(ctx, key); err != nil {
		s.Logger.WithError(err).Warn("Label cache read failed")
	} else if ok {
		s.Logger.WithField("key", key).Debug("Label cache hit")
		return cached, nil
	}

	content, err := draw()
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, content); err != nil {
		s.Logger.WithError(err).Warn("Label cache write failed")
	}
	return content, nil
}
