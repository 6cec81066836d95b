package models

// QRCodeResult pairs a location with its rendered QR image
type QRCodeResult struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	QRData string `json:"qr_data"` // data URL of a PNG
	Name   string `json:"name"`
}

// BatchQRRequest represents the payload for rendering several location codes
type BatchQRRequest struct {
	LocationIDs []int64 `json:"location_ids"`
}

// LabelRequest is an explicit label selection: ordered item ids plus grid config
type LabelRequest struct {
	ItemIDs   []int64 `json:"item_ids"`
	PaperSize string  `json:"paper_size,omitempty"` // ignored by the raster path
	Columns   int     `json:"columns"`
	Rows      int     `json:"rows"`
}

// LabelArtifact is a rendered label sheet ready to cross the API boundary
type LabelArtifact struct {
	DataURL string `json:"data_url"`
	Pages   int    `json:"pages"`
	Labels  int    `json:"labels"`  // labels actually drawn
	Omitted int    `json:"omitted"` // selected items left out (raster path only)
}
