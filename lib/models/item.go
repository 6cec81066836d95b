package models

import (
	"errors"
	"strings"
	"time"
)

// Item is a stocked good tracked by quantity, optionally placed in a location
type Item struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Category       *string   `json:"category,omitempty" db:"category"`
	Specifications *string   `json:"specifications,omitempty" db:"specifications"`
	Quantity       int       `json:"quantity" db:"quantity"`
	Unit           *string   `json:"unit,omitempty" db:"unit"`
	LocationID     *int64    `json:"location_id,omitempty" db:"location_id"`
	MinQuantity    *int      `json:"min_quantity,omitempty" db:"min_quantity"` // reorder threshold
	Notes          *string   `json:"notes,omitempty" db:"notes"`
	ImagePath      *string   `json:"image_path,omitempty" db:"image_path"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// IsLowStock reports whether the item is at or below its reorder threshold.
// Items without a threshold are never low.
func (i *Item) IsLowStock() bool {
	return i.MinQuantity != nil && i.Quantity <= *i.MinQuantity
}

// ItemInput is the create/update payload for items.
// Quantity is only honoured on create; afterwards stock moves through the ledger.
type ItemInput struct {
	Name           string  `json:"name"`
	Category       *string `json:"category,omitempty"`
	Specifications *string `json:"specifications,omitempty"`
	Quantity       int     `json:"quantity"`
	Unit           *string `json:"unit,omitempty"`
	LocationID     *int64  `json:"location_id,omitempty"`
	MinQuantity    *int    `json:"min_quantity,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	ImagePath      *string `json:"image_path,omitempty"`
}

// Validate checks the fields that do not need the store
func (in *ItemInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	if in.MinQuantity != nil && *in.MinQuantity < 0 {
		return errors.New("min_quantity cannot be negative")
	}
	return nil
}

// ItemFilter is a conjunction of optional conditions; the zero value matches everything
type ItemFilter struct {
	Category   *string `json:"category,omitempty"`
	LocationID *int64  `json:"location_id,omitempty"`
	Search     *string `json:"search,omitempty"` // case-insensitive substring over name and specifications
	LowStock   bool    `json:"low_stock,omitempty"`
}

// ItemListResponse represents the response for listing items
type ItemListResponse struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// DashboardStats summarises the store for the overview page
type DashboardStats struct {
	TotalLocations int64 `json:"total_locations" db:"total_locations"`
	TotalItems     int64 `json:"total_items" db:"total_items"`
	TotalQuantity  int64 `json:"total_quantity" db:"total_quantity"`
	LowStockItems  int64 `json:"low_stock_items" db:"low_stock_items"`
}
