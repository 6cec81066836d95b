package models

import (
	"errors"
	"strings"
	"time"
)

// LocationType is the closed set of storage unit kinds
type LocationType string

const (
	LocationTypeShelf       LocationType = "shelf"
	LocationTypeBox         LocationType = "box"
	LocationTypeCompartment LocationType = "compartment"
)

// Valid reports whether t is one of the known location types
func (t LocationType) Valid() bool {
	switch t {
	case LocationTypeShelf, LocationTypeBox, LocationTypeCompartment:
		return true
	}
	return false
}

// Location represents a physical storage unit in the hierarchy
// Examples: a shelf, a box on that shelf, a compartment inside the box
type Location struct {
	ID           int64        `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	ParentID     *int64       `json:"parent_id" db:"parent_id"` // nil for roots
	LocationType LocationType `json:"location_type" db:"location_type"`
	Description  *string      `json:"description,omitempty" db:"description"`
	QRCodeID     *string      `json:"qr_code_id,omitempty" db:"qr_code_id"` // assigned lazily, immutable once set
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// LocationNode is a location with its children attached, used for tree views
type LocationNode struct {
	Location
	Children []*LocationNode `json:"children,omitempty"`
}

// CreateLocationRequest represents the request payload for creating a new location
type CreateLocationRequest struct {
	Name         string       `json:"name"`
	ParentID     *int64       `json:"parent_id,omitempty"`
	LocationType LocationType `json:"location_type"`
	Description  *string      `json:"description,omitempty"`
}

// Validate checks the fields that do not need the store
func (r *CreateLocationRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if !r.LocationType.Valid() {
		return errors.New("location_type must be one of shelf, box, compartment")
	}
	return nil
}

// UpdateLocationRequest carries the mutable fields of a location.
// Parent and type are fixed at creation.
type UpdateLocationRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Validate checks the update payload
func (r *UpdateLocationRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// DeleteLocationResult describes what a cascade delete removed
type DeleteLocationResult struct {
	DeletedLocationIDs []int64 `json:"deleted_location_ids"`
	DetachedItems      int64   `json:"detached_items"` // items whose location_id was cleared
}

// LocationListResponse represents the response for listing locations
type LocationListResponse struct {
	Locations []Location `json:"locations"`
	Total     int        `json:"total"`
}
