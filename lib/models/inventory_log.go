package models

import (
	"errors"
	"time"
)

// OperationType classifies a quantity change
type OperationType string

const (
	OperationAdd    OperationType = "add"
	OperationRemove OperationType = "remove"
	OperationAdjust OperationType = "adjust"
)

// Valid reports whether o is one of the known operation types
func (o OperationType) Valid() bool {
	switch o {
	case OperationAdd, OperationRemove, OperationAdjust:
		return true
	}
	return false
}

// DefaultLogSource tags ledger entries that did not name an origin
const DefaultLogSource = "manual"

// InventoryLog is an immutable audit record of one quantity change
type InventoryLog struct {
	ID             int64         `json:"id" db:"id"`
	ItemID         int64         `json:"item_id" db:"item_id"`
	QuantityChange int           `json:"quantity_change" db:"quantity_change"` // signed delta
	QuantityAfter  int           `json:"quantity_after" db:"quantity_after"`
	OperationType  OperationType `json:"operation_type" db:"operation_type"`
	Source         string        `json:"source" db:"source"`
	Notes          *string       `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// UpdateQuantityRequest represents the payload for a stock movement
type UpdateQuantityRequest struct {
	ItemID        int64         `json:"item_id"`
	Change        int           `json:"change"`
	OperationType OperationType `json:"operation_type"`
	Source        *string       `json:"source,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
}

// Validate checks the movement payload
func (r *UpdateQuantityRequest) Validate() error {
	if !r.OperationType.Valid() {
		return errors.New("operation_type must be one of add, remove, adjust")
	}
	return nil
}

// UpdateQuantityResponse reports the stock level after a movement
type UpdateQuantityResponse struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}
