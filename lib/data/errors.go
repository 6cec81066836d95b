package data

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a referenced id or code does not resolve
	ErrNotFound = errors.New("not found")

	// ErrInvalidParent is returned when a new location names a parent that does not exist
	ErrInvalidParent = errors.New("invalid parent")

	// ErrInvalidConfig is returned for unusable label or sync configuration
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidQuantity is returned when a stock movement would drive quantity below zero
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrIntegrity is returned for structural violations such as a cycle in the location tree
	ErrIntegrity = errors.New("integrity error")

	// ErrEmptySelection is returned when a label sheet is requested with no items
	ErrEmptySelection = errors.New("empty selection")

	// ErrInvalidInput is returned for malformed request fields
	ErrInvalidInput = errors.New("invalid input")
)

// isUniqueViolation recognises unique constraint failures from both supported drivers
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
