package models

// CreatedResponse returns the id assigned to a newly created row
type CreatedResponse struct {
	ID int64 `json:"id"`
}
