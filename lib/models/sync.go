package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports field errors by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// SyncType selects a remote backup backend
type SyncType string

const (
	SyncTypeWebDAV SyncType = "webdav"
	SyncTypeS3     SyncType = "s3"
)

// Valid reports whether t is one of the supported backends
func (t SyncType) Valid() bool {
	switch t {
	case SyncTypeWebDAV, SyncTypeS3:
		return true
	}
	return false
}

// SyncConfig is the persisted configuration for one backend
type SyncConfig struct {
	ID           int64      `json:"id" db:"id"`
	SyncType     SyncType   `json:"sync_type" db:"sync_type"`
	Enabled      bool       `json:"enabled" db:"enabled"`
	Config       string     `json:"config" db:"config"` // JSON encoded WebDAVConfig or S3Config
	LastSyncTime *time.Time `json:"last_sync_time,omitempty" db:"last_sync_time"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// SyncStatus is the public view of a SyncConfig; stored credentials are never returned
type SyncStatus struct {
	SyncType     SyncType   `json:"sync_type"`
	Enabled      bool       `json:"enabled"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Status strips the stored settings from c
func (c *SyncConfig) Status() SyncStatus {
	return SyncStatus{
		SyncType:     c.SyncType,
		Enabled:      c.Enabled,
		LastSyncTime: c.LastSyncTime,
		UpdatedAt:    c.UpdatedAt,
	}
}

// WebDAVConfig holds the connection settings for a WebDAV server
type WebDAVConfig struct {
	URL      string `json:"url" validate:"required,url"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Path     string `json:"path"`
}

// Validate checks that the required fields are present
func (c *WebDAVConfig) Validate() error {
	return validateStruct(c)
}

// S3Config holds the bucket settings for an S3 compatible store
type S3Config struct {
	Bucket    string  `json:"bucket" validate:"required"`
	Region    string  `json:"region" validate:"required"`
	AccessKey string  `json:"access_key" validate:"required"`
	SecretKey string  `json:"secret_key" validate:"required"`
	Endpoint  *string `json:"endpoint,omitempty" validate:"omitempty,url"`
}

// Validate checks that the required fields are present
func (c *S3Config) Validate() error {
	return validateStruct(c)
}

// FieldErrors lists the settings fields that failed validation
type FieldErrors struct {
	Problems []string
}

func (e *FieldErrors) Error() string {
	return "invalid fields: " + strings.Join(e.Problems, ", ")
}

// validateStruct runs the tag rules and collects the failures as FieldErrors
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return &FieldErrors{Problems: problems}
}

// SyncRequest names the backend for an upload or download
type SyncRequest struct {
	SyncType SyncType `json:"sync_type"`
}

// SyncResult reports the outcome of a sync operation
type SyncResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"` // RFC3339
}

// SnapshotVersion is the current backup format version
const SnapshotVersion = 1

// Snapshot is the serialisable representation of the whole store
type Snapshot struct {
	Version       int            `json:"version"`
	ExportedAt    time.Time      `json:"exported_at"`
	Locations     []Location     `json:"locations"`
	Items         []Item         `json:"items"`
	InventoryLogs []InventoryLog `json:"inventory_logs"`
}
