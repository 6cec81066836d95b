// Package backup uploads and restores whole-store snapshots through a
// configured remote backend.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory/lib/constants"
	"inventory/lib/data"
	"inventory/lib/models"

	"github.com/sirupsen/logrus"
)

// Service runs sync_upload and sync_download
type Service struct {
	Snapshots   data.SnapshotRepository
	SyncConfigs data.SyncConfigRepository
	Backends    BackendFactory
	ObjectKey   string
	Logger      *logrus.Logger

	// Now is overridable for tests
	Now func() time.Time
}

// Upload exports the store and writes it to the configured backend
func (s *Service) Upload(ctx context.Context, syncType models.SyncType) (*models.SyncResult, error) {
	backend, err := s.backend(ctx, syncType)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.Snapshots.ExportSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	content, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := s.objectKey()
	if err := backend.Upload(ctx, key, content); err != nil {
		s.Logger.WithFields(logrus.Fields{
			"sync_type": syncType,
			"key":       key,
			"error":     err.Error(),
		}).Error("Failed to upload snapshot")
		return nil, err
	}

	return s.finish(ctx, syncType, fmt.Sprintf("Uploaded %d locations, %d items and %d log entries",
		len(snapshot.Locations), len(snapshot.Items), len(snapshot.InventoryLogs)))
}

// Download fetches the remote snapshot and replaces the store with it
func (s *Service) Download(ctx context.Context, syncType models.SyncType) (*models.SyncResult, error) {
	backend, err := s.backend(ctx, syncType)
	if err != nil {
		return nil, err
	}

	key := s.objectKey()
	content, err := backend.Download(ctx, key)
	if err != nil {
		s.Logger.WithFields(logrus.Fields{
			"sync_type": syncType,
			"key":       key,
			"error":     err.Error(),
		}).Error("Failed to download snapshot")
		return nil, err
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(content, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: downloaded snapshot is not valid JSON: %v", data.ErrIntegrity, err)
	}
	if err := s.Snapshots.ImportSnapshot(ctx, &snapshot); err != nil {
		return nil, err
	}

	return s.finish(ctx, syncType, fmt.Sprintf("Restored %d locations, %d items and %d log entries",
		len(snapshot.Locations), len(snapshot.Items), len(snapshot.InventoryLogs)))
}

func (s *Service) backend(ctx context.Context, syncType models.SyncType) (Backend, error) {
	if !syncType.Valid() {
		return nil, fmt.Errorf("%w: unknown sync type %q", data.ErrInvalidInput, syncType)
	}
	config, err := s.SyncConfigs.GetSyncConfig(ctx, syncType)
	if errors.Is(err, data.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s sync is not configured", data.ErrInvalidConfig, syncType)
	}
	if err != nil {
		return nil, err
	}
	if !config.Enabled {
		return nil, fmt.Errorf("%w: %s sync is disabled", data.ErrInvalidConfig, syncType)
	}
	return s.Backends(ctx, config)
}

func (s *Service) finish(ctx context.Context, syncType models.SyncType, message string) (*models.SyncResult, error) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}
	if err := s.SyncConfigs.MarkSynced(ctx, syncType, now); err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"sync_type": syncType,
		"message":   message,
	}).Info("Sync completed")

	return &models.SyncResult{
		Success:   true,
		Message:   message,
		Timestamp: now.Format(time.RFC3339),
	}, nil
}

func (s *Service) objectKey() string {
	if s.ObjectKey != "" {
		return s.ObjectKey
	}
	return constants.DEFAULT_BACKUP_OBJECT_KEY
}
