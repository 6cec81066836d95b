package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory/lib/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const syncConfigColumns = `id, sync_type, enabled, config, last_sync_time, created_at, updated_at`

// SyncConfigRepository persists the remote backup settings per backend
type SyncConfigRepository interface {
	// SaveSyncConfig validates and upserts the settings for one backend
	SaveSyncConfig(ctx context.Context, syncType models.SyncType, settings interface{ Validate() error }) (*models.SyncConfig, error)

	GetSyncConfig(ctx context.Context, syncType models.SyncType) (*models.SyncConfig, error)

	// MarkSynced stamps last_sync_time after a successful upload or download
	MarkSynced(ctx context.Context, syncType models.SyncType, at time.Time) error
}

// SyncConfigDao implements SyncConfigRepository
type SyncConfigDao struct {
	Store  *Store
	Logger *logrus.Logger
}

// SaveSyncConfig stores the JSON encoded settings, replacing any earlier row for the backend
func (dao *SyncConfigDao) SaveSyncConfig(ctx context.Context, syncType models.SyncType, settings interface{ Validate() error }) (*models.SyncConfig, error) {
	if !syncType.Valid() {
		return nil, fmt.Errorf("%w: unknown sync type %q", ErrInvalidInput, syncType)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	encoded, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync config: %w", err)
	}

	var saved models.SyncConfig
	err = dao.Store.inTx(ctx, func(tx *sqlx.Tx) error {
		now := timestamp()
		query := dao.Store.rebind(`
			INSERT INTO sync_configs (sync_type, enabled, config, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (sync_type) DO UPDATE
			SET enabled = excluded.enabled, config = excluded.config, updated_at = excluded.updated_at
			RETURNING ` + syncConfigColumns)
		return tx.QueryRowxContext(ctx, query, syncType, true, string(encoded), now, now).StructScan(&saved)
	})
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"sync_type": syncType,
			"error":     err.Error(),
		}).Error("Failed to save sync config")
		return nil, fmt.Errorf("failed to save sync config: %w", err)
	}

	dao.Logger.WithField("sync_type", syncType).Info("Saved sync config")
	return &saved, nil
}

// GetSyncConfig returns the stored settings for a backend, ErrNotFound when unset
func (dao *SyncConfigDao) GetSyncConfig(ctx context.Context, syncType models.SyncType) (*models.SyncConfig, error) {
	var config models.SyncConfig
	query := dao.Store.rebind(`SELECT ` + syncConfigColumns + ` FROM sync_configs WHERE sync_type = ?`)
	err := dao.Store.DB.GetContext(ctx, &config, query, syncType)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: no %s sync config", ErrNotFound, syncType)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"sync_type": syncType,
			"error":     err.Error(),
		}).Error("Failed to get sync config")
		return nil, fmt.Errorf("failed to get sync config: %w", err)
	}
	return &config, nil
}

// MarkSynced records the time of the last successful transfer
func (dao *SyncConfigDao) MarkSynced(ctx context.Context, syncType models.SyncType, at time.Time) error {
	err := dao.Store.inTx(ctx, func(tx *sqlx.Tx) error {
		query := dao.Store.rebind(`UPDATE sync_configs SET last_sync_time = ?, updated_at = ? WHERE sync_type = ?`)
		result, err := tx.ExecContext(ctx, query, at, timestamp(), syncType)
		if err != nil {
			return fmt.Errorf("failed to update last sync time: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w: no %s sync config", ErrNotFound, syncType)
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		dao.Logger.WithFields(logrus.Fields{
			"sync_type": syncType,
			"error":     err.Error(),
		}).Error("Failed to mark sync time")
	}
	return err
}
