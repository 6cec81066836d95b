// Package testutil builds real, migrated stores for package tests.
package testutil

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"inventory/lib/clients"
	"inventory/lib/data"
	"inventory/lib/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// NewTestLogger returns a logger that discards output
func NewTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// NewTestStore opens a migrated SQLite store in the test's temp dir
func NewTestStore(t *testing.T) *data.Store {
	t.Helper()

	ctx := context.Background()
	db, err := clients.NewSQLiteClient(ctx, filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)

	store := data.NewStore(db)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { store.Close() })
	return store
}

// Repositories bundles every DAO over one store
type Repositories struct {
	Store       *data.Store
	Locations   *data.LocationDao
	Items       *data.ItemDao
	QRCodes     *data.QRCodeDao
	Snapshots   *data.SnapshotDao
	SyncConfigs *data.SyncConfigDao
}

// NewRepositories wires the DAOs against a fresh test store
func NewRepositories(t *testing.T) *Repositories {
	t.Helper()

	store := NewTestStore(t)
	logger := NewTestLogger()
	qrCodes := &data.QRCodeDao{Store: store, Logger: logger}
	return &Repositories{
		Store:       store,
		Locations:   &data.LocationDao{Store: store, QRCodes: qrCodes, Logger: logger},
		Items:       &data.ItemDao{Store: store, Logger: logger},
		QRCodes:     qrCodes,
		Snapshots:   &data.SnapshotDao{Store: store, Logger: logger},
		SyncConfigs: &data.SyncConfigDao{Store: store, Logger: logger},
	}
}

// MustCreateLocation inserts a location and returns its id
func (r *Repositories) MustCreateLocation(t *testing.T, name string, parentID *int64, locationType models.LocationType) int64 {
	t.Helper()
	id, err := r.Locations.CreateLocation(context.Background(), &models.CreateLocationRequest{
		Name:         name,
		ParentID:     parentID,
		LocationType: locationType,
	})
	require.NoError(t, err)
	return id
}

// MustCreateItem inserts an item and returns its id
func (r *Repositories) MustCreateItem(t *testing.T, input *models.ItemInput) int64 {
	t.Helper()
	id, err := r.Items.CreateItem(context.Background(), input)
	require.NoError(t, err)
	return id
}

// Int64 returns a pointer to v
func Int64(v int64) *int64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }
