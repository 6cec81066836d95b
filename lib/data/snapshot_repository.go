package data

import (
	"context"
	"fmt"

	"inventory/lib/constants"
	"inventory/lib/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// SnapshotRepository serialises and restores the full persisted state
type SnapshotRepository interface {
	ExportSnapshot(ctx context.Context) (*models.Snapshot, error)
	ImportSnapshot(ctx context.Context, snapshot *models.Snapshot) error
}

// SnapshotDao implements SnapshotRepository.
// Both directions hold the store exclusively for their whole duration.
type SnapshotDao struct {
	Store  *Store
	Logger *logrus.Logger
}

// ExportSnapshot reads every location, item and ledger entry in one transaction
func (dao *SnapshotDao) ExportSnapshot(ctx context.Context) (*models.Snapshot, error) {
	snapshot := &models.Snapshot{
		Version:       models.SnapshotVersion,
		ExportedAt:    timestamp(),
		Locations:     []models.Location{},
		Items:         []models.Item{},
		InventoryLogs: []models.InventoryLog{},
	}

	err := dao.Store.inExclusiveTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &snapshot.Locations, `SELECT `+locationColumns+` FROM locations ORDER BY id`); err != nil {
			return fmt.Errorf("failed to export locations: %w", err)
		}
		if err := tx.SelectContext(ctx, &snapshot.Items, `SELECT `+itemColumns+` FROM items ORDER BY id`); err != nil {
			return fmt.Errorf("failed to export items: %w", err)
		}
		if err := tx.SelectContext(ctx, &snapshot.InventoryLogs, `SELECT `+logColumns+` FROM inventory_log ORDER BY id`); err != nil {
			return fmt.Errorf("failed to export inventory log: %w", err)
		}
		return nil
	})
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to export snapshot")
		return nil, err
	}

	dao.Logger.WithFields(logrus.Fields{
		"locations":      len(snapshot.Locations),
		"items":          len(snapshot.Items),
		"inventory_logs": len(snapshot.InventoryLogs),
	}).Info("Exported snapshot")

	return snapshot, nil
}

// ImportSnapshot validates the snapshot and replaces the store contents with it
func (dao *SnapshotDao) ImportSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	tree, err := validateSnapshot(snapshot)
	if err != nil {
		dao.Logger.WithError(err).Warn("Rejected snapshot")
		return err
	}

	locationsByID := make(map[int64]*models.Location, len(snapshot.Locations))
	for i := range snapshot.Locations {
		locationsByID[snapshot.Locations[i].ID] = &snapshot.Locations[i]
	}

	err = dao.Store.inExclusiveTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"inventory_log", "items", "locations"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		insertLocation := dao.Store.rebind(`
			INSERT INTO locations (` + locationColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		for _, id := range tree.topological() {
			l := locationsByID[id]
			if _, err := tx.ExecContext(ctx, insertLocation,
				l.ID, l.Name, l.ParentID, l.LocationType, l.Description, l.QRCodeID, l.CreatedAt, l.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to restore location %d: %w", l.ID, err)
			}
		}

		insertItem := dao.Store.rebind(`
			INSERT INTO items (` + itemColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		for _, i := range snapshot.Items {
			if _, err := tx.ExecContext(ctx, insertItem,
				i.ID, i.Name, i.Category, i.Specifications, i.Quantity, i.Unit, i.LocationID,
				i.MinQuantity, i.Notes, i.ImagePath, i.CreatedAt, i.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to restore item %d: %w", i.ID, err)
			}
		}

		insertLog := dao.Store.rebind(`
			INSERT INTO inventory_log (` + logColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		for _, e := range snapshot.InventoryLogs {
			if _, err := tx.ExecContext(ctx, insertLog,
				e.ID, e.ItemID, e.QuantityChange, e.QuantityAfter, e.OperationType, e.Source, e.Notes, e.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to restore inventory log %d: %w", e.ID, err)
			}
		}

		return dao.resetSequences(ctx, tx)
	})
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to import snapshot")
		return err
	}

	dao.Logger.WithFields(logrus.Fields{
		"locations":      len(snapshot.Locations),
		"items":          len(snapshot.Items),
		"inventory_logs": len(snapshot.InventoryLogs),
	}).Info("Imported snapshot")

	return nil
}

// resetSequences moves Postgres serial counters past the restored ids.
// SQLite AUTOINCREMENT already continues from the highest stored id.
func (dao *SnapshotDao) resetSequences(ctx context.Context, tx *sqlx.Tx) error {
	if dao.Store.Dialect == constants.SQLITE_DRIVER_NAME {
		return nil
	}
	for _, table := range []string{"locations", "items", "inventory_log"} {
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s`,
			table, table,
		)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}

// ValidateSnapshot checks the structural invariants a snapshot must satisfy
// before it may replace the store
func ValidateSnapshot(snapshot *models.Snapshot) error {
	_, err := validateSnapshot(snapshot)
	return err
}

func validateSnapshot(snapshot *models.Snapshot) (*locationTree, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("%w: snapshot is empty", ErrInvalidInput)
	}
	if snapshot.Version != models.SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d", ErrInvalidInput, snapshot.Version)
	}

	edges := make([]locationEdge, 0, len(snapshot.Locations))
	codes := make(map[string]int64)
	seen := make(map[int64]bool, len(snapshot.Locations))
	for _, l := range snapshot.Locations {
		if seen[l.ID] {
			return nil, fmt.Errorf("%w: duplicate location id %d", ErrIntegrity, l.ID)
		}
		seen[l.ID] = true
		if !l.LocationType.Valid() {
			return nil, fmt.Errorf("%w: location %d has unknown type %q", ErrIntegrity, l.ID, l.LocationType)
		}
		if l.QRCodeID != nil {
			if other, dup := codes[*l.QRCodeID]; dup {
				return nil, fmt.Errorf("%w: qr code %q shared by locations %d and %d", ErrIntegrity, *l.QRCodeID, other, l.ID)
			}
			codes[*l.QRCodeID] = l.ID
		}
		edges = append(edges, locationEdge{ID: l.ID, ParentID: l.ParentID})
	}

	tree := newLocationTree(edges)
	if err := tree.validate(); err != nil {
		return nil, err
	}

	items := make(map[int64]bool, len(snapshot.Items))
	for _, i := range snapshot.Items {
		if items[i.ID] {
			return nil, fmt.Errorf("%w: duplicate item id %d", ErrIntegrity, i.ID)
		}
		items[i.ID] = true
		if i.Quantity < 0 {
			return nil, fmt.Errorf("%w: item %d has negative quantity", ErrIntegrity, i.ID)
		}
		if i.LocationID != nil && !tree.has(*i.LocationID) {
			return nil, fmt.Errorf("%w: item %d references missing location %d", ErrIntegrity, i.ID, *i.LocationID)
		}
	}

	// Ledger entries may outlive their item, so item_id is not checked here
	for _, e := range snapshot.InventoryLogs {
		if e.QuantityAfter < 0 {
			return nil, fmt.Errorf("%w: inventory log %d has negative quantity_after", ErrIntegrity, e.ID)
		}
		if !e.OperationType.Valid() {
			return nil, fmt.Errorf("%w: inventory log %d has unknown operation %q", ErrIntegrity, e.ID, e.OperationType)
		}
	}

	return tree, nil
}
