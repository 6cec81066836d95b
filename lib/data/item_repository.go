package data

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory/lib/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const itemColumns = `id, name, category, specifications, quantity, unit, location_id, min_quantity, notes, image_path, created_at, updated_at`

const logColumns = `id, item_id, quantity_change, quantity_after, operation_type, source, notes, created_at`

// ItemRepository defines the interface for item CRUD and the stock ledger
type ItemRepository interface {
	CreateItem(ctx context.Context, input *models.ItemInput) (int64, error)
	GetItems(ctx context.Context, filter *models.ItemFilter) ([]models.Item, error)
	GetItemByID(ctx context.Context, itemID int64) (*models.Item, error)

	// UpdateItem changes every field except quantity
	UpdateItem(ctx context.Context, itemID int64, input *models.ItemInput) (*models.Item, error)
	DeleteItem(ctx context.Context, itemID int64) error

	// AdjustQuantity is the only path that changes quantity; it writes the
	// item and one ledger entry together
	AdjustQuantity(ctx context.Context, req *models.UpdateQuantityRequest) (int, error)

	GetInventoryLogs(ctx context.Context, itemID int64) ([]models.InventoryLog, error)
	QuantityAt(ctx context.Context, itemID int64, at time.Time) (int, error)
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// ItemDao implements ItemRepository
type ItemDao struct {
	Store  *Store
	Logger *logrus.Logger
}

// CreateItem inserts the item and, for a non-zero opening balance, its first ledger entry
func (dao *ItemDao) CreateItem(ctx context.Context, input *models.ItemInput) (int64, error) {
	if err := input.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Quantity < 0 {
		return 0, fmt.Errorf("%w: initial quantity %d is negative", ErrInvalidQuantity, input.Quantity)
	}

	now := timestamp()
	var itemID int64
	err := dao.Store.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := dao.checkLocation(ctx, tx, input.LocationID); err != nil {
			return err
		}

		query := dao.Store.rebind(`
			INSERT INTO items (name, category, specifications, quantity, unit, location_id,
			                   min_quantity, notes, image_path, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		err := tx.QueryRowxContext(ctx, query,
			input.Name, input.Category, input.Specifications, input.Quantity, input.Unit, input.LocationID,
			input.MinQuantity, input.Notes, input.ImagePath, now, now,
		).Scan(&itemID)
		if err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}

		if input.Quantity == 0 {
			return nil
		}
		return dao.appendLog(ctx, tx, &models.InventoryLog{
			ItemID:         itemID,
			QuantityChange: input.Quantity,
			QuantityAfter:  input.Quantity,
			OperationType:  models.OperationAdd,
			Source:         models.DefaultLogSource,
			CreatedAt:      now,
		})
	})
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"name":        input.Name,
			"location_id": input.LocationID,
			"error":       err.Error(),
		}).Error("Failed to create item")
		return 0, err
	}

	dao.Logger.WithFields(logrus.Fields{
		"item_id":  itemID,
		"name":     input.Name,
		"quantity": input.Quantity,
	}).Info("Successfully created item")

	return itemID, nil
}

// GetItems returns the items matching every condition set on filter
func (dao *ItemDao) GetItems(ctx context.Context, filter *models.ItemFilter) ([]models.Item, error) {
	var conditions []string
	var args []interface{}

	if filter != nil {
		if filter.Category != nil {
			conditions = append(conditions, "category = ?")
			args = append(args, *filter.Category)
		}
		if filter.LocationID != nil {
			conditions = append(conditions, "location_id = ?")
			args = append(args, *filter.LocationID)
		}
		if filter.Search != nil && *filter.Search != "" {
			pattern := "%" + escapeLike(strings.ToLower(*filter.Search)) + "%"
			conditions = append(conditions, "("+dao.Store.lower("name")+` LIKE ? ESCAPE '\' OR `+
				dao.Store.lower("COALESCE(specifications, '')")+` LIKE ? ESCAPE '\')`)
			args = append(args, pattern, pattern)
		}
		if filter.LowStock {
			conditions = append(conditions, "(min_quantity IS NOT NULL AND quantity <= min_quantity)")
		}
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC, id ASC"

	items := []models.Item{}
	if err := dao.Store.DB.SelectContext(ctx, &items, dao.Store.rebind(query), args...); err != nil {
		dao.Logger.WithError(err).Error("Failed to query items")
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"count":      len(items),
		"conditions": len(conditions),
	}).Debug("Successfully retrieved items")
	return items, nil
}

// GetItemByID retrieves a specific item by ID
func (dao *ItemDao) GetItemByID(ctx context.Context, itemID int64) (*models.Item, error) {
	item, err := getItem(ctx, dao.Store, dao.Store.DB, itemID)
	if err != nil {
		entry := dao.Logger.WithFields(logrus.Fields{
			"item_id": itemID,
			"error":   err.Error(),
		})
		if errors.Is(err, ErrNotFound) {
			entry.Warn("Item not found")
		} else {
			entry.Error("Failed to get item")
		}
		return nil, err
	}
	return item, nil
}

// UpdateItem overwrites the descriptive fields; quantity is left to AdjustQuantity
func (dao *ItemDao) UpdateItem(ctx context.Context, itemID int64, input *models.ItemInput) (*models.Item, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var updated *models.Item
	err := dao.Store.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := dao.checkLocation(ctx, tx, input.LocationID); err != nil {
			return err
		}

		query := dao.Store.rebind(`
			UPDATE items
			SET name = ?, category = ?, specifications = ?, unit = ?, location_id = ?,
			    min_quantity = ?, notes = ?, image_path = ?, updated_at = ?
			WHERE id = ?
		`)
		result, err := tx.ExecContext(ctx, query,
			input.Name, input.Category, input.Specifications, input.Unit, input.LocationID,
			input.MinQuantity, input.Notes, input.ImagePath, timestamp(), itemID,
		)
		if err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w: item %d", ErrNotFound, itemID)
		}

		updated, err = getItem(ctx, dao.Store, tx, itemID)
		return err
	})
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"item_id": itemID,
			"error":   err.Error(),
		}).Error("Failed to update item")
		return nil, err
	}

	dao.Logger.WithField("item_id", itemID).Info("Successfully updated item")
	return updated, nil
}

// DeleteItem removes the item row; its ledger entries stay as history
func (dao *ItemDao) DeleteItem(ctx context.Context, itemID int64) error {
	err := dao.Store.inTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, dao.Store.rebind(`DELETE FROM items WHERE id = ?`), itemID)
		if err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w: item %d", ErrNotFound, itemID)
		}
		return nil
	})
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"item_id": itemID,
			"error":   err.Error(),
		}).Error("Failed to delete item")
		return err
	}

	dao.Logger.WithField("item_id", itemID).Info("Successfully deleted item")
	return nil
}

// AdjustQuantity applies a signed delta and records it in the ledger.
// The guard lives in the UPDATE itself so concurrent movements cannot
// race past zero.
func (dao *ItemDao) AdjustQuantity(ctx context.Context, req *models.UpdateQuantityRequest) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	source := models.DefaultLogSource
	if req.Source != nil && strings.TrimSpace(*req.Source) != "" {
		source = *req.Source
	}

	var newQuantity int
	err := dao.Store.inTx(ctx, func(tx *sqlx.Tx) error {
		now := timestamp()
		query := dao.Store.rebind(`
			UPDATE items SET quantity = quantity + ?, updated_at = ?
			WHERE id = ? AND quantity + ? >= 0
			RETURNING quantity
		`)
		err := tx.QueryRowxContext(ctx, query, req.Change, now, req.ItemID, req.Change).Scan(&newQuantity)
		if isNoRows(err) {
			exists, existsErr := dao.Store.exists(ctx, tx, "items", req.ItemID)
			if existsErr != nil {
				return existsErr
			}
			if !exists {
				return fmt.Errorf("%w: item %d", ErrNotFound, req.ItemID)
			}
			return fmt.Errorf("%w: change %d would make stock negative", ErrInvalidQuantity, req.Change)
		}
		if err != nil {
			return fmt.Errorf("failed to update quantity: %w", err)
		}

		return dao.appendLog(ctx, tx, &models.InventoryLog{
			ItemID:         req.ItemID,
			QuantityChange: req.Change,
			QuantityAfter:  newQuantity,
			OperationType:  req.OperationType,
			Source:         source,
			Notes:          req.Notes,
			CreatedAt:      now,
		})
	})
	if err != nil {
		entry := dao.Logger.WithFields(logrus.Fields{
			"item_id": req.ItemID,
			"change":  req.Change,
			"error":   err.Error(),
		})
		if errors.Is(err, ErrInvalidQuantity) || errors.Is(err, ErrNotFound) {
			entry.Warn("Rejected quantity change")
		} else {
			entry.Error("Failed to adjust quantity")
		}
		return 0, err
	}

	dao.Logger.WithFields(logrus.Fields{
		"item_id":        req.ItemID,
		"change":         req.Change,
		"quantity":       newQuantity,
		"operation_type": req.OperationType,
		"source":         source,
	}).Info("Successfully adjusted quantity")

	return newQuantity, nil
}

// GetInventoryLogs returns an item's ledger in the order it was written
func (dao *ItemDao) GetInventoryLogs(ctx context.Context, itemID int64) ([]models.InventoryLog, error) {
	logs := []models.InventoryLog{}
	query := dao.Store.rebind(`SELECT ` + logColumns + ` FROM inventory_log WHERE item_id = ? ORDER BY id ASC`)
	if err := dao.Store.DB.SelectContext(ctx, &logs, query, itemID); err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"item_id": itemID,
			"error":   err.Error(),
		}).Error("Failed to query inventory log")
		return nil, fmt.Errorf("failed to query inventory log: %w", err)
	}
	return logs, nil
}

// QuantityAt replays the ledger up to and including the given instant
func (dao *ItemDao) QuantityAt(ctx context.Context, itemID int64, at time.Time) (int, error) {
	logs, err := dao.GetInventoryLogs(ctx, itemID)
	if err != nil {
		return 0, err
	}
	if len(logs) == 0 {
		exists, err := dao.Store.exists(ctx, dao.Store.DB, "items", itemID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, fmt.Errorf("%w: item %d", ErrNotFound, itemID)
		}
	}
	return ReplayLog(logs, at), nil
}

// ReplayLog sums the changes recorded at or before at, starting from zero.
// Entries are filtered by timestamp rather than position, since id order
// and created_at order can disagree under concurrent writers.
func ReplayLog(logs []models.InventoryLog, at time.Time) int {
	quantity := 0
	for _, entry := range logs {
		if entry.CreatedAt.After(at) {
			continue
		}
		quantity += entry.QuantityChange
	}
	return quantity
}

// GetDashboardStats aggregates counts for the overview page
func (dao *ItemDao) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	query := `
		SELECT
			(SELECT COUNT(*) FROM locations) AS total_locations,
			(SELECT COUNT(*) FROM items) AS total_items,
			(SELECT COALESCE(SUM(quantity), 0) FROM items) AS total_quantity,
			(SELECT COUNT(*) FROM items WHERE min_quantity IS NOT NULL AND quantity <= min_quantity) AS low_stock_items
	`
	if err := dao.Store.DB.GetContext(ctx, &stats, query); err != nil {
		dao.Logger.WithError(err).Error("Failed to compute dashboard stats")
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	return &stats, nil
}

func (dao *ItemDao) checkLocation(ctx context.Context, tx *sqlx.Tx, locationID *int64) error {
	if locationID == nil {
		return nil
	}
	exists, err := dao.Store.exists(ctx, tx, "locations", *locationID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: location %d", ErrNotFound, *locationID)
	}
	return nil
}

func (dao *ItemDao) appendLog(ctx context.Context, tx *sqlx.Tx, entry *models.InventoryLog) error {
	query := dao.Store.rebind(`
		INSERT INTO inventory_log (item_id, quantity_change, quantity_after, operation_type, source, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := tx.ExecContext(ctx, query,
		entry.ItemID, entry.QuantityChange, entry.QuantityAfter, entry.OperationType, entry.Source, entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write inventory log: %w", err)
	}
	return nil
}

func getItem(ctx context.Context, store *Store, q sqlx.QueryerContext, itemID int64) (*models.Item, error) {
	var item models.Item
	query := store.rebind(`SELECT ` + itemColumns + ` FROM items WHERE id = ?`)
	err := sqlx.GetContext(ctx, q, &item, query, itemID)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
