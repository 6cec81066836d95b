package data

import (
	"context"
	"errors"
	"fmt"

	"inventory/lib/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const locationColumns = `id, name, parent_id, location_type, description, qr_code_id, created_at, updated_at`

// LocationRepository defines the interface for location hierarchy operations
type LocationRepository interface {
	// CreateLocation inserts a location under an existing parent (or as a root)
	CreateLocation(ctx context.Context, req *models.CreateLocationRequest) (int64, error)

	// GetLocations returns every location ordered by name
	GetLocations(ctx context.Context) ([]models.Location, error)

	// GetLocationTree returns the locations nested by parent
	GetLocationTree(ctx context.Context) ([]*models.LocationNode, error)

	// GetLocationByID retrieves a single location
	GetLocationByID(ctx context.Context, locationID int64) (*models.Location, error)

	// GetLocationByQRCode resolves a scanned code to its location
	GetLocationByQRCode(ctx context.Context, code string) (*models.Location, error)

	// UpdateLocation changes name and description; parent and type are immutable
	UpdateLocation(ctx context.Context, locationID int64, req *models.UpdateLocationRequest) (*models.Location, error)

	// DeleteLocation removes the location and its whole subtree in one transaction.
	// Items stored anywhere in the subtree are detached (location_id cleared).
	DeleteLocation(ctx context.Context, locationID int64) (*models.DeleteLocationResult, error)
}

// LocationDao implements LocationRepository on top of the shared Store
type LocationDao struct {
	Store   *Store
	QRCodes QRCodeRepository
	Logger  *logrus.Logger
}

// CreateLocation validates the parent reference and inserts the location
func (dao *LocationDao) CreateLocation(ctx context.Context, req *models.CreateLocationRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := timestamp()
	var locationID int64
	err := dao.Store.inTx(ctx, func(tx *sqlx.Tx) error {
		if req.ParentID != nil {
			exists, err := dao.Store.exists(ctx, tx, "locations", *req.ParentID)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: parent location %d does not exist", ErrInvalidParent, *req.ParentID)
			}
		}

		query := dao.Store.rebind(`
			INSERT INTO locations (name, parent_id, location_type, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		if err := tx.QueryRowxContext(ctx, query, req.Name, req.ParentID, req.LocationType, req.Description, now, now).Scan(&locationID); err != nil {
			return fmt.Errorf("failed to create location: %w", err)
		}
		return nil
	})
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"name":      req.Name,
			"parent_id": req.ParentID,
			"error":     err.Error(),
		}).Error("Failed to create location")
		return 0, err
	}

	dao.Logger.WithFields(logrus.Fields{
		"location_id":   locationID,
		"location_type": req.LocationType,
		"name":          req.Name,
	}).Info("Successfully created location")

	return locationID, nil
}

// GetLocations retrieves all locations; callers rebuild edges from parent_id
func (dao *LocationDao) GetLocations(ctx context.Context) ([]models.Location, error) {
	locations := []models.Location{}
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY name ASC, id ASC`

	if err := dao.Store.DB.SelectContext(ctx, &locations, query); err != nil {
		dao.Logger.WithError(err).Error("Failed to query locations")
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}

	dao.Logger.WithField("count", len(locations)).Debug("Successfully retrieved locations")
	return locations, nil
}

// GetLocationTree retrieves all locations nested by parent
func (dao *LocationDao) GetLocationTree(ctx context.Context) ([]*models.LocationNode, error) {
	locations, err := dao.GetLocations(ctx)
	if err != nil {
		return nil, err
	}
	return buildForest(locations), nil
}

// GetLocationByID retrieves a specific location by ID
func (dao *LocationDao) GetLocationByID(ctx context.Context, locationID int64) (*models.Location, error) {
	location, err := getLocation(ctx, dao.Store, dao.Store.DB, locationID)
	if errors.Is(err, ErrNotFound) {
		dao.Logger.WithField("location_id", locationID).Warn("Location not found")
		return nil, err
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"location_id": locationID,
			"error":       err.Error(),
		}).Error("Failed to get location")
		return nil, err
	}
	return location, nil
}

// GetLocationByQRCode delegates to the QR identity resolver
func (dao *LocationDao) GetLocationByQRCode(ctx context.Context, code string) (*models.Location, error) {
	return dao.QRCodes.ResolveQRCode(ctx, code)
}

// UpdateLocation updates the name and description of an existing location
func (dao *LocationDao) UpdateLocation(ctx context.Context, locationID int64, req *models.UpdateLocationRequest) (*models.Location, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var updated *models.Location
	err := dao.Store.inTx(ctx, func(tx *sqlx.Tx) error {
		query := dao.Store.rebind(`UPDATE locations SET name = ?, description = ?, updated_at = ? WHERE id = ?`)
		result, err := tx.ExecContext(ctx, query, req.Name, req.Description, timestamp(), locationID)
		if err != nil {
			return fmt.Errorf("failed to update location: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w: location %d", ErrNotFound, locationID)
		}

		updated, err = getLocation(ctx, dao.Store, tx, locationID)
		return err
	})
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"location_id": locationID,
			"error":       err.Error(),
		}).Error("Failed to update location")
		return nil, err
	}

	dao.Logger.WithFields(logrus.Fields{
		"location_id":   locationID,
		"location_name": updated.Name,
	}).Info("Successfully updated location")

	return updated, nil
}

// DeleteLocation computes the subtree from the parent index and removes it atomically
func (dao *LocationDao) DeleteLocation(ctx context.Context, locationID int64) (*models.DeleteLocationResult, error) {
	result := &models.DeleteLocationResult{}
	err := dao.Store.inTx(ctx, func(tx *sqlx.Tx) error {
		var edges []locationEdge
		if err := tx.SelectContext(ctx, &edges, `SELECT id, parent_id FROM locations`); err != nil {
			return fmt.Errorf("failed to load location hierarchy: %w", err)
		}

		ids, err := newLocationTree(edges).subtree(locationID)
		if err != nil {
			return err
		}

		query, args, err := sqlx.In(`UPDATE items SET location_id = NULL, updated_at = ? WHERE location_id IN (?)`, timestamp(), ids)
		if err != nil {
			return fmt.Errorf("failed to build detach query: %w", err)
		}
		detached, err := tx.ExecContext(ctx, dao.Store.rebind(query), args...)
		if err != nil {
			return fmt.Errorf("failed to detach items: %w", err)
		}
		if result.DetachedItems, err = detached.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		query, args, err = sqlx.In(`DELETE FROM locations WHERE id IN (?)`, ids)
		if err != nil {
			return fmt.Errorf("failed to build delete query: %w", err)
		}
		deleted, err := tx.ExecContext(ctx, dao.Store.rebind(query), args...)
		if err != nil {
			return fmt.Errorf("failed to delete locations: %w", err)
		}
		rowsAffected, err := deleted.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected != int64(len(ids)) {
			return fmt.Errorf("%w: expected to delete %d locations, deleted %d", ErrIntegrity, len(ids), rowsAffected)
		}

		result.DeletedLocationIDs = ids
		return nil
	})
	if err != nil {
		entry := dao.Logger.WithFields(logrus.Fields{
			"location_id": locationID,
			"error":       err.Error(),
		})
		if errors.Is(err, ErrNotFound) {
			entry.Warn("Location not found for deletion")
		} else {
			entry.Error("Failed to delete location")
		}
		return nil, err
	}

	dao.Logger.WithFields(logrus.Fields{
		"location_id":    locationID,
		"deleted_count":  len(result.DeletedLocationIDs),
		"detached_items": result.DetachedItems,
	}).Info("Successfully deleted location subtree")

	return result, nil
}

func getLocation(ctx context.Context, store *Store, q sqlx.QueryerContext, locationID int64) (*models.Location, error) {
	var location models.Location
	query := store.rebind(`SELECT ` + locationColumns + ` FROM locations WHERE id = ?`)
	err := sqlx.GetContext(ctx, q, &location, query, locationID)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: location %d", ErrNotFound, locationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &location, nil
}
