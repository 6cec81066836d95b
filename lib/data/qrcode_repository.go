package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventory/lib/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const qrAssignAttempts = 5

// QRCodeRepository defines the interface for location QR identity operations
type QRCodeRepository interface {
	// AssignQRCode returns the location's code, generating and persisting one
	// on first use. Repeated and concurrent calls all observe the same code.
	AssignQRCode(ctx context.Context, locationID int64) (string, error)

	// ResolveQRCode maps an exact code back to its location
	ResolveQRCode(ctx context.Context, code string) (*models.Location, error)
}

// QRCodeDao implements QRCodeRepository
type QRCodeDao struct {
	Store  *Store
	Logger *logrus.Logger

	// NewCode generates candidate codes; nil uses NewLocationCode
	NewCode func() string
}

// NewLocationCode returns a short, prefix-tagged candidate code
func NewLocationCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "LOC-" + strings.ToUpper(hex[len(hex)-12:])
}

// AssignQRCode persists a code on the first request for a location.
// Each attempt runs in its own transaction so a unique violation on one
// candidate does not poison the retry.
func (dao *QRCodeDao) AssignQRCode(ctx context.Context, locationID int64) (string, error) {
	for attempt := 1; attempt <= qrAssignAttempts; attempt++ {
		code, err := dao.tryAssign(ctx, locationID)
		if err == nil {
			return code, nil
		}
		if !isUniqueViolation(err) {
			entry := dao.Logger.WithFields(logrus.Fields{
				"location_id": locationID,
				"error":       err.Error(),
			})
			if errors.Is(err, ErrNotFound) {
				entry.Warn("Location not found for QR assignment")
			} else {
				entry.Error("Failed to assign QR code")
			}
			return "", err
		}
		dao.Logger.WithFields(logrus.Fields{
			"location_id": locationID,
			"attempt":     attempt,
		}).Warn("QR code collision, retrying with a new candidate")
	}
	return "", fmt.Errorf("%w: could not generate a unique QR code for location %d", ErrIntegrity, locationID)
}

func (dao *QRCodeDao) tryAssign(ctx context.Context, locationID int64) (string, error) {
	var code string
	err := dao.Store.inTx(ctx, func(tx *sqlx.Tx) error {
		location, err := getLocation(ctx, dao.Store, tx, locationID)
		if err != nil {
			return err
		}
		if location.QRCodeID != nil {
			code = *location.QRCodeID
			return nil
		}

		candidate := dao.candidate()
		query := dao.Store.rebind(`UPDATE locations SET qr_code_id = ?, updated_at = ? WHERE id = ? AND qr_code_id IS NULL`)
		result, err := tx.ExecContext(ctx, query, candidate, timestamp(), locationID)
		if err != nil {
			return fmt.Errorf("failed to store QR code: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 1 {
			code = candidate
			dao.Logger.WithFields(logrus.Fields{
				"location_id": locationID,
				"qr_code_id":  candidate,
			}).Info("Assigned QR code to location")
			return nil
		}

		// Another writer got there first; its code wins
		location, err = getLocation(ctx, dao.Store, tx, locationID)
		if err != nil {
			return err
		}
		if location.QRCodeID == nil {
			return fmt.Errorf("%w: QR code for location %d vanished during assignment", ErrIntegrity, locationID)
		}
		code = *location.QRCodeID
		return nil
	})
	return code, err
}

func (dao *QRCodeDao) candidate() string {
	if dao.NewCode != nil {
		return dao.NewCode()
	}
	return NewLocationCode()
}

// ResolveQRCode looks up the location carrying exactly this code
func (dao *QRCodeDao) ResolveQRCode(ctx context.Context, code string) (*models.Location, error) {
	var location models.Location
	query := dao.Store.rebind(`SELECT ` + locationColumns + ` FROM locations WHERE qr_code_id = ?`)
	err := dao.Store.DB.GetContext(ctx, &location, query, code)
	if isNoRows(err) {
		dao.Logger.WithField("qr_code_id", code).Warn("QR code did not resolve to a location")
		return nil, fmt.Errorf("%w: qr code %q", ErrNotFound, code)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"qr_code_id": code,
			"error":      err.Error(),
		}).Error("Failed to resolve QR code")
		return nil, fmt.Errorf("failed to resolve qr code: %w", err)
	}
	return &location, nil
}
