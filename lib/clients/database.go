package clients

import (
	"context"
	"fmt"

	"inventory/lib/constants"

	"github.com/jmoiron/sqlx"
)

// NewDatabase opens the store selected by the DATABASE_DRIVER parameter.
// PostgreSQL is the default; sqlite opens the file named by SQLITE_PATH.
func NewDatabase(ctx context.Context, params map[string]string) (*sqlx.DB, error) {
	switch driver := params[constants.DATABASE_DRIVER]; driver {
	case "", constants.DRIVER_NAME:
		return NewPostgresSQLClient(ctx,
			params[constants.DATABASE_RDS_ENDPOINT],
			params[constants.DATABASE_PORT],
			params[constants.DATABASE_NAME],
			params[constants.DATABASE_USERNAME],
			params[constants.DATABASE_PASSWORD],
			params[constants.SSL_MODE],
		)
	case constants.SQLITE_DRIVER_NAME:
		path := params[constants.SQLITE_PATH]
		if path == "" {
			return nil, fmt.Errorf("%s is required for the sqlite driver", constants.SQLITE_PATH)
		}
		return NewSQLiteClient(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
