package clients

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	"inventory/lib/constants"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
)

// SQLite's built-in LOWER folds ASCII only
func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(constants.SQLITE_LOWER_FUNC, 1, unicodeLower); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", constants.SQLITE_LOWER_FUNC, err))
	}
}

func unicodeLower(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// NewSQLiteClient opens the embedded store at path with foreign keys enforced.
// A single connection serialises writers; _txlock=immediate takes the write
// lock at BEGIN so concurrent transactions queue instead of failing mid-way.
func NewSQLiteClient(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate", path)

	db, err := sqlx.Open(constants.SQLITE_DRIVER_NAME, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return db, nil
}
