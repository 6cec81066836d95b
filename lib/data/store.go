package data

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inventory/lib/constants"

	"github.com/jmoiron/sqlx"
)

// Store is the shared handle every repository runs against.
//
// Mutations run in a transaction under the shared side of gate. Snapshot
// export and import take the exclusive side so a backup never interleaves
// with an in-flight mutation. Plain reads skip the gate and rely on the
// database's transaction isolation.
type Store struct {
	DB      *sqlx.DB
	Dialect string
	gate    sync.RWMutex
}

// NewStore wraps an open database; the dialect follows the driver name
func NewStore(db *sqlx.DB) *Store {
	return &Store{DB: db, Dialect: db.DriverName()}
}

// Migrate creates any missing tables for the store's dialect
func (s *Store) Migrate(ctx context.Context) error {
	schema := schemaPostgres
	if s.Dialect == constants.SQLITE_DRIVER_NAME {
		schema = schemaSQLite
	}
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	s.gate.RLock()
	defer s.gate.RUnlock()
	return s.runTx(ctx, fn)
}

func (s *Store) inExclusiveTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	s.gate.Lock()
	defer s.gate.Unlock()
	return s.runTx(ctx, fn)
}

func (s *Store) runTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rebind converts '?' placeholders to the dialect's bind style
func (s *Store) rebind(query string) string {
	return s.DB.Rebind(query)
}

// lower wraps expr in a Unicode-aware lowercase call for the dialect
func (s *Store) lower(expr string) string {
	if s.Dialect == constants.SQLITE_DRIVER_NAME {
		return constants.SQLITE_LOWER_FUNC + "(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

func (s *Store) exists(ctx context.Context, q sqlx.QueryerContext, table string, id int64) (bool, error) {
	var count int
	query := s.rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table))
	if err := sqlx.GetContext(ctx, q, &count, query, id); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	return count > 0, nil
}

func timestamp() time.Time {
	return time.Now().UTC()
}
