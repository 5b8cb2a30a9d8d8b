package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// schema is applied in order by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id    BIGINT PRIMARY KEY,
		name  TEXT NOT NULL DEFAULT '',
		phone TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id       BIGINT PRIMARY KEY,
		name     TEXT NOT NULL DEFAULT '',
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id           BIGSERIAL PRIMARY KEY,
		passenger_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		pickup       TEXT NOT NULL,
		destination  TEXT NOT NULL,
		status       TEXT NOT NULL,
		driver_id    BIGINT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT orders_driver_iff_not_new CHECK ((status = 'new') = (driver_id IS NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_driver ON orders(driver_id)`,
	// One non-terminal order per passenger.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_passenger_active ON orders(passenger_id)
		WHERE status IN ('new', 'accepted', 'arrived')`,
}

// Migrate creates the tables and indexes used by the repositories.
func Migrate(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}

// pq error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeForeignKeyViolation pq.ErrorCode = "23503"
	codeUniqueViolation     pq.ErrorCode = "23505"
)

func hasErrorCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
