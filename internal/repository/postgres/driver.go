package postgres

import (
	"context"
	"database/sql"
	"errors"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Add registers a new driver.
func (r *DriverRepository) Add(ctx context.Context, id int64, name string) error {
	query := `INSERT INTO drivers (id, name, added_at) VALUES ($1, $2, NOW())`
	_, err := r.q.ExecContext(ctx, query, id, name)
	if hasErrorCode(err, codeUniqueViolation) {
		return repository.ErrAlreadyExists
	}
	return err
}

// Remove deletes a driver.
func (r *DriverRepository) Remove(ctx context.Context, id int64) (int64, error) {
	query := `DELETE FROM drivers WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// GetByID retrieves a registered driver.
func (r *DriverRepository) GetByID(ctx context.Context, id int64) (*domain.Driver, error) {
	query := `SELECT id, name, added_at FROM drivers WHERE id = $1`

	var driver domain.Driver
	err := r.q.QueryRowContext(ctx, query, id).Scan(&driver.ID, &driver.Name, &driver.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// Exists reports whether id is a registered driver.
func (r *DriverRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM drivers WHERE id = $1)`

	var exists bool
	if err := r.q.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// List retrieves all drivers, most recently registered first.
func (r *DriverRepository) List(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT id, name, added_at FROM drivers ORDER BY added_at DESC, id DESC`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var driver domain.Driver
		if err := rows.Scan(&driver.ID, &driver.Name, &driver.AddedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, &driver)
	}
	return drivers, rows.Err()
}
