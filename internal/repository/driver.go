package repository

import (
	"context"

	"taxi/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Add registers a driver with the current time.
	// Returns ErrAlreadyExists if the id is already registered.
	Add(ctx context.Context, id int64, name string) error

	// Remove deletes a driver and reports how many rows were removed (0 or 1).
	Remove(ctx context.Context, id int64) (int64, error)

	// GetByID retrieves a driver. Returns ErrNotFound if the id is not registered.
	GetByID(ctx context.Context, id int64) (*domain.Driver, error)

	// Exists reports whether id is a registered driver.
	Exists(ctx context.Context, id int64) (bool, error)

	// List returns all drivers, most recently registered first.
	List(ctx context.Context) ([]*domain.Driver, error)
}
