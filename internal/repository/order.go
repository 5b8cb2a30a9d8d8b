package repository

import (
	"context"

	"taxi/internal/domain"
)

// OrderRepository defines the persistence operations for orders.
//
// Accept, MarkArrived and Complete are conditional transitions: each is a
// single atomic write that succeeds only when the order still matches the
// guard of its domain.TransitionRule. They return false, not an error, when
// the guard does not hold or the order does not exist.
type OrderRepository interface {
	// Create persists a new order in status new and returns its id.
	// Returns ErrActiveOrderExists if the passenger already has an active order.
	Create(ctx context.Context, passengerID int64, pickup, destination string) (int64, error)

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// ListNew returns up to limit orders in status new, oldest first.
	// A limit <= 0 returns all of them.
	ListNew(ctx context.Context, limit int) ([]*domain.Order, error)

	// GetDriverActive returns the driver's most recently updated accepted or
	// arrived order. Returns nil if none exists.
	GetDriverActive(ctx context.Context, driverID int64) (*domain.Order, error)

	// GetPassengerActive returns the passenger's most recent non-terminal
	// order. Returns nil if none exists.
	GetPassengerActive(ctx context.Context, passengerID int64) (*domain.Order, error)

	// Accept assigns a new order to driverID.
	Accept(ctx context.Context, orderID, driverID int64) (bool, error)

	// MarkArrived moves an accepted order of driverID to arrived.
	MarkArrived(ctx context.Context, orderID, driverID int64) (bool, error)

	// Complete moves an accepted or arrived order of driverID to completed.
	Complete(ctx context.Context, orderID, driverID int64) (bool, error)

	// Stats returns the total number of orders and a count per status.
	Stats(ctx context.Context) (*domain.OrderStats, error)
}
