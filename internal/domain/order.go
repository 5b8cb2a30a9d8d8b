package domain

import (
	"errors"
	"fmt"
	"time"
)

// OrderStatus represents the lifecycle state of an order.
//
//	new ──> accepted ──> arrived ──> completed
//	            │                       ^
//	            └───────────────────────┘
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusArrived   OrderStatus = "arrived"
	OrderStatusCompleted OrderStatus = "completed"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusAccepted,
	OrderStatusArrived,
	OrderStatusCompleted,
}

// ActiveOrderStatuses lists the non-terminal statuses. A passenger may hold at
// most one order in any of them.
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusAccepted,
	OrderStatusArrived,
}

// DriverActiveOrderStatuses lists the statuses in which an order occupies its driver.
var DriverActiveOrderStatuses = []OrderStatus{
	OrderStatusAccepted,
	OrderStatusArrived,
}

// ErrInvalidOrderStatus is returned for status values outside the lifecycle.
var ErrInvalidOrderStatus = errors.New("invalid order status")

// Validate checks that s is one of the lifecycle statuses.
func (s OrderStatus) Validate() error {
	for _, known := range OrderStatuses {
		if s == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidOrderStatus, string(s))
}

// IsActive reports whether s is a non-terminal status.
func (s OrderStatus) IsActive() bool {
	return containsStatus(ActiveOrderStatuses, s)
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted
}

// Order is a single ride request tracked through its lifecycle.
type Order struct {
	ID          int64
	PassengerID int64
	Pickup      string
	Destination string
	Status      OrderStatus
	DriverID    *int64 // nil iff Status is OrderStatusNew
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ErrInconsistentOrder is returned when an order's driver assignment does not
// match its status.
var ErrInconsistentOrder = errors.New("order driver assignment does not match status")

// Validate checks the status value and the driver_id null iff new invariant.
func (o *Order) Validate() error {
	if err := o.Status.Validate(); err != nil {
		return err
	}
	hasDriver := o.DriverID != nil
	if o.Status == OrderStatusNew && hasDriver {
		return fmt.Errorf("%w: new order %d has driver %d", ErrInconsistentOrder, o.ID, *o.DriverID)
	}
	if o.Status != OrderStatusNew && !hasDriver {
		return fmt.Errorf("%w: %s order %d has no driver", ErrInconsistentOrder, o.Status, o.ID)
	}
	return nil
}

// AssignedTo reports whether driverID is the order's assigned driver.
func (o *Order) AssignedTo(driverID int64) bool {
	return o.DriverID != nil && *o.DriverID == driverID
}

// OrderStats holds the total order count and a count per status.
type OrderStats struct {
	Total    int64
	ByStatus map[OrderStatus]int64
}

// Count returns the number of orders in status.
func (s OrderStats) Count(status OrderStatus) int64 {
	return s.ByStatus[status]
}

func containsStatus(statuses []OrderStatus, s OrderStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
