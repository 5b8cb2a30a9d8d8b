package service

import (
	"errors"
	"fmt"

	"taxi/internal/domain"
)

var (
	// ErrInvalidUserID is returned when a user or actor id is not positive.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidOrderID is returned when an order id is not positive.
	ErrInvalidOrderID = errors.New("invalid order id")

	// ErrInvalidPhone is returned when a phone number is empty.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrInvalidPickup is returned when the pickup address is empty.
	ErrInvalidPickup = errors.New("invalid pickup address")

	// ErrInvalidDestination is returned when the destination address is empty.
	ErrInvalidDestination = errors.New("invalid destination address")

	// ErrPhoneRequired is returned when a passenger without a phone requests a ride.
	ErrPhoneRequired = errors.New("phone number required before requesting a ride")

	// ErrActiveOrderExists is returned when the passenger already has a non-terminal order.
	ErrActiveOrderExists = errors.New("passenger already has an active order")

	// ErrNoActiveOrder is returned when the caller has no active order.
	ErrNoActiveOrder = errors.New("no active order")

	// ErrNotDriver is returned when the caller is not a registered driver.
	ErrNotDriver = errors.New("not a registered driver")

	// ErrOrderUnavailable is returned when a transition guard does not hold:
	// the order was taken, is in another status, or belongs to another driver.
	ErrOrderUnavailable = errors.New("order is not available for this action")

	// ErrDriverExists is returned when registering an already registered driver.
	ErrDriverExists = errors.New("driver already registered")

	// ErrDriverNotFound is returned when removing a driver that is not registered.
	ErrDriverNotFound = errors.New("driver not found")

	// ErrNotAdmin is returned when the caller is not on the admin allow-list.
	ErrNotAdmin = errors.New("admin access required")
)

// ActiveOrderError carries the passenger's existing active order.
type ActiveOrderError struct {
	Order *domain.Order
}

func (e *ActiveOrderError) Error() string {
	if e.Order == nil {
		return ErrActiveOrderExists.Error()
	}
	return fmt.Sprintf("%s: order %d is %s", ErrActiveOrderExists, e.Order.ID, e.Order.Status)
}

func (e *ActiveOrderError) Unwrap() error {
	return ErrActiveOrderExists
}
