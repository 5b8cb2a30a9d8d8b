package domain

import (
	"errors"
	"fmt"
	"time"
)

// Event is an actor action that moves an order along its lifecycle.
type Event string

const (
	EventAccept   Event = "accept"
	EventArrive   Event = "arrive"
	EventComplete Event = "complete"
)

// Actor is the identity triggering an event.
type Actor struct {
	ID       int64
	IsDriver bool
}

// TransitionRule describes one row of the order transition table. Stores
// implement each rule as a single conditional write keyed on From.
type TransitionRule struct {
	Event Event
	From  []OrderStatus
	To    OrderStatus

	// AssignsDriver sets the order's driver to the actor.
	AssignsDriver bool
	// RequiresAssignedDriver restricts the event to the order's driver.
	RequiresAssignedDriver bool
}

// Allows reports whether the rule may fire from status s.
func (r TransitionRule) Allows(s OrderStatus) bool {
	return containsStatus(r.From, s)
}

var transitionTable = map[Event]TransitionRule{
	EventAccept: {
		Event:         EventAccept,
		From:          []OrderStatus{OrderStatusNew},
		To:            OrderStatusAccepted,
		AssignsDriver: true,
	},
	EventArrive: {
		Event:                  EventArrive,
		From:                   []OrderStatus{OrderStatusAccepted},
		To:                     OrderStatusArrived,
		RequiresAssignedDriver: true,
	},
	EventComplete: {
		Event:                  EventComplete,
		From:                   []OrderStatus{OrderStatusAccepted, OrderStatusArrived},
		To:                     OrderStatusCompleted,
		RequiresAssignedDriver: true,
	},
}

var (
	// ErrUnknownEvent is returned for events missing from the transition table.
	ErrUnknownEvent = errors.New("unknown order event")

	// ErrGuardFailed is wrapped by every guard failure below.
	ErrGuardFailed = errors.New("transition guard failed")

	// ErrNotDriver is returned when the actor is not a registered driver.
	ErrNotDriver = fmt.Errorf("%w: actor is not a registered driver", ErrGuardFailed)

	// ErrInvalidTransition is returned when the event cannot fire from the current status.
	ErrInvalidTransition = fmt.Errorf("%w: event not allowed from current status", ErrGuardFailed)

	// ErrNotAssignedDriver is returned when the actor is not the order's driver.
	ErrNotAssignedDriver = fmt.Errorf("%w: actor is not the assigned driver", ErrGuardFailed)
)

// Rule returns the transition table row for event.
func Rule(event Event) (TransitionRule, error) {
	rule, ok := transitionTable[event]
	if !ok {
		return TransitionRule{}, fmt.Errorf("%w: %q", ErrUnknownEvent, string(event))
	}
	return rule, nil
}

// Transition computes the status order moves to when actor triggers event.
// It does not modify order.
func Transition(order Order, event Event, actor Actor) (OrderStatus, error) {
	rule, err := Rule(event)
	if err != nil {
		return "", err
	}
	if !actor.IsDriver {
		return "", ErrNotDriver
	}
	if !rule.Allows(order.Status) {
		return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, order.Status)
	}
	if rule.RequiresAssignedDriver && !order.AssignedTo(actor.ID) {
		return "", ErrNotAssignedDriver
	}
	return rule.To, nil
}

// Apply runs Transition and, on success, updates order in place.
func Apply(order *Order, event Event, actor Actor, now time.Time) error {
	next, err := Transition(*order, event, actor)
	if err != nil {
		return err
	}
	rule, _ := Rule(event)
	if rule.AssignsDriver {
		driverID := actor.ID
		order.DriverID = &driverID
	}
	order.Status = next
	order.UpdatedAt = now
	return nil
}
