package service

import (
	"context"
	"fmt"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// DefaultNewOrdersLimit is used when no positive limit is configured or requested.
const DefaultNewOrdersLimit = 10

// DriverService handles driver operations on orders.
type DriverService struct {
	driverRepo   repository.DriverRepository
	orderRepo    repository.OrderRepository
	defaultLimit int
}

// NewDriverService creates a new DriverService.
func NewDriverService(driverRepo repository.DriverRepository, orderRepo repository.OrderRepository, defaultLimit int) *DriverService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultNewOrdersLimit
	}
	return &DriverService{
		driverRepo:   driverRepo,
		orderRepo:    orderRepo,
		defaultLimit: defaultLimit,
	}
}

// NewOrders lists orders waiting for a driver, oldest first.
func (s *DriverService) NewOrders(ctx context.Context, driverID int64, limit int) ([]*domain.Order, error) {
	if err := s.requireDriver(ctx, driverID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}

	return s.orderRepo.ListNew(ctx, limit)
}

// ActiveOrder returns the driver's accepted or arrived order.
func (s *DriverService) ActiveOrder(ctx context.Context, driverID int64) (*domain.Order, error) {
	if err := s.requireDriver(ctx, driverID); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetDriverActive(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNoActiveOrder
	}

	return order, nil
}

// Accept assigns the order to the driver.
func (s *DriverService) Accept(ctx context.Context, orderID, driverID int64) (*domain.Order, error) {
	return s.transition(ctx, domain.EventAccept, orderID, driverID)
}

// MarkArrived records that the driver reached the pickup point.
func (s *DriverService) MarkArrived(ctx context.Context, orderID, driverID int64) (*domain.Order, error) {
	return s.transition(ctx, domain.EventArrive, orderID, driverID)
}

// Complete finishes the ride.
func (s *DriverService) Complete(ctx context.Context, orderID, driverID int64) (*domain.Order, error) {
	return s.transition(ctx, domain.EventComplete, orderID, driverID)
}

// transition performs exactly one conditional write and returns the refreshed order.
func (s *DriverService) transition(ctx context.Context, event domain.Event, orderID, driverID int64) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, ErrInvalidOrderID
	}

	if err := s.requireDriver(ctx, driverID); err != nil {
		return nil, err
	}

	var apply func(context.Context, int64, int64) (bool, error)
	switch event {
	case domain.EventAccept:
		apply = s.orderRepo.Accept
	case domain.EventArrive:
		apply = s.orderRepo.MarkArrived
	case domain.EventComplete:
		apply = s.orderRepo.Complete
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, string(event))
	}

	ok, err := apply(ctx, orderID, driverID)
	if err != nil {
		return nil, fmt.Errorf("%s order %d: %w", event, orderID, err)
	}
	if !ok {
		return nil, ErrOrderUnavailable
	}

	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *DriverService) requireDriver(ctx context.Context, driverID int64) error {
	if driverID <= 0 {
		return ErrInvalidUserID
	}

	ok, err := s.driverRepo.Exists(ctx, driverID)
	if err != nil {
		return fmt.Errorf("check driver %d: %w", driverID, err)
	}
	if !ok {
		return ErrNotDriver
	}

	return nil
}
