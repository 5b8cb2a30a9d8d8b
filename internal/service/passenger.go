package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// PassengerService handles passenger operations.
type PassengerService struct {
	userRepo  repository.UserRepository
	orderRepo repository.OrderRepository
}

// NewPassengerService creates a new PassengerService.
func NewPassengerService(userRepo repository.UserRepository, orderRepo repository.OrderRepository) *PassengerService {
	return &PassengerService{
		userRepo:  userRepo,
		orderRepo: orderRepo,
	}
}

// Start registers the user or refreshes its display name.
func (s *PassengerService) Start(ctx context.Context, id int64, name string) (*domain.User, error) {
	if id <= 0 {
		return nil, ErrInvalidUserID
	}

	if err := s.userRepo.Upsert(ctx, id, strings.TrimSpace(name)); err != nil {
		return nil, fmt.Errorf("upsert user %d: %w", id, err)
	}

	return s.userRepo.GetByID(ctx, id)
}

// SavePhone stores the passenger's phone number.
func (s *PassengerService) SavePhone(ctx context.Context, id int64, phone string) (*domain.User, error) {
	if id <= 0 {
		return nil, ErrInvalidUserID
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrInvalidPhone
	}

	// SetPhone is a no-op for unknown users, so check first.
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.userRepo.SetPhone(ctx, id, phone); err != nil {
		return nil, fmt.Errorf("set phone for user %d: %w", id, err)
	}

	return s.userRepo.GetByID(ctx, id)
}

// GetProfile retrieves a user.
func (s *PassengerService) GetProfile(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, ErrInvalidUserID
	}

	return s.userRepo.GetByID(ctx, id)
}

// CreateOrderRequest contains the parameters for requesting a ride.
type CreateOrderRequest struct {
	PassengerID int64
	Pickup      string
	Destination string
}

// RequestRide creates a new order for the passenger.
func (s *PassengerService) RequestRide(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	req.Pickup = strings.TrimSpace(req.Pickup)
	req.Destination = strings.TrimSpace(req.Destination)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, req.PassengerID)
	if err != nil {
		return nil, err
	}

	if !user.HasPhone() {
		return nil, ErrPhoneRequired
	}

	// Fast path for a friendly answer. The store constraint is the real guard.
	active, err := s.orderRepo.GetPassengerActive(ctx, req.PassengerID)
	if err != nil {
		return nil, fmt.Errorf("get active order of passenger %d: %w", req.PassengerID, err)
	}
	if active != nil {
		return nil, &ActiveOrderError{Order: active}
	}

	id, err := s.orderRepo.Create(ctx, req.PassengerID, req.Pickup, req.Destination)
	if err != nil {
		if errors.Is(err, repository.ErrActiveOrderExists) {
			active, err := s.orderRepo.GetPassengerActive(ctx, req.PassengerID)
			if err != nil {
				return nil, fmt.Errorf("get active order of passenger %d: %w", req.PassengerID, err)
			}
			return nil, &ActiveOrderError{Order: active}
		}
		return nil, fmt.Errorf("create order for passenger %d: %w", req.PassengerID, err)
	}

	return s.orderRepo.GetByID(ctx, id)
}

// ActiveOrder returns the passenger's non-terminal order.
func (s *PassengerService) ActiveOrder(ctx context.Context, passengerID int64) (*domain.Order, error) {
	if passengerID <= 0 {
		return nil, ErrInvalidUserID
	}

	order, err := s.orderRepo.GetPassengerActive(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNoActiveOrder
	}

	return order, nil
}

// GetOrder retrieves an order visible to the caller: its passenger or its driver.
func (s *PassengerService) GetOrder(ctx context.Context, orderID, callerID int64) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, ErrInvalidOrderID
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.PassengerID != callerID && !order.AssignedTo(callerID) {
		return nil, repository.ErrNotFound
	}

	return order, nil
}

// validateCreateRequest validates the create order request.
func (s *PassengerService) validateCreateRequest(req CreateOrderRequest) error {
	if req.PassengerID <= 0 {
		return ErrInvalidUserID
	}

	if req.Pickup == "" {
		return ErrInvalidPickup
	}

	if req.Destination == "" {
		return ErrInvalidDestination
	}

	return nil
}
