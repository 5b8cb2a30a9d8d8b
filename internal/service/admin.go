package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// Access holds the operator allow-list.
type Access struct {
	admins map[int64]struct{}
}

// NewAccess creates an allow-list from admin ids.
func NewAccess(adminIDs []int64) *Access {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Access{admins: admins}
}

// IsAdmin reports whether id is an operator.
func (a *Access) IsAdmin(id int64) bool {
	if a == nil {
		return false
	}
	_, ok := a.admins[id]
	return ok
}

// AdminService handles operator actions on the driver registry.
type AdminService struct {
	driverRepo repository.DriverRepository
	orderRepo  repository.OrderRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(driverRepo repository.DriverRepository, orderRepo repository.OrderRepository) *AdminService {
	return &AdminService{
		driverRepo: driverRepo,
		orderRepo:  orderRepo,
	}
}

// AddDriver registers a driver. An empty name defaults to driver_<id>.
func (s *AdminService) AddDriver(ctx context.Context, id int64, name string) (*domain.Driver, error) {
	if id <= 0 {
		return nil, ErrInvalidUserID
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultDriverName(id)
	}

	if err := s.driverRepo.Add(ctx, id, name); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrDriverExists
		}
		return nil, fmt.Errorf("add driver %d: %w", id, err)
	}

	driver, err := s.driverRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get driver %d: %w", id, err)
	}
	return driver, nil
}

// RemoveDriver unregisters a driver. Orders already assigned keep their driver_id.
func (s *AdminService) RemoveDriver(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidUserID
	}

	removed, err := s.driverRepo.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("remove driver %d: %w", id, err)
	}
	if removed == 0 {
		return ErrDriverNotFound
	}

	return nil
}

// ListDrivers returns all registered drivers, most recent first.
func (s *AdminService) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.List(ctx)
}

// Stats returns order counts.
func (s *AdminService) Stats(ctx context.Context) (*domain.OrderStats, error) {
	return s.orderRepo.Stats(ctx)
}
