package tests

import (
	"context"
	"sync/atomic"

	"taxi/internal/domain"
	"taxi/internal/repository"
	"taxi/internal/repository/memory"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository wraps the in-memory user repository with call counters
// and error injection.
type MockUserRepository struct {
	repository.UserRepository

	// Counters for verification
	UpsertCallCount   int32
	SetPhoneCallCount int32

	// Error injection
	UpsertError   error
	SetPhoneError error
	GetError      error
}

func (m *MockUserRepository) Upsert(ctx context.Context, id int64, name string) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	return m.UserRepository.Upsert(ctx, id, name)
}

func (m *MockUserRepository) SetPhone(ctx context.Context, id int64, phone string) error {
	atomic.AddInt32(&m.SetPhoneCallCount, 1)
	if m.SetPhoneError != nil {
		return m.SetPhoneError
	}
	return m.UserRepository.SetPhone(ctx, id, phone)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.UserRepository.GetByID(ctx, id)
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository wraps the in-memory driver registry.
type MockDriverRepository struct {
	repository.DriverRepository

	// Counters for verification
	ExistsCallCount int32

	// Error injection
	AddError    error
	RemoveError error
	ExistsError error
}

func (m *MockDriverRepository) Add(ctx context.Context, id int64, name string) error {
	if m.AddError != nil {
		return m.AddError
	}
	return m.DriverRepository.Add(ctx, id, name)
}

func (m *MockDriverRepository) Remove(ctx context.Context, id int64) (int64, error) {
	if m.RemoveError != nil {
		return 0, m.RemoveError
	}
	return m.DriverRepository.Remove(ctx, id)
}

func (m *MockDriverRepository) Exists(ctx context.Context, id int64) (bool, error) {
	atomic.AddInt32(&m.ExistsCallCount, 1)
	if m.ExistsError != nil {
		return false, m.ExistsError
	}
	return m.DriverRepository.Exists(ctx, id)
}

// ──────────────────────────────────────────────
// MOCK ORDER REPOSITORY
// ──────────────────────────────────────────────

// MockOrderRepository wraps the in-memory order repository. TransitionError
// fails Accept, MarkArrived and Complete before they reach the store.
type MockOrderRepository struct {
	repository.OrderRepository

	// Counters for verification
	CreateCallCount     int32
	ActiveCallCount     int32
	TransitionCallCount int32

	// Error injection
	CreateError     error
	ActiveError     error
	TransitionError error

	// ActiveErrorAfter lets that many GetPassengerActive calls through
	// before ActiveError applies.
	ActiveErrorAfter int32
}

func (m *MockOrderRepository) Create(ctx context.Context, passengerID int64, pickup, destination string) (int64, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return 0, m.CreateError
	}
	return m.OrderRepository.Create(ctx, passengerID, pickup, destination)
}

func (m *MockOrderRepository) GetPassengerActive(ctx context.Context, passengerID int64) (*domain.Order, error) {
	n := atomic.AddInt32(&m.ActiveCallCount, 1)
	if m.ActiveError != nil && n > m.ActiveErrorAfter {
		return nil, m.ActiveError
	}
	return m.OrderRepository.GetPassengerActive(ctx, passengerID)
}

func (m *MockOrderRepository) Accept(ctx context.Context, orderID, driverID int64) (bool, error) {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	if m.TransitionError != nil {
		return false, m.TransitionError
	}
	return m.OrderRepository.Accept(ctx, orderID, driverID)
}

func (m *MockOrderRepository) MarkArrived(ctx context.Context, orderID, driverID int64) (bool, error) {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	if m.TransitionError != nil {
		return false, m.TransitionError
	}
	return m.OrderRepository.MarkArrived(ctx, orderID, driverID)
}

func (m *MockOrderRepository) Complete(ctx context.Context, orderID, driverID int64) (bool, error) {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	if m.TransitionError != nil {
		return false, m.TransitionError
	}
	return m.OrderRepository.Complete(ctx, orderID, driverID)
}

// ──────────────────────────────────────────────
// FIXTURE
// ──────────────────────────────────────────────

// Fixture wires the services over one in-memory store wrapped in mocks.
type Fixture struct {
	Users   *MockUserRepository
	Drivers *MockDriverRepository
	Orders  *MockOrderRepository
}

// NewFixture creates mocks over an empty in-memory store.
func NewFixture() *Fixture {
	store := memory.NewStore()
	return &Fixture{
		Users:   &MockUserRepository{UserRepository: store.Users},
		Drivers: &MockDriverRepository{DriverRepository: store.Drivers},
		Orders:  &MockOrderRepository{OrderRepository: store.Orders},
	}
}

// AddPassenger registers a passenger, optionally with a phone.
func (f *Fixture) AddPassenger(id int64, phone string) {
	ctx := context.Background()
	_ = f.Users.UserRepository.Upsert(ctx, id, "passenger")
	if phone != "" {
		_ = f.Users.UserRepository.SetPhone(ctx, id, phone)
	}
}

// AddDriver registers a driver.
func (f *Fixture) AddDriver(id int64) {
	_ = f.Drivers.DriverRepository.Add(context.Background(), id, domain.DefaultDriverName(id))
}
