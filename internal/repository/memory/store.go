// Package memory provides in-process implementations of the repository
// interfaces. All repositories created by one Store share a single lock, so a
// transition can check the driver registry and the order row atomically.
package memory

import (
	"sync"
	"time"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// Store groups the in-memory repositories over one shared state.
type Store struct {
	Users   *UserRepository
	Drivers *DriverRepository
	Orders  *OrderRepository
}

// Ensure interfaces are satisfied.
var (
	_ repository.UserRepository   = (*UserRepository)(nil)
	_ repository.DriverRepository = (*DriverRepository)(nil)
	_ repository.OrderRepository  = (*OrderRepository)(nil)
)

type state struct {
	mu      sync.RWMutex
	now     func() time.Time
	users   map[int64]*domain.User
	drivers map[int64]*domain.Driver
	orders  map[int64]*domain.Order
	lastID  int64
}

// Option configures a Store.
type Option func(*state)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *state) {
		s.now = now
	}
}

// NewStore creates an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &state{
		now:     time.Now,
		users:   make(map[int64]*domain.User),
		drivers: make(map[int64]*domain.Driver),
		orders:  make(map[int64]*domain.Order),
	}
	for _, opt := range opts {
		opt(s)
	}

	return &Store{
		Users:   &UserRepository{s: s},
		Drivers: &DriverRepository{s: s},
		Orders:  &OrderRepository{s: s},
	}
}

func copyOrder(o *domain.Order) *domain.Order {
	c := *o
	if o.DriverID != nil {
		id := *o.DriverID
		c.DriverID = &id
	}
	return &c
}
