package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// OrderRepository stores orders in memory. Transitions evaluate the domain
// transition table while holding the store's write lock, which makes each one
// a compare-and-set on the order row.
type OrderRepository struct {
	s *state
}

// Create checks for an active order and inserts the new one under a single
// lock, so concurrent requests from one passenger yield exactly one order.
func (r *OrderRepository) Create(ctx context.Context, passengerID int64, pickup, destination string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[passengerID]; !exists {
		return 0, fmt.Errorf("passenger %d: %w", passengerID, repository.ErrNotFound)
	}
	for _, o := range r.s.orders {
		if o.PassengerID == passengerID && o.Status.IsActive() {
			return 0, repository.ErrActiveOrderExists
		}
	}

	r.s.lastID++
	now := r.s.now()
	r.s.orders[r.s.lastID] = &domain.Order{
		ID:          r.s.lastID,
		PassengerID: passengerID,
		Pickup:      pickup,
		Destination: destination,
		Status:      domain.OrderStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return r.s.lastID, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, exists := r.s.orders[id]
	if !exists {
		return nil, repository.ErrNotFound
	}
	return copyOrder(o), nil
}

// ListNew returns up to limit new orders, oldest first.
func (r *OrderRepository) ListNew(ctx context.Context, limit int) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := r.filter(func(o *domain.Order) bool {
		return o.Status == domain.OrderStatusNew
	})
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// GetDriverActive returns the driver's most recently updated accepted or
// arrived order, or nil.
func (r *OrderRepository) GetDriverActive(ctx context.Context, driverID int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := r.filter(func(o *domain.Order) bool {
		return o.AssignedTo(driverID) && (o.Status == domain.OrderStatusAccepted || o.Status == domain.OrderStatusArrived)
	})
	return latest(orders, func(o *domain.Order) int64 { return o.UpdatedAt.UnixNano() }), nil
}

// GetPassengerActive returns the passenger's most recent non-terminal order, or nil.
func (r *OrderRepository) GetPassengerActive(ctx context.Context, passengerID int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := r.filter(func(o *domain.Order) bool {
		return o.PassengerID == passengerID && o.Status.IsActive()
	})
	return latest(orders, func(o *domain.Order) int64 { return o.CreatedAt.UnixNano() }), nil
}

func (r *OrderRepository) Accept(ctx context.Context, orderID, driverID int64) (bool, error) {
	return r.transition(domain.EventAccept, orderID, driverID)
}

func (r *OrderRepository) MarkArrived(ctx context.Context, orderID, driverID int64) (bool, error) {
	return r.transition(domain.EventArrive, orderID, driverID)
}

func (r *OrderRepository) Complete(ctx context.Context, orderID, driverID int64) (bool, error) {
	return r.transition(domain.EventComplete, orderID, driverID)
}

func (r *OrderRepository) Stats(ctx context.Context) (*domain.OrderStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &domain.OrderStats{ByStatus: make(map[domain.OrderStatus]int64)}
	for _, o := range r.s.orders {
		stats.ByStatus[o.Status]++
		stats.Total++
	}
	return stats, nil
}

func (r *OrderRepository) transition(event domain.Event, orderID, driverID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, exists := r.s.orders[orderID]
	if !exists {
		return false, nil
	}

	_, isDriver := r.s.drivers[driverID]
	next := copyOrder(o)
	err := domain.Apply(next, event, domain.Actor{ID: driverID, IsDriver: isDriver}, r.s.now())
	if errors.Is(err, domain.ErrGuardFailed) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	r.s.orders[orderID] = next
	return true, nil
}

// filter must be called with the lock held. It returns copies.
func (r *OrderRepository) filter(keep func(*domain.Order) bool) []*domain.Order {
	var out []*domain.Order
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, copyOrder(o))
		}
	}
	return out
}

func latest(orders []*domain.Order, key func(*domain.Order) int64) *domain.Order {
	var best *domain.Order
	for _, o := range orders {
		if best == nil || key(o) > key(best) || (key(o) == key(best) && o.ID > best.ID) {
			best = o
		}
	}
	return best
}
