package memory

import (
	"context"
	"sort"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// DriverRepository stores the driver registry in memory.
type DriverRepository struct {
	s *state
}

func (r *DriverRepository) Add(ctx context.Context, id int64, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.drivers[id]; exists {
		return repository.ErrAlreadyExists
	}
	r.s.drivers[id] = &domain.Driver{ID: id, Name: name, AddedAt: r.s.now()}
	return nil
}

func (r *DriverRepository) Remove(ctx context.Context, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.drivers[id]; !exists {
		return 0, nil
	}
	delete(r.s.drivers, id)
	return 1, nil
}

func (r *DriverRepository) GetByID(ctx context.Context, id int64) (*domain.Driver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, exists := r.s.drivers[id]
	if !exists {
		return nil, repository.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (r *DriverRepository) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, exists := r.s.drivers[id]
	return exists, nil
}

// List returns drivers most recently registered first.
func (r *DriverRepository) List(ctx context.Context) ([]*domain.Driver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	drivers := make([]*domain.Driver, 0, len(r.s.drivers))
	for _, d := range r.s.drivers {
		c := *d
		drivers = append(drivers, &c)
	}
	sort.Slice(drivers, func(i, j int) bool {
		if !drivers[i].AddedAt.Equal(drivers[j].AddedAt) {
			return drivers[i].AddedAt.After(drivers[j].AddedAt)
		}
		return drivers[i].ID > drivers[j].ID
	})
	return drivers, nil
}
