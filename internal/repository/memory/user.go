package memory

import (
	"context"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// UserRepository stores users in memory.
type UserRepository struct {
	s *state
}

func (r *UserRepository) Upsert(ctx context.Context, id int64, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user, exists := r.s.users[id]; exists {
		user.Name = name
		return nil
	}
	r.s.users[id] = &domain.User{ID: id, Name: name}
	return nil
}

func (r *UserRepository) SetPhone(ctx context.Context, id int64, phone string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user, exists := r.s.users[id]; exists {
		user.Phone = &phone
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, exists := r.s.users[id]
	if !exists {
		return nil, repository.ErrNotFound
	}
	c := *user
	if user.Phone != nil {
		phone := *user.Phone
		c.Phone = &phone
	}
	return &c, nil
}
