package repository

import (
	"context"

	"taxi/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Upsert inserts a user or updates the display name of an existing one.
	Upsert(ctx context.Context, id int64, name string) error

	// SetPhone stores the user's phone. It is a no-op when the user does not exist.
	SetPhone(ctx context.Context, id int64, phone string) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
