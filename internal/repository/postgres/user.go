package postgres

import (
	"context"
	"database/sql"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// NewUserRepositoryWithTx creates a user repository using a transaction.
func NewUserRepositoryWithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

// Upsert adds a user or refreshes its display name.
func (r *UserRepository) Upsert(ctx context.Context, id int64, name string) error {
	query := `
		INSERT INTO users (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`
	_, err := r.q.ExecContext(ctx, query, id, name)
	return err
}

// SetPhone stores a phone number for an existing user.
func (r *UserRepository) SetPhone(ctx context.Context, id int64, phone string) error {
	query := `UPDATE users SET phone = $1 WHERE id = $2`
	_, err := r.q.ExecContext(ctx, query, phone, id)
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, name, phone FROM users WHERE id = $1`
	row := r.q.QueryRowContext(ctx, query, id)

	var user domain.User
	var phone sql.NullString
	err := row.Scan(&user.ID, &user.Name, &phone)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		user.Phone = &phone.String
	}
	return &user, nil
}
