package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

const orderColumns = `id, passenger_id, pickup, destination, status, driver_id, created_at, updated_at`

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{q: db}
}

// NewOrderRepositoryWithTx creates an order repository using a transaction.
func NewOrderRepositoryWithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{q: tx}
}

// Create persists a new order in status new.
//
// The insert is conditional on the partial unique index over active orders,
// so two concurrent requests from one passenger yield exactly one order.
func (r *OrderRepository) Create(ctx context.Context, passengerID int64, pickup, destination string) (int64, error) {
	query := `
		INSERT INTO orders (passenger_id, pickup, destination, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (passenger_id) WHERE status IN ('new', 'accepted', 'arrived') DO NOTHING
		RETURNING id
	`

	var id int64
	err := r.q.QueryRowContext(ctx, query, passengerID, pickup, destination, domain.OrderStatusNew).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrActiveOrderExists
		}
		if hasErrorCode(err, codeForeignKeyViolation) {
			return 0, fmt.Errorf("passenger %d: %w", passengerID, repository.ErrNotFound)
		}
		return 0, err
	}

	return id, nil
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return order, nil
}

// ListNew returns up to limit new orders, oldest first. LIMIT NULL applies no
// limit when limit <= 0.
func (r *OrderRepository) ListNew(ctx context.Context, limit int) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders WHERE status = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, domain.OrderStatusNew,
		sql.NullInt64{Int64: int64(limit), Valid: limit > 0})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// GetDriverActive returns the driver's current accepted or arrived order.
func (r *OrderRepository) GetDriverActive(ctx context.Context, driverID int64) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders WHERE driver_id = $1 AND status = ANY($2)
		ORDER BY updated_at DESC, id DESC
		LIMIT 1
	`
	return r.getOptional(ctx, query, driverID, pq.Array(statusStrings(domain.DriverActiveOrderStatuses)))
}

// GetPassengerActive returns the passenger's current non-terminal order.
func (r *OrderRepository) GetPassengerActive(ctx context.Context, passengerID int64) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders WHERE passenger_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	return r.getOptional(ctx, query, passengerID, pq.Array(statusStrings(domain.ActiveOrderStatuses)))
}

// Accept assigns a new order to driverID.
func (r *OrderRepository) Accept(ctx context.Context, orderID, driverID int64) (bool, error) {
	return r.transition(ctx, domain.EventAccept, orderID, driverID)
}

// MarkArrived moves an accepted order of driverID to arrived.
func (r *OrderRepository) MarkArrived(ctx context.Context, orderID, driverID int64) (bool, error) {
	return r.transition(ctx, domain.EventArrive, orderID, driverID)
}

// Complete moves an accepted or arrived order of driverID to completed.
func (r *OrderRepository) Complete(ctx context.Context, orderID, driverID int64) (bool, error) {
	return r.transition(ctx, domain.EventComplete, orderID, driverID)
}

// Stats returns the total number of orders and a count per status.
func (r *OrderRepository) Stats(ctx context.Context) (*domain.OrderStats, error) {
	query := `SELECT status, COUNT(*) FROM orders GROUP BY status`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.OrderStats{ByStatus: make(map[domain.OrderStatus]int64)}
	for rows.Next() {
		var status domain.OrderStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	return stats, rows.Err()
}

// transition runs the conditional write for event in a single statement.
func (r *OrderRepository) transition(ctx context.Context, event domain.Event, orderID, driverID int64) (bool, error) {
	rule, err := domain.Rule(event)
	if err != nil {
		return false, err
	}

	query, args := transitionQuery(rule, orderID, driverID)
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// transitionQuery renders rule as one UPDATE whose WHERE clause is the rule's
// guard: expected prior status, assigned driver when required, and the actor
// being a registered driver.
func transitionQuery(rule domain.TransitionRule, orderID, driverID int64) (string, []any) {
	args := []any{string(rule.To), orderID, pq.Array(statusStrings(rule.From)), driverID}

	var b strings.Builder
	b.WriteString(`UPDATE orders SET status = $1, updated_at = NOW()`)
	if rule.AssignsDriver {
		b.WriteString(`, driver_id = $4`)
	}
	b.WriteString(` WHERE id = $2 AND status = ANY($3)`)
	if rule.RequiresAssignedDriver {
		b.WriteString(` AND driver_id = $4`)
	}
	b.WriteString(` AND EXISTS (SELECT 1 FROM drivers WHERE drivers.id = $4)`)

	return b.String(), args
}

func (r *OrderRepository) getOptional(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	order, err := scanOrder(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var driverID sql.NullInt64

	err := row.Scan(
		&order.ID,
		&order.PassengerID,
		&order.Pickup,
		&order.Destination,
		&order.Status,
		&driverID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		id := driverID.Int64
		order.DriverID = &id
	}

	return &order, nil
}

func statusStrings(statuses []domain.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
