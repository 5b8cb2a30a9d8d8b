package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/newrelic/go-agent/v3/newrelic"

	"taxi/internal/config"
	"taxi/internal/repository"
	"taxi/internal/repository/memory"
	"taxi/internal/repository/postgres"
)

// Repositories groups the storage ports used by the services.
type Repositories struct {
	Users   repository.UserRepository
	Drivers repository.DriverRepository
	Orders  repository.OrderRepository

	db *sql.DB
}

// Close releases the database pool, if any.
func (r *Repositories) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// OpenRepositories builds the repositories for the configured backend.
// With the postgres backend and migrate set, the schema is applied first.
func OpenRepositories(ctx context.Context, cfg *config.Config, nrApp *newrelic.Application, migrate bool, logger *slog.Logger) (*Repositories, error) {
	if cfg.Store.Backend == config.StoreBackendMemory {
		logger.WarnContext(ctx, "Using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return &Repositories{
			Users:   store.Users,
			Drivers: store.Drivers,
			Orders:  store.Orders,
		}, nil
	}

	db, err := NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Connected to PostgreSQL", "host", cfg.Database.Host, "db", cfg.Database.DBName)

	if migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.InfoContext(ctx, "Database schema is up to date")
	}

	return &Repositories{
		Users:   postgres.NewUserRepository(db),
		Drivers: postgres.NewDriverRepository(db),
		Orders:  postgres.NewOrderRepository(db),
		db:      db,
	}, nil
}
