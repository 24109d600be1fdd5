package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventdesk/server/internal/domain/customers"
	"github.com/eventdesk/server/internal/domain/directory"
	"github.com/eventdesk/server/internal/domain/events"
)

// Repository hands out the per-domain repositories backed by one pool.
type Repository struct {
	pool *pgxpool.Pool

	events    *EventRepository
	customers *CustomerRepository
	directory *DirectoryRepository
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	c := conn{pool: pool}
	return &Repository{
		pool:      pool,
		events:    &EventRepository{conn: c},
		customers: &CustomerRepository{conn: c},
		directory: &DirectoryRepository{conn: c},
	}, nil
}

func (r *Repository) Events() events.Repository {
	return r.events
}

func (r *Repository) Customers() customers.Repository {
	return r.customers
}

func (r *Repository) Directory() directory.Repository {
	return r.directory
}

// Ping reports whether the database answers.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
