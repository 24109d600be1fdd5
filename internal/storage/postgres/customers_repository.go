package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/eventdesk/server/internal/domain/customers"
	"github.com/eventdesk/server/internal/metrics"
)

// CustomerRepository implements customers.Repository.
type CustomerRepository struct {
	conn
}

var _ customers.Repository = (*CustomerRepository)(nil)

func (r *CustomerRepository) CreateCustomer(ctx context.Context, name string) (*customers.Customer, error) {
	c := customers.Customer{Name: name}
	err := r.queryer().QueryRow(ctx,
		`INSERT INTO customers (name) VALUES ($1) RETURNING id`, name).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepository) GetCustomer(ctx context.Context, id int64) (*customers.Customer, error) {
	c := customers.Customer{ID: id}
	err := r.queryer().QueryRow(ctx, `SELECT name FROM customers WHERE id = $1`, id).Scan(&c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customers.ErrNoSuchCustomer
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepository) IsAllowed(ctx context.Context, customerID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM customer_allow_list WHERE customer_id = $1)`, customerID)
}

func (r *CustomerRepository) Allow(ctx context.Context, customerID int64) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO customer_allow_list (customer_id) VALUES ($1)
ON CONFLICT (customer_id) DO NOTHING`, customerID)
	if isForeignKeyViolation(err, "customer_allow_list_customer_id_fkey") {
		return customers.ErrNoSuchCustomer
	}
	if err != nil {
		return fmt.Errorf("allow customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Disallow(ctx context.Context, customerID int64) (bool, error) {
	ok, err := deleted(r.queryer().Exec(ctx,
		`DELETE FROM customer_allow_list WHERE customer_id = $1`, customerID))
	if err != nil {
		return false, fmt.Errorf("disallow customer: %w", err)
	}
	return ok, nil
}

func (r *CustomerRepository) ListAllowed(ctx context.Context) ([]customers.Customer, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT c.id, c.name
  FROM customer_allow_list al
  JOIN customers c ON c.id = al.customer_id
 ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("list allowed customers: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[customers.Customer])
}

func scanToken(row pgx.Row) (*customers.AccessToken, error) {
	var t customers.AccessToken
	if err := row.Scan(&t.ID, &t.CustomerID, &t.Token, &t.Created); err != nil {
		return nil, err
	}
	t.Created = t.Created.UTC()
	return &t, nil
}

func (r *CustomerRepository) TokenForCustomer(ctx context.Context, customerID int64) (*customers.AccessToken, error) {
	t, err := scanToken(r.queryer().QueryRow(ctx,
		`SELECT id, customer_id, token, created FROM access_tokens WHERE customer_id = $1`, customerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get access token: %w", err)
	}
	return t, nil
}

func (r *CustomerRepository) CustomerByToken(ctx context.Context, token string) (_ *customers.Customer, err error) {
	defer func(start time.Time) { metrics.RecordQuery("customer_by_token", start, err) }(time.Now())

	var c customers.Customer
	err = r.queryer().QueryRow(ctx, `
SELECT c.id, c.name
  FROM access_tokens t
  JOIN customers c ON c.id = t.customer_id
 WHERE t.token = $1`, token).Scan(&c.ID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customers.ErrNoSuchCustomer
	}
	if err != nil {
		return nil, fmt.Errorf("resolve access token: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepository) InsertToken(ctx context.Context, customerID int64, token string) (*customers.AccessToken, error) {
	t, err := scanToken(r.queryer().QueryRow(ctx, `
WITH ins AS (
    INSERT INTO access_tokens (customer_id, token) VALUES ($1, $2)
    ON CONFLICT (customer_id) DO NOTHING
    RETURNING id, customer_id, token, created
)
SELECT id, customer_id, token, created FROM ins
UNION ALL
SELECT id, customer_id, token, created FROM access_tokens WHERE customer_id = $1
LIMIT 1`, customerID, token))
	if isForeignKeyViolation(err, "access_tokens_customer_id_fkey") {
		return nil, customers.ErrNoSuchCustomer
	}
	if err != nil {
		return nil, fmt.Errorf("insert access token: %w", err)
	}
	return t, nil
}

func (r *CustomerRepository) DeleteToken(ctx context.Context, customerID int64) (bool, error) {
	ok, err := deleted(r.queryer().Exec(ctx, `DELETE FROM access_tokens WHERE customer_id = $1`, customerID))
	if err != nil {
		return false, fmt.Errorf("delete access token: %w", err)
	}
	return ok, nil
}
