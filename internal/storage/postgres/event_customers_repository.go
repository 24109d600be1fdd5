package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eventdesk/server/internal/domain/events"
)

func (r *EventRepository) ListEventCustomers(ctx context.Context, eventID int64) ([]events.EventCustomer, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT ec.id, ec.event_id, c.id, c.name
  FROM event_customers ec
  JOIN customers c ON c.id = ec.customer_id
 WHERE ec.event_id = $1
 ORDER BY ec.id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event customers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.EventCustomer, error) {
		var ec events.EventCustomer
		err := row.Scan(&ec.ID, &ec.EventID, &ec.Customer.ID, &ec.Customer.Name)
		return ec, err
	})
}

func (r *EventRepository) InsertEventCustomer(ctx context.Context, eventID, customerID int64) (*events.EventCustomer, error) {
	ec := events.EventCustomer{EventID: eventID}
	err := r.queryer().QueryRow(ctx, `
WITH ins AS (
    INSERT INTO event_customers (event_id, customer_id) VALUES ($1, $2)
    ON CONFLICT (event_id, customer_id) DO NOTHING
    RETURNING id
), link AS (
    SELECT id FROM ins
    UNION ALL
    SELECT id FROM event_customers WHERE event_id = $1 AND customer_id = $2
    LIMIT 1
)
SELECT link.id, c.id, c.name
  FROM link
  JOIN customers c ON c.id = $2`, eventID, customerID,
	).Scan(&ec.ID, &ec.Customer.ID, &ec.Customer.Name)
	if isForeignKeyViolation(err, "event_customers_event_id_fkey") {
		return nil, events.ErrNoSuchEvent
	}
	if isForeignKeyViolation(err, "event_customers_customer_id_fkey") {
		return nil, events.ErrNoSuchCustomer
	}
	if err != nil {
		return nil, fmt.Errorf("insert event customer: %w", err)
	}
	return &ec, nil
}

func (r *EventRepository) DeleteEventCustomer(ctx context.Context, eventID, customerID int64) (bool, error) {
	ok, err := deleted(r.queryer().Exec(ctx,
		`DELETE FROM event_customers WHERE event_id = $1 AND customer_id = $2`, eventID, customerID))
	if err != nil {
		return false, fmt.Errorf("delete event customer: %w", err)
	}
	return ok, nil
}

func (r *EventRepository) DeleteEventCustomers(ctx context.Context, eventID int64) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM event_customers WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("delete event customers: %w", err)
	}
	return nil
}

func (r *EventRepository) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, customerID)
}

func (r *EventRepository) CustomerAllowed(ctx context.Context, customerID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM customer_allow_list WHERE customer_id = $1)`, customerID)
}

func (c conn) exists(ctx context.Context, sql string, args ...any) (bool, error) {
	var ok bool
	if err := c.queryer().QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists query: %w", err)
	}
	return ok, nil
}
