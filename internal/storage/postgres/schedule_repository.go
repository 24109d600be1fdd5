package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/eventdesk/server/internal/domain/events"
)

func (r *EventRepository) ListSubEvents(ctx context.Context, eventID int64) ([]events.SubEvent, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, event_id, starts_at, caption
  FROM sub_events
 WHERE event_id = $1
 ORDER BY id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list sub-events: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.SubEvent, error) {
		var s events.SubEvent
		err := row.Scan(&s.ID, &s.EventID, &s.Timestamp, &s.Caption)
		s.Timestamp = s.Timestamp.UTC()
		return s, err
	})
}

func (r *EventRepository) GetSubEvent(ctx context.Context, eventID, id int64) (*events.SubEvent, error) {
	s := events.SubEvent{ID: id, EventID: eventID}
	err := r.queryer().QueryRow(ctx,
		`SELECT starts_at, caption FROM sub_events WHERE event_id = $1 AND id = $2`,
		eventID, id,
	).Scan(&s.Timestamp, &s.Caption)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNoSuchSubEvent
	}
	if err != nil {
		return nil, fmt.Errorf("get sub-event: %w", err)
	}
	s.Timestamp = s.Timestamp.UTC()
	return &s, nil
}

func (r *EventRepository) InsertSubEvent(ctx context.Context, eventID int64, timestamp time.Time, caption *string) (*events.SubEvent, error) {
	s := events.SubEvent{EventID: eventID, Timestamp: timestamp.UTC(), Caption: caption}
	err := r.queryer().QueryRow(ctx,
		`INSERT INTO sub_events (event_id, starts_at, caption) VALUES ($1, $2, $3) RETURNING id`,
		eventID, timestamp, caption,
	).Scan(&s.ID)
	if isForeignKeyViolation(err, "sub_events_event_id_fkey") {
		return nil, events.ErrNoSuchEvent
	}
	if err != nil {
		return nil, fmt.Errorf("insert sub-event: %w", err)
	}
	return &s, nil
}

func (r *EventRepository) UpdateSubEvent(ctx context.Context, sub events.SubEvent) error {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE sub_events SET starts_at = $3, caption = $4 WHERE event_id = $1 AND id = $2`,
		sub.EventID, sub.ID, sub.Timestamp, sub.Caption)
	if err != nil {
		return fmt.Errorf("update sub-event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNoSuchSubEvent
	}
	return nil
}

func (r *EventRepository) DeleteSubEvent(ctx context.Context, eventID, id int64) (bool, error) {
	ok, err := deleted(r.queryer().Exec(ctx,
		`DELETE FROM sub_events WHERE event_id = $1 AND id = $2`, eventID, id))
	if err != nil {
		return false, fmt.Errorf("delete sub-event: %w", err)
	}
	return ok, nil
}

// Prices travel as text so NUMERIC(8,2) round-trips through decimal.Decimal
// without float conversion.
const priceColumns = `SELECT id, event_id, value::text, currency, caption FROM prices`

func scanPrice(row pgx.Row) (events.Price, error) {
	var (
		p        events.Price
		value    string
		currency string
	)
	if err := row.Scan(&p.ID, &p.EventID, &value, &currency, &p.Caption); err != nil {
		return p, err
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return p, fmt.Errorf("parse price value %q: %w", value, err)
	}
	p.Value = v
	p.Currency = events.Currency(currency)
	return p, nil
}

func (r *EventRepository) ListPrices(ctx context.Context, eventID int64) ([]events.Price, error) {
	rows, err := r.queryer().Query(ctx, priceColumns+` WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.Price, error) {
		return scanPrice(row)
	})
}

func (r *EventRepository) GetPrice(ctx context.Context, id int64) (*events.Price, error) {
	p, err := scanPrice(r.queryer().QueryRow(ctx, priceColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNoSuchPrice
	}
	if err != nil {
		return nil, fmt.Errorf("get price: %w", err)
	}
	return &p, nil
}

func (r *EventRepository) InsertPrice(ctx context.Context, eventID int64, value decimal.Decimal, currency events.Currency, caption *string) (*events.Price, error) {
	p, err := scanPrice(r.queryer().QueryRow(ctx, `
INSERT INTO prices (event_id, value, currency, caption)
VALUES ($1, $2::text::numeric, $3, $4)
RETURNING id, event_id, value::text, currency, caption`,
		eventID, value.String(), string(currency), caption))
	if isForeignKeyViolation(err, "prices_event_id_fkey") {
		return nil, events.ErrNoSuchEvent
	}
	if err != nil {
		return nil, fmt.Errorf("insert price: %w", err)
	}
	return &p, nil
}

func (r *EventRepository) UpdatePrice(ctx context.Context, price events.Price) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE prices SET value = $2::text::numeric, currency = $3, caption = $4 WHERE id = $1`,
		price.ID, price.Value.String(), string(price.Currency), price.Caption)
	if err != nil {
		return fmt.Errorf("update price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNoSuchPrice
	}
	return nil
}

func (r *EventRepository) DeletePrice(ctx context.Context, id int64) (bool, error) {
	ok, err := deleted(r.queryer().Exec(ctx, `DELETE FROM prices WHERE id = $1`, id))
	if err != nil {
		return false, fmt.Errorf("delete price: %w", err)
	}
	return ok, nil
}
