package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/eventdesk/server/internal/domain/directory"
	"github.com/eventdesk/server/internal/domain/events"
	"github.com/eventdesk/server/internal/metrics"
)

// EventRepository implements events.Repository.
type EventRepository struct {
	conn
}

var _ events.Repository = (*EventRepository)(nil)

// BeginTx returns a repository bound to a new transaction. Inside an open
// transaction it nests through a savepoint.
func (r *EventRepository) BeginTx(ctx context.Context) (events.Repository, events.TxCommitter, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	return &EventRepository{conn: conn{pool: r.pool, tx: tx}}, tx, nil
}

const eventColumns = `
SELECT e.id, e.created, e.title, e.subtitle, e.begin_date,
       to_char(e.begin_time, 'HH24:MI:SS'), e.end_date, e.active_until,
       a.id, a.name,
       ad.id, ad.street, ad.house_number, ad.zip_code, ad.city
  FROM events e
  JOIN accounts a ON a.id = e.author_id
  JOIN addresses ad ON ad.id = e.address_id`

func scanEvent(row pgx.Row) (*events.Event, error) {
	var e events.Event
	err := row.Scan(
		&e.ID, &e.Created, &e.Title, &e.Subtitle, &e.BeginDate,
		&e.BeginTime, &e.End, &e.ActiveUntil,
		&e.Author.ID, &e.Author.Name,
		&e.Address.ID, &e.Address.Street, &e.Address.HouseNumber, &e.Address.ZipCode, &e.Address.City,
	)
	if err != nil {
		return nil, err
	}
	e.Created = e.Created.UTC()
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	defer rows.Close()
	var out []events.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func mapEventWriteError(err error) error {
	if isForeignKeyViolation(err, "events_address_id_fkey") {
		return directory.ErrNoSuchAddress
	}
	if isForeignKeyViolation(err, "events_author_id_fkey") {
		return directory.ErrNoSuchAccount
	}
	code, constraint := pgErrorCode(err)
	if code == pgCheckViolation {
		switch constraint {
		case "events_end_not_before_begin":
			return events.InvalidDataError{Field: "end", Value: "before begin_date"}
		case "events_active_until_not_before_begin":
			return events.InvalidDataError{Field: "active_until", Value: "before begin_date"}
		}
	}
	return err
}

func (r *EventRepository) CreateEvent(ctx context.Context, authorID int64, fields events.EventFields, created time.Time) (_ *events.Event, err error) {
	defer func(start time.Time) { metrics.RecordQuery("create_event", start, err) }(time.Now())

	var id int64
	err = r.queryer().QueryRow(ctx, `
INSERT INTO events (author_id, created, title, subtitle, address_id, begin_date, begin_time, end_date, active_until)
VALUES ($1, $2, $3, $4, $5, $6::date, $7::text::time, $8::date, $9::date)
RETURNING id`,
		authorID, created, fields.Title, fields.Subtitle, fields.AddressID,
		fields.BeginDate, fields.BeginTime, fields.End, fields.ActiveUntil,
	).Scan(&id)
	if err != nil {
		return nil, mapEventWriteError(err)
	}
	return r.GetEvent(ctx, id)
}

func (r *EventRepository) GetEvent(ctx context.Context, id int64) (_ *events.Event, err error) {
	defer func(start time.Time) { metrics.RecordQuery("get_event", start, err) }(time.Now())

	e, err := scanEvent(r.queryer().QueryRow(ctx, eventColumns+` WHERE e.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNoSuchEvent
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) ListEvents(ctx context.Context) (_ []events.Event, err error) {
	defer func(start time.Time) { metrics.RecordQuery("list_events", start, err) }(time.Now())

	rows, err := r.queryer().Query(ctx, eventColumns+` ORDER BY e.id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) ListCustomerEvents(ctx context.Context, customerID int64) (_ []events.Event, err error) {
	defer func(start time.Time) { metrics.RecordQuery("list_customer_events", start, err) }(time.Now())

	rows, err := r.queryer().Query(ctx, eventColumns+`
  JOIN event_customers ec ON ec.event_id = e.id
 WHERE ec.customer_id = $1
 ORDER BY e.id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) UpdateEvent(ctx context.Context, id int64, fields events.EventFields) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET title = $2, subtitle = $3, address_id = $4, begin_date = $5::date,
       begin_time = $6::text::time, end_date = $7::date, active_until = $8::date
 WHERE id = $1`,
		id, fields.Title, fields.Subtitle, fields.AddressID,
		fields.BeginDate, fields.BeginTime, fields.End, fields.ActiveUntil,
	)
	if err != nil {
		return mapEventWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNoSuchEvent
	}
	return nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	ok, err := deleted(r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id))
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	return ok, nil
}

func (r *EventRepository) DeleteEventChildren(ctx context.Context, eventID int64) error {
	batch := &pgx.Batch{}
	for _, table := range []string{"event_editors", "event_tags", "sub_events", "prices", "event_customers"} {
		batch.Queue(`DELETE FROM `+table+` WHERE event_id = $1`, eventID)
	}
	if err := r.queryer().SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("delete event children: %w", err)
	}
	return nil
}

func (r *EventRepository) ListEditors(ctx context.Context, eventID int64) ([]events.Editor, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT ed.id, ed.event_id, a.id, a.name, ed.edited_at
  FROM event_editors ed
  JOIN accounts a ON a.id = ed.account_id
 WHERE ed.event_id = $1
 ORDER BY ed.id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list editors: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.Editor, error) {
		var e events.Editor
		err := row.Scan(&e.ID, &e.EventID, &e.Account.ID, &e.Account.Name, &e.Timestamp)
		e.Timestamp = e.Timestamp.UTC()
		return e, err
	})
}

func (r *EventRepository) InsertEditor(ctx context.Context, eventID, accountID int64, at time.Time) (*events.Editor, error) {
	e := events.Editor{EventID: eventID}
	err := r.queryer().QueryRow(ctx, `
WITH ins AS (
    INSERT INTO event_editors (event_id, account_id, edited_at)
    VALUES ($1, $2, $3)
    RETURNING id, account_id, edited_at
)
SELECT ins.id, a.id, a.name, ins.edited_at
  FROM ins
  JOIN accounts a ON a.id = ins.account_id`,
		eventID, accountID, at,
	).Scan(&e.ID, &e.Account.ID, &e.Account.Name, &e.Timestamp)
	if isForeignKeyViolation(err, "event_editors_event_id_fkey") {
		return nil, events.ErrNoSuchEvent
	}
	if isForeignKeyViolation(err, "event_editors_account_id_fkey") {
		return nil, directory.ErrNoSuchAccount
	}
	if err != nil {
		return nil, fmt.Errorf("insert editor: %w", err)
	}
	e.Timestamp = e.Timestamp.UTC()
	return &e, nil
}
