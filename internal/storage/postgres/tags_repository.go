package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eventdesk/server/internal/domain/events"
)

func (r *EventRepository) ListTags(ctx context.Context, eventID int64) ([]events.Tag, error) {
	rows, err := r.queryer().Query(ctx,
		`SELECT id, event_id, tag FROM event_tags WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[events.Tag])
}

func (r *EventRepository) InsertTag(ctx context.Context, eventID int64, tag string) (*events.Tag, error) {
	t := events.Tag{EventID: eventID, Tag: tag}
	err := r.queryer().QueryRow(ctx, `
WITH ins AS (
    INSERT INTO event_tags (event_id, tag) VALUES ($1, $2)
    ON CONFLICT (event_id, tag) DO NOTHING
    RETURNING id
)
SELECT id FROM ins
UNION ALL
SELECT id FROM event_tags WHERE event_id = $1 AND tag = $2
LIMIT 1`, eventID, tag).Scan(&t.ID)
	if isForeignKeyViolation(err, "event_tags_event_id_fkey") {
		return nil, events.ErrNoSuchEvent
	}
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	return &t, nil
}

func (r *EventRepository) DeleteTagByID(ctx context.Context, eventID, id int64) (bool, error) {
	ok, err := deleted(r.queryer().Exec(ctx,
		`DELETE FROM event_tags WHERE event_id = $1 AND id = $2`, eventID, id))
	if err != nil {
		return false, fmt.Errorf("delete tag: %w", err)
	}
	return ok, nil
}

func (r *EventRepository) DeleteTagByText(ctx context.Context, eventID int64, tag string) (bool, error) {
	ok, err := deleted(r.queryer().Exec(ctx,
		`DELETE FROM event_tags WHERE event_id = $1 AND tag = $2`, eventID, tag))
	if err != nil {
		return false, fmt.Errorf("delete tag: %w", err)
	}
	return ok, nil
}

func (r *EventRepository) DeleteTags(ctx context.Context, eventID int64) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM event_tags WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("delete tags: %w", err)
	}
	return nil
}

func (r *EventRepository) VocabularyContains(ctx context.Context, tag string) (bool, error) {
	var ok bool
	err := r.queryer().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tag_vocabulary WHERE tag = $1)`, tag).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check vocabulary: %w", err)
	}
	return ok, nil
}

func (r *EventRepository) ListVocabulary(ctx context.Context) ([]string, error) {
	rows, err := r.queryer().Query(ctx, `SELECT tag FROM tag_vocabulary ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("list vocabulary: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *EventRepository) InsertVocabulary(ctx context.Context, tag string) error {
	_, err := r.queryer().Exec(ctx,
		`INSERT INTO tag_vocabulary (tag) VALUES ($1) ON CONFLICT (tag) DO NOTHING`, tag)
	if err != nil {
		return fmt.Errorf("insert vocabulary tag: %w", err)
	}
	return nil
}

func (r *EventRepository) DeleteVocabulary(ctx context.Context, tag string) (bool, error) {
	ok, err := deleted(r.queryer().Exec(ctx, `DELETE FROM tag_vocabulary WHERE tag = $1`, tag))
	if err != nil {
		return false, fmt.Errorf("delete vocabulary tag: %w", err)
	}
	return ok, nil
}
