package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eventdesk/server/internal/domain/directory"
	"github.com/eventdesk/server/internal/domain/events"
)

const imageColumns = `
SELECT i.id, i.event_id, a.id, a.name, i.blob_key, i.mime_type, i.size_bytes, i.uploaded, i.source
  FROM images i
  JOIN accounts a ON a.id = i.account_id`

func scanImage(row pgx.Row) (events.Image, error) {
	var img events.Image
	err := row.Scan(&img.ID, &img.EventID, &img.Account.ID, &img.Account.Name,
		&img.BlobKey, &img.MimeType, &img.Size, &img.Uploaded, &img.Source)
	img.Uploaded = img.Uploaded.UTC()
	return img, err
}

func (r *EventRepository) listImages(ctx context.Context, where string, args ...any) ([]events.Image, error) {
	rows, err := r.queryer().Query(ctx, imageColumns+where+` ORDER BY i.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.Image, error) {
		return scanImage(row)
	})
}

func (r *EventRepository) ListImages(ctx context.Context, eventID int64) ([]events.Image, error) {
	return r.listImages(ctx, ` WHERE i.event_id = $1`, eventID)
}

func (r *EventRepository) ListAllImages(ctx context.Context) ([]events.Image, error) {
	return r.listImages(ctx, "")
}

func (r *EventRepository) GetImage(ctx context.Context, id int64) (*events.Image, error) {
	img, err := scanImage(r.queryer().QueryRow(ctx, imageColumns+` WHERE i.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNoSuchImage
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &img, nil
}

func (r *EventRepository) InsertImage(ctx context.Context, params events.ImageCreateParams) (*events.Image, error) {
	var id int64
	err := r.queryer().QueryRow(ctx, `
INSERT INTO images (event_id, account_id, blob_key, mime_type, size_bytes, uploaded, source)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`,
		params.EventID, params.AccountID, params.BlobKey, params.MimeType,
		params.Size, params.Uploaded, params.Source,
	).Scan(&id)
	if isForeignKeyViolation(err, "images_event_id_fkey") {
		return nil, events.ErrNoSuchEvent
	}
	if isForeignKeyViolation(err, "images_account_id_fkey") {
		return nil, directory.ErrNoSuchAccount
	}
	if err != nil {
		return nil, fmt.Errorf("insert image: %w", err)
	}
	return r.GetImage(ctx, id)
}

func (r *EventRepository) UpdateImageSource(ctx context.Context, id int64, source *string) error {
	tag, err := r.queryer().Exec(ctx, `UPDATE images SET source = $2 WHERE id = $1`, id, source)
	if err != nil {
		return fmt.Errorf("update image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNoSuchImage
	}
	return nil
}

func (r *EventRepository) DeleteImage(ctx context.Context, id int64) (bool, error) {
	ok, err := deleted(r.queryer().Exec(ctx, `DELETE FROM images WHERE id = $1`, id))
	if err != nil {
		return false, fmt.Errorf("delete image: %w", err)
	}
	return ok, nil
}
