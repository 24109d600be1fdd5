package events

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/eventdesk/server/internal/blob"
	"github.com/eventdesk/server/internal/metrics"
)

// ImageMetadata accompanies an uploaded payload.
type ImageMetadata struct {
	Source *string `json:"source"`
}

type ImagePatch struct {
	Source Optional[string] `json:"source"`
}

func (s *Service) Images(ctx context.Context, eventID int64) ([]Image, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListImages(ctx, eventID)
}

func (s *Service) AllImages(ctx context.Context) ([]Image, error) {
	return s.repo.ListAllImages(ctx)
}

func (s *Service) Image(ctx context.Context, imageID int64) (*Image, error) {
	return s.repo.GetImage(ctx, imageID)
}

// ImageData returns the image row and its payload.
func (s *Service) ImageData(ctx context.Context, imageID int64) (*Image, []byte, error) {
	image, err := s.repo.GetImage(ctx, imageID)
	if err != nil {
		return nil, nil, err
	}
	return s.imageData(ctx, image)
}

func (s *Service) imageData(ctx context.Context, image *Image) (*Image, []byte, error) {
	data, err := s.blobs.Get(ctx, image.BlobKey)
	if errors.Is(err, blob.ErrNotFound) {
		s.logger.Warn().Int64("image_id", image.ID).Str("blob_key", image.BlobKey).Msg("image payload missing")
		return nil, nil, ErrNoSuchImage
	}
	if err != nil {
		return nil, nil, fmt.Errorf("fetch image payload: %w", err)
	}
	return image, data, nil
}

// AddImage stores data in the blob store and records it for the event.
// The payload is removed again if the row cannot be written.
func (s *Service) AddImage(ctx context.Context, eventID, accountID int64, data []byte, meta ImageMetadata) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrNoImageProvided
	}
	if meta.Source == nil || strings.TrimSpace(*meta.Source) == "" {
		return nil, MissingDataError{Field: "source"}
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	now := s.now()
	key := blob.NewKey(now)
	mimeType := http.DetectContentType(data)
	if err := s.blobs.Put(ctx, key, data, mimeType); err != nil {
		return nil, fmt.Errorf("store image payload: %w", err)
	}

	image, err := s.repo.InsertImage(ctx, ImageCreateParams{
		EventID:   eventID,
		AccountID: accountID,
		BlobKey:   key,
		MimeType:  mimeType,
		Size:      int64(len(data)),
		Uploaded:  now,
		Source:    meta.Source,
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Error().Err(delErr).Str("blob_key", key).Msg("orphaned image payload")
		}
		return nil, fmt.Errorf("insert image: %w", err)
	}
	s.logger.Info().Int64("event_id", eventID).Int64("image_id", image.ID).Str("mimetype", mimeType).Msg("image added")
	return image, nil
}

// PatchImage updates the source citation. Everything else about an image
// is fixed at upload.
func (s *Service) PatchImage(ctx context.Context, imageID int64, p ImagePatch) error {
	if _, err := s.repo.GetImage(ctx, imageID); err != nil {
		return err
	}
	if !p.Source.Set {
		return nil
	}
	return s.repo.UpdateImageSource(ctx, imageID, p.Source.Ptr())
}

// DeleteImage releases the payload and removes the row.
func (s *Service) DeleteImage(ctx context.Context, imageID int64) (bool, error) {
	removed := false
	err := s.withTx(ctx, func(repo Repository) error {
		image, err := repo.GetImage(ctx, imageID)
		if errors.Is(err, ErrNoSuchImage) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.releaseImage(ctx, repo, *image); err != nil {
			return err
		}
		removed = true
		return nil
	})
	return removed, err
}

// releaseImage frees the payload before the row goes away so a failed
// release leaves the row in place.
func (s *Service) releaseImage(ctx context.Context, repo Repository, image Image) error {
	if err := s.blobs.Delete(ctx, image.BlobKey); err != nil {
		metrics.BlobsReleased.WithLabelValues("error").Inc()
		return fmt.Errorf("release image %d: %w", image.ID, err)
	}
	metrics.BlobsReleased.WithLabelValues("ok").Inc()
	if _, err := repo.DeleteImage(ctx, image.ID); err != nil {
		return fmt.Errorf("delete image %d: %w", image.ID, err)
	}
	return nil
}
