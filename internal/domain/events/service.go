// Package events implements the event aggregate: events, the rows they own
// (editors, images, tags, sub-events, prices and customer links) and the
// rules that decide which events a customer may see.
//
// Every operation that writes more than one row runs in a single
// transaction obtained from Repository.BeginTx.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/eventdesk/server/internal/blob"
	"github.com/eventdesk/server/internal/domain/directory"
	"github.com/eventdesk/server/internal/metrics"
)

type Service struct {
	repo      Repository
	blobs     blob.Store
	logger    zerolog.Logger
	validator *validator.Validate
	now       func() time.Time
	location  *time.Location
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that decides which calendar day it is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewService(repo Repository, blobs blob.Store, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		blobs:     blobs,
		logger:    logger.With().Str("component", "events").Logger(),
		validator: newValidator(),
		now:       time.Now,
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) withTx(ctx context.Context, fn func(repo Repository) error) error {
	txRepo, tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type CreateResult struct {
	Event            *Event
	InvalidTags      []string
	InvalidCustomers []int64
}

type PatchResult struct {
	InvalidTags      []string
	InvalidCustomers []int64
}

// Create stores a new event authored by authorID. No editor row is written;
// authorship is recorded on the event itself. Tags and customers in the
// input are applied with the bulk setters and rejected elements are
// reported in the result.
func (s *Service) Create(ctx context.Context, authorID int64, in EventInput) (CreateResult, error) {
	fields, err := in.normalize(s.validator)
	if err != nil {
		return CreateResult{}, err
	}

	var result CreateResult
	err = s.withTx(ctx, func(repo Repository) error {
		event, err := repo.CreateEvent(ctx, authorID, fields, s.now())
		if err != nil {
			return mapAddressError(err, fields.AddressID)
		}
		result.Event = event

		if in.Tags != nil {
			if result.InvalidTags, err = s.applyTags(ctx, repo, event.ID, in.Tags); err != nil {
				return err
			}
		}
		if in.Customers != nil {
			if result.InvalidCustomers, err = s.applyCustomers(ctx, repo, event.ID, in.Customers); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return CreateResult{}, err
	}

	metrics.EventsCreated.Inc()
	s.logger.Info().
		Int64("event_id", result.Event.ID).
		Int64("author_id", authorID).
		Msg("event created")
	return result, nil
}

// Patch applies the set members of p and appends an editor row for
// accountID.
func (s *Service) Patch(ctx context.Context, eventID, accountID int64, p EventPatch) (PatchResult, error) {
	var result PatchResult
	err := s.withTx(ctx, func(repo Repository) error {
		event, err := repo.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}

		in, err := p.apply(inputFromEvent(*event))
		if err != nil {
			return err
		}
		fields, err := in.normalize(s.validator)
		if err != nil {
			return err
		}
		if err := repo.UpdateEvent(ctx, eventID, fields); err != nil {
			return mapAddressError(err, fields.AddressID)
		}
		if _, err := repo.InsertEditor(ctx, eventID, accountID, s.now()); err != nil {
			return fmt.Errorf("record editor: %w", err)
		}

		if p.Tags.Set {
			if result.InvalidTags, err = s.applyTags(ctx, repo, eventID, p.Tags.Value); err != nil {
				return err
			}
		}
		if p.Customers.Set {
			if result.InvalidCustomers, err = s.applyCustomers(ctx, repo, eventID, p.Customers.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return PatchResult{}, err
	}
	s.logger.Info().Int64("event_id", eventID).Int64("account_id", accountID).Msg("event patched")
	return result, nil
}

// Delete releases the payload of every image of the event, then removes
// the event and all rows it owns.
func (s *Service) Delete(ctx context.Context, eventID int64) error {
	released := 0
	err := s.withTx(ctx, func(repo Repository) error {
		if _, err := repo.GetEvent(ctx, eventID); err != nil {
			return err
		}
		images, err := repo.ListImages(ctx, eventID)
		if err != nil {
			return fmt.Errorf("list images: %w", err)
		}
		for _, image := range images {
			if err := s.releaseImage(ctx, repo, image); err != nil {
				return err
			}
			released++
		}
		if err := repo.DeleteEventChildren(ctx, eventID); err != nil {
			return fmt.Errorf("delete event children: %w", err)
		}
		removed, err := repo.DeleteEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		if !removed {
			return ErrNoSuchEvent
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.EventsDeleted.Inc()
	s.logger.Info().Int64("event_id", eventID).Int("images_released", released).Msg("event deleted")
	return nil
}

func (s *Service) Get(ctx context.Context, eventID int64) (*Event, error) {
	return s.repo.GetEvent(ctx, eventID)
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.ListEvents(ctx)
}

// Details loads the event and every row it owns.
func (s *Service) Details(ctx context.Context, eventID int64) (*Details, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.loadDetails(ctx, *event)
}

func (s *Service) ListDetails(ctx context.Context) ([]Details, error) {
	list, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.detailsOf(ctx, list)
}

func (s *Service) detailsOf(ctx context.Context, list []Event) ([]Details, error) {
	out := make([]Details, 0, len(list))
	for _, event := range list {
		d, err := s.loadDetails(ctx, event)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *Service) loadDetails(ctx context.Context, event Event) (*Details, error) {
	d := &Details{Event: event}
	var err error
	if d.Editors, err = s.repo.ListEditors(ctx, event.ID); err != nil {
		return nil, fmt.Errorf("list editors: %w", err)
	}
	if d.Images, err = s.repo.ListImages(ctx, event.ID); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	if d.Tags, err = s.repo.ListTags(ctx, event.ID); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if d.SubEvents, err = s.repo.ListSubEvents(ctx, event.ID); err != nil {
		return nil, fmt.Errorf("list sub-events: %w", err)
	}
	if d.Prices, err = s.repo.ListPrices(ctx, event.ID); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	if d.Customers, err = s.repo.ListEventCustomers(ctx, event.ID); err != nil {
		return nil, fmt.Errorf("list event customers: %w", err)
	}
	return d, nil
}

func (s *Service) Editors(ctx context.Context, eventID int64) ([]Editor, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListEditors(ctx, eventID)
}

func mapAddressError(err error, addressID int64) error {
	if errors.Is(err, directory.ErrNoSuchAddress) {
		return InvalidDataError{Field: "address", Value: addressID}
	}
	return err
}
