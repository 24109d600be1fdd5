package events

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// VisibleEvents returns the events customerID is linked to that are active
// at now, in id order.
func (s *Service) VisibleEvents(ctx context.Context, customerID int64, now time.Time) ([]Details, error) {
	linked, err := s.repo.ListCustomerEvents(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer events: %w", err)
	}
	day := DateOf(now, s.location)
	active := linked[:0]
	for _, event := range linked {
		if event.ActiveOn(day) {
			active = append(active, event)
		}
	}
	return s.detailsOf(ctx, active)
}

// VisibleEvent returns ErrNoSuchEvent alike for a missing event, an
// inactive one, and one the customer is not linked to.
func (s *Service) VisibleEvent(ctx context.Context, customerID, eventID int64, now time.Time) (*Details, error) {
	event, err := s.visibleEvent(ctx, customerID, eventID, now)
	if err != nil {
		return nil, err
	}
	return s.loadDetails(ctx, *event)
}

func (s *Service) visibleEvent(ctx context.Context, customerID, eventID int64, now time.Time) (*Event, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !IsActive(*event, now, s.location) {
		return nil, ErrNoSuchEvent
	}
	links, err := s.repo.ListEventCustomers(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event customers: %w", err)
	}
	for _, link := range links {
		if link.Customer.ID == customerID {
			return event, nil
		}
	}
	return nil, ErrNoSuchEvent
}

// VisibleImage returns an image and its payload if the image's event is
// visible to the customer. Every failure reads as ErrNoSuchImage.
func (s *Service) VisibleImage(ctx context.Context, customerID, imageID int64, now time.Time) (*Image, []byte, error) {
	image, err := s.repo.GetImage(ctx, imageID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.visibleEvent(ctx, customerID, image.EventID, now); err != nil {
		if errors.Is(err, ErrNoSuchEvent) {
			return nil, nil, ErrNoSuchImage
		}
		return nil, nil, err
	}
	return s.imageData(ctx, image)
}
