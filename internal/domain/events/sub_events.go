package events

import (
	"context"
	"time"
)

type SubEventInput struct {
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Caption   *string   `json:"caption" validate:"omitempty,max=255"`
}

type SubEventPatch struct {
	Timestamp Optional[time.Time] `json:"timestamp"`
	Caption   Optional[string]    `json:"caption"`
}

func (s *Service) SubEvents(ctx context.Context, eventID int64) ([]SubEvent, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListSubEvents(ctx, eventID)
}

func (s *Service) SubEvent(ctx context.Context, eventID, subEventID int64) (*SubEvent, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.GetSubEvent(ctx, eventID, subEventID)
}

func (s *Service) AddSubEvent(ctx context.Context, eventID int64, in SubEventInput) (*SubEvent, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.InsertSubEvent(ctx, eventID, in.Timestamp, in.Caption)
}

func (s *Service) PatchSubEvent(ctx context.Context, eventID, subEventID int64, p SubEventPatch) (*SubEvent, error) {
	sub, err := s.SubEvent(ctx, eventID, subEventID)
	if err != nil {
		return nil, err
	}
	if p.Timestamp.Set {
		if p.Timestamp.Null || p.Timestamp.Value.IsZero() {
			return nil, MissingDataError{Field: "timestamp"}
		}
		sub.Timestamp = p.Timestamp.Value
	}
	if p.Caption.Set {
		sub.Caption = p.Caption.Ptr()
		if sub.Caption != nil && len(*sub.Caption) > 255 {
			return nil, InvalidDataError{Field: "caption", Value: *sub.Caption}
		}
	}
	if err := s.repo.UpdateSubEvent(ctx, *sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) DeleteSubEvent(ctx context.Context, eventID, subEventID int64) (bool, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return false, err
	}
	return s.repo.DeleteSubEvent(ctx, eventID, subEventID)
}
