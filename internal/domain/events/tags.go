package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/eventdesk/server/internal/metrics"
)

// TagKey names an event tag either by row id or by its text.
type TagKey struct {
	id     int64
	text   string
	byText bool
}

func TagByID(id int64) TagKey {
	return TagKey{id: id}
}

func TagByText(text string) TagKey {
	return TagKey{text: text, byText: true}
}

// ParseTagKey reads a path segment: an integer is a row id, anything else
// is tag text.
func ParseTagKey(segment string) TagKey {
	if id, err := strconv.ParseInt(segment, 10, 64); err == nil {
		return TagByID(id)
	}
	return TagByText(segment)
}

func (k TagKey) ID() (int64, bool) {
	return k.id, !k.byText
}

func (k TagKey) Text() (string, bool) {
	return k.text, k.byText
}

func (k TagKey) String() string {
	if k.byText {
		return k.text
	}
	return strconv.FormatInt(k.id, 10)
}

func (s *Service) Tags(ctx context.Context, eventID int64) ([]Tag, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListTags(ctx, eventID)
}

// AddTag attaches tag to the event. With validate set the tag must be in
// the vocabulary; only trusted callers pass false. Adding a tag twice
// returns the existing row.
func (s *Service) AddTag(ctx context.Context, eventID int64, tag string, validate bool) (*Tag, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.addTag(ctx, s.repo, eventID, tag, validate)
}

func (s *Service) addTag(ctx context.Context, repo Repository, eventID int64, tag string, validate bool) (*Tag, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, MissingDataError{Field: "tag"}
	}
	if validate {
		known, err := repo.VocabularyContains(ctx, tag)
		if err != nil {
			return nil, fmt.Errorf("check vocabulary: %w", err)
		}
		if !known {
			return nil, InvalidTagError{Tag: tag}
		}
	}
	return repo.InsertTag(ctx, eventID, tag)
}

func (s *Service) DeleteTag(ctx context.Context, eventID int64, key TagKey) (bool, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return false, err
	}
	if text, ok := key.Text(); ok {
		return s.repo.DeleteTagByText(ctx, eventID, text)
	}
	id, _ := key.ID()
	return s.repo.DeleteTagByID(ctx, eventID, id)
}

// SetTags replaces the event's tags. Tags outside the vocabulary are
// skipped and returned.
func (s *Service) SetTags(ctx context.Context, eventID int64, tags []string) ([]string, error) {
	var invalid []string
	err := s.withTx(ctx, func(repo Repository) error {
		if _, err := repo.GetEvent(ctx, eventID); err != nil {
			return err
		}
		var err error
		invalid, err = s.applyTags(ctx, repo, eventID, tags)
		return err
	})
	return invalid, err
}

func (s *Service) applyTags(ctx context.Context, repo Repository, eventID int64, tags []string) ([]string, error) {
	err := s.setTags(ctx, repo, eventID, tags)
	var partial InvalidElementsError[string]
	if errors.As(err, &partial) {
		metrics.InvalidElements.WithLabelValues("tags").Add(float64(len(partial.Elements)))
		return partial.Elements, nil
	}
	if err != nil {
		return nil, err
	}
	return []string{}, nil
}

func (s *Service) setTags(ctx context.Context, repo Repository, eventID int64, tags []string) error {
	if err := repo.DeleteTags(ctx, eventID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	var invalid []string
	for _, tag := range tags {
		_, err := s.addTag(ctx, repo, eventID, tag, true)
		var invalidTag InvalidTagError
		var missing MissingDataError
		switch {
		case errors.As(err, &invalidTag), errors.As(err, &missing):
			invalid = append(invalid, tag)
		case err != nil:
			return err
		}
	}
	if len(invalid) > 0 {
		return InvalidElementsError[string]{Relation: "tags", Elements: invalid}
	}
	return nil
}
