package events

import (
	"context"
	"fmt"
	"strings"
)

// Vocabulary returns the tags events may carry, sorted.
func (s *Service) Vocabulary(ctx context.Context) ([]string, error) {
	return s.repo.ListVocabulary(ctx)
}

func (s *Service) AddVocabularyTag(ctx context.Context, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return MissingDataError{Field: "tag"}
	}
	if len(tag) > 255 {
		return InvalidDataError{Field: "tag", Value: tag}
	}
	if err := s.repo.InsertVocabulary(ctx, tag); err != nil {
		return fmt.Errorf("add vocabulary tag: %w", err)
	}
	return nil
}

// RemoveVocabularyTag stops tag from being added to events. Events that
// already carry it keep it.
func (s *Service) RemoveVocabularyTag(ctx context.Context, tag string) (bool, error) {
	return s.repo.DeleteVocabulary(ctx, strings.TrimSpace(tag))
}
