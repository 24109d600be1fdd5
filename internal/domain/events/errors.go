package events

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eventdesk/server/internal/domain/customers"
)

var (
	ErrNoSuchEvent    = errors.New("no such event")
	ErrNoSuchImage    = errors.New("no such image")
	ErrNoSuchTag      = errors.New("no such tag")
	ErrNoSuchSubEvent = errors.New("no such sub-event")
	ErrNoSuchPrice    = errors.New("no such price")
	ErrNoSuchCustomer = customers.ErrNoSuchCustomer

	ErrNoImageProvided    = errors.New("no image provided")
	ErrNoMetaDataProvided = errors.New("no metadata provided")
)

// MissingDataError reports a required field that is absent or null.
type MissingDataError struct {
	Field string
}

func (e MissingDataError) Error() string {
	return fmt.Sprintf("missing data: %s", e.Field)
}

// InvalidDataError reports a field that is present but unusable.
type InvalidDataError struct {
	Field string
	Value any
}

func (e InvalidDataError) Error() string {
	return fmt.Sprintf("invalid data: %s=%v", e.Field, e.Value)
}

// InvalidTagError reports a tag that is not part of the vocabulary.
type InvalidTagError struct {
	Tag string
}

func (e InvalidTagError) Error() string {
	return fmt.Sprintf("invalid tag: %q", e.Tag)
}

type InvalidCustomerError = customers.InvalidCustomerError

// InvalidElementsError is returned by the bulk setters when some elements
// were skipped. The remaining elements were applied.
type InvalidElementsError[T any] struct {
	Relation string
	Elements []T
}

func (e InvalidElementsError[T]) Error() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = fmt.Sprint(el)
	}
	return fmt.Sprintf("invalid %s: %s", e.Relation, strings.Join(parts, ", "))
}
