package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Optional distinguishes an absent JSON member from an explicit null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Null = true
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns nil for null, a pointer to the value otherwise.
func (o Optional[T]) Ptr() *T {
	if o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// EventInput is the body of an event creation request.
type EventInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Subtitle    *string  `json:"subtitle" validate:"omitempty,max=255"`
	Address     int64    `json:"address" validate:"required,gt=0"`
	BeginDate   string   `json:"begin_date" validate:"required,datetime=2006-01-02"`
	BeginTime   *string  `json:"begin_time"`
	End         *string  `json:"end" validate:"omitempty,datetime=2006-01-02"`
	ActiveUntil *string  `json:"active_until" validate:"omitempty,datetime=2006-01-02"`
	Tags        []string `json:"tags" validate:"-"`
	Customers   []int64  `json:"customers" validate:"-"`
}

// EventPatch is the body of an event PATCH request. Unset members are left
// untouched.
type EventPatch struct {
	Title       Optional[string]   `json:"title"`
	Subtitle    Optional[string]   `json:"subtitle"`
	Address     Optional[int64]    `json:"address"`
	BeginDate   Optional[string]   `json:"begin_date"`
	BeginTime   Optional[string]   `json:"begin_time"`
	End         Optional[string]   `json:"end"`
	ActiveUntil Optional[string]   `json:"active_until"`
	Tags        Optional[[]string] `json:"tags"`
	Customers   Optional[[]int64]  `json:"customers"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// validationError turns the first validator failure into a domain error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	first := verrs[0]
	if first.Tag() == "required" {
		return MissingDataError{Field: first.Field()}
	}
	return InvalidDataError{Field: first.Field(), Value: first.Value()}
}

// normalize validates the input and converts it to storable fields. The
// first violation found, in field order, is returned.
func (in EventInput) normalize(v *validator.Validate) (EventFields, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := v.Struct(in); err != nil {
		return EventFields{}, validationError(err)
	}

	fields := EventFields{
		Title:     in.Title,
		Subtitle:  in.Subtitle,
		AddressID: in.Address,
	}

	begin, err := time.Parse(DateLayout, in.BeginDate)
	if err != nil {
		return EventFields{}, InvalidDataError{Field: "begin_date", Value: in.BeginDate}
	}
	fields.BeginDate = begin

	if in.BeginTime != nil {
		t, err := parseTimeOfDay(*in.BeginTime)
		if err != nil {
			return EventFields{}, InvalidDataError{Field: "begin_time", Value: *in.BeginTime}
		}
		fields.BeginTime = &t
	}

	if in.End != nil {
		end, err := time.Parse(DateLayout, *in.End)
		if err != nil || end.Before(begin) {
			return EventFields{}, InvalidDataError{Field: "end", Value: *in.End}
		}
		fields.End = &end
	}

	if in.ActiveUntil != nil {
		until, err := time.Parse(DateLayout, *in.ActiveUntil)
		if err != nil || until.Before(begin) {
			return EventFields{}, InvalidDataError{Field: "active_until", Value: *in.ActiveUntil}
		}
		fields.ActiveUntil = &until
	}

	return fields, nil
}

// parseTimeOfDay accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func parseTimeOfDay(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", errors.New("invalid time of day")
}

// inputFromEvent renders the stored event back into request form so a
// patch can be validated exactly like a creation.
func inputFromEvent(e Event) EventInput {
	in := EventInput{
		Title:     e.Title,
		Subtitle:  e.Subtitle,
		Address:   e.Address.ID,
		BeginDate: e.BeginDate.Format(DateLayout),
		BeginTime: e.BeginTime,
	}
	if e.End != nil {
		s := e.End.Format(DateLayout)
		in.End = &s
	}
	if e.ActiveUntil != nil {
		s := e.ActiveUntil.Format(DateLayout)
		in.ActiveUntil = &s
	}
	return in
}

// apply overlays the set members of p onto in. Required members cannot be
// cleared.
func (p EventPatch) apply(in EventInput) (EventInput, error) {
	if p.Title.Set {
		if p.Title.Null {
			return in, MissingDataError{Field: "title"}
		}
		in.Title = p.Title.Value
	}
	if p.Subtitle.Set {
		in.Subtitle = p.Subtitle.Ptr()
	}
	if p.Address.Set {
		if p.Address.Null {
			return in, MissingDataError{Field: "address"}
		}
		in.Address = p.Address.Value
	}
	if p.BeginDate.Set {
		if p.BeginDate.Null {
			return in, MissingDataError{Field: "begin_date"}
		}
		in.BeginDate = p.BeginDate.Value
	}
	if p.BeginTime.Set {
		in.BeginTime = p.BeginTime.Ptr()
	}
	if p.End.Set {
		in.End = p.End.Ptr()
	}
	if p.ActiveUntil.Set {
		in.ActiveUntil = p.ActiveUntil.Ptr()
	}
	return in, nil
}
