package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventdesk/server/internal/domain/customers"
	"github.com/eventdesk/server/internal/domain/directory"
	"github.com/eventdesk/server/internal/domain/events"
)

// stubEventsRepo keeps just enough state in maps to drive the handlers.
// Methods the handlers never reach are left to the embedded nil interface.
type stubEventsRepo struct {
	events.Repository

	nextID    int64
	accounts  map[int64]directory.Account
	addresses map[int64]directory.Address
	customers map[int64]customers.Customer
	allowed   map[int64]bool
	vocab     map[string]bool

	events  map[int64]events.Event
	editors []events.Editor
	images  map[int64]events.Image
	tags    []events.Tag
	prices  map[int64]events.Price
	links   []events.EventCustomer
}

func newStubEventsRepo() *stubEventsRepo {
	return &stubEventsRepo{
		accounts:  map[int64]directory.Account{},
		addresses: map[int64]directory.Address{},
		customers: map[int64]customers.Customer{},
		allowed:   map[int64]bool{},
		vocab:     map[string]bool{},
		events:    map[int64]events.Event{},
		images:    map[int64]events.Image{},
		prices:    map[int64]events.Price{},
	}
}

func (s *stubEventsRepo) id() int64 {
	s.nextID++
	return s.nextID
}

type noopTx struct{}

func (noopTx) Commit(context.Context) error   { return nil }
func (noopTx) Rollback(context.Context) error { return nil }

func (s *stubEventsRepo) BeginTx(context.Context) (events.Repository, events.TxCommitter, error) {
	return s, noopTx{}, nil
}

func (s *stubEventsRepo) CreateEvent(_ context.Context, authorID int64, f events.EventFields, created time.Time) (*events.Event, error) {
	address, ok := s.addresses[f.AddressID]
	if !ok {
		return nil, directory.ErrNoSuchAddress
	}
	e := events.Event{
		ID: s.id(), Author: s.accounts[authorID], Created: created, Title: f.Title, Subtitle: f.Subtitle,
		Address: address, BeginDate: f.BeginDate, BeginTime: f.BeginTime, End: f.End, ActiveUntil: f.ActiveUntil,
	}
	s.events[e.ID] = e
	return &e, nil
}

func (s *stubEventsRepo) GetEvent(_ context.Context, id int64) (*events.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, events.ErrNoSuchEvent
	}
	return &e, nil
}

func (s *stubEventsRepo) ListEvents(context.Context) ([]events.Event, error) {
	ids := make([]int64, 0, len(s.events))
	for id := range s.events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]events.Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.events[id])
	}
	return out, nil
}

func (s *stubEventsRepo) ListCustomerEvents(ctx context.Context, customerID int64) ([]events.Event, error) {
	all, _ := s.ListEvents(ctx)
	var out []events.Event
	for _, e := range all {
		for _, l := range s.links {
			if l.EventID == e.ID && l.Customer.ID == customerID {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (s *stubEventsRepo) UpdateEvent(_ context.Context, id int64, f events.EventFields) error {
	e, ok := s.events[id]
	if !ok {
		return events.ErrNoSuchEvent
	}
	e.Title, e.Subtitle, e.Address = f.Title, f.Subtitle, s.addresses[f.AddressID]
	e.BeginDate, e.BeginTime, e.End, e.ActiveUntil = f.BeginDate, f.BeginTime, f.End, f.ActiveUntil
	s.events[id] = e
	return nil
}

func (s *stubEventsRepo) InsertEditor(_ context.Context, eventID, accountID int64, at time.Time) (*events.Editor, error) {
	e := events.Editor{ID: s.id(), EventID: eventID, Account: s.accounts[accountID], Timestamp: at}
	s.editors = append(s.editors, e)
	return &e, nil
}

func (s *stubEventsRepo) ListEditors(_ context.Context, eventID int64) ([]events.Editor, error) {
	var out []events.Editor
	for _, e := range s.editors {
		if e.EventID == eventID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubEventsRepo) ListImages(_ context.Context, eventID int64) ([]events.Image, error) {
	var out []events.Image
	for _, i := range s.images {
		if i.EventID == eventID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *stubEventsRepo) GetImage(_ context.Context, id int64) (*events.Image, error) {
	i, ok := s.images[id]
	if !ok {
		return nil, events.ErrNoSuchImage
	}
	return &i, nil
}

func (s *stubEventsRepo) InsertImage(_ context.Context, p events.ImageCreateParams) (*events.Image, error) {
	i := events.Image{
		ID: s.id(), EventID: p.EventID, Account: s.accounts[p.AccountID], BlobKey: p.BlobKey,
		MimeType: p.MimeType, Size: p.Size, Uploaded: p.Uploaded, Source: p.Source,
	}
	s.images[i.ID] = i
	return &i, nil
}

func (s *stubEventsRepo) ListTags(_ context.Context, eventID int64) ([]events.Tag, error) {
	var out []events.Tag
	for _, t := range s.tags {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubEventsRepo) InsertTag(_ context.Context, eventID int64, tag string) (*events.Tag, error) {
	for _, t := range s.tags {
		if t.EventID == eventID && t.Tag == tag {
			return &t, nil
		}
	}
	t := events.Tag{ID: s.id(), EventID: eventID, Tag: tag}
	s.tags = append(s.tags, t)
	return &t, nil
}

func (s *stubEventsRepo) DeleteTags(_ context.Context, eventID int64) error {
	kept := s.tags[:0]
	for _, t := range s.tags {
		if t.EventID != eventID {
			kept = append(kept, t)
		}
	}
	s.tags = kept
	return nil
}

func (s *stubEventsRepo) DeleteTagByText(_ context.Context, eventID int64, tag string) (bool, error) {
	for i, t := range s.tags {
		if t.EventID == eventID && t.Tag == tag {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *stubEventsRepo) VocabularyContains(_ context.Context, tag string) (bool, error) {
	return s.vocab[tag], nil
}

func (s *stubEventsRepo) ListVocabulary(context.Context) ([]string, error) {
	out := make([]string, 0, len(s.vocab))
	for tag := range s.vocab {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out, nil
}

func (s *stubEventsRepo) ListSubEvents(context.Context, int64) ([]events.SubEvent, error) {
	return nil, nil
}

func (s *stubEventsRepo) ListPrices(_ context.Context, eventID int64) ([]events.Price, error) {
	var out []events.Price
	for _, p := range s.prices {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubEventsRepo) InsertPrice(_ context.Context, eventID int64, value decimal.Decimal, currency events.Currency, caption *string) (*events.Price, error) {
	p := events.Price{ID: s.id(), EventID: eventID, Value: value, Currency: currency, Caption: caption}
	s.prices[p.ID] = p
	return &p, nil
}

func (s *stubEventsRepo) GetPrice(_ context.Context, id int64) (*events.Price, error) {
	p, ok := s.prices[id]
	if !ok {
		return nil, events.ErrNoSuchPrice
	}
	return &p, nil
}

func (s *stubEventsRepo) ListEventCustomers(_ context.Context, eventID int64) ([]events.EventCustomer, error) {
	var out []events.EventCustomer
	for _, l := range s.links {
		if l.EventID == eventID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubEventsRepo) InsertEventCustomer(_ context.Context, eventID, customerID int64) (*events.EventCustomer, error) {
	l := events.EventCustomer{ID: s.id(), EventID: eventID, Customer: s.customers[customerID]}
	s.links = append(s.links, l)
	return &l, nil
}

func (s *stubEventsRepo) DeleteEventCustomers(_ context.Context, eventID int64) error {
	kept := s.links[:0]
	for _, l := range s.links {
		if l.EventID != eventID {
			kept = append(kept, l)
		}
	}
	s.links = kept
	return nil
}

func (s *stubEventsRepo) CustomerExists(_ context.Context, id int64) (bool, error) {
	_, ok := s.customers[id]
	return ok, nil
}

func (s *stubEventsRepo) CustomerAllowed(_ context.Context, id int64) (bool, error) {
	return s.allowed[id], nil
}

// stubCustomersRepo backs customers.Service with the same maps as the
// events stub, so links and tokens agree.
type stubCustomersRepo struct {
	events *stubEventsRepo
	tokens map[int64]customers.AccessToken
}

func newStubCustomersRepo(ev *stubEventsRepo) *stubCustomersRepo {
	return &stubCustomersRepo{events: ev, tokens: map[int64]customers.AccessToken{}}
}

func (s *stubCustomersRepo) CreateCustomer(_ context.Context, name string) (*customers.Customer, error) {
	c := customers.Customer{ID: s.events.id(), Name: name}
	s.events.customers[c.ID] = c
	return &c, nil
}

func (s *stubCustomersRepo) GetCustomer(_ context.Context, id int64) (*customers.Customer, error) {
	c, ok := s.events.customers[id]
	if !ok {
		return nil, customers.ErrNoSuchCustomer
	}
	return &c, nil
}

func (s *stubCustomersRepo) IsAllowed(_ context.Context, id int64) (bool, error) {
	return s.events.allowed[id], nil
}

func (s *stubCustomersRepo) Allow(_ context.Context, id int64) error {
	s.events.allowed[id] = true
	return nil
}

func (s *stubCustomersRepo) Disallow(_ context.Context, id int64) (bool, error) {
	ok := s.events.allowed[id]
	delete(s.events.allowed, id)
	return ok, nil
}

func (s *stubCustomersRepo) ListAllowed(context.Context) ([]customers.Customer, error) {
	var out []customers.Customer
	for id := range s.events.allowed {
		out = append(out, s.events.customers[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubCustomersRepo) TokenForCustomer(_ context.Context, id int64) (*customers.AccessToken, error) {
	t, ok := s.tokens[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *stubCustomersRepo) CustomerByToken(_ context.Context, token string) (*customers.Customer, error) {
	for id, t := range s.tokens {
		if t.Token == token {
			c := s.events.customers[id]
			return &c, nil
		}
	}
	return nil, customers.ErrNoSuchCustomer
}

func (s *stubCustomersRepo) InsertToken(_ context.Context, id int64, token string) (*customers.AccessToken, error) {
	t := customers.AccessToken{ID: s.events.id(), CustomerID: id, Token: token, Created: time.Now()}
	s.tokens[id] = t
	return &t, nil
}

func (s *stubCustomersRepo) DeleteToken(_ context.Context, id int64) (bool, error) {
	_, ok := s.tokens[id]
	delete(s.tokens, id)
	return ok, nil
}
