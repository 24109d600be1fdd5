package events

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventdesk/server/internal/domain/customers"
	"github.com/eventdesk/server/internal/domain/directory"
)

type fakeState struct {
	nextID    int64
	accounts  map[int64]directory.Account
	addresses map[int64]directory.Address
	customers map[int64]customers.Customer
	allowed   map[int64]bool
	events    map[int64]Event
	editors   map[int64]Editor
	images    map[int64]Image
	tags      map[int64]Tag
	subEvents map[int64]SubEvent
	prices    map[int64]Price
	links     map[int64]EventCustomer
	vocab     map[string]bool
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *fakeState) clone() *fakeState {
	return &fakeState{
		nextID:    s.nextID,
		accounts:  copyMap(s.accounts),
		addresses: copyMap(s.addresses),
		customers: copyMap(s.customers),
		allowed:   copyMap(s.allowed),
		events:    copyMap(s.events),
		editors:   copyMap(s.editors),
		images:    copyMap(s.images),
		tags:      copyMap(s.tags),
		subEvents: copyMap(s.subEvents),
		prices:    copyMap(s.prices),
		links:     copyMap(s.links),
		vocab:     copyMap(s.vocab),
	}
}

// fakeRepo is an in-memory Repository. BeginTx snapshots the state and
// Rollback restores it.
type fakeRepo struct {
	state *fakeState

	commits   int
	rollbacks int

	failInsertImage error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{state: &fakeState{
		accounts:  map[int64]directory.Account{},
		addresses: map[int64]directory.Address{},
		customers: map[int64]customers.Customer{},
		allowed:   map[int64]bool{},
		events:    map[int64]Event{},
		editors:   map[int64]Editor{},
		images:    map[int64]Image{},
		tags:      map[int64]Tag{},
		subEvents: map[int64]SubEvent{},
		prices:    map[int64]Price{},
		links:     map[int64]EventCustomer{},
		vocab:     map[string]bool{},
	}}
}

func (r *fakeRepo) id() int64 {
	r.state.nextID++
	return r.state.nextID
}

func (r *fakeRepo) addAccount(name string) directory.Account {
	a := directory.Account{ID: r.id(), Name: name}
	r.state.accounts[a.ID] = a
	return a
}

func (r *fakeRepo) addAddress(city string) directory.Address {
	a := directory.Address{ID: r.id(), Street: "Main St", HouseNumber: "1", ZipCode: "10115", City: city}
	r.state.addresses[a.ID] = a
	return a
}

func (r *fakeRepo) addCustomer(name string, allowed bool) customers.Customer {
	c := customers.Customer{ID: r.id(), Name: name}
	r.state.customers[c.ID] = c
	if allowed {
		r.state.allowed[c.ID] = true
	}
	return c
}

type fakeTx struct {
	repo     *fakeRepo
	snapshot *fakeState
	done     bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.done = true
	t.repo.commits++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.repo.state = t.snapshot
	t.repo.rollbacks++
	return nil
}

func (r *fakeRepo) BeginTx(context.Context) (Repository, TxCommitter, error) {
	return r, &fakeTx{repo: r, snapshot: r.state.clone()}, nil
}

func sortedByID[T any](m map[int64]T, keep func(T) bool) []T {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func (r *fakeRepo) CreateEvent(_ context.Context, authorID int64, f EventFields, created time.Time) (*Event, error) {
	address, ok := r.state.addresses[f.AddressID]
	if !ok {
		return nil, directory.ErrNoSuchAddress
	}
	e := Event{
		ID:          r.id(),
		Author:      r.state.accounts[authorID],
		Created:     created,
		Title:       f.Title,
		Subtitle:    f.Subtitle,
		Address:     address,
		BeginDate:   f.BeginDate,
		BeginTime:   f.BeginTime,
		End:         f.End,
		ActiveUntil: f.ActiveUntil,
	}
	r.state.events[e.ID] = e
	return &e, nil
}

func (r *fakeRepo) GetEvent(_ context.Context, id int64) (*Event, error) {
	e, ok := r.state.events[id]
	if !ok {
		return nil, ErrNoSuchEvent
	}
	return &e, nil
}

func (r *fakeRepo) ListEvents(context.Context) ([]Event, error) {
	return sortedByID(r.state.events, func(Event) bool { return true }), nil
}

func (r *fakeRepo) ListCustomerEvents(_ context.Context, customerID int64) ([]Event, error) {
	linked := map[int64]bool{}
	for _, l := range r.state.links {
		if l.Customer.ID == customerID {
			linked[l.EventID] = true
		}
	}
	return sortedByID(r.state.events, func(e Event) bool { return linked[e.ID] }), nil
}

func (r *fakeRepo) UpdateEvent(_ context.Context, id int64, f EventFields) error {
	e, ok := r.state.events[id]
	if !ok {
		return ErrNoSuchEvent
	}
	address, ok := r.state.addresses[f.AddressID]
	if !ok {
		return directory.ErrNoSuchAddress
	}
	e.Title, e.Subtitle, e.Address = f.Title, f.Subtitle, address
	e.BeginDate, e.BeginTime, e.End, e.ActiveUntil = f.BeginDate, f.BeginTime, f.End, f.ActiveUntil
	r.state.events[id] = e
	return nil
}

func (r *fakeRepo) DeleteEvent(_ context.Context, id int64) (bool, error) {
	if _, ok := r.state.events[id]; !ok {
		return false, nil
	}
	delete(r.state.events, id)
	return true, nil
}

func deleteWhere[T any](m map[int64]T, match func(T) bool) int {
	n := 0
	for id, v := range m {
		if match(v) {
			delete(m, id)
			n++
		}
	}
	return n
}

func (r *fakeRepo) DeleteEventChildren(_ context.Context, eventID int64) error {
	deleteWhere(r.state.editors, func(v Editor) bool { return v.EventID == eventID })
	deleteWhere(r.state.tags, func(v Tag) bool { return v.EventID == eventID })
	deleteWhere(r.state.subEvents, func(v SubEvent) bool { return v.EventID == eventID })
	deleteWhere(r.state.prices, func(v Price) bool { return v.EventID == eventID })
	deleteWhere(r.state.links, func(v EventCustomer) bool { return v.EventID == eventID })
	return nil
}

func (r *fakeRepo) ListEditors(_ context.Context, eventID int64) ([]Editor, error) {
	return sortedByID(r.state.editors, func(v Editor) bool { return v.EventID == eventID }), nil
}

func (r *fakeRepo) InsertEditor(_ context.Context, eventID, accountID int64, at time.Time) (*Editor, error) {
	e := Editor{ID: r.id(), EventID: eventID, Account: r.state.accounts[accountID], Timestamp: at}
	r.state.editors[e.ID] = e
	return &e, nil
}

func (r *fakeRepo) ListImages(_ context.Context, eventID int64) ([]Image, error) {
	return sortedByID(r.state.images, func(v Image) bool { return v.EventID == eventID }), nil
}

func (r *fakeRepo) ListAllImages(context.Context) ([]Image, error) {
	return sortedByID(r.state.images, func(Image) bool { return true }), nil
}

func (r *fakeRepo) GetImage(_ context.Context, id int64) (*Image, error) {
	v, ok := r.state.images[id]
	if !ok {
		return nil, ErrNoSuchImage
	}
	return &v, nil
}

func (r *fakeRepo) InsertImage(_ context.Context, p ImageCreateParams) (*Image, error) {
	if r.failInsertImage != nil {
		return nil, r.failInsertImage
	}
	v := Image{
		ID: r.id(), EventID: p.EventID, Account: r.state.accounts[p.AccountID],
		BlobKey: p.BlobKey, MimeType: p.MimeType, Size: p.Size, Uploaded: p.Uploaded, Source: p.Source,
	}
	r.state.images[v.ID] = v
	return &v, nil
}

func (r *fakeRepo) UpdateImageSource(_ context.Context, id int64, source *string) error {
	v, ok := r.state.images[id]
	if !ok {
		return ErrNoSuchImage
	}
	v.Source = source
	r.state.images[id] = v
	return nil
}

func (r *fakeRepo) DeleteImage(_ context.Context, id int64) (bool, error) {
	return deleteWhere(r.state.images, func(v Image) bool { return v.ID == id }) > 0, nil
}

func (r *fakeRepo) ListTags(_ context.Context, eventID int64) ([]Tag, error) {
	return sortedByID(r.state.tags, func(v Tag) bool { return v.EventID == eventID }), nil
}

func (r *fakeRepo) InsertTag(_ context.Context, eventID int64, tag string) (*Tag, error) {
	for _, v := range r.state.tags {
		if v.EventID == eventID && v.Tag == tag {
			return &v, nil
		}
	}
	v := Tag{ID: r.id(), EventID: eventID, Tag: tag}
	r.state.tags[v.ID] = v
	return &v, nil
}

func (r *fakeRepo) DeleteTagByID(_ context.Context, eventID, id int64) (bool, error) {
	return deleteWhere(r.state.tags, func(v Tag) bool { return v.EventID == eventID && v.ID == id }) > 0, nil
}

func (r *fakeRepo) DeleteTagByText(_ context.Context, eventID int64, tag string) (bool, error) {
	return deleteWhere(r.state.tags, func(v Tag) bool { return v.EventID == eventID && v.Tag == tag }) > 0, nil
}

func (r *fakeRepo) DeleteTags(_ context.Context, eventID int64) error {
	deleteWhere(r.state.tags, func(v Tag) bool { return v.EventID == eventID })
	return nil
}

func (r *fakeRepo) VocabularyContains(_ context.Context, tag string) (bool, error) {
	return r.state.vocab[tag], nil
}

func (r *fakeRepo) ListVocabulary(context.Context) ([]string, error) {
	out := make([]string, 0, len(r.state.vocab))
	for tag := range r.state.vocab {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeRepo) InsertVocabulary(_ context.Context, tag string) error {
	r.state.vocab[tag] = true
	return nil
}

func (r *fakeRepo) DeleteVocabulary(_ context.Context, tag string) (bool, error) {
	ok := r.state.vocab[tag]
	delete(r.state.vocab, tag)
	return ok, nil
}

func (r *fakeRepo) ListSubEvents(_ context.Context, eventID int64) ([]SubEvent, error) {
	return sortedByID(r.state.subEvents, func(v SubEvent) bool { return v.EventID == eventID }), nil
}

func (r *fakeRepo) GetSubEvent(_ context.Context, eventID, id int64) (*SubEvent, error) {
	v, ok := r.state.subEvents[id]
	if !ok || v.EventID != eventID {
		return nil, ErrNoSuchSubEvent
	}
	return &v, nil
}

func (r *fakeRepo) InsertSubEvent(_ context.Context, eventID int64, ts time.Time, caption *string) (*SubEvent, error) {
	v := SubEvent{ID: r.id(), EventID: eventID, Timestamp: ts, Caption: caption}
	r.state.subEvents[v.ID] = v
	return &v, nil
}

func (r *fakeRepo) UpdateSubEvent(_ context.Context, sub SubEvent) error {
	if _, ok := r.state.subEvents[sub.ID]; !ok {
		return ErrNoSuchSubEvent
	}
	r.state.subEvents[sub.ID] = sub
	return nil
}

func (r *fakeRepo) DeleteSubEvent(_ context.Context, eventID, id int64) (bool, error) {
	return deleteWhere(r.state.subEvents, func(v SubEvent) bool { return v.EventID == eventID && v.ID == id }) > 0, nil
}

func (r *fakeRepo) ListPrices(_ context.Context, eventID int64) ([]Price, error) {
	return sortedByID(r.state.prices, func(v Price) bool { return v.EventID == eventID }), nil
}

func (r *fakeRepo) GetPrice(_ context.Context, id int64) (*Price, error) {
	v, ok := r.state.prices[id]
	if !ok {
		return nil, ErrNoSuchPrice
	}
	return &v, nil
}

func (r *fakeRepo) InsertPrice(_ context.Context, eventID int64, value decimal.Decimal, currency Currency, caption *string) (*Price, error) {
	v := Price{ID: r.id(), EventID: eventID, Value: value, Currency: currency, Caption: caption}
	r.state.prices[v.ID] = v
	return &v, nil
}

func (r *fakeRepo) UpdatePrice(_ context.Context, price Price) error {
	if _, ok := r.state.prices[price.ID]; !ok {
		return ErrNoSuchPrice
	}
	r.state.prices[price.ID] = price
	return nil
}

func (r *fakeRepo) DeletePrice(_ context.Context, id int64) (bool, error) {
	return deleteWhere(r.state.prices, func(v Price) bool { return v.ID == id }) > 0, nil
}

func (r *fakeRepo) ListEventCustomers(_ context.Context, eventID int64) ([]EventCustomer, error) {
	return sortedByID(r.state.links, func(v EventCustomer) bool { return v.EventID == eventID }), nil
}

func (r *fakeRepo) InsertEventCustomer(_ context.Context, eventID, customerID int64) (*EventCustomer, error) {
	for _, v := range r.state.links {
		if v.EventID == eventID && v.Customer.ID == customerID {
			return &v, nil
		}
	}
	v := EventCustomer{ID: r.id(), EventID: eventID, Customer: r.state.customers[customerID]}
	r.state.links[v.ID] = v
	return &v, nil
}

func (r *fakeRepo) DeleteEventCustomer(_ context.Context, eventID, customerID int64) (bool, error) {
	return deleteWhere(r.state.links, func(v EventCustomer) bool {
		return v.EventID == eventID && v.Customer.ID == customerID
	}) > 0, nil
}

func (r *fakeRepo) DeleteEventCustomers(_ context.Context, eventID int64) error {
	deleteWhere(r.state.links, func(v EventCustomer) bool { return v.EventID == eventID })
	return nil
}

func (r *fakeRepo) CustomerExists(_ context.Context, customerID int64) (bool, error) {
	_, ok := r.state.customers[customerID]
	return ok, nil
}

func (r *fakeRepo) CustomerAllowed(_ context.Context, customerID int64) (bool, error) {
	return r.state.allowed[customerID], nil
}
