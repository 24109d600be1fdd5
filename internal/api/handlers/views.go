package handlers

import (
	"time"

	"github.com/eventdesk/server/internal/domain/customers"
	"github.com/eventdesk/server/internal/domain/directory"
	"github.com/eventdesk/server/internal/domain/events"
)

type accountView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type addressView struct {
	ID          int64  `json:"id"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	ZipCode     string `json:"zip_code"`
	City        string `json:"city"`
}

type customerView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// eventCustomerView is one event-customer link; ID is the link id.
type eventCustomerView struct {
	ID       int64        `json:"id"`
	Event    int64        `json:"event"`
	Customer customerView `json:"customer"`
}

type editorView struct {
	ID        int64       `json:"id"`
	Event     int64       `json:"event"`
	Account   accountView `json:"account"`
	Timestamp time.Time   `json:"timestamp"`
}

type imageView struct {
	ID       int64       `json:"id"`
	Event    int64       `json:"event"`
	Account  accountView `json:"account"`
	MimeType string      `json:"mimetype"`
	Size     int64       `json:"size"`
	Uploaded time.Time   `json:"uploaded"`
	Source   *string     `json:"source"`
}

type tagView struct {
	ID    int64  `json:"id"`
	Event int64  `json:"event"`
	Tag   string `json:"tag"`
}

type subEventView struct {
	ID        int64     `json:"id"`
	Event     int64     `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Caption   *string   `json:"caption"`
}

type priceView struct {
	ID        int64   `json:"id"`
	Event     int64   `json:"event"`
	Value     string  `json:"value"`
	Currency  string  `json:"currency"`
	Caption   *string `json:"caption"`
	Formatted string  `json:"formatted"`
}

type eventView struct {
	ID          int64               `json:"id"`
	Author      accountView         `json:"author"`
	Created     time.Time           `json:"created"`
	Title       string              `json:"title"`
	Subtitle    *string             `json:"subtitle"`
	Address     addressView         `json:"address"`
	BeginDate   string              `json:"begin_date"`
	BeginTime   *string             `json:"begin_time"`
	End         *string             `json:"end"`
	ActiveUntil *string             `json:"active_until"`
	Editors     []editorView        `json:"editors"`
	Images      []imageView         `json:"images"`
	Tags        []tagView           `json:"tags"`
	Customers   []eventCustomerView `json:"customers"`
	SubEvents   []subEventView      `json:"sub_events"`
	Prices      []priceView         `json:"prices"`
}

// publicEventView is the customer-facing document. It carries no editors
// and no customer links, so one customer never learns about another.
type publicEventView struct {
	ID          int64          `json:"id"`
	Author      accountView    `json:"author"`
	Created     time.Time      `json:"created"`
	Title       string         `json:"title"`
	Subtitle    *string        `json:"subtitle"`
	Address     addressView    `json:"address"`
	BeginDate   string         `json:"begin_date"`
	BeginTime   *string        `json:"begin_time"`
	End         *string        `json:"end"`
	ActiveUntil *string        `json:"active_until"`
	Images      []imageView    `json:"images"`
	Tags        []tagView      `json:"tags"`
	SubEvents   []subEventView `json:"sub_events"`
	Prices      []priceView    `json:"prices"`
}

func newAccountView(a directory.Account) accountView {
	return accountView{ID: a.ID, Name: a.Name}
}

func newAddressView(a directory.Address) addressView {
	return addressView{ID: a.ID, Street: a.Street, HouseNumber: a.HouseNumber, ZipCode: a.ZipCode, City: a.City}
}

func newCustomerView(c customers.Customer) customerView {
	return customerView{ID: c.ID, Name: c.Name}
}

func newEventCustomerView(l events.EventCustomer) eventCustomerView {
	return eventCustomerView{ID: l.ID, Event: l.EventID, Customer: newCustomerView(l.Customer)}
}

func newEditorView(e events.Editor) editorView {
	return editorView{ID: e.ID, Event: e.EventID, Account: newAccountView(e.Account), Timestamp: e.Timestamp}
}

func newImageView(i events.Image) imageView {
	return imageView{
		ID:       i.ID,
		Event:    i.EventID,
		Account:  newAccountView(i.Account),
		MimeType: i.MimeType,
		Size:     i.Size,
		Uploaded: i.Uploaded,
		Source:   i.Source,
	}
}

func newTagView(t events.Tag) tagView {
	return tagView{ID: t.ID, Event: t.EventID, Tag: t.Tag}
}

func newSubEventView(s events.SubEvent) subEventView {
	return subEventView{ID: s.ID, Event: s.EventID, Timestamp: s.Timestamp, Caption: s.Caption}
}

func newPriceView(p events.Price) priceView {
	return priceView{
		ID:        p.ID,
		Event:     p.EventID,
		Value:     p.Value.StringFixed(2),
		Currency:  string(p.Currency),
		Caption:   p.Caption,
		Formatted: p.Currency.Format(p.Value),
	}
}

func mapViews[T, V any](items []T, view func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, view(item))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(events.DateLayout)
	return &s
}

// newEventView renders the canonical staff event document.
func newEventView(d events.Details) eventView {
	return eventView{
		ID:          d.ID,
		Author:      newAccountView(d.Author),
		Created:     d.Created,
		Title:       d.Title,
		Subtitle:    d.Subtitle,
		Address:     newAddressView(d.Address),
		BeginDate:   d.BeginDate.Format(events.DateLayout),
		BeginTime:   d.BeginTime,
		End:         formatDate(d.End),
		ActiveUntil: formatDate(d.ActiveUntil),
		Editors:     mapViews(d.Editors, newEditorView),
		Images:      mapViews(d.Images, newImageView),
		Tags:        mapViews(d.Tags, newTagView),
		Customers:   mapViews(d.Customers, newEventCustomerView),
		SubEvents:   mapViews(d.SubEvents, newSubEventView),
		Prices:      mapViews(d.Prices, newPriceView),
	}
}

func newPublicEventView(d events.Details) publicEventView {
	return publicEventView{
		ID:          d.ID,
		Author:      newAccountView(d.Author),
		Created:     d.Created,
		Title:       d.Title,
		Subtitle:    d.Subtitle,
		Address:     newAddressView(d.Address),
		BeginDate:   d.BeginDate.Format(events.DateLayout),
		BeginTime:   d.BeginTime,
		End:         formatDate(d.End),
		ActiveUntil: formatDate(d.ActiveUntil),
		Images:      mapViews(d.Images, newImageView),
		Tags:        mapViews(d.Tags, newTagView),
		SubEvents:   mapViews(d.SubEvents, newSubEventView),
		Prices:      mapViews(d.Prices, newPriceView),
	}
}
