package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventdesk/server/internal/domain/customers"
	"github.com/eventdesk/server/internal/domain/directory"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

type Event struct {
	ID          int64
	Author      directory.Account
	Created     time.Time
	Title       string
	Subtitle    *string
	Address     directory.Address
	BeginDate   time.Time
	BeginTime   *string
	End         *time.Time
	ActiveUntil *time.Time
}

// EventFields are the validated, mutable columns of an event.
type EventFields struct {
	Title       string
	Subtitle    *string
	AddressID   int64
	BeginDate   time.Time
	BeginTime   *string
	End         *time.Time
	ActiveUntil *time.Time
}

func (e Event) Fields() EventFields {
	return EventFields{
		Title:       e.Title,
		Subtitle:    e.Subtitle,
		AddressID:   e.Address.ID,
		BeginDate:   e.BeginDate,
		BeginTime:   e.BeginTime,
		End:         e.End,
		ActiveUntil: e.ActiveUntil,
	}
}

// Details is an event together with everything it owns.
type Details struct {
	Event
	Editors   []Editor
	Images    []Image
	Tags      []Tag
	SubEvents []SubEvent
	Prices    []Price
	Customers []EventCustomer
}

// Editor is one entry of an event's append-only edit trail.
type Editor struct {
	ID        int64
	EventID   int64
	Account   directory.Account
	Timestamp time.Time
}

type Image struct {
	ID       int64
	EventID  int64
	Account  directory.Account
	BlobKey  string
	MimeType string
	Size     int64
	Uploaded time.Time
	Source   *string
}

type Tag struct {
	ID      int64
	EventID int64
	Tag     string
}

type SubEvent struct {
	ID        int64
	EventID   int64
	Timestamp time.Time
	Caption   *string
}

type Price struct {
	ID       int64
	EventID  int64
	Value    decimal.Decimal
	Currency Currency
	Caption  *string
}

type EventCustomer struct {
	ID       int64
	EventID  int64
	Customer customers.Customer
}

type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyCHF Currency = "CHF"
	CurrencyDKK Currency = "DKK"
)

var currencySymbols = map[Currency]string{
	CurrencyEUR: "€",
	CurrencyUSD: "$",
	CurrencyCHF: "Fr.",
	CurrencyDKK: "kr.",
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := currencySymbols[c]; !ok {
		return "", fmt.Errorf("unknown currency %q", s)
	}
	return c, nil
}

func (c Currency) Symbol() string {
	return currencySymbols[c]
}

// Format renders value with the currency symbol on the side customary for it.
func (c Currency) Format(value decimal.Decimal) string {
	amount := value.StringFixed(2)
	switch c {
	case CurrencyUSD, CurrencyCHF:
		return c.Symbol() + " " + amount
	case CurrencyEUR, CurrencyDKK:
		return amount + " " + c.Symbol()
	default:
		return amount + " " + string(c)
	}
}
