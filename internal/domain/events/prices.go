package events

import (
	"context"

	"github.com/shopspring/decimal"
)

// maxPrice is the largest value NUMERIC(8,2) holds.
var maxPrice = decimal.RequireFromString("999999.99")

type PriceInput struct {
	Value    *decimal.Decimal `json:"value"`
	Currency *string          `json:"currency"`
	Caption  *string          `json:"caption"`
}

type PricePatch struct {
	Value    Optional[decimal.Decimal] `json:"value"`
	Currency Optional[string]          `json:"currency"`
	Caption  Optional[string]          `json:"caption"`
}

func checkPriceValue(v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(maxPrice) || !v.Round(2).Equal(v) {
		return InvalidDataError{Field: "value", Value: v.String()}
	}
	return nil
}

func checkCaption(caption *string) error {
	if caption != nil && len(*caption) > 255 {
		return InvalidDataError{Field: "caption", Value: *caption}
	}
	return nil
}

func (s *Service) Prices(ctx context.Context, eventID int64) ([]Price, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListPrices(ctx, eventID)
}

func (s *Service) Price(ctx context.Context, priceID int64) (*Price, error) {
	return s.repo.GetPrice(ctx, priceID)
}

// AddPrice records a price for the event. Currency defaults to EUR.
func (s *Service) AddPrice(ctx context.Context, eventID int64, in PriceInput) (*Price, error) {
	if in.Value == nil {
		return nil, MissingDataError{Field: "value"}
	}
	if err := checkPriceValue(*in.Value); err != nil {
		return nil, err
	}
	currency := CurrencyEUR
	if in.Currency != nil {
		c, err := ParseCurrency(*in.Currency)
		if err != nil {
			return nil, InvalidDataError{Field: "currency", Value: *in.Currency}
		}
		currency = c
	}
	if err := checkCaption(in.Caption); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.InsertPrice(ctx, eventID, *in.Value, currency, in.Caption)
}

// PatchPrice changes only the members set in p.
func (s *Service) PatchPrice(ctx context.Context, priceID int64, p PricePatch) (*Price, error) {
	price, err := s.repo.GetPrice(ctx, priceID)
	if err != nil {
		return nil, err
	}
	if p.Value.Set {
		if p.Value.Null {
			return nil, MissingDataError{Field: "value"}
		}
		if err := checkPriceValue(p.Value.Value); err != nil {
			return nil, err
		}
		price.Value = p.Value.Value
	}
	if p.Currency.Set {
		if p.Currency.Null {
			return nil, MissingDataError{Field: "currency"}
		}
		c, err := ParseCurrency(p.Currency.Value)
		if err != nil {
			return nil, InvalidDataError{Field: "currency", Value: p.Currency.Value}
		}
		price.Currency = c
	}
	if p.Caption.Set {
		price.Caption = p.Caption.Ptr()
		if err := checkCaption(price.Caption); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdatePrice(ctx, *price); err != nil {
		return nil, err
	}
	return price, nil
}

func (s *Service) DeletePrice(ctx context.Context, priceID int64) (bool, error) {
	return s.repo.DeletePrice(ctx, priceID)
}
