package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventdesk/server/internal/metrics"
)

func (s *Service) Customers(ctx context.Context, eventID int64) ([]EventCustomer, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListEventCustomers(ctx, eventID)
}

// AddCustomer links an allow-listed customer to the event. Linking twice
// returns the existing link.
func (s *Service) AddCustomer(ctx context.Context, eventID, customerID int64) (*EventCustomer, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.addCustomer(ctx, s.repo, eventID, customerID)
}

func (s *Service) addCustomer(ctx context.Context, repo Repository, eventID, customerID int64) (*EventCustomer, error) {
	exists, err := repo.CustomerExists(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("lookup customer: %w", err)
	}
	if !exists {
		return nil, ErrNoSuchCustomer
	}
	allowed, err := repo.CustomerAllowed(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("check allow-list: %w", err)
	}
	if !allowed {
		return nil, InvalidCustomerError{CustomerID: customerID}
	}
	return repo.InsertEventCustomer(ctx, eventID, customerID)
}

func (s *Service) DeleteCustomer(ctx context.Context, eventID, customerID int64) (bool, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return false, err
	}
	return s.repo.DeleteEventCustomer(ctx, eventID, customerID)
}

// SetCustomers replaces the event's customer links. Ids that are unknown
// or not allow-listed are skipped and returned.
func (s *Service) SetCustomers(ctx context.Context, eventID int64, customerIDs []int64) ([]int64, error) {
	var invalid []int64
	err := s.withTx(ctx, func(repo Repository) error {
		if _, err := repo.GetEvent(ctx, eventID); err != nil {
			return err
		}
		var err error
		invalid, err = s.applyCustomers(ctx, repo, eventID, customerIDs)
		return err
	})
	return invalid, err
}

func (s *Service) applyCustomers(ctx context.Context, repo Repository, eventID int64, customerIDs []int64) ([]int64, error) {
	err := s.setCustomers(ctx, repo, eventID, customerIDs)
	var partial InvalidElementsError[int64]
	if errors.As(err, &partial) {
		metrics.InvalidElements.WithLabelValues("customers").Add(float64(len(partial.Elements)))
		return partial.Elements, nil
	}
	if err != nil {
		return nil, err
	}
	return []int64{}, nil
}

func (s *Service) setCustomers(ctx context.Context, repo Repository, eventID int64, customerIDs []int64) error {
	if err := repo.DeleteEventCustomers(ctx, eventID); err != nil {
		return fmt.Errorf("clear event customers: %w", err)
	}
	var invalid []int64
	for _, id := range customerIDs {
		_, err := s.addCustomer(ctx, repo, eventID, id)
		var notAllowed InvalidCustomerError
		switch {
		case errors.Is(err, ErrNoSuchCustomer), errors.As(err, &notAllowed):
			invalid = append(invalid, id)
		case err != nil:
			return err
		}
	}
	if len(invalid) > 0 {
		return InvalidElementsError[int64]{Relation: "customers", Elements: invalid}
	}
	return nil
}
