// Package directory mirrors the staff accounts and postal addresses that
// events reference. Both are owned by other systems; this service only
// needs their ids and display fields.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var (
	ErrNoSuchAccount = errors.New("no such account")
	ErrNoSuchAddress = errors.New("no such address")
)

type Account struct {
	ID   int64
	Name string
}

type Address struct {
	ID          int64
	Street      string
	HouseNumber string
	ZipCode     string
	City        string
}

type AddressParams struct {
	Street      string `validate:"required,max=255"`
	HouseNumber string `validate:"max=32"`
	ZipCode     string `validate:"required,max=16"`
	City        string `validate:"required,max=255"`
}

type Repository interface {
	CreateAccount(ctx context.Context, name string) (*Account, error)
	GetAccount(ctx context.Context, id int64) (*Account, error)
	CreateAddress(ctx context.Context, params AddressParams) (*Address, error)
	GetAddress(ctx context.Context, id int64) (*Address, error)
}

type Service struct {
	repo      Repository
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger.With().Str("component", "directory").Logger(),
		validator: validator.New(),
	}
}

func (s *Service) CreateAccount(ctx context.Context, name string) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("account name is required")
	}
	account, err := s.repo.CreateAccount(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	s.logger.Info().Int64("account_id", account.ID).Msg("account created")
	return account, nil
}

func (s *Service) Account(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *Service) CreateAddress(ctx context.Context, params AddressParams) (*Address, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	address, err := s.repo.CreateAddress(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	s.logger.Info().Int64("address_id", address.ID).Msg("address created")
	return address, nil
}

func (s *Service) Address(ctx context.Context, id int64) (*Address, error) {
	return s.repo.GetAddress(ctx, id)
}
