package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eventdesk/server/internal/domain/directory"
)

// DirectoryRepository implements directory.Repository.
type DirectoryRepository struct {
	conn
}

var _ directory.Repository = (*DirectoryRepository)(nil)

func (r *DirectoryRepository) CreateAccount(ctx context.Context, name string) (*directory.Account, error) {
	a := directory.Account{Name: name}
	if err := r.queryer().QueryRow(ctx,
		`INSERT INTO accounts (name) VALUES ($1) RETURNING id`, name).Scan(&a.ID); err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &a, nil
}

func (r *DirectoryRepository) GetAccount(ctx context.Context, id int64) (*directory.Account, error) {
	a := directory.Account{ID: id}
	err := r.queryer().QueryRow(ctx, `SELECT name FROM accounts WHERE id = $1`, id).Scan(&a.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, directory.ErrNoSuchAccount
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (r *DirectoryRepository) CreateAddress(ctx context.Context, params directory.AddressParams) (*directory.Address, error) {
	a := directory.Address{
		Street:      params.Street,
		HouseNumber: params.HouseNumber,
		ZipCode:     params.ZipCode,
		City:        params.City,
	}
	err := r.queryer().QueryRow(ctx, `
INSERT INTO addresses (street, house_number, zip_code, city)
VALUES ($1, $2, $3, $4)
RETURNING id`, a.Street, a.HouseNumber, a.ZipCode, a.City).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("insert address: %w", err)
	}
	return &a, nil
}

func (r *DirectoryRepository) GetAddress(ctx context.Context, id int64) (*directory.Address, error) {
	var a directory.Address
	err := r.queryer().QueryRow(ctx,
		`SELECT id, street, house_number, zip_code, city FROM addresses WHERE id = $1`, id,
	).Scan(&a.ID, &a.Street, &a.HouseNumber, &a.ZipCode, &a.City)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, directory.ErrNoSuchAddress
	}
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &a, nil
}
