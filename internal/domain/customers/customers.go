// Package customers owns the customer allow-list and the per-customer access
// tokens used by the public event endpoints.
package customers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eventdesk/server/internal/metrics"
)

type Customer struct {
	ID   int64
	Name string
}

type AccessToken struct {
	ID         int64
	CustomerID int64
	Token      string
	Created    time.Time
}

// Repository is the storage contract. Lookups that find nothing return
// ErrNoSuchCustomer (customers) or a nil token with a nil error (tokens).
type Repository interface {
	CreateCustomer(ctx context.Context, name string) (*Customer, error)
	GetCustomer(ctx context.Context, id int64) (*Customer, error)

	IsAllowed(ctx context.Context, customerID int64) (bool, error)
	Allow(ctx context.Context, customerID int64) error
	Disallow(ctx context.Context, customerID int64) (bool, error)
	ListAllowed(ctx context.Context) ([]Customer, error)

	TokenForCustomer(ctx context.Context, customerID int64) (*AccessToken, error)
	CustomerByToken(ctx context.Context, token string) (*Customer, error)
	// InsertToken stores token unless the customer already has one, and
	// returns whichever token is stored afterwards.
	InsertToken(ctx context.Context, customerID int64, token string) (*AccessToken, error)
	DeleteToken(ctx context.Context, customerID int64) (bool, error)
}

type Service struct {
	repo     Repository
	logger   zerolog.Logger
	newToken func() string
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		logger:   logger.With().Str("component", "customers").Logger(),
		newToken: uuid.NewString,
	}
}

func (s *Service) Register(ctx context.Context, name string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("customer name is required")
	}
	customer, err := s.repo.CreateCustomer(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// ResolveCustomer maps a public access token to its customer.
func (s *Service) ResolveCustomer(ctx context.Context, token string) (*Customer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		metrics.PublicLookups.WithLabelValues("missing").Inc()
		return nil, ErrMissingAccessToken
	}
	customer, err := s.repo.CustomerByToken(ctx, token)
	if errors.Is(err, ErrNoSuchCustomer) {
		metrics.PublicLookups.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidAccessToken
	}
	if err != nil {
		metrics.PublicLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve access token: %w", err)
	}
	metrics.PublicLookups.WithLabelValues("ok").Inc()
	return customer, nil
}

// IssueToken returns the customer's access token, minting one on first use.
// Only allow-listed customers can hold a token.
func (s *Service) IssueToken(ctx context.Context, customerID int64) (*AccessToken, error) {
	if _, err := s.repo.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	allowed, err := s.repo.IsAllowed(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("check allow-list: %w", err)
	}
	if !allowed {
		return nil, InvalidCustomerError{CustomerID: customerID}
	}

	existing, err := s.repo.TokenForCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("lookup access token: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	token, err := s.repo.InsertToken(ctx, customerID, s.newToken())
	if err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}
	s.logger.Info().Int64("customer_id", customerID).Msg("access token issued")
	return token, nil
}

func (s *Service) RevokeToken(ctx context.Context, customerID int64) (bool, error) {
	removed, err := s.repo.DeleteToken(ctx, customerID)
	if err != nil {
		return false, fmt.Errorf("revoke access token: %w", err)
	}
	if removed {
		s.logger.Info().Int64("customer_id", customerID).Msg("access token revoked")
	}
	return removed, nil
}

func (s *Service) IsAllowed(ctx context.Context, customerID int64) (bool, error) {
	return s.repo.IsAllowed(ctx, customerID)
}

func (s *Service) Allow(ctx context.Context, customerID int64) error {
	if _, err := s.repo.GetCustomer(ctx, customerID); err != nil {
		return err
	}
	if err := s.repo.Allow(ctx, customerID); err != nil {
		return fmt.Errorf("allow customer: %w", err)
	}
	s.logger.Info().Int64("customer_id", customerID).Msg("customer allowed")
	return nil
}

// Disallow removes the customer from the allow-list. Existing event links
// and tokens are left alone; they are only gated on creation.
func (s *Service) Disallow(ctx context.Context, customerID int64) (bool, error) {
	removed, err := s.repo.Disallow(ctx, customerID)
	if err != nil {
		return false, fmt.Errorf("disallow customer: %w", err)
	}
	return removed, nil
}

func (s *Service) ListAllowed(ctx context.Context) ([]Customer, error) {
	return s.repo.ListAllowed(ctx)
}

// TokenFromRequest reads the access token from the access_token query
// parameter, falling back to an Authorization bearer header.
func TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("access_token"); token != "" {
		return token
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
