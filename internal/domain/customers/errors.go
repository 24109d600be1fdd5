package customers

import (
	"errors"
	"fmt"
)

var (
	ErrNoSuchCustomer = errors.New("no such customer")

	// ErrMissingAccessToken is returned when a public request carries no token at all.
	ErrMissingAccessToken = errors.New("missing access token")

	// ErrInvalidAccessToken is returned when the token does not belong to any customer.
	ErrInvalidAccessToken = errors.New("invalid access token")
)

// InvalidCustomerError reports a customer that is not on the allow-list.
type InvalidCustomerError struct {
	CustomerID int64
}

func (e InvalidCustomerError) Error() string {
	return fmt.Sprintf("customer %d is not allowed to access events", e.CustomerID)
}
