package queries

import (
	"errors"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrGetCustomerQueryIsNotConstructed = errors.New(
	"GetCustomerQuery must be created via NewGetCustomerQuery constructor",
)

// GetCustomerQuery looks up one customer ledger entry by phone number, the
// ledger's deduplication key.
type GetCustomerQuery struct {
	restaurantID kernel.UUID
	phone        string

	guard guard.ConstructorGuard
}

// NewGetCustomerQuery creates a ledger lookup for the given phone.
func NewGetCustomerQuery(restaurantID kernel.UUID, phone string) (GetCustomerQuery, error) {
	if err := restaurantID.Validate(); err != nil {
		return GetCustomerQuery{}, err
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return GetCustomerQuery{}, errs.NewValueIsRequiredError("phone")
	}

	return GetCustomerQuery{
		restaurantID: restaurantID,
		phone:        phone,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCustomerQuery) Validate() error {
	return q.guard.Validate(ErrGetCustomerQueryIsNotConstructed)
}

// RestaurantID returns the restaurant scope.
func (q GetCustomerQuery) RestaurantID() kernel.UUID {
	return q.restaurantID
}

// Phone returns the ledger key being looked up.
func (q GetCustomerQuery) Phone() string {
	return q.phone
}

// GetCustomerQueryResponse is one ledger entry: the customer's identity plus
// their accumulated order statistics.
type GetCustomerQueryResponse struct {
	ID            kernel.UUID
	Phone         string
	Name          string
	TotalOrders   int64
	TotalSpent    string
	LastOrderDate time.Time
}
