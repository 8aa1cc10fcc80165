package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
)

// CustomerRepository defines the persistence contract for the customer ledger.
type CustomerRepository interface {
	// UpsertOnOrder attributes a non-draft order to the customer identified
	// by (restaurant, phone): creates the record with total_orders = 1 and
	// total_spent = orderTotal, or increments both aggregates and refreshes
	// the name and last order date.
	//
	// Implementations must perform this as a single atomic increment, not a
	// read-then-write sequence, so concurrent submissions from the same
	// phone never undercount.
	UpsertOnOrder(
		ctx context.Context,
		restaurantID kernel.UUID,
		phone string,
		name string,
		orderTotal kernel.Money,
		now time.Time,
	) error

	// GetByPhone retrieves the ledger record for a phone within a restaurant.
	GetByPhone(ctx context.Context, restaurantID kernel.UUID, phone string) (*customer.Customer, error)
}
