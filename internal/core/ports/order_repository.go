// Package ports defines the contracts between the order domain and
// infrastructure. These interfaces enable dependency inversion: the
// application layer depends on them, the postgres adapters implement them.
package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// The store's atomic update-by-id is the only unit of consistency the core
// relies on; there is no distributed lock over an order row.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order by id.
	// Returns an error if the order does not exist.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetActive retrieves all non-draft orders of a restaurant whose status
	// is in the active (non-terminal) set. Used for the full re-fetch a
	// client performs before trusting incremental feed events.
	GetActive(ctx context.Context, restaurantID kernel.UUID) ([]*order.Order, error)

	// NextOrderNumber atomically allocates the next display number for the
	// restaurant. Numbers are strictly increasing even under concurrent
	// submissions; must be called inside the submission transaction.
	NextOrderNumber(ctx context.Context, restaurantID kernel.UUID) (int64, error)

	// AppendLogEntry appends an immutable audit record. Entries are never
	// updated or deleted.
	AppendLogEntry(ctx context.Context, entry order.LogEntry) error
}
