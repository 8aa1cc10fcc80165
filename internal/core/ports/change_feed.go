package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// EventKind identifies the mutation an order change event describes.
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// OrderSnapshot is the flat order state carried by change events and held in
// client projections. It is a read model, not the aggregate: projections never
// mutate orders through it.
type OrderSnapshot struct {
	ID           kernel.UUID
	RestaurantID kernel.UUID
	OrderNumber  int64
	Status       order.Status
	IsDraft      bool

	CustomerName  string
	CustomerPhone string

	Total kernel.Money

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SnapshotOf flattens an aggregate into its change-feed representation.
// Used to seed projections from a repository fetch before trusting the feed.
func SnapshotOf(o *order.Order) OrderSnapshot {
	return OrderSnapshot{
		ID:            o.ID(),
		RestaurantID:  o.RestaurantID(),
		OrderNumber:   o.OrderNumber(),
		Status:        o.Status(),
		IsDraft:       o.IsDraft(),
		CustomerName:  o.Details().CustomerName,
		CustomerPhone: o.Details().CustomerPhone,
		Total:         o.Total(),
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
	}
}

// OrderEvent is one entry of the restaurant-scoped change feed.
// Before is nil for inserts; After is nil for deletes.
//
// Ordering is guaranteed only per order id: events about the same order are
// delivered in order, events about different orders may interleave freely.
type OrderEvent struct {
	Kind   EventKind
	Before *OrderSnapshot
	After  *OrderSnapshot
}

// ChangeFeed is the subscription contract for order mutations.
//
// Subscribe returns a channel of events scoped to one restaurant. The channel
// is closed when the context is canceled, which is the unsubscribe mechanism;
// consumers range over the channel until it closes.
type ChangeFeed interface {
	Subscribe(ctx context.Context, restaurantID kernel.UUID) (<-chan OrderEvent, error)
}
