package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrdersBoardQueryIsNotConstructed = errors.New(
	"GetOrdersBoardQuery must be created via NewGetOrdersBoardQuery constructor",
)

// GetOrdersBoardQuery retrieves the live kitchen board: all non-draft orders
// in an active status for one restaurant, grouped by status.
//
// Example:
//
//	query, err := NewGetOrdersBoardQuery(restaurantID, 30*time.Minute)
//	if err != nil {
//	    return err
//	}
//	board, err := handler.Handle(ctx, query)
type GetOrdersBoardQuery struct {
	restaurantID kernel.UUID
	delayedAfter time.Duration

	guard guard.ConstructorGuard
}

// NewGetOrdersBoardQuery creates a query for the kitchen board.
// delayedAfter is the age at which an active order is flagged as delayed;
// it must be positive.
func NewGetOrdersBoardQuery(restaurantID kernel.UUID, delayedAfter time.Duration) (GetOrdersBoardQuery, error) {
	if err := restaurantID.Validate(); err != nil {
		return GetOrdersBoardQuery{}, err
	}
	if delayedAfter <= 0 {
		return GetOrdersBoardQuery{}, errs.NewValueIsRequiredError("delayedAfter")
	}

	return GetOrdersBoardQuery{
		restaurantID: restaurantID,
		delayedAfter: delayedAfter,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrdersBoardQuery) Validate() error {
	return q.guard.Validate(ErrGetOrdersBoardQueryIsNotConstructed)
}

// RestaurantID returns the restaurant scope of the board.
func (q GetOrdersBoardQuery) RestaurantID() kernel.UUID {
	return q.restaurantID
}

// DelayedAfter returns the delay threshold.
func (q GetOrdersBoardQuery) DelayedAfter() time.Duration {
	return q.delayedAfter
}

// BoardOrder is one card on the kitchen board.
type BoardOrder struct {
	ID            kernel.UUID
	OrderNumber   int64
	Status        order.Status
	CustomerName  string
	CustomerPhone string
	ItemCount     int
	Total         string
	IsDelivery    bool
	IsDelayed     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BoardColumn groups the orders of one active status, oldest first.
type BoardColumn struct {
	Status order.Status
	Orders []BoardOrder
}

// GetOrdersBoardQueryResponse contains one column per active status, in
// lifecycle order. Columns without orders are present but empty so the
// board layout stays stable.
type GetOrdersBoardQueryResponse struct {
	Columns []BoardColumn
}
