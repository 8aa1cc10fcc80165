package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderHistoryQueryIsNotConstructed = errors.New(
	"GetOrderHistoryQuery must be created via NewGetOrderHistoryQuery constructor",
)

// Paging bounds keep a single history page from dragging the whole orders
// table across the wire.
const (
	DefaultHistoryPageSize = 50
	MaxHistoryPageSize     = 200
)

// HistoryFilter narrows the order history. Zero-valued fields are ignored:
// an empty filter returns the newest orders of the restaurant.
type HistoryFilter struct {
	// Statuses restricts the result to the given statuses.
	Statuses []order.Status
	// Search matches against customer name, phone and the order number.
	Search string
	// From and To bound the creation time, inclusive on both ends.
	From time.Time
	To   time.Time
	// IncludeDrafts adds draft orders to the result.
	IncludeDrafts bool
}

// GetOrderHistoryQuery retrieves a filtered, paged slice of the order
// history, newest first.
type GetOrderHistoryQuery struct {
	restaurantID kernel.UUID
	filter       HistoryFilter
	offset       int
	limit        int

	guard guard.ConstructorGuard
}

// NewGetOrderHistoryQuery creates a query over past orders. A non-positive
// limit falls back to DefaultHistoryPageSize; limits above MaxHistoryPageSize
// are capped.
func NewGetOrderHistoryQuery(
	restaurantID kernel.UUID,
	filter HistoryFilter,
	offset int,
	limit int,
) (GetOrderHistoryQuery, error) {
	if err := restaurantID.Validate(); err != nil {
		return GetOrderHistoryQuery{}, err
	}
	if offset < 0 {
		return GetOrderHistoryQuery{}, errs.NewValueIsOutOfRangeError("offset", offset, 0, "unbounded")
	}
	for _, s := range filter.Statuses {
		if err := s.Validate(); err != nil {
			return GetOrderHistoryQuery{}, err
		}
	}

	if limit <= 0 {
		limit = DefaultHistoryPageSize
	}
	if limit > MaxHistoryPageSize {
		limit = MaxHistoryPageSize
	}

	return GetOrderHistoryQuery{
		restaurantID: restaurantID,
		filter:       filter,
		offset:       offset,
		limit:        limit,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderHistoryQueryIsNotConstructed)
}

// RestaurantID returns the restaurant scope.
func (q GetOrderHistoryQuery) RestaurantID() kernel.UUID {
	return q.restaurantID
}

// Filter returns the narrowing criteria.
func (q GetOrderHistoryQuery) Filter() HistoryFilter {
	return q.filter
}

// Offset returns the number of rows to skip.
func (q GetOrderHistoryQuery) Offset() int {
	return q.offset
}

// Limit returns the page size after clamping.
func (q GetOrderHistoryQuery) Limit() int {
	return q.limit
}

// HistoryOrder is one row of the order history.
type HistoryOrder struct {
	ID            kernel.UUID
	OrderNumber   int64
	Status        order.Status
	IsDraft       bool
	CustomerName  string
	CustomerPhone string
	ItemCount     int
	Subtotal      string
	Discount      string
	Total         string
	PaymentMethod order.PaymentMethod
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GetOrderHistoryQueryResponse is one page of history plus the total number
// of rows matching the filter, for pagination.
type GetOrderHistoryQueryResponse struct {
	Orders []HistoryOrder
	Total  int64
}
