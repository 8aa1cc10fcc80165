package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetCustomerQueryHandler reads the customer ledger.
type GetCustomerQueryHandler struct {
	db *gorm.DB
}

// NewGetCustomerQueryHandler creates a handler for ledger lookups.
func NewGetCustomerQueryHandler(db *gorm.DB) GetCustomerQueryHandler {
	return GetCustomerQueryHandler{db: db}
}

// Handle returns the ledger entry for the queried phone.
// Returns errs.ErrObjectNotFound when no entry exists yet.
func (h GetCustomerQueryHandler) Handle(
	ctx context.Context,
	query GetCustomerQuery,
) (GetCustomerQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetCustomerQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			phone,
			name,
			total_orders,
			total_spent,
			last_order_date
		FROM customers
		WHERE restaurant_id = ? AND phone = ?
	`, query.RestaurantID().String(), query.Phone()).Row()

	var (
		id            uuid.UUID
		phone, name   string
		totalOrders   int64
		totalSpent    decimal.Decimal
		lastOrderDate time.Time
	)

	err := row.Scan(&id, &phone, &name, &totalOrders, &totalSpent, &lastOrderDate)
	if errors.Is(err, sql.ErrNoRows) {
		return GetCustomerQueryResponse{}, errs.NewObjectNotFoundError("phone", query.Phone())
	}
	if err != nil {
		return GetCustomerQueryResponse{}, err
	}

	customerID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetCustomerQueryResponse{}, err
	}

	return GetCustomerQueryResponse{
		ID:            customerID,
		Phone:         phone,
		Name:          name,
		TotalOrders:   totalOrders,
		TotalSpent:    totalSpent.StringFixed(2),
		LastOrderDate: lastOrderDate,
	}, nil
}
