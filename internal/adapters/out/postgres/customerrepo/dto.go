// Package customerrepo persists the customer ledger. The ledger is keyed by
// (restaurant, phone) and is only ever written through a single-statement
// upsert, so concurrent submissions for the same customer never lose counts.
package customerrepo

import (
	"time"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerDTO is the database representation of one ledger entry.
type CustomerDTO struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RestaurantID  uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_customers_restaurant_phone"`
	Phone         string          `gorm:"uniqueIndex:idx_customers_restaurant_phone"`
	Name          string
	TotalOrders   int64
	TotalSpent    decimal.Decimal `gorm:"type:numeric(14,2)"`
	LastOrderDate time.Time
}

// TableName overrides GORM's default naming to use "customers".
func (CustomerDTO) TableName() string {
	return "customers"
}

func toDomain(dto CustomerDTO) (*customer.Customer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	totalSpent, err := kernel.NewMoney(dto.TotalSpent)
	if err != nil {
		return nil, err
	}

	return customer.RestoreCustomer(
		id,
		restaurantID,
		dto.Phone,
		dto.Name,
		dto.TotalOrders,
		totalSpent,
		dto.LastOrderDate,
	)
}
