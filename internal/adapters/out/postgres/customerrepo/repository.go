package customerrepo

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements ports.CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GORM customer repository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// UpsertOnOrder records one submitted order against the customer's ledger
// entry, creating the entry on first contact. The whole read-modify-write
// is a single statement: counts and totals accumulate correctly no matter
// how many submissions race. An empty name never overwrites a known one,
// and the last order date only moves forward.
func (r *GormCustomerRepository) UpsertOnOrder(
	ctx context.Context,
	restaurantID kernel.UUID,
	phone string,
	name string,
	orderTotal kernel.Money,
	now time.Time,
) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}
	if phone == "" {
		return errs.NewValueIsRequiredError("phone")
	}
	if err := orderTotal.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Exec(`
		INSERT INTO customers (id, restaurant_id, phone, name, total_orders, total_spent, last_order_date)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (restaurant_id, phone) DO UPDATE SET
			name            = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE customers.name END,
			total_orders    = customers.total_orders + 1,
			total_spent     = customers.total_spent + EXCLUDED.total_spent,
			last_order_date = GREATEST(customers.last_order_date, EXCLUDED.last_order_date)
	`, uuid.New(), restaurantID.Bytes(), phone, name, orderTotal.Amount(), now).Error
}

// GetByPhone retrieves one ledger entry by its deduplication key.
func (r *GormCustomerRepository) GetByPhone(
	ctx context.Context,
	restaurantID kernel.UUID,
	phone string,
) (*customer.Customer, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}
	if phone == "" {
		return nil, errs.NewValueIsRequiredError("phone")
	}

	var dto CustomerDTO
	err := r.db.WithContext(ctx).
		First(&dto, "restaurant_id = ? AND phone = ?", restaurantID.Bytes(), phone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("phone", phone)
		}
		return nil, err
	}

	return toDomain(dto)
}
