package orderrepo

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order to the database.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	// Select("*") forces zero values (cleared notes, false flags) to be
	// written as well.
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetActive retrieves all non-draft orders of a restaurant that are still in
// an active status, oldest first.
func (r *GormOrderRepository) GetActive(ctx context.Context, restaurantID kernel.UUID) ([]*order.Order, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	statusNames := make([]string, 0, len(order.ActiveStatuses()))
	for _, s := range order.ActiveStatuses() {
		statusNames = append(statusNames, s.String())
	}

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND is_draft = FALSE AND status IN ?", restaurantID.Bytes(), statusNames).
		Order("created_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		orders = append(orders, o)
	}

	return orders, nil
}

// NextOrderNumber allocates the next order number of a restaurant. The
// upsert-increment runs as one statement, so two concurrent submissions can
// never draw the same number; when it runs inside the submission transaction
// the row lock also serializes competing submissions.
func (r *GormOrderRepository) NextOrderNumber(ctx context.Context, restaurantID kernel.UUID) (int64, error) {
	if err := restaurantID.Validate(); err != nil {
		return 0, err
	}

	var number int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO order_counters (restaurant_id, last_number)
		VALUES (?, 1)
		ON CONFLICT (restaurant_id)
		DO UPDATE SET last_number = order_counters.last_number + 1
		RETURNING last_number
	`, restaurantID.Bytes()).Scan(&number).Error
	if err != nil {
		return 0, err
	}

	return number, nil
}

// AppendLogEntry writes one audit record. The log is append-only; rows are
// never updated or deleted.
func (r *GormOrderRepository) AppendLogEntry(ctx context.Context, entry order.LogEntry) error {
	dto := logEntryFromDomain(entry)
	return r.db.WithContext(ctx).Create(&dto).Error
}
