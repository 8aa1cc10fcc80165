// Package orderrepo persists the order aggregate and its append-only audit
// log. Line items travel inside the order row as a jsonb document: they are
// only ever read and written together with their order.
package orderrepo

import (
	"encoding/json"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderDTO is the database representation of an order aggregate. Monetary
// columns are numeric so totals survive round-trips exactly.
type OrderDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID `gorm:"type:uuid;index:idx_orders_restaurant_status"`
	OrderNumber  int64

	Status  string `gorm:"type:varchar(32);index:idx_orders_restaurant_status"`
	IsDraft bool

	Items datatypes.JSON `gorm:"type:jsonb"`

	DiscountKind   string          `gorm:"type:varchar(16)"`
	DiscountValue  decimal.Decimal `gorm:"type:numeric(12,2)"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2)"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2)"`
	Total          decimal.Decimal `gorm:"type:numeric(12,2)"`

	PaymentMethod string `gorm:"type:varchar(16)"`

	CustomerName    string
	CustomerPhone   string `gorm:"index"`
	CustomerAddress string
	TableLabel      string
	DeliveryZone    string
	Notes           string

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName overrides GORM's default naming to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// LineItemDTO is one element of the jsonb items document.
type LineItemDTO struct {
	MenuItemID string `json:"menu_item_id"`
	Title      string `json:"title"`
	Variant    string `json:"variant,omitempty"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
}

// LogEntryDTO is one row of the append-only order audit log.
type LogEntryDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;index"`
	Action      string    `gorm:"type:varchar(32)"`
	OldStatus   string    `gorm:"type:varchar(32)"`
	NewStatus   string    `gorm:"type:varchar(32)"`
	PerformedBy string
	CreatedAt   time.Time
}

// TableName overrides GORM's default naming to use "order_log_entries".
func (LogEntryDTO) TableName() string {
	return "order_log_entries"
}

// CounterDTO holds the per-restaurant order number sequence. Numbers are
// allocated with a single upsert-increment statement so concurrent
// submissions can never draw the same number.
type CounterDTO struct {
	RestaurantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	LastNumber   int64
}

// TableName overrides GORM's default naming to use "order_counters".
func (CounterDTO) TableName() string {
	return "order_counters"
}

func fromDomain(aggregate *order.Order) (OrderDTO, error) {
	items := make([]LineItemDTO, 0, len(aggregate.Items()))
	for _, li := range aggregate.Items() {
		items = append(items, LineItemDTO{
			MenuItemID: li.MenuItemID().String(),
			Title:      li.Title(),
			Variant:    li.Variant(),
			Quantity:   li.Quantity(),
			UnitPrice:  li.UnitPrice().Amount().StringFixed(2),
		})
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return OrderDTO{}, err
	}

	details := aggregate.Details()

	return OrderDTO{
		ID:              aggregate.ID().Bytes(),
		RestaurantID:    aggregate.RestaurantID().Bytes(),
		OrderNumber:     aggregate.OrderNumber(),
		Status:          aggregate.Status().String(),
		IsDraft:         aggregate.IsDraft(),
		Items:           datatypes.JSON(itemsJSON),
		DiscountKind:    discountKindToString(aggregate.Discount().Kind()),
		DiscountValue:   aggregate.Discount().Value(),
		Subtotal:        aggregate.Subtotal().Amount(),
		DiscountAmount:  aggregate.DiscountAmount().Amount(),
		Total:           aggregate.Total().Amount(),
		PaymentMethod:   string(aggregate.PaymentMethod()),
		CustomerName:    details.CustomerName,
		CustomerPhone:   details.CustomerPhone,
		CustomerAddress: details.CustomerAddress,
		TableLabel:      details.TableLabel,
		DeliveryZone:    details.DeliveryZone,
		Notes:           details.Notes,
		CreatedAt:       aggregate.CreatedAt(),
		UpdatedAt:       aggregate.UpdatedAt(),
	}, nil
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	var itemDTOs []LineItemDTO
	if len(dto.Items) > 0 {
		if err = json.Unmarshal(dto.Items, &itemDTOs); err != nil {
			return nil, err
		}
	}

	items := make([]order.LineItem, 0, len(itemDTOs))
	for _, itemDTO := range itemDTOs {
		item, itemErr := lineItemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	discount, err := discountToDomain(dto.DiscountKind, dto.DiscountValue)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		restaurantID,
		dto.OrderNumber,
		status,
		items,
		discount,
		order.PaymentMethod(dto.PaymentMethod),
		order.Details{
			CustomerName:    dto.CustomerName,
			CustomerPhone:   dto.CustomerPhone,
			CustomerAddress: dto.CustomerAddress,
			TableLabel:      dto.TableLabel,
			DeliveryZone:    dto.DeliveryZone,
			Notes:           dto.Notes,
		},
		dto.IsDraft,
		dto.CreatedAt,
		dto.UpdatedAt,
	)
}

func lineItemToDomain(dto LineItemDTO) (order.LineItem, error) {
	menuItemID, err := kernel.UUIDFromString(dto.MenuItemID)
	if err != nil {
		return order.LineItem{}, err
	}

	price, err := decimal.NewFromString(dto.UnitPrice)
	if err != nil {
		return order.LineItem{}, err
	}

	unitPrice, err := kernel.NewMoney(price)
	if err != nil {
		return order.LineItem{}, err
	}

	return order.NewLineItem(menuItemID, dto.Title, dto.Variant, dto.Quantity, unitPrice)
}

func logEntryFromDomain(entry order.LogEntry) LogEntryDTO {
	return LogEntryDTO{
		ID:          uuid.New(),
		OrderID:     entry.OrderID().Bytes(),
		Action:      string(entry.Action()),
		OldStatus:   statusToNullableString(entry.OldStatus()),
		NewStatus:   entry.NewStatus().String(),
		PerformedBy: entry.PerformedBy(),
		CreatedAt:   entry.CreatedAt(),
	}
}

// statusToNullableString maps Unknown to the empty string. Creation entries
// have no previous status.
func statusToNullableString(s order.Status) string {
	if s == order.Unknown {
		return ""
	}
	return s.String()
}

func discountKindToString(kind kernel.DiscountKind) string {
	switch kind {
	case kernel.DiscountFixed:
		return "fixed"
	case kernel.DiscountPercent:
		return "percent"
	default:
		return "none"
	}
}

func discountToDomain(kind string, value decimal.Decimal) (kernel.Discount, error) {
	switch kind {
	case "none", "":
		return kernel.NoDiscount(), nil
	case "fixed":
		return kernel.FixedDiscount(value), nil
	case "percent":
		return kernel.PercentDiscount(value), nil
	default:
		return kernel.Discount{}, errs.NewValueIsInvalidError("discount kind")
	}
}
