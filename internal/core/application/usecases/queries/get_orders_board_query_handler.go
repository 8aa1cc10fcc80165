package queries

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrdersBoardQueryHandler reads the kitchen board straight from the
// database, bypassing the aggregate. Draft orders never reach the board.
type GetOrdersBoardQueryHandler struct {
	db *gorm.DB
}

// NewGetOrdersBoardQueryHandler creates a handler for kitchen board queries.
func NewGetOrdersBoardQueryHandler(db *gorm.DB) GetOrdersBoardQueryHandler {
	return GetOrdersBoardQueryHandler{db: db}
}

// Handle returns all active non-draft orders grouped by status, oldest first
// within each column. An order is flagged delayed once its age exceeds the
// query's threshold.
func (h GetOrdersBoardQueryHandler) Handle(
	ctx context.Context,
	query GetOrdersBoardQuery,
) (GetOrdersBoardQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrdersBoardQueryResponse{}, err
	}

	active := order.ActiveStatuses()
	statusNames := make([]string, 0, len(active))
	for _, s := range active {
		statusNames = append(statusNames, s.String())
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_number,
			status,
			customer_name,
			customer_phone,
			jsonb_array_length(items) AS item_count,
			total,
			customer_address,
			delivery_zone,
			created_at,
			updated_at
		FROM orders
		WHERE restaurant_id = ?
		  AND is_draft = FALSE
		  AND status IN (?)
		ORDER BY created_at
	`, query.RestaurantID().String(), statusNames).Rows()
	if err != nil {
		return GetOrdersBoardQueryResponse{}, err
	}
	defer rows.Close()

	now := time.Now()
	byStatus := make(map[order.Status][]BoardOrder, len(active))

	for rows.Next() {
		var (
			id                    uuid.UUID
			orderNumber           int64
			statusName            string
			name, phone           string
			itemCount             int
			total                 decimal.Decimal
			address, deliveryZone string
			createdAt, updatedAt  time.Time
		)

		if err = rows.Scan(
			&id, &orderNumber, &statusName, &name, &phone,
			&itemCount, &total, &address, &deliveryZone, &createdAt, &updatedAt,
		); err != nil {
			return GetOrdersBoardQueryResponse{}, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return GetOrdersBoardQueryResponse{}, idErr
		}

		status, statusErr := order.StatusFromString(statusName)
		if statusErr != nil {
			return GetOrdersBoardQueryResponse{}, statusErr
		}

		byStatus[status] = append(byStatus[status], BoardOrder{
			ID:            orderID,
			OrderNumber:   orderNumber,
			Status:        status,
			CustomerName:  name,
			CustomerPhone: phone,
			ItemCount:     itemCount,
			Total:         total.StringFixed(2),
			IsDelivery:    address != "" || deliveryZone != "",
			IsDelayed:     now.Sub(createdAt) > query.DelayedAfter(),
			CreatedAt:     createdAt,
			UpdatedAt:     updatedAt,
		})
	}

	if err = rows.Err(); err != nil {
		return GetOrdersBoardQueryResponse{}, err
	}

	columns := make([]BoardColumn, 0, len(active))
	for _, s := range active {
		orders := byStatus[s]
		if orders == nil {
			orders = []BoardOrder{}
		}
		columns = append(columns, BoardColumn{Status: s, Orders: orders})
	}

	return GetOrdersBoardQueryResponse{Columns: columns}, nil
}
