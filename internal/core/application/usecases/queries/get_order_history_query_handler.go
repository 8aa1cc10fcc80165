package queries

import (
	"context"
	"strconv"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrderHistoryQueryHandler pages through past orders with optional
// filtering by status, free text and creation time.
type GetOrderHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderHistoryQueryHandler creates a handler for order history queries.
func NewGetOrderHistoryQueryHandler(db *gorm.DB) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{db: db}
}

// Handle executes the filtered history query, newest orders first.
func (h GetOrderHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderHistoryQuery,
) (GetOrderHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderHistoryQueryResponse{}, err
	}

	where, args := buildHistoryWhere(query)

	var total int64
	err := h.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM orders WHERE "+where, args...).
		Scan(&total).Error
	if err != nil {
		return GetOrderHistoryQueryResponse{}, err
	}

	pageArgs := append(append([]any{}, args...), query.Limit(), query.Offset())
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_number,
			status,
			is_draft,
			customer_name,
			customer_phone,
			jsonb_array_length(items) AS item_count,
			subtotal,
			discount_amount,
			total,
			payment_method,
			created_at,
			updated_at
		FROM orders
		WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, pageArgs...).Rows()
	if err != nil {
		return GetOrderHistoryQueryResponse{}, err
	}
	defer rows.Close()

	orders := make([]HistoryOrder, 0, query.Limit())
	for rows.Next() {
		var (
			id                        uuid.UUID
			orderNumber               int64
			statusName, paymentMethod string
			isDraft                   bool
			name, phone               string
			itemCount                 int
			subtotal, discount, tot   decimal.Decimal
			createdAt, updatedAt      time.Time
		)

		if err = rows.Scan(
			&id, &orderNumber, &statusName, &isDraft, &name, &phone,
			&itemCount, &subtotal, &discount, &tot, &paymentMethod, &createdAt, &updatedAt,
		); err != nil {
			return GetOrderHistoryQueryResponse{}, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return GetOrderHistoryQueryResponse{}, idErr
		}

		status, statusErr := order.StatusFromString(statusName)
		if statusErr != nil {
			return GetOrderHistoryQueryResponse{}, statusErr
		}

		orders = append(orders, HistoryOrder{
			ID:            orderID,
			OrderNumber:   orderNumber,
			Status:        status,
			IsDraft:       isDraft,
			CustomerName:  name,
			CustomerPhone: phone,
			ItemCount:     itemCount,
			Subtotal:      subtotal.StringFixed(2),
			Discount:      discount.StringFixed(2),
			Total:         tot.StringFixed(2),
			PaymentMethod: order.PaymentMethod(paymentMethod),
			CreatedAt:     createdAt,
			UpdatedAt:     updatedAt,
		})
	}

	if err = rows.Err(); err != nil {
		return GetOrderHistoryQueryResponse{}, err
	}

	return GetOrderHistoryQueryResponse{Orders: orders, Total: total}, nil
}

// buildHistoryWhere translates the filter into a WHERE clause shared by the
// count and the page query so the two can never disagree.
func buildHistoryWhere(query GetOrderHistoryQuery) (string, []any) {
	filter := query.Filter()

	conditions := []string{"restaurant_id = ?"}
	args := []any{query.RestaurantID().String()}

	if !filter.IncludeDrafts {
		conditions = append(conditions, "is_draft = FALSE")
	}

	if len(filter.Statuses) > 0 {
		names := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			names = append(names, s.String())
		}
		conditions = append(conditions, "status IN (?)")
		args = append(args, names)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		conditions = append(conditions, "(customer_name ILIKE ? OR customer_phone LIKE ? OR CAST(order_number AS TEXT) = ?)")
		args = append(args, like, like, normalizeOrderNumber(search))
	}

	if !filter.From.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, filter.To)
	}

	return strings.Join(conditions, " AND "), args
}

// normalizeOrderNumber strips a leading "#" so searching "#42" matches
// order number 42.
func normalizeOrderNumber(search string) string {
	trimmed := strings.TrimPrefix(search, "#")
	if _, err := strconv.ParseInt(trimmed, 10, 64); err != nil {
		return search
	}
	return trimmed
}
