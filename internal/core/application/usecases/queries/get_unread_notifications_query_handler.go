package queries

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetUnreadNotificationsQueryHandler reads the unread notification feed.
type GetUnreadNotificationsQueryHandler struct {
	db *gorm.DB
}

// NewGetUnreadNotificationsQueryHandler creates a handler for the unread feed.
func NewGetUnreadNotificationsQueryHandler(db *gorm.DB) GetUnreadNotificationsQueryHandler {
	return GetUnreadNotificationsQueryHandler{db: db}
}

// Handle returns unread notifications, newest first.
func (h GetUnreadNotificationsQueryHandler) Handle(
	ctx context.Context,
	query GetUnreadNotificationsQuery,
) ([]GetUnreadNotificationsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			title,
			body,
			kind,
			audience,
			created_at
		FROM notifications
		WHERE restaurant_id = ? AND is_read = FALSE
		ORDER BY created_at DESC
	`, query.RestaurantID().String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]GetUnreadNotificationsQueryResponse, 0)
	for rows.Next() {
		var (
			id             uuid.UUID
			title, body    string
			kind, audience string
			createdAt      time.Time
		)

		if err = rows.Scan(&id, &title, &body, &kind, &audience, &createdAt); err != nil {
			return nil, err
		}

		notificationID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		notifications = append(notifications, GetUnreadNotificationsQueryResponse{
			ID:        notificationID,
			Title:     title,
			Body:      body,
			Kind:      notification.Kind(kind),
			Audience:  notification.Audience(audience),
			CreatedAt: createdAt,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}
