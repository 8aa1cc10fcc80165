package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"
)

// NotificationRepository defines the persistence contract for notifications.
type NotificationRepository interface {
	// Add persists a new notification.
	Add(ctx context.Context, n *notification.Notification) error

	// SetRead toggles the read flag of an existing notification.
	SetRead(ctx context.Context, id kernel.UUID, read bool) error

	// GetUnread retrieves unread notifications for a restaurant,
	// newest first.
	GetUnread(ctx context.Context, restaurantID kernel.UUID) ([]*notification.Notification, error)
}
