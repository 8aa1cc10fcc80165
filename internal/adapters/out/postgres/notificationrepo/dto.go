// Package notificationrepo persists staff notifications.
package notificationrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"

	"github.com/google/uuid"
)

// NotificationDTO is the database representation of one notification.
type NotificationDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID `gorm:"type:uuid;index:idx_notifications_restaurant_read"`
	Title        string
	Body         string
	Kind         string `gorm:"type:varchar(32)"`
	Audience     string `gorm:"type:varchar(32)"`
	IsRead       bool   `gorm:"index:idx_notifications_restaurant_read"`
	CreatedAt    time.Time
}

// TableName overrides GORM's default naming to use "notifications".
func (NotificationDTO) TableName() string {
	return "notifications"
}

func fromDomain(n *notification.Notification) NotificationDTO {
	return NotificationDTO{
		ID:           n.ID().Bytes(),
		RestaurantID: n.RestaurantID().Bytes(),
		Title:        n.Title(),
		Body:         n.Body(),
		Kind:         string(n.Kind()),
		Audience:     string(n.Audience()),
		IsRead:       n.IsRead(),
		CreatedAt:    n.CreatedAt(),
	}
}

func toDomain(dto NotificationDTO) (*notification.Notification, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	return notification.RestoreNotification(
		id,
		restaurantID,
		dto.Title,
		dto.Body,
		notification.Kind(dto.Kind),
		notification.Audience(dto.Audience),
		dto.IsRead,
		dto.CreatedAt,
	)
}
